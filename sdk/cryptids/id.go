// Package cryptids generates short random identifiers from crypto/rand.
package cryptids

import (
	"crypto/rand"
	"fmt"
)

var (
	IDAlphabet = "bcdfghjklmnpqrstvwxyzBCDFGHJKLMNPQRSTVWXYZ0123456789"
	IDLength   = 18
)

// GenerateID creates a random string from the default alphabet and length.
func GenerateID() (string, error) {
	return generateID(IDAlphabet, IDLength)
}

// GeneratePrefixedID returns prefix_<id>, e.g. "mut_Xk3...".
func GeneratePrefixedID(prefix string) (string, error) {
	id, err := generateID(IDAlphabet, IDLength)
	if err != nil {
		return "", err
	}
	return prefix + "_" + id, nil
}

// GenerateCustomID creates a random string from alphabet with the given size.
func GenerateCustomID(alphabet string, size int) (string, error) {
	return generateID(alphabet, size)
}

func generateID(alphabet string, size int) (string, error) {
	if len(alphabet) < 2 || len(alphabet) > 256 {
		return "", fmt.Errorf("alphabet must contain between 2 and 256 characters")
	}
	if size < 1 {
		return "", fmt.Errorf("size must be at least 1")
	}

	// smallest all-ones mask covering the alphabet; out of range bytes are
	// rejected so every character is equally likely
	mask := 1
	for mask < len(alphabet)-1 {
		mask = (mask << 1) | 1
	}

	step := size * 8 / 5
	if step < size {
		step = size
	}

	id := make([]byte, size)
	buf := make([]byte, step)

	n := 0
	for n < size {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for i := 0; i < len(buf) && n < size; i++ {
			idx := int(buf[i]) & mask
			if idx >= len(alphabet) {
				continue
			}
			id[n] = alphabet[idx]
			n++
		}
	}

	return string(id), nil
}
