package cryptids

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for range 500 {
		id, err := GenerateID()
		if err != nil {
			t.Fatalf("GenerateID: %v", err)
		}
		if len(id) != IDLength {
			t.Fatalf("len(%q) = %d, want %d", id, len(id), IDLength)
		}
		for _, r := range id {
			if !strings.ContainsRune(IDAlphabet, r) {
				t.Fatalf("%q contains %q outside alphabet", id, r)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestGeneratePrefixedID(t *testing.T) {
	id, err := GeneratePrefixedID("mut")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "mut_") || len(id) != len("mut_")+IDLength {
		t.Errorf("unexpected id %q", id)
	}
}

func TestGenerateCustomID_Invalid(t *testing.T) {
	if _, err := GenerateCustomID("a", 4); err == nil {
		t.Error("expected error for single-character alphabet")
	}
	if _, err := GenerateCustomID("ab", 0); err == nil {
		t.Error("expected error for zero size")
	}
	id, err := GenerateCustomID("01", 32)
	if err != nil || len(id) != 32 {
		t.Errorf("GenerateCustomID = %q, %v", id, err)
	}
}
