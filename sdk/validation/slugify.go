package validation

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugSeparators = regexp.MustCompile(`[\s\-_]+`)
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\-]`)
	slugDashes     = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL-safe slug, used for download file names.
//
//	Slugify("Café  Errands!") // "cafe-errands"
func Slugify(s string) string {
	s = strings.ToLower(removeAccents(s))
	s = strings.ReplaceAll(s, "ß", "ss")
	s = slugSeparators.ReplaceAllString(s, "-")
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// removeAccents strips combining marks after canonical decomposition.
func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
