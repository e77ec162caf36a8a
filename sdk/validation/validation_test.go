package validation

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Buy milk", "Buy milk"},
		{"trim", "  Buy milk \n", "Buy milk"},
		{"collapse", "Buy\t\tmilk   now", "Buy milk now"},
		{"controls", "Buy\x00 milk\x07", "Buy milk"},
		{"nfc", "café", "café"},
		{"blank", " \t\r\n ", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.in); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	tests := map[string]bool{
		"":       true,
		"   ":    true,
		"\t\r\n": true,
		"\u00a0": true,
		" a ":    false,
		"\x00":   false,
	}
	for in, want := range tests {
		if got := IsBlank(in); got != want {
			t.Errorf("IsBlank(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"My Tasks":           "my-tasks",
		"Café  Errands!":     "cafe-errands",
		"--Straße__list--":   "strasse-list",
		"Ünïcödé & symbols ": "unicode-symbols",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetBoolOrDefault(t *testing.T) {
	set := false
	if !GetBoolOrDefault(nil, true) {
		t.Error("nil bool should use default")
	}
	if GetBoolOrDefault(&set, true) {
		t.Error("set bool should win")
	}
}
