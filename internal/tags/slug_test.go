package tags

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Paris", "paris"},
		{"punctuation and year", "  Paris, 2024!! ", "paris-2024"},
		{"whitespace run", "new \t york", "new-york"},
		{"hyphen runs", "--a--b--", "a-b"},
		{"mixed separators", "a - b", "a-b"},
		{"unicode stripped", "café", "caf"},
		{"only punctuation", "!!!", ""},
		{"empty", "", ""},
		{"already slug", "paris-2024", "paris-2024"},
		{"leading punctuation", "!! x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Paris", "  Paris, 2024!! ", "a - b", "--a--b--", "", "caf", "x y z"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}
