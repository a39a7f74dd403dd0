package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims", "  Grand Hotel  ", "Grand Hotel"},
		{"collapses spaces", "Grand    Hotel", "Grand Hotel"},
		{"tabs and newlines", "Grand\t\nHotel", "Grand Hotel"},
		{"empty", "", ""},
		{"only whitespace", " \t ", ""},
		{"unicode", "  Hôtel   Étoile ", "Hôtel Étoile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCity(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"new york", "New York"},
		{"  NEW   YORK ", "New York"},
		{"dubai", "Dubai"},
		{"são paulo", "São Paulo"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeCity(tt.input); got != tt.want {
				t.Errorf("NormalizeCity(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeCity(tt.want); again != tt.want {
				t.Errorf("NormalizeCity is not idempotent for %q", tt.want)
			}
		})
	}
}

func TestNormalizeRoomType(t *testing.T) {
	if got := NormalizeRoomType("  Double   Bed "); got != "Double Bed" {
		t.Errorf("unexpected room type %q", got)
	}
}
