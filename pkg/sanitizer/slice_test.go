package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeAmenities(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil", nil, []string{}},
		{"trims", []string{" Free WiFi ", "Pool Access"}, []string{"Free WiFi", "Pool Access"}},
		{"drops empty", []string{"", "  ", "Room Service"}, []string{"Room Service"}},
		{"case insensitive duplicates", []string{"Free WiFi", "free wifi", "FREE  WIFI"}, []string{"Free WiFi"}},
		{"keeps order", []string{"Mountain View", "Free Breakfast"}, []string{"Mountain View", "Free Breakfast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAmenities(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeAmenities(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCities(t *testing.T) {
	got := NormalizeCities([]string{"dubai", "Dubai", " new york"})
	want := []string{"Dubai", "New York"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeCities() = %v, want %v", got, want)
	}
}
