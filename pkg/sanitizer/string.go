package sanitizer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TrimAndNormalize trims s and collapses every run of whitespace to a single
// space.
func TrimAndNormalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func NormalizeName(name string) string       { return TrimAndNormalize(name) }
func NormalizeAddress(address string) string { return TrimAndNormalize(address) }
func NormalizeAmenity(amenity string) string { return TrimAndNormalize(amenity) }
func NormalizeRoomType(rt string) string     { return TrimAndNormalize(rt) }

// NormalizeCity title-cases each word so "new  york" and "New York" are
// stored and searched as the same city.
func NormalizeCity(city string) string {
	return cases.Title(language.Und).String(TrimAndNormalize(city))
}
