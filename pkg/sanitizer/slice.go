package sanitizer

import "strings"

// NormalizeStringSlice applies normalize to every item and drops empties and
// case-insensitive duplicates. The first spelling seen wins.
func NormalizeStringSlice(items []string, normalize func(string) string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		v := normalize(item)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

func NormalizeAmenities(amenities []string) []string {
	return NormalizeStringSlice(amenities, NormalizeAmenity)
}

func NormalizeCities(cities []string) []string {
	return NormalizeStringSlice(cities, NormalizeCity)
}
