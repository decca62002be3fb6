package domain

import "strings"

// Categories is the fixed invoice category enumeration, canonical lower-case.
var Categories = []string{
	"utilities",
	"software",
	"office supplies",
	"travel",
	"consulting",
	"marketing",
	"maintenance",
	"training",
	"legal",
	"subscription",
	"insurance",
	"it services",
	"logistics",
	"hr services",
	"miscellaneous",
}

var categorySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		set[c] = struct{}{}
	}
	return set
}()

// NormalizeCategory canonicalizes a category value case-insensitively.
func NormalizeCategory(raw string) (string, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	_, ok := categorySet[value]
	return value, ok
}
