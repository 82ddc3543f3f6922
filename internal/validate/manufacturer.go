package validate

import (
	"sort"
	"strings"

	"github.com/ppiankov/findmindisc/internal/util"
)

// ManufacturerClassifier maps free-text manufacturer names to canonical brands
type ManufacturerClassifier struct {
	canonical map[string]string // folded key -> canonical name
	keys      []string          // folded keys, longest first
}

// Well-known spellings that differ from the canonical catalog name
var defaultManufacturerAliases = map[string]string{
	"Innova Champion Discs": "Innova",
	"Innova Discs":          "Innova",
	"Discraft Discs":        "Discraft",
	"Dynamic":               "Dynamic Discs",
	"DD":                    "Dynamic Discs",
	"Latitude":              "Latitude 64",
	"Lat64":                 "Latitude 64",
	"Westside":              "Westside Discs",
	"MVP Disc Sports":       "MVP",
	"Axiom":                 "Axiom Discs",
	"Streamline":            "Streamline Discs",
	"Prodigy":               "Prodigy Disc",
	"Thought Space":         "Thought Space Athletics",
	"TSA":                   "Thought Space Athletics",
	"Kasta":                 "Kastaplast",
	"Lone Star":             "Lone Star Discs",
	"Mint":                  "Mint Discs",
}

// NewManufacturerClassifier builds a classifier for the given canonical brands.
// Extra aliases are added to the built-in table; aliases pointing at brands
// outside the canonical set are ignored.
func NewManufacturerClassifier(brands []string, aliases map[string]string) *ManufacturerClassifier {
	m := &ManufacturerClassifier{canonical: make(map[string]string)}

	known := make(map[string]bool, len(brands))
	for _, b := range brands {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		known[b] = true
		m.canonical[util.FoldKey(b)] = b
	}

	add := func(table map[string]string) {
		for alias, brand := range table {
			if !known[brand] {
				continue
			}
			key := util.FoldKey(alias)
			if _, exists := m.canonical[key]; !exists {
				m.canonical[key] = brand
			}
		}
	}
	add(defaultManufacturerAliases)
	add(aliases)

	for key := range m.canonical {
		m.keys = append(m.keys, key)
	}
	sort.Slice(m.keys, func(i, j int) bool {
		if len(m.keys[i]) != len(m.keys[j]) {
			return len(m.keys[i]) > len(m.keys[j])
		}
		return m.keys[i] < m.keys[j]
	})

	return m
}

// TrimBrand removes a leading brand from a folded key ("innovadestroyer" ->
// "destroyer"). It reports false when no brand prefix is present or nothing
// would remain.
func (m *ManufacturerClassifier) TrimBrand(key string) (string, bool) {
	for _, k := range m.keys {
		if len(key) > len(k) && strings.HasPrefix(key, k) {
			return key[len(k):], true
		}
	}
	return key, false
}

// Classify returns the canonical brand for a manufacturer name
func (m *ManufacturerClassifier) Classify(name string) (string, bool) {
	brand, ok := m.canonical[util.FoldKey(name)]
	return brand, ok
}

// Brands returns the canonical brand names, sorted
func (m *ManufacturerClassifier) Brands() []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range m.canonical {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	sort.Strings(out)
	return out
}

// Same reports whether two names refer to the same brand
func (m *ManufacturerClassifier) Same(a, b string) bool {
	ca, okA := m.Classify(a)
	cb, okB := m.Classify(b)
	if okA && okB {
		return ca == cb
	}
	return util.FoldKey(a) == util.FoldKey(b)
}
