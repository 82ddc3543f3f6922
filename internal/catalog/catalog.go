// Package catalog holds the ground-truth disc dataset.
//
// A Catalog is immutable once built and safe for concurrent reads.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/findmindisc/internal/model"
	"github.com/ppiankov/findmindisc/internal/util"
	"github.com/ppiankov/findmindisc/internal/validate"
)

// ErrNotFound is returned when a name or alias is not in the catalog
var ErrNotFound = errors.New("unknown disc")

// Catalog is the read-only set of known discs
type Catalog struct {
	discs      []model.DiscRecord // sorted by name
	index      map[string]int     // folded name or alias -> position in discs
	forms      []string           // names and aliases, longest first
	maxTokens  int                // most words in any surface form
	thresholds model.Thresholds
	makers     *validate.ManufacturerClassifier
}

// New builds a catalog from already-validated records. Records whose folded
// name collides with an earlier one are dropped; aliases that collide with a
// name or another alias are ignored.
func New(records []model.DiscRecord, th model.Thresholds) (*Catalog, error) {
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	sorted := make([]model.DiscRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return util.FoldKey(sorted[i].Name) < util.FoldKey(sorted[j].Name)
	})

	c := &Catalog{
		index:      make(map[string]int, len(sorted)*2),
		thresholds: th,
	}
	log := catalogLogger()

	// Names first so they always win over aliases
	for _, d := range sorted {
		key := util.FoldKey(d.Name)
		if key == "" {
			continue
		}
		if existing, dup := c.index[key]; dup {
			log.Warn().Str("disc", d.Name).Str("existing", c.discs[existing].Name).Msg("duplicate disc name, skipping")
			continue
		}
		d.Aliases = append([]string(nil), d.Aliases...)
		c.index[key] = len(c.discs)
		c.discs = append(c.discs, d)
		c.addForm(d.Name)
	}

	for i := range c.discs {
		kept := c.discs[i].Aliases[:0]
		for _, alias := range c.discs[i].Aliases {
			key := util.FoldKey(alias)
			if key == "" {
				continue
			}
			if owner, taken := c.index[key]; taken {
				if owner != i {
					log.Warn().Str("disc", c.discs[i].Name).Str("alias", alias).Str("owner", c.discs[owner].Name).Msg("alias collides, ignoring")
				}
				continue
			}
			c.index[key] = i
			c.addForm(alias)
			kept = append(kept, alias)
		}
		c.discs[i].Aliases = kept
	}

	if len(c.discs) == 0 {
		return nil, errors.New("catalog has no discs")
	}

	sort.SliceStable(c.forms, func(i, j int) bool {
		if len(c.forms[i]) != len(c.forms[j]) {
			return len(c.forms[i]) > len(c.forms[j])
		}
		return c.forms[i] < c.forms[j]
	})

	brands := make([]string, 0, len(c.discs))
	for _, d := range c.discs {
		brands = append(brands, d.Manufacturer)
	}
	c.makers = validate.NewManufacturerClassifier(brands, nil)

	return c, nil
}

func (c *Catalog) addForm(form string) {
	c.forms = append(c.forms, form)
	if n := len(tokenize(form)); n > c.maxTokens {
		c.maxTokens = n
	}
}

// Lookup resolves a disc name or alias. Matching ignores case, diacritics,
// whitespace, hyphens and a leading manufacturer name.
func (c *Catalog) Lookup(name string) (model.DiscRecord, error) {
	if i, ok := c.find(name); ok {
		return c.discs[i], nil
	}
	return model.DiscRecord{}, fmt.Errorf("%w: %q", ErrNotFound, strings.TrimSpace(name))
}

// Has reports whether a name or alias resolves
func (c *Catalog) Has(name string) bool {
	_, ok := c.find(name)
	return ok
}

// find resolves a name, retrying without a leading manufacturer
// ("Innova Destroyer", "Latitude 64 River").
func (c *Catalog) find(name string) (int, bool) {
	key := util.FoldKey(name)
	if i, ok := c.index[key]; ok {
		return i, true
	}
	if rest, ok := c.makers.TrimBrand(key); ok {
		i, found := c.index[rest]
		return i, found
	}
	return 0, false
}

// All returns every disc sorted by name. The slice is a copy.
func (c *Catalog) All() []model.DiscRecord {
	out := make([]model.DiscRecord, len(c.discs))
	copy(out, c.discs)
	return out
}

// Len returns the number of discs
func (c *Catalog) Len() int {
	return len(c.discs)
}

// InSpeedRange returns discs with low <= speed <= high, sorted by name
func (c *Catalog) InSpeedRange(low, high float64) []model.DiscRecord {
	if low > high {
		low, high = high, low
	}
	var out []model.DiscRecord
	for _, d := range c.discs {
		if d.Speed >= low && d.Speed <= high {
			out = append(out, d)
		}
	}
	return out
}

// InCategory returns discs in a category under the configured thresholds
func (c *Catalog) InCategory(cat model.Category) []model.DiscRecord {
	var out []model.DiscRecord
	for _, d := range c.discs {
		if c.thresholds.Classify(d.Speed) == cat {
			out = append(out, d)
		}
	}
	return out
}

// Names returns every canonical name and alias, longest first
func (c *Catalog) Names() []string {
	out := make([]string, len(c.forms))
	copy(out, c.forms)
	return out
}

// Category classifies a disc with the configured thresholds
func (c *Catalog) Category(d model.DiscRecord) model.Category {
	return c.thresholds.Classify(d.Speed)
}

// Thresholds returns the configured category boundaries
func (c *Catalog) Thresholds() model.Thresholds {
	return c.thresholds
}

// NormalizeManufacturer maps a manufacturer spelling to the catalog's brand name
func (c *Catalog) NormalizeManufacturer(name string) (string, bool) {
	return c.makers.Classify(name)
}

// SameManufacturer reports whether two spellings name the same brand
func (c *Catalog) SameManufacturer(a, b string) bool {
	return c.makers.Same(a, b)
}

// Manufacturers returns the canonical brand names, sorted
func (c *Catalog) Manufacturers() []string {
	return c.makers.Brands()
}
