// Package catalog manages the YAML catalog of suggested tags facilitators
// offer participants per lens.
package catalog

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/JustKeepShipping/identitymap/pkg/models"
)

// Suggestion is one suggested tag with its default weight.
type Suggestion struct {
	Value  string `yaml:"value"`
	Weight int    `yaml:"weight"`
}

// LensCatalog describes the suggestions offered for one lens.
type LensCatalog struct {
	Lens        string       `yaml:"lens"`
	Description string       `yaml:"description"`
	Suggestions []Suggestion `yaml:"suggestions"`
}

// Config is the top-level YAML structure.
type Config struct {
	Lenses []LensCatalog `yaml:"lenses"`
}

// Registry holds loaded lens catalogs, keyed by lens.
type Registry struct {
	byLens map[string]*LensCatalog
	order  []string // preserves definition order
}

// Empty returns a Registry with no lens catalogs.
func Empty() *Registry {
	return &Registry{byLens: make(map[string]*LensCatalog)}
}

// Load reads the YAML file at path and returns a Registry.
// If the file does not exist, Load returns an empty Registry (not an error).
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Registry{byLens: make(map[string]*LensCatalog)}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	r := &Registry{
		byLens: make(map[string]*LensCatalog, len(cfg.Lenses)),
	}
	for i := range cfg.Lenses {
		c := &cfg.Lenses[i]
		if _, dup := r.byLens[c.Lens]; dup {
			continue
		}
		r.byLens[c.Lens] = c
		r.order = append(r.order, c.Lens)
	}
	return r, nil
}

// Get returns the catalog for a lens. Returns (nil, false) if not found.
func (r *Registry) Get(lens models.Lens) (*LensCatalog, bool) {
	c, ok := r.byLens[string(lens)]
	return c, ok
}

// All returns all lens catalogs in definition order.
func (r *Registry) All() []*LensCatalog {
	result := make([]*LensCatalog, 0, len(r.order))
	for _, lens := range r.order {
		result = append(result, r.byLens[lens])
	}
	return result
}

// Lenses returns a sorted list of lens names with suggestions.
func (r *Registry) Lenses() []string {
	lenses := make([]string, len(r.order))
	copy(lenses, r.order)
	sort.Strings(lenses)
	return lenses
}
