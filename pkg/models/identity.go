// Package models contains domain models for identitymap.
package models

import "strings"

// Lens identifies one of the three identity facets a participant
// describes themselves through.
type Lens string

const (
	// LensGiven covers ascribed attributes.
	LensGiven Lens = "GIVEN"
	// LensChosen covers self-selected affiliations.
	LensChosen Lens = "CHOSEN"
	// LensCore covers foundational self-concept.
	LensCore Lens = "CORE"
)

// Lenses lists all lenses in their canonical order.
var Lenses = []Lens{LensGiven, LensChosen, LensCore}

// ValidLens reports whether l is one of the three known lenses.
func ValidLens(l Lens) bool {
	switch l {
	case LensGiven, LensChosen, LensCore:
		return true
	}
	return false
}

// TagItem is a short categorical label with an importance weight in [1,3].
// Weight validation is the caller's responsibility; the similarity engine
// treats weights as opaque positive integers.
type TagItem struct {
	Value  string `json:"value"`
	Weight int    `json:"weight"`
}

// Key returns the comparison key for the tag: trimmed and lowercased.
func (t TagItem) Key() string {
	return NormalizeTag(t.Value)
}

// NormalizeTag returns the canonical comparison key for a tag value.
func NormalizeTag(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// LensData holds one participant's self-description for a single lens.
type LensData struct {
	Tags  []TagItem `json:"tags"`
	Texts []string  `json:"texts"`
}

// Empty reports whether the lens has neither tags nor texts.
func (d LensData) Empty() bool {
	return len(d.Tags) == 0 && len(d.Texts) == 0
}

// WeightMap collapses the tag list to a key-to-weight map. Duplicate keys
// keep the maximum weight seen.
func (d LensData) WeightMap() map[string]int {
	m := make(map[string]int, len(d.Tags))
	for _, t := range d.Tags {
		key := t.Key()
		if key == "" {
			continue
		}
		if t.Weight > m[key] {
			m[key] = t.Weight
		}
	}
	return m
}

// Identity maps each lens to a participant's data for that lens. A missing
// lens is equivalent to an empty one.
type Identity map[Lens]LensData

// Lens returns the data for the given lens, or the zero LensData when the
// lens has no entry.
func (id Identity) Lens(l Lens) LensData {
	return id[l]
}

// Empty reports whether all three lenses are empty.
func (id Identity) Empty() bool {
	for _, l := range Lenses {
		if !id.Lens(l).Empty() {
			return false
		}
	}
	return true
}
