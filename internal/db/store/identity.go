// Package store provides GORM-based SQLite persistence for identitymap.
package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/JustKeepShipping/identitymap/pkg/models"
)

// IdentityStore loads and updates participants' per-lens identity data.
type IdentityStore struct {
	db *gorm.DB
}

// NewIdentityStore creates a new identity store.
func NewIdentityStore(store *Store) *IdentityStore {
	return &IdentityStore{db: store.DB}
}

// ReplaceTags replaces all tags for one participant/lens. Values are
// normalized and duplicates collapse to the maximum weight before writing,
// so the table always holds one row per (participant, lens, key).
func (s *IdentityStore) ReplaceTags(ctx context.Context, participantID string, lens models.Lens, tags []models.TagItem) error {
	collapsed := models.LensData{Tags: tags}.WeightMap()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("participant_id = ? AND lens = ?", participantID, lens).
			Delete(&IdentityTag{}).Error; err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}
		for value, weight := range collapsed {
			row := &IdentityTag{
				ParticipantID: participantID,
				Lens:          string(lens),
				Value:         value,
				Weight:        weight,
			}
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("insert tag %q: %w", value, err)
			}
		}
		return nil
	})
}

// ReplaceTexts replaces all free-text entries for one participant/lens,
// preserving entry order via ordinals. Blank entries are dropped.
func (s *IdentityStore) ReplaceTexts(ctx context.Context, participantID string, lens models.Lens, texts []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("participant_id = ? AND lens = ?", participantID, lens).
			Delete(&IdentityText{}).Error; err != nil {
			return fmt.Errorf("clear texts: %w", err)
		}
		ordinal := 0
		for _, text := range texts {
			if text == "" {
				continue
			}
			row := &IdentityText{
				ParticipantID: participantID,
				Lens:          string(lens),
				Ordinal:       ordinal,
				Text:          text,
			}
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("insert text: %w", err)
			}
			ordinal++
		}
		return nil
	})
}

// LoadIdentity materializes a participant's full identity across all lenses.
// Lenses with no data are omitted from the map, which the similarity engine
// treats as empty.
func (s *IdentityStore) LoadIdentity(ctx context.Context, participantID string) (models.Identity, error) {
	var tagRows []IdentityTag
	err := s.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("value ASC").
		Find(&tagRows).Error
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	var textRows []IdentityText
	err = s.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("lens ASC, ordinal ASC").
		Find(&textRows).Error
	if err != nil {
		return nil, fmt.Errorf("load texts: %w", err)
	}

	identity := models.Identity{}
	for _, row := range tagRows {
		lens := models.Lens(row.Lens)
		data := identity[lens]
		data.Tags = append(data.Tags, models.TagItem{Value: row.Value, Weight: row.Weight})
		identity[lens] = data
	}
	for _, row := range textRows {
		lens := models.Lens(row.Lens)
		data := identity[lens]
		data.Texts = append(data.Texts, row.Text)
		identity[lens] = data
	}
	return identity, nil
}
