// Package store provides GORM-based SQLite persistence for identitymap.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JustKeepShipping/identitymap/pkg/models"
)

// ParticipantStore provides participant-related database operations.
type ParticipantStore struct {
	db *gorm.DB
}

// NewParticipantStore creates a new participant store.
func NewParticipantStore(store *Store) *ParticipantStore {
	return &ParticipantStore{db: store.DB}
}

// CreateParticipant adds a participant to a workshop.
func (s *ParticipantStore) CreateParticipant(ctx context.Context, workshopID int64, displayName string) (*models.Participant, error) {
	p := &Participant{
		ID:          uuid.NewString(),
		WorkshopID:  workshopID,
		DisplayName: displayName,
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("create participant: %w", err)
	}
	return p.ToModel(), nil
}

// GetParticipant fetches a participant by ID.
func (s *ParticipantStore) GetParticipant(ctx context.Context, id string) (*models.Participant, error) {
	var p Participant
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p.ToModel(), nil
}

// DeleteParticipant removes a participant and their identity data.
func (s *ParticipantStore) DeleteParticipant(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("participant_id = ?", id).Delete(&IdentityTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("participant_id = ?", id).Delete(&IdentityText{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Participant{}).Error
	})
}
