// Package store provides GORM-based SQLite persistence for identitymap.
package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/JustKeepShipping/identitymap/pkg/models"
)

// GORM Models

// Workshop is one facilitated session participants join with a shared code.
type Workshop struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	Name           string `gorm:"not null"`
	JoinCode       string `gorm:"uniqueIndex;not null"`
	CreatedAt      string `gorm:"not null"`
	CreatedAtEpoch int64  `gorm:"index:idx_workshops_created,sort:desc;not null"`
}

func (Workshop) TableName() string { return "workshops" }

// BeforeCreate hook to ensure timestamps are set.
func (w *Workshop) BeforeCreate(tx *gorm.DB) error {
	if w.CreatedAtEpoch == 0 {
		w.CreatedAtEpoch = time.Now().UnixMilli()
	}
	if w.CreatedAt == "" {
		w.CreatedAt = time.Now().Format(time.RFC3339)
	}
	return nil
}

// ToModel converts to the domain model.
func (w *Workshop) ToModel() *models.Workshop {
	return &models.Workshop{
		ID:             w.ID,
		Name:           w.Name,
		JoinCode:       w.JoinCode,
		CreatedAt:      w.CreatedAt,
		CreatedAtEpoch: w.CreatedAtEpoch,
	}
}

// Participant is one attendee of a workshop.
type Participant struct {
	ID             string `gorm:"primaryKey"` // uuid
	WorkshopID     int64  `gorm:"index;not null"`
	DisplayName    string `gorm:"not null"`
	CreatedAt      string `gorm:"not null"`
	CreatedAtEpoch int64  `gorm:"not null"`
}

func (Participant) TableName() string { return "participants" }

// BeforeCreate hook to ensure timestamps are set.
func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.CreatedAtEpoch == 0 {
		p.CreatedAtEpoch = time.Now().UnixMilli()
	}
	if p.CreatedAt == "" {
		p.CreatedAt = time.Now().Format(time.RFC3339)
	}
	return nil
}

// ToModel converts to the domain model.
func (p *Participant) ToModel() *models.Participant {
	return &models.Participant{
		ID:             p.ID,
		WorkshopID:     p.WorkshopID,
		DisplayName:    p.DisplayName,
		CreatedAt:      p.CreatedAt,
		CreatedAtEpoch: p.CreatedAtEpoch,
	}
}

// IdentityTag is one weighted tag in a participant's lens. The value column
// stores the normalized tag key; duplicates per (participant, lens, value)
// are collapsed to the maximum weight at write time.
type IdentityTag struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	ParticipantID string `gorm:"index:idx_tags_participant_lens,priority:1;uniqueIndex:idx_tags_unique,priority:1;not null"`
	Lens          string `gorm:"type:text;check:lens IN ('GIVEN', 'CHOSEN', 'CORE');index:idx_tags_participant_lens,priority:2;uniqueIndex:idx_tags_unique,priority:2;not null"`
	Value         string `gorm:"uniqueIndex:idx_tags_unique,priority:3;not null"`
	Weight        int    `gorm:"default:1;check:weight BETWEEN 1 AND 3"`
}

func (IdentityTag) TableName() string { return "identity_tags" }

// IdentityText is one free-text entry in a participant's lens. Ordinal
// preserves entry order.
type IdentityText struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	ParticipantID string `gorm:"index:idx_texts_participant_lens,priority:1;not null"`
	Lens          string `gorm:"type:text;check:lens IN ('GIVEN', 'CHOSEN', 'CORE');index:idx_texts_participant_lens,priority:2;not null"`
	Ordinal       int    `gorm:"default:0"`
	Text          string `gorm:"type:text;not null"`
}

func (IdentityText) TableName() string { return "identity_texts" }
