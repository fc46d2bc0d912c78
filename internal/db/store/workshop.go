// Package store provides GORM-based SQLite persistence for identitymap.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/JustKeepShipping/identitymap/pkg/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// joinCodeLength is the length of generated workshop join codes.
const joinCodeLength = 6

// joinCodeAttempts bounds retries when a generated code collides with an
// existing workshop.
const joinCodeAttempts = 5

// WorkshopStore provides workshop-related database operations.
type WorkshopStore struct {
	db *gorm.DB
}

// NewWorkshopStore creates a new workshop store.
func NewWorkshopStore(store *Store) *WorkshopStore {
	return &WorkshopStore{db: store.DB}
}

// CreateWorkshop creates a workshop with a fresh join code. Join codes are
// short, so generation retries when a code collides with an existing workshop.
func (s *WorkshopStore) CreateWorkshop(ctx context.Context, name string) (*models.Workshop, error) {
	var lastErr error
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		w := &Workshop{
			Name:     name,
			JoinCode: newJoinCode(),
		}
		err := s.db.WithContext(ctx).Create(w).Error
		if err == nil {
			return w.ToModel(), nil
		}
		if !isUniqueConstraintErr(err) {
			return nil, fmt.Errorf("create workshop: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("create workshop: join code collisions exhausted retries: %w", lastErr)
}

// isUniqueConstraintErr reports whether err is a unique-constraint violation.
func isUniqueConstraintErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// GetWorkshop fetches a workshop by ID.
func (s *WorkshopStore) GetWorkshop(ctx context.Context, id int64) (*models.Workshop, error) {
	var w Workshop
	err := s.db.WithContext(ctx).First(&w, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return w.ToModel(), nil
}

// GetWorkshopByJoinCode fetches a workshop by its join code,
// case-insensitively.
func (s *WorkshopStore) GetWorkshopByJoinCode(ctx context.Context, code string) (*models.Workshop, error) {
	var w Workshop
	err := s.db.WithContext(ctx).
		Where("join_code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return w.ToModel(), nil
}

// ListParticipants returns all participants of a workshop, oldest first.
func (s *WorkshopStore) ListParticipants(ctx context.Context, workshopID int64) ([]*models.Participant, error) {
	var rows []Participant
	err := s.db.WithContext(ctx).
		Where("workshop_id = ?", workshopID).
		Order("created_at_epoch ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	participants := make([]*models.Participant, 0, len(rows))
	for i := range rows {
		participants = append(participants, rows[i].ToModel())
	}
	return participants, nil
}

// newJoinCode derives a short, human-friendly join code from a UUID.
// Variable so tests can force collisions.
var newJoinCode = func() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:joinCodeLength])
}
