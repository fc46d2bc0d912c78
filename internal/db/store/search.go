// Package store provides GORM-based SQLite persistence for identitymap.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// TextHit is one FTS5 match against identity free text.
type TextHit struct {
	ParticipantID string  `json:"participant_id"`
	Lens          string  `json:"lens"`
	Text          string  `json:"text"`
	Score         float64 `json:"score"`
}

// TextSearchStore runs full-text queries over identity free text. FTS5
// requires raw SQL, so it works on the underlying sql.DB.
type TextSearchStore struct {
	rawDB *sql.DB
}

// NewTextSearchStore creates a new text search store.
func NewTextSearchStore(store *Store) *TextSearchStore {
	return &TextSearchStore{rawDB: store.GetRawDB()}
}

// SearchTexts returns identity text entries in a workshop matching the
// query, best first. Scores are bm25 ranks normalized to [0,1).
func (s *TextSearchStore) SearchTexts(ctx context.Context, workshopID int64, query string, limit int) ([]TextHit, error) {
	if limit <= 0 {
		limit = 20
	}

	const q = `
		SELECT t.participant_id, t.lens, t.text, bm25(identity_texts_fts) AS rank
		FROM identity_texts_fts f
		JOIN identity_texts t ON t.id = f.rowid
		JOIN participants p ON p.id = t.participant_id
		WHERE p.workshop_id = ? AND identity_texts_fts MATCH ?
		ORDER BY rank ASC
		LIMIT ?
	`

	rows, err := s.rawDB.QueryContext(ctx, q, workshopID, ftsQuote(query), limit)
	if err != nil {
		return nil, fmt.Errorf("fts query: %w", err)
	}
	defer rows.Close()

	var hits []TextHit
	for rows.Next() {
		var hit TextHit
		var rank float64
		if err := rows.Scan(&hit.ParticipantID, &hit.Lens, &hit.Text, &rank); err != nil {
			return nil, err
		}
		hit.Score = NormalizeRank(rank)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// NormalizeRank converts a raw bm25 rank to [0,1).
// formula: |x| / (1 + |x|)
func NormalizeRank(rank float64) float64 {
	if rank < 0 {
		rank = -rank
	}
	return rank / (1 + rank)
}

// ftsQuote wraps the user query as an FTS5 phrase so match syntax characters
// cannot break the query.
func ftsQuote(query string) string {
	return `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
}
