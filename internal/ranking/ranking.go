// Package ranking computes all-pairs similarity rankings for a workshop.
// The similarity engine itself is pure; this layer owns loading identities,
// fanning comparisons out across pairs, and the null-vs-zero presentation
// rule for lenses where neither side has data.
package ranking

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/JustKeepShipping/identitymap/pkg/models"
	"github.com/JustKeepShipping/identitymap/pkg/similarity"
)

// maxConcurrentCompares bounds the identity-loading and comparison fan-out.
const maxConcurrentCompares = 8

// Scope selects which score a ranking sorts on.
type Scope string

const (
	// ScopeOverall ranks on the weighted overall score.
	ScopeOverall Scope = "overall"
)

// LensScope returns the scope selecting a single lens.
func LensScope(l models.Lens) Scope { return Scope(l) }

// ValidScope reports whether s is "overall" or a known lens.
func ValidScope(s Scope) bool {
	return s == ScopeOverall || models.ValidLens(models.Lens(s))
}

// Direction orders a ranking by similarity or dissimilarity.
type Direction string

const (
	// MostSimilar sorts descending on score.
	MostSimilar Direction = "most_similar"
	// MostDifferent sorts ascending on score; displayed dissimilarity is
	// 1 - score.
	MostDifferent Direction = "most_different"
)

// IdentityLoader supplies fully materialized identities. The ranker trusts
// that the loader only returns data its caller is authorized to see.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, participantID string) (models.Identity, error)
}

// Entry is one ranked participant.
type Entry struct {
	Participant *models.Participant     `json:"participant"`
	Result      models.SimilarityResult `json:"result"`
	// Score is the score the ranking was sorted on (per the request scope).
	Score float64 `json:"score"`
	// Dissimilarity is 1 - Score, for "most different" displays.
	Dissimilarity float64 `json:"dissimilarity"`
	// HasData is false when the requested scope has no data on either side:
	// for a lens scope, both participants are empty in that lens; for the
	// overall scope, both identities are entirely empty. Such entries carry
	// a numeric 0 score and should render as "unavailable", not as 0.
	HasData bool `json:"has_data"`
}

// Request describes one ranking computation.
type Request struct {
	SelfID    string
	Scope     Scope
	Direction Direction
	Limit     int
}

// Ranker ranks workshop participants against one requesting participant.
type Ranker struct {
	loader IdentityLoader
}

// New creates a Ranker on top of an identity loader.
func New(loader IdentityLoader) *Ranker {
	return &Ranker{loader: loader}
}

// Rank compares the requesting participant against every other participant
// in the roster and returns entries sorted per the request. Comparisons are
// independent, so they run concurrently with a bounded errgroup.
func (r *Ranker) Rank(ctx context.Context, req Request, roster []*models.Participant) ([]Entry, error) {
	if !ValidScope(req.Scope) {
		return nil, fmt.Errorf("invalid scope %q", req.Scope)
	}

	self, err := r.loader.LoadIdentity(ctx, req.SelfID)
	if err != nil {
		return nil, fmt.Errorf("load identity %s: %w", req.SelfID, err)
	}

	others := make([]*models.Participant, 0, len(roster))
	for _, p := range roster {
		if p.ID != req.SelfID {
			others = append(others, p)
		}
	}

	entries := make([]Entry, len(others))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCompares)

	for i, other := range others {
		i, other := i, other
		g.Go(func() error {
			identity, err := r.loader.LoadIdentity(gctx, other.ID)
			if err != nil {
				return fmt.Errorf("load identity %s: %w", other.ID, err)
			}
			entries[i] = newEntry(other, self, identity, req.Scope)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortEntries(entries, req.Direction)

	if req.Limit > 0 && len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}
	return entries, nil
}

func newEntry(other *models.Participant, self, identity models.Identity, scope Scope) Entry {
	result := similarity.Compare(self, identity)

	score := result.ScoreOverall
	hasData := !(self.Empty() && identity.Empty())
	if scope != ScopeOverall {
		lens := models.Lens(scope)
		score = result.Scores[lens]
		hasData = !(self.Lens(lens).Empty() && identity.Lens(lens).Empty())
	}

	return Entry{
		Participant:   other,
		Result:        result,
		Score:         score,
		Dissimilarity: 1 - score,
		HasData:       hasData,
	}
}

// sortEntries orders by score per direction; entries without data sink to
// the bottom either way, with display name as the final tie-break.
func sortEntries(entries []Entry, direction Direction) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.HasData != b.HasData {
			return a.HasData
		}
		if a.Score != b.Score {
			if direction == MostDifferent {
				return a.Score < b.Score
			}
			return a.Score > b.Score
		}
		return a.Participant.DisplayName < b.Participant.DisplayName
	})
}
