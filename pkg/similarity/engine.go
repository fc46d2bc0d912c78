package similarity

import "github.com/JustKeepShipping/identitymap/pkg/models"

// Blend and lens weights are policy constants, not tuning knobs exposed at
// runtime. They are exported so a configuration surface can be layered on
// later without touching the algorithm.
const (
	// TagBlendWeight is the share of a lens score contributed by weighted
	// tag similarity.
	TagBlendWeight = 0.7
	// TextBlendWeight is the share contributed by free-text similarity.
	TextBlendWeight = 0.3

	// GivenLensWeight, ChosenLensWeight and CoreLensWeight set how much each
	// lens counts toward the overall score. Core identity counts most:
	// elements closer to self-concept matter more.
	GivenLensWeight  = 0.8
	ChosenLensWeight = 1.0
	CoreLensWeight   = 1.2
)

// lensWeightSum is the constant aggregation denominator.
const lensWeightSum = GivenLensWeight + ChosenLensWeight + CoreLensWeight

// LensWeight returns the aggregation weight for a lens.
func LensWeight(l models.Lens) float64 {
	switch l {
	case models.LensGiven:
		return GivenLensWeight
	case models.LensChosen:
		return ChosenLensWeight
	case models.LensCore:
		return CoreLensWeight
	}
	return 0
}

// LensScore blends weighted tag similarity and free-text similarity for one
// lens of two participants. When neither participant has any data for a
// component, the other component takes full weight; this keeps self-comparison
// at 1.0 for a tags-only or texts-only lens. An empty-vs-empty lens scores 0.
// Result is in [0,1] and symmetric in its arguments.
func LensScore(a, b models.LensData) float64 {
	mapA, mapB := a.WeightMap(), b.WeightMap()
	tokensA, tokensB := TokenizeAll(a.Texts), TokenizeAll(b.Texts)

	hasTags := len(mapA) > 0 || len(mapB) > 0
	hasText := len(tokensA) > 0 || len(tokensB) > 0

	switch {
	case !hasTags && !hasText:
		return 0.0
	case !hasText:
		return WeightedJaccard(mapA, mapB)
	case !hasTags:
		return TextJaccard(tokensA, tokensB)
	}
	return TagBlendWeight*WeightedJaccard(mapA, mapB) + TextBlendWeight*TextJaccard(tokensA, tokensB)
}

// Overall aggregates the three lens scores into one overall score using the
// fixed lens weights. Lens weights apply uniformly whether or not a lens has
// data: an empty lens contributes a 0 score at full weight. Treating empty
// lenses as "no data" is the caller's concern, not the engine's.
func Overall(scores map[models.Lens]float64) float64 {
	weighted := 0.0
	for _, l := range models.Lenses {
		weighted += scores[l] * LensWeight(l)
	}
	return weighted / lensWeightSum
}

// Compare scores two identities against each other. It is a pure function:
// deterministic, symmetric in its arguments, and it retains no references to
// either input. Safe for concurrent use.
func Compare(a, b models.Identity) models.SimilarityResult {
	scores := make(map[models.Lens]float64, len(models.Lenses))
	explanations := make(map[models.Lens]models.LensExplanation, len(models.Lenses))

	for _, l := range models.Lenses {
		da, db := a.Lens(l), b.Lens(l)
		scores[l] = LensScore(da, db)
		explanations[l] = ExplainLens(da.Tags, db.Tags)
	}

	return models.SimilarityResult{
		Scores:       scores,
		ScoreOverall: Overall(scores),
		Explanations: explanations,
	}
}
