// Package models contains domain models for identitymap.
package models

// LensExplanation describes why a lens scored the way it did. All entries
// are normalized tag keys (lowercase, trimmed), deduplicated and sorted.
// Free text contributes to the score but not to the explanation.
type LensExplanation struct {
	OverlapTags []string `json:"overlapTags"`
	UniqueToA   []string `json:"uniqueToA"`
	UniqueToB   []string `json:"uniqueToB"`
	TopWeights  []string `json:"topWeights"`
}

// SimilarityResult is the full outcome of comparing two identities.
// Every score is in [0,1]. The engine reports an empty-vs-empty lens as a
// numeric 0; the "no data" distinction is the caller's concern.
type SimilarityResult struct {
	Scores       map[Lens]float64        `json:"scores"`
	ScoreOverall float64                 `json:"scoreOverall"`
	Explanations map[Lens]LensExplanation `json:"explanations"`
}
