package similarity

import (
	"sort"

	"github.com/JustKeepShipping/identitymap/pkg/models"
)

// topWeightCount caps how many tags ExplainLens surfaces as most heavily
// weighted.
const topWeightCount = 3

// ExplainLens builds the tag-level breakdown for one lens: which normalized
// tag keys the two sides share, which are unique to each side, and the most
// heavily weighted keys across both. Free text contributes no explanation
// detail. All slices are sorted for deterministic output; topWeights orders
// by max weight descending, then key ascending on ties.
func ExplainLens(tagsA, tagsB []models.TagItem) models.LensExplanation {
	mapA := models.LensData{Tags: tagsA}.WeightMap()
	mapB := models.LensData{Tags: tagsB}.WeightMap()

	exp := models.LensExplanation{
		OverlapTags: []string{},
		UniqueToA:   []string{},
		UniqueToB:   []string{},
		TopWeights:  []string{},
	}

	union := make([]string, 0, len(mapA)+len(mapB))
	for key := range mapA {
		union = append(union, key)
		if _, ok := mapB[key]; ok {
			exp.OverlapTags = append(exp.OverlapTags, key)
		} else {
			exp.UniqueToA = append(exp.UniqueToA, key)
		}
	}
	for key := range mapB {
		if _, ok := mapA[key]; !ok {
			union = append(union, key)
			exp.UniqueToB = append(exp.UniqueToB, key)
		}
	}

	sort.Strings(exp.OverlapTags)
	sort.Strings(exp.UniqueToA)
	sort.Strings(exp.UniqueToB)

	sort.Slice(union, func(i, j int) bool {
		wi := maxInt(mapA[union[i]], mapB[union[i]])
		wj := maxInt(mapA[union[j]], mapB[union[j]])
		if wi != wj {
			return wi > wj
		}
		return union[i] < union[j]
	})
	if len(union) > topWeightCount {
		union = union[:topWeightCount]
	}
	exp.TopWeights = append(exp.TopWeights, union...)

	return exp
}
