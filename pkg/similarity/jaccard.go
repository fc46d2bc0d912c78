package similarity

// WeightedJaccard computes weighted Jaccard similarity over two key-to-weight
// maps: the sum of per-key minimum weights divided by the sum of per-key
// maximums, with absent keys counting as weight 0. Returns 0 when both maps
// are empty. Symmetric by construction.
func WeightedJaccard(a, b map[string]int) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}

	numerator := 0
	denominator := 0
	for key, wa := range a {
		wb := b[key]
		numerator += minInt(wa, wb)
		denominator += maxInt(wa, wb)
	}
	for key, wb := range b {
		if _, seen := a[key]; seen {
			continue
		}
		denominator += wb
	}

	if denominator == 0 {
		return 0.0
	}
	return float64(numerator) / float64(denominator)
}

// TextJaccard computes unweighted Jaccard similarity between two token
// streams, deduplicating each side first. Returns 0 when both are empty.
func TextJaccard(tokensA, tokensB []string) float64 {
	setA := toSet(tokensA)
	setB := toSet(tokensB)

	if len(setA) == 0 && len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
