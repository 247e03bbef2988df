package pipeline

import "sort"

func stringSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}

// setIntersection returns a sorted slice of keys present in both sets.
// Sorted so page output is deterministic across runs.
func setIntersection(a, b map[string]bool) []string {
	out := []string{}
	for k := range a {
		if b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// setDifference returns a sorted slice of keys in a but not in b.
func setDifference(a, b map[string]bool) []string {
	out := []string{}
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// similarityScore is |intersection| / max(|a|, |b|, 1).
func similarityScore(common, aLen, bLen int) float64 {
	denom := aLen
	if bLen > denom {
		denom = bLen
	}
	if denom < 1 {
		denom = 1
	}
	return float64(common) / float64(denom)
}
