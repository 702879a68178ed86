package search

import (
	"slices"
)

// Ranker scores free-text candidates in two tiers: an exact substring hit scores 1, anything
// else scores its fuzzy name similarity. Candidates below both similarity thresholds without a
// hit are dropped.
type Ranker struct {
	NameThreshold        float64
	DescriptionThreshold float64
}

func (r Ranker) Match(query string) TextMatch {
	return NewTextMatch(query, r.NameThreshold, r.DescriptionThreshold)
}

// Rank admits, scores and orders candidates by descending score, ordering equal scores with
// then. Candidates must carry the similarities of their name and description to match.Query.
func (r Ranker) Rank(match TextMatch, candidates []*Result, then Comparator) []*Result {
	ranked := make([]*Result, 0, len(candidates))

	for _, candidate := range candidates {
		exactHit := match.ExactHit(candidate.Wine.Name, candidate.Wine.Description)
		if !match.Admits(exactHit, candidate.NameSimilarity, candidate.DescriptionSimilarity) {
			continue
		}

		candidate.Score = match.Score(exactHit, candidate.NameSimilarity)
		ranked = append(ranked, candidate)
	}

	slices.SortStableFunc(ranked, ByScore(then))

	return ranked
}
