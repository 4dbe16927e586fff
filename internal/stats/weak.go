package stats

import "github.com/verte-zerg/warmup/internal/model"

// SelectWeakDigits selects the lowest-accuracy digits from aggregates.
// Digits that were never wrong are not weak.
func SelectWeakDigits(aggs []model.DigitAggregate, top int) map[int]struct{} {
	weakSet := map[int]struct{}{}
	candidates := make([]model.DigitAggregate, 0, len(aggs))
	for _, agg := range SortByAccuracy(aggs) {
		if agg.Incorrect == 0 {
			continue
		}
		candidates = append(candidates, agg)
	}
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for i := 0; i < top; i++ {
		weakSet[candidates[i].Digit] = struct{}{}
	}
	return weakSet
}
