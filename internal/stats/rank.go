package stats

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/verte-zerg/kanaquiz/internal/model"
)

func attempts(agg model.KanaAggregate) int {
	return agg.Correct + agg.Incorrect
}

// byAccuracy orders lowest accuracy first, ties by more attempts then glyph.
func byAccuracy(a, b model.KanaAggregate) int {
	return cmp.Or(
		cmp.Compare(KanaAccuracy(a), KanaAccuracy(b)),
		cmp.Compare(attempts(b), attempts(a)),
		cmp.Compare(a.Glyph, b.Glyph),
	)
}

// byAttempts orders most answered first, ties by glyph.
func byAttempts(a, b model.KanaAggregate) int {
	return cmp.Or(
		cmp.Compare(attempts(b), attempts(a)),
		cmp.Compare(a.Glyph, b.Glyph),
	)
}

func sortByAccuracy(aggs []model.KanaAggregate) {
	slices.SortStableFunc(aggs, byAccuracy)
}

// rankKana returns the kana accepted by keep, ordered by order and cut to the first n.
// n <= 0 keeps all of them. aggs is not modified.
func rankKana(aggs []model.KanaAggregate, n int, keep func(model.KanaAggregate) bool, order func(a, b model.KanaAggregate) int) []model.KanaAggregate {
	ranked := lo.Filter(aggs, func(agg model.KanaAggregate, _ int) bool { return keep(agg) })
	slices.SortStableFunc(ranked, order)
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// SelectWeakKana returns the top lowest-accuracy kana that were answered wrong at least
// once. top <= 0 returns all of them.
func SelectWeakKana(aggs []model.KanaAggregate, top int) []model.KanaAggregate {
	return rankKana(aggs, top, func(agg model.KanaAggregate) bool { return agg.Incorrect > 0 }, byAccuracy)
}

// MostPracticed returns the n most answered kana, most attempts first. n <= 0 returns all
// answered kana.
func MostPracticed(aggs []model.KanaAggregate, n int) []model.KanaAggregate {
	return rankKana(aggs, n, func(agg model.KanaAggregate) bool { return attempts(agg) > 0 }, byAttempts)
}

// TopKanaByFrequency returns the glyphs of the n most answered kana.
func TopKanaByFrequency(aggs []model.KanaAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	return lo.Map(MostPracticed(aggs, n), func(agg model.KanaAggregate, _ int) string { return agg.Glyph })
}
