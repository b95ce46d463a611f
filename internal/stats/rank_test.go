package stats

import (
	"testing"

	"github.com/verte-zerg/kanaquiz/internal/model"
)

func TestTopKanaByFrequency(t *testing.T) {
	aggs := []model.KanaAggregate{
		{Glyph: "か", Correct: 3, Incorrect: 1},
		{Glyph: "あ", Correct: 2, Incorrect: 2},
		{Glyph: "さ", Correct: 1, Incorrect: 0},
	}
	top := TopKanaByFrequency(aggs, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 kana, got %d", len(top))
	}
	if top[0] != "あ" || top[1] != "か" {
		t.Fatalf("unexpected order: %v", top)
	}
	if got := TopKanaByFrequency(aggs, 0); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
}

func TestSelectWeakKana(t *testing.T) {
	aggs := []model.KanaAggregate{
		{Glyph: "あ", Romaji: "a", Correct: 5},
		{Glyph: "ぬ", Romaji: "nu", Correct: 1, Incorrect: 3},
		{Glyph: "め", Romaji: "me", Correct: 3, Incorrect: 1},
		{Glyph: "ね", Romaji: "ne", Correct: 1, Incorrect: 1},
		{Glyph: "れ", Romaji: "re", Correct: 2, Incorrect: 2},
	}
	weak := SelectWeakKana(aggs, 3)
	if len(weak) != 3 {
		t.Fatalf("expected 3 weak kana, got %d", len(weak))
	}
	want := []string{"ぬ", "れ", "ね"}
	for i, g := range want {
		if weak[i].Glyph != g {
			t.Fatalf("position %d: expected %s, got %s (%+v)", i, g, weak[i].Glyph, weak)
		}
	}
	if all := SelectWeakKana(aggs, 0); len(all) != 4 {
		t.Fatalf("expected every missed kana, got %d", len(all))
	}
}

func TestRankingLeavesInputAlone(t *testing.T) {
	aggs := []model.KanaAggregate{
		{Glyph: "さ", Correct: 4},
		{Glyph: "ぬ", Correct: 1, Incorrect: 3},
		{Glyph: "ろ"},
	}
	if top := TopKanaByFrequency(aggs, 5); len(top) != 2 || top[0] != "さ" || top[1] != "ぬ" {
		t.Fatalf("unexpected frequency ranking: %v", top)
	}
	if weak := SelectWeakKana(aggs, 5); len(weak) != 1 || weak[0].Glyph != "ぬ" {
		t.Fatalf("unexpected weak kana: %+v", weak)
	}
	if aggs[0].Glyph != "さ" || aggs[1].Glyph != "ぬ" || aggs[2].Glyph != "ろ" {
		t.Fatalf("input was reordered: %+v", aggs)
	}
}

func TestMostPracticedKeepsAllWhenUnbounded(t *testing.T) {
	aggs := []model.KanaAggregate{
		{Glyph: "め", Correct: 1},
		{Glyph: "ぬ", Correct: 2, Incorrect: 2},
		{Glyph: "ろ"},
	}
	got := MostPracticed(aggs, 0)
	if len(got) != 2 || got[0].Glyph != "ぬ" || got[1].Glyph != "め" {
		t.Fatalf("unexpected ranking: %+v", got)
	}
}
