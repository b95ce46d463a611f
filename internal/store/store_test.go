package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/kanaquiz/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "kanaquiz.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return st
}

func record(script string, ended time.Time, wrong, acc int) model.SessionRecord {
	return model.SessionRecord{
		StartedAt:   ended.Add(-time.Minute),
		EndedAt:     ended,
		Script:      script,
		Groups:      []string{"a", "ka"},
		MaxProgress: 5,
		Choices:     5,
		WrongCount:  wrong,
		Accuracy:    acc,
		DurationMs:  60000,
	}
}

func TestInsertAndListSessions(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	first, err := st.InsertSession(ctx, record("hiragana", base, 0, 100), []model.KanaStats{
		{Glyph: "あ", Romaji: "a", Correct: 2},
		{Glyph: "か", Romaji: "ka", Correct: 1, Incorrect: 1},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first == "" {
		t.Fatalf("expected generated id")
	}
	second, err := st.InsertSession(ctx, record("katakana", base.Add(time.Hour), 2, 80), nil)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	third, err := st.InsertSession(ctx, record("hiragana", base.Add(2*time.Hour), 1, 90), []model.KanaStats{
		{Glyph: "か", Romaji: "ka", Incorrect: 2},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	all, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].SessionID != first || all[1].SessionID != second || all[2].SessionID != third {
		t.Fatalf("unexpected order: %+v", all)
	}
	if !all[0].EndedAt.Equal(base) || all[0].Accuracy != 100 || all[1].WrongCount != 2 {
		t.Fatalf("unexpected fields: %+v", all[0])
	}

	hira, err := st.ListSessions(ctx, model.StatsConfig{Script: "hiragana"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(hira) != 2 {
		t.Fatalf("expected 2 hiragana sessions, got %d", len(hira))
	}

	since := base.Add(30 * time.Minute)
	recent, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 sessions since, got %d", len(recent))
	}

	last, err := st.ListSessions(ctx, model.StatsConfig{Last: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(last) != 1 || last[0].SessionID != third {
		t.Fatalf("expected only the latest session, got %+v", last)
	}
}

func TestInsertSessionKeepsExplicitID(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	rec := record("hiragana", time.Now(), 0, 100)
	rec.ID = "fixed-id"
	id, err := st.InsertSession(ctx, rec, nil)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id != "fixed-id" {
		t.Fatalf("expected fixed-id, got %s", id)
	}
	if _, err := st.InsertSession(ctx, rec, nil); err == nil {
		t.Fatalf("expected duplicate id to fail")
	}
	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected rollback to leave one session, got %d", len(sessions))
	}
}

func TestListKanaAggregates(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	a, err := st.InsertSession(ctx, record("hiragana", base, 0, 100), []model.KanaStats{
		{Glyph: "あ", Romaji: "a", Correct: 2},
		{Glyph: "か", Romaji: "ka", Correct: 1, Incorrect: 1},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	b, err := st.InsertSession(ctx, record("hiragana", base.Add(time.Hour), 1, 90), []model.KanaStats{
		{Glyph: "か", Romaji: "ka", Correct: 3, Incorrect: 2},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	aggs, err := st.ListKanaAggregates(ctx, []string{a, b})
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("expected 2 glyphs, got %d", len(aggs))
	}
	got := map[string]model.KanaAggregate{}
	for _, agg := range aggs {
		got[agg.Glyph] = agg
	}
	if ka := got["か"]; ka.Correct != 4 || ka.Incorrect != 3 || ka.Romaji != "ka" {
		t.Fatalf("unexpected か aggregate: %+v", ka)
	}

	only, err := st.ListKanaAggregates(ctx, []string{b})
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	if len(only) != 1 || only[0].Glyph != "か" {
		t.Fatalf("unexpected aggregates: %+v", only)
	}

	empty, err := st.ListKanaAggregates(ctx, nil)
	if err != nil || empty != nil {
		t.Fatalf("expected nil for no sessions, got %v %v", empty, err)
	}
}

func TestListKanaStatsForSessions(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	a, err := st.InsertSession(ctx, record("hiragana", base, 1, 90), []model.KanaStats{
		{Glyph: "ぬ", Romaji: "nu", Correct: 1, Incorrect: 2},
		{Glyph: "め", Romaji: "me", Correct: 2},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	b, err := st.InsertSession(ctx, record("hiragana", base.Add(time.Hour), 0, 100), []model.KanaStats{
		{Glyph: "め", Romaji: "me", Correct: 3},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := st.ListKanaStatsForSessions(ctx, []string{a, b}, []string{"ぬ", "あ"})
	if err != nil {
		t.Fatalf("kana stats: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only session %s, got %+v", a, got)
	}
	if nu := got[a]["ぬ"]; nu.Correct != 1 || nu.Incorrect != 2 || nu.Romaji != "nu" {
		t.Fatalf("unexpected ぬ stats: %+v", nu)
	}

	both, err := st.ListKanaStatsForSessions(ctx, []string{a, b}, []string{"め"})
	if err != nil {
		t.Fatalf("kana stats: %v", err)
	}
	if both[a]["め"].Correct != 2 || both[b]["め"].Correct != 3 {
		t.Fatalf("unexpected め stats: %+v", both)
	}

	empty, err := st.ListKanaStatsForSessions(ctx, []string{a}, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result, got %v %v", empty, err)
	}
}

func TestAccuracySummary(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	if _, _, ok, err := st.AccuracySummary(ctx); err != nil || ok {
		t.Fatalf("expected empty history, got ok=%v err=%v", ok, err)
	}
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	if _, err := st.InsertSession(ctx, record("hiragana", base, 0, 100), nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := st.InsertSession(ctx, record("hiragana", base.Add(time.Hour), 4, 60), nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	last, overall, ok, err := st.AccuracySummary(ctx)
	if err != nil || !ok {
		t.Fatalf("summary: ok=%v err=%v", ok, err)
	}
	if last != 60 || overall != 80 {
		t.Fatalf("expected last=60 overall=80, got %v %v", last, overall)
	}
}
