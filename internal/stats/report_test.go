package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/kanaquiz/internal/model"
	"github.com/verte-zerg/kanaquiz/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "kanaquiz.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		rec := model.SessionRecord{
			StartedAt:   start,
			EndedAt:     end,
			Script:      "hiragana",
			Groups:      []string{"a"},
			MaxProgress: 5,
			Choices:     5,
			WrongCount:  1,
			Accuracy:    90,
			DurationMs:  end.Sub(start).Milliseconds(),
		}
		kanaStats := []model.KanaStats{
			{Glyph: "あ", Romaji: "a", Correct: 5, Incorrect: 0},
			{Glyph: "い", Romaji: "i", Correct: 4, Incorrect: 1},
		}
		id, err := st.InsertSession(ctx, rec, kanaStats)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		Script: "hiragana",
		Last:   2,
		Window: 1,
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 1 || report.WindowSessionIDs[0] != ids[2] {
		t.Fatalf("unexpected window session ids: %v", report.WindowSessionIDs)
	}
	if len(report.KanaAll) != 2 || report.KanaAll[1].Correct != 8 {
		t.Fatalf("unexpected kana aggregates for all sessions: %+v", report.KanaAll)
	}
	if len(report.KanaWindow) != 2 || report.KanaWindow[1].Correct != 4 {
		t.Fatalf("unexpected kana aggregates for window: %+v", report.KanaWindow)
	}
}
