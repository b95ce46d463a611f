package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/kanaquiz/internal/model"
)

type fakeSource struct {
	sessions   []model.SessionAggregate
	aggs       []model.KanaAggregate
	perSession map[string]map[string]model.KanaStats
	err        error

	lastCfg    model.StatsConfig
	lastGlyphs []string
}

func (f *fakeSource) ListSessions(_ context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	f.lastCfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions, nil
}

func (f *fakeSource) ListKanaAggregates(context.Context, []string) ([]model.KanaAggregate, error) {
	return f.aggs, nil
}

func (f *fakeSource) ListKanaStatsForSessions(_ context.Context, _ []string, glyphs []string) (map[string]map[string]model.KanaStats, error) {
	f.lastGlyphs = glyphs
	return f.perSession, nil
}

func newFakeSource() *fakeSource {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return &fakeSource{
		sessions: []model.SessionAggregate{
			{SessionID: "s1", EndedAt: base, Script: "hiragana", WrongCount: 3, Accuracy: 70, DurationMs: 60000},
			{SessionID: "s2", EndedAt: base.Add(time.Hour), Script: "hiragana", WrongCount: 1, Accuracy: 90, DurationMs: 50000},
		},
		aggs: []model.KanaAggregate{
			{Glyph: "ぬ", Romaji: "nu", Correct: 2, Incorrect: 3},
			{Glyph: "あ", Romaji: "a", Correct: 6},
		},
		perSession: map[string]map[string]model.KanaStats{
			"s1": {"ぬ": {Glyph: "ぬ", Correct: 1, Incorrect: 2}},
			"s2": {"ぬ": {Glyph: "ぬ", Correct: 1, Incorrect: 1}},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(t *testing.T, m *Model) *Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(*Model)
}

func TestOverviewShowsSessionCards(t *testing.T) {
	m := sized(t, NewModel(newFakeSource(), model.StatsConfig{Window: 2}))
	view := m.View()
	for _, want := range []string{"Overview", "Sessions", "Avg Accuracy", "80.0%", "Best", "90%", "Learning Curve"} {
		if !strings.Contains(view, want) {
			t.Fatalf("overview missing %q:\n%s", want, view)
		}
	}
}

func TestKanaTableListsMostPracticedFirst(t *testing.T) {
	m := sized(t, NewModel(newFakeSource(), model.StatsConfig{}))
	m.Update(key("right"))
	if m.active != tabKanaTable {
		t.Fatalf("expected kana table tab, got %d", m.active)
	}
	rows := m.kanaTable.Rows()
	if len(rows) != 2 || rows[0][0] != "あ" || rows[1][0] != "ぬ" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[1][2] != "40.00%" || rows[1][5] != "5" {
		t.Fatalf("unexpected ぬ row: %v", rows[1])
	}
	if !strings.Contains(m.View(), "Romaji") {
		t.Fatalf("table header missing:\n%s", m.View())
	}
}

func TestCurvesDefaultToMostPracticedAndAcceptPicks(t *testing.T) {
	src := newFakeSource()
	m := sized(t, NewModel(src, model.StatsConfig{}))
	if strings.Join(m.glyphs, ",") != "あ,ぬ" {
		t.Fatalf("unexpected default glyphs: %v", m.glyphs)
	}

	m.Update(key("right"))
	m.Update(key("right"))
	if m.active != tabKanaCurves {
		t.Fatalf("expected curves tab, got %d", m.active)
	}
	if !strings.Contains(m.View(), "Kana Accuracy") {
		t.Fatalf("curves missing:\n%s", m.View())
	}

	m.Update(key("enter"))
	if !m.pickMode {
		t.Fatalf("expected kana picker")
	}
	m.picker.SetValue("ぬきゃ")
	m.Update(key("enter"))
	if m.pickMode || !m.glyphsCustom {
		t.Fatalf("expected custom selection applied")
	}
	if strings.Join(src.lastGlyphs, ",") != "ぬ,きゃ" {
		t.Fatalf("unexpected glyph query: %v", src.lastGlyphs)
	}

	m.Update(key("enter"))
	m.picker.SetValue("")
	m.Update(key("enter"))
	if m.glyphsCustom || strings.Join(m.glyphs, ",") != "あ,ぬ" {
		t.Fatalf("empty pick should restore defaults, got %v", m.glyphs)
	}
}

func TestFilterAppliesSettings(t *testing.T) {
	src := newFakeSource()
	m := sized(t, NewModel(src, model.StatsConfig{Window: 5, Top: 3}))
	m.Update(key("/"))
	if !m.filterMode {
		t.Fatalf("expected settings form")
	}

	m.inputs[1].SetValue("yesterday")
	m.Update(key("enter"))
	if !m.filterMode || !strings.Contains(m.filterError, "since") {
		t.Fatalf("expected since error, got %q", m.filterError)
	}

	m.inputs[0].SetValue(" Katakana ")
	m.inputs[1].SetValue("2026-02-01")
	m.inputs[2].SetValue("10")
	m.inputs[3].SetValue("3")
	m.Update(key("enter"))
	if m.filterMode {
		t.Fatalf("expected settings form closed, error %q", m.filterError)
	}
	cfg := src.lastCfg
	if cfg.Script != "katakana" || cfg.Since == nil || cfg.Last != 10 || cfg.Window != 3 || cfg.Top != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	m.Update(key("/"))
	m.Update(key("esc"))
	if m.filterMode || src.lastCfg.Window != 3 {
		t.Fatalf("esc should keep settings")
	}
}

func TestWindowKeys(t *testing.T) {
	src := newFakeSource()
	m := sized(t, NewModel(src, model.StatsConfig{Window: 5}))
	m.Update(key("="))
	if src.lastCfg.Window != 10 {
		t.Fatalf("expected window 10, got %d", src.lastCfg.Window)
	}
	m.Update(key("-"))
	m.Update(key("-"))
	if src.lastCfg.Window != 1 {
		t.Fatalf("expected window 1, got %d", src.lastCfg.Window)
	}
}

func TestLoadErrorIsShown(t *testing.T) {
	src := newFakeSource()
	src.err = errors.New("database is locked")
	m := sized(t, NewModel(src, model.StatsConfig{}))
	view := m.View()
	if !strings.Contains(view, "Failed to load stats.") || !strings.Contains(view, "database is locked") {
		t.Fatalf("expected load error:\n%s", view)
	}
}

func TestSplitGlyphs(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"ぬめ", "ぬ|め"},
		{"きゃ, しゅ ちょ", "きゃ|しゅ|ちょ"},
		{"ャシャ", "ャ|シャ"},
		{"ぬ、ね", "ぬ|ね"},
	}
	for _, tt := range tests {
		if got := strings.Join(splitGlyphs(tt.in), "|"); got != tt.want {
			t.Errorf("splitGlyphs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWindowSteps(t *testing.T) {
	if got := nextWindow(1); got != 5 {
		t.Fatalf("nextWindow(1) = %d", got)
	}
	if got := nextWindow(7); got != 10 {
		t.Fatalf("nextWindow(7) = %d", got)
	}
	if got := prevWindow(7); got != 5 {
		t.Fatalf("prevWindow(7) = %d", got)
	}
	if got := prevWindow(5); got != 1 {
		t.Fatalf("prevWindow(5) = %d", got)
	}
}
