package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/kanaquiz/internal/config"
	"github.com/verte-zerg/kanaquiz/internal/kana"
	"github.com/verte-zerg/kanaquiz/internal/model"
	"github.com/verte-zerg/kanaquiz/internal/stats"
)

func validCfg() model.Config {
	return model.Config{
		Script:       kana.Hiragana,
		Groups:       []string{"a", "kya"},
		Choices:      5,
		MaxProgress:  5,
		TransitionMs: 1000,
	}
}

func TestValidateConfig(t *testing.T) {
	table := kana.Default()
	if err := validateConfig(validCfg(), table); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*model.Config)
		want   string
	}{
		{"script", func(c *model.Config) { c.Script = "kanji" }, "--script"},
		{"group", func(c *model.Config) { c.Groups = []string{"xa"} }, "unknown group"},
		{"choices low", func(c *model.Config) { c.Choices = 2 }, "--choices"},
		{"choices high", func(c *model.Config) { c.Choices = 6 }, "--choices"},
		{"progress", func(c *model.Config) { c.MaxProgress = 0 }, "--max-progress"},
		{"transition", func(c *model.Config) { c.TransitionMs = -1 }, "--transition-ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validCfg()
			tt.mutate(&cfg)
			err := validateConfig(cfg, table)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestApplyConfigRespectsFlags(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Set("choices", "3"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	choices, progress := quizChoices, quizMaxProgress
	fileChoices, fileProgress := 4, 9
	applyIntConfig(cmd, "choices", &choices, &fileChoices)
	applyIntConfig(cmd, "max-progress", &progress, &fileProgress)
	if choices != 3 {
		t.Fatalf("flag value should win, got %d", choices)
	}
	if progress != 9 {
		t.Fatalf("config value should apply, got %d", progress)
	}

	groups := []string{"a"}
	applyStringSliceConfig(cmd, "groups", &groups, &[]string{"ka", "sa"})
	if strings.Join(groups, ",") != "ka,sa" {
		t.Fatalf("unexpected groups %v", groups)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	md, err := toml.Decode(defaultConfigTemplate(), &cfg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(md.Keys()) != 2 {
		t.Fatalf("expected only the two section headers, got %v", md.Keys())
	}
}

func TestWriteGroups(t *testing.T) {
	var buf bytes.Buffer
	if err := writeGroups(&buf, kana.Default(), []string{kana.Katakana}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"katakana", "ka    カ キ ク ケ コ", "combinations:", "kya   キャ キュ キョ"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hiragana") {
		t.Fatalf("unexpected hiragana in output")
	}
}

func TestRenderReport(t *testing.T) {
	report := stats.Report{
		Sessions: []model.SessionAggregate{
			{SessionID: "a", Accuracy: 80, WrongCount: 2, DurationMs: 30000},
			{SessionID: "b", Accuracy: 100, DurationMs: 20000},
		},
		WindowSessionIDs: []string{"a", "b"},
		KanaAll: []model.KanaAggregate{
			{Glyph: "ぬ", Romaji: "nu", Correct: 1, Incorrect: 2},
			{Glyph: "め", Romaji: "me", Correct: 4},
		},
	}
	report.KanaWindow = report.KanaAll
	var buf bytes.Buffer
	cfg := model.StatsConfig{Window: 2, Top: 3}
	curves := kanaCurves{
		glyphs: []string{"ぬ"},
		perSession: map[string]map[string]model.KanaStats{
			"a": {"ぬ": {Glyph: "ぬ", Correct: 1, Incorrect: 1}},
			"b": {"ぬ": {Glyph: "ぬ", Incorrect: 1}},
		},
	}
	if err := renderReport(&buf, report, curves, cfg, 60, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Learning Curve", "Weak kana: ぬ nu (33%)", "Most practiced: め ぬ", "Kana Accuracy (window 2)", "Per-Kana (last 2 sessions)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestGroupsUsesConfiguredTable(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Cleanup(func() { tablePath, groupsScript = "", "" })

	custom := filepath.Join(dir, "custom.json")
	data := `{"scripts": [{"name": "hiragana", "groups": [
		{"name": "vowels", "entries": [{"kana": "あ", "romaji": "a"}, {"kana": "い", "romaji": "i"}]}
	]}]}`
	if err := os.WriteFile(custom, []byte(data), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}
	cfgPath := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfgText := "[quiz]\ntable = " + strconv.Quote(custom) + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfgText), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"groups"})
	if err := root.Execute(); err != nil {
		t.Fatalf("groups: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "vowels") || strings.Contains(got, "katakana") {
		t.Fatalf("expected the configured table, got:\n%s", got)
	}

	tablePath = ""
	root = newRootCmd()
	out.Reset()
	root.SetOut(&out)
	root.SetArgs([]string{"groups", "--table", ""})
	if err := root.Execute(); err != nil {
		t.Fatalf("groups: %v", err)
	}
	if !strings.Contains(out.String(), "katakana") {
		t.Fatalf("--table flag should override the config file, got:\n%s", out.String())
	}
}
