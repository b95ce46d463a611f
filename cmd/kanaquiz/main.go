// Package main provides the CLI entrypoint for kanaquiz.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/kanaquiz/internal/config"
	"github.com/verte-zerg/kanaquiz/internal/kana"
	"github.com/verte-zerg/kanaquiz/internal/logger"
	"github.com/verte-zerg/kanaquiz/internal/model"
	"github.com/verte-zerg/kanaquiz/internal/quiz"
	"github.com/verte-zerg/kanaquiz/internal/stats"
	"github.com/verte-zerg/kanaquiz/internal/statsui"
	"github.com/verte-zerg/kanaquiz/internal/store"
	"github.com/verte-zerg/kanaquiz/internal/tui"
)

const (
	defaultScript       = kana.Hiragana
	defaultChoices      = quiz.DefaultChoices
	defaultMaxProgress  = quiz.DefaultMaxProgress
	defaultTransitionMs = 1000
	defaultStatsWindow  = 20
	defaultWeakTop      = 10
	defaultCurveKana    = 5
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"
)

var (
	quizScript       string
	quizGroups       []string
	quizCombinations bool
	quizChoices      int
	quizMaxProgress  int
	quizTransitionMs int
	tablePath        string

	groupsScript string

	statsScript string
	statsSince  string
	statsLast   int
	statsWindow int
	statsTop    int
	statsKana   []string
	statsPlain  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kanaquiz",
		Short:         "TUI hiragana and katakana flashcards",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runQuizCmd,
	}

	rootCmd.PersistentFlags().StringVar(&tablePath, "table", "", "custom kana table (JSON)")
	rootCmd.Flags().StringVar(&quizScript, "script", defaultScript, "script to practice (hiragana, katakana)")
	rootCmd.Flags().StringSliceVar(&quizGroups, "groups", nil, "groups to preselect, comma separated (default: all base groups)")
	rootCmd.Flags().BoolVar(&quizCombinations, "combinations", false, "include combination groups (kya, sha, ...)")
	rootCmd.Flags().IntVar(&quizChoices, "choices", defaultChoices, "answer choices per question (3-5)")
	rootCmd.Flags().IntVar(&quizMaxProgress, "max-progress", defaultMaxProgress, "correct answers needed per stage")
	rootCmd.Flags().IntVar(&quizTransitionMs, "transition-ms", defaultTransitionMs, "pause between stages in milliseconds")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newGroupsCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "script", &quizScript, fileCfg.Quiz.Script)
	applyStringSliceConfig(cmd, "groups", &quizGroups, fileCfg.Quiz.Groups)
	applyBoolConfig(cmd, "combinations", &quizCombinations, fileCfg.Quiz.Combinations)
	applyIntConfig(cmd, "choices", &quizChoices, fileCfg.Quiz.Choices)
	applyIntConfig(cmd, "max-progress", &quizMaxProgress, fileCfg.Quiz.MaxProgress)
	applyIntConfig(cmd, "transition-ms", &quizTransitionMs, fileCfg.Quiz.TransitionMs)
	applyStringConfig(cmd, "table", &tablePath, fileCfg.Quiz.Table)

	cfg := model.Config{
		Script:       strings.ToLower(strings.TrimSpace(quizScript)),
		Groups:       normalizeNames(quizGroups),
		Combinations: quizCombinations,
		Choices:      quizChoices,
		MaxProgress:  quizMaxProgress,
		TransitionMs: quizTransitionMs,
		TablePath:    tablePath,
	}

	table, err := loadTable(cfg.TablePath)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg, table); err != nil {
		return err
	}

	log, err := newLogger(fileCfg.Log)
	if err != nil {
		return err
	}
	defer func() {
		// Sync fails on some file descriptors; nothing to do about it on exit.
		_ = log.Sync()
	}()
	log.Info("starting quiz",
		zap.String("script", cfg.Script),
		zap.Strings("groups", cfg.Groups),
		zap.Int("choices", cfg.Choices),
		zap.Int("max_progress", cfg.MaxProgress))

	var recorder tui.Recorder
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logErrf("history disabled, failed to open db: %v\n", err)
		log.Error("failed to open db", zap.Error(err))
	} else {
		recorder = st
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	engine := quiz.NewEngine(quiz.Settings{
		MaxProgress:     cfg.MaxProgress,
		Choices:         cfg.Choices,
		TransitionDelay: time.Duration(cfg.TransitionMs) * time.Millisecond,
	}, quiz.WithLogger(log))

	m := tui.NewModel(tui.Options{
		Engine: engine,
		Table:  table,
		Store:  recorder,
		Logger: log,
		Selection: kana.Selection{
			Script:       cfg.Script,
			Groups:       cfg.Groups,
			Combinations: cfg.Combinations,
		},
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List kana groups",
		Args:  cobra.NoArgs,
		RunE:  runGroupsCmd,
	}
	cmd.Flags().StringVar(&groupsScript, "script", "", "script filter")
	return cmd
}

func runGroupsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "table", &tablePath, fileCfg.Quiz.Table)
	table, err := loadTable(tablePath)
	if err != nil {
		return err
	}
	scripts := table.ScriptNames()
	if groupsScript != "" {
		name := strings.ToLower(strings.TrimSpace(groupsScript))
		if !slices.Contains(scripts, name) {
			return fmt.Errorf("unknown script %q (available: %s)", groupsScript, strings.Join(scripts, ", "))
		}
		scripts = []string{name}
	}
	return writeGroups(cmd.OutOrStdout(), table, scripts)
}

func writeGroups(w io.Writer, table *kana.Table, scripts []string) error {
	for _, name := range scripts {
		script, _ := table.Script(name)
		lines := []string{name}
		for _, g := range script.Groups {
			lines = append(lines, "  "+groupLine(g))
		}
		if len(script.Combinations) > 0 {
			lines = append(lines, "  combinations:")
			for _, g := range script.Combinations {
				lines = append(lines, "    "+groupLine(g))
			}
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func groupLine(g kana.Group) string {
	glyphs := make([]string, 0, len(g.Entries))
	for _, e := range g.Entries {
		glyphs = append(glyphs, e.Glyph)
	}
	return fmt.Sprintf("%-5s %s", g.Name, strings.Join(glyphs, " "))
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsScript, "script", "", "script filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsWindow, "window", defaultStatsWindow, "moving average and per-kana window")
	cmd.Flags().IntVar(&statsTop, "top", defaultWeakTop, "number of weak kana to list")
	cmd.Flags().StringSliceVar(&statsKana, "kana", nil, "kana for per-kana curves, comma separated (default: most practiced)")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive browser")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 || statsWindow < 0 || statsTop < 0 {
		return fmt.Errorf("--last, --window and --top must be >= 0")
	}

	cfg := model.StatsConfig{
		Script: strings.ToLower(strings.TrimSpace(statsScript)),
		Since:  sinceTime,
		Last:   statsLast,
		Window: statsWindow,
		Top:    statsTop,
		Kana:   normalizeNames(statsKana),
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	out := cmd.OutOrStdout()
	if !statsPlain && isTerminal(out) {
		program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}

	ctx := context.Background()
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	glyphs := cfg.Kana
	if len(glyphs) == 0 {
		glyphs = stats.TopKanaByFrequency(report.KanaAll, defaultCurveKana)
	}
	ids := make([]string, len(report.Sessions))
	for i, s := range report.Sessions {
		ids[i] = s.SessionID
	}
	perSession, err := st.ListKanaStatsForSessions(ctx, ids, glyphs)
	if err != nil {
		return fmt.Errorf("failed to load kana curves: %w", err)
	}
	curves := kanaCurves{glyphs: glyphs, perSession: perSession}
	return renderReport(out, report, curves, cfg, stats.TerminalWidth(), stats.ShouldUseColor(out))
}

type kanaCurves struct {
	glyphs     []string
	perSession map[string]map[string]model.KanaStats
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func renderReport(w io.Writer, report stats.Report, curves kanaCurves, cfg model.StatsConfig, width int, useColor bool) error {
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderCurve(w, report.Sessions, cfg.Window, width, useColor); err != nil {
		return err
	}
	weak := stats.SelectWeakKana(report.KanaWindow, cfg.Top)
	if len(weak) > 0 {
		labels := make([]string, 0, len(weak))
		for _, agg := range weak {
			labels = append(labels, fmt.Sprintf("%s %s (%.0f%%)", agg.Glyph, agg.Romaji, stats.KanaAccuracy(agg)*100))
		}
		if _, err := fmt.Fprintf(w, "Weak kana: %s\n", strings.Join(labels, ", ")); err != nil {
			return err
		}
	}
	if top := stats.TopKanaByFrequency(report.KanaAll, defaultCurveKana); len(top) > 0 {
		if _, err := fmt.Fprintf(w, "Most practiced: %s\n\n", strings.Join(top, " ")); err != nil {
			return err
		}
	}
	if len(curves.glyphs) > 0 {
		if err := stats.RenderKanaCurves(w, report.Sessions, curves.perSession, curves.glyphs, cfg.Window, width, useColor); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	title := fmt.Sprintf("Per-Kana (last %d sessions)", len(report.WindowSessionIDs))
	return stats.RenderKanaTable(w, title, report.KanaWindow)
}

func loadTable(path string) (*kana.Table, error) {
	if path == "" {
		return kana.Default(), nil
	}
	table, err := kana.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load kana table: %w", err)
	}
	return table, nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	path := config.DefaultLogPath()
	if cfg.File != nil {
		path = *cfg.File
	}
	level := defaultLogLevel
	if cfg.Level != nil {
		level = *cfg.Level
	}
	format := defaultLogFormat
	if cfg.Format != nil {
		format = *cfg.Format
	}
	log, err := logger.New(path, level, format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringSliceConfig(cmd *cobra.Command, name string, target, value *[]string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# kanaquiz configuration
# Uncomment a value to enable it. CLI flags override config values.

[quiz]
# script = %q       # hiragana or katakana
# groups = ["a", "ka"]      # Groups to preselect (default: all base groups)
# combinations = false      # Include combination groups (kya, sha, ...)
# choices = %d               # Answer choices per question (3-5)
# max-progress = %d          # Correct answers needed per stage
# transition-ms = %d      # Pause between stages in milliseconds
# table = ""                # Custom kana table (JSON)

[log]
# level = %q          # debug, info, warn, error
# format = %q         # json or console
# file = %q
`,
		defaultScript,
		defaultChoices,
		defaultMaxProgress,
		defaultTransitionMs,
		defaultLogLevel,
		defaultLogFormat,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config, table *kana.Table) error {
	scripts := table.ScriptNames()
	if !slices.Contains(scripts, cfg.Script) {
		return fmt.Errorf("--script must be one of: %s", strings.Join(scripts, ", "))
	}
	base, combos := table.GroupNames(cfg.Script)
	for _, g := range cfg.Groups {
		if !slices.Contains(base, g) && !slices.Contains(combos, g) {
			return fmt.Errorf("unknown group %q for %s (run: kanaquiz groups --script %s)", g, cfg.Script, cfg.Script)
		}
	}
	if cfg.Choices < quiz.MinChoices || cfg.Choices > quiz.MaxChoices {
		return fmt.Errorf("--choices must be between %d and %d", quiz.MinChoices, quiz.MaxChoices)
	}
	if cfg.MaxProgress <= 0 {
		return fmt.Errorf("--max-progress must be > 0")
	}
	if cfg.TransitionMs < 0 {
		return fmt.Errorf("--transition-ms must be >= 0")
	}
	return nil
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
