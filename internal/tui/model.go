// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/verte-zerg/kanaquiz/internal/kana"
	"github.com/verte-zerg/kanaquiz/internal/model"
	"github.com/verte-zerg/kanaquiz/internal/quiz"
)

// Recorder persists finished sessions and reports past accuracy.
type Recorder interface {
	InsertSession(ctx context.Context, rec model.SessionRecord, kana []model.KanaStats) (string, error)
	AccuracySummary(ctx context.Context) (last, overall float64, ok bool, err error)
}

// Options configures a Model.
type Options struct {
	Engine *quiz.Engine
	Table  *kana.Table
	// Store may be nil; history is then kept for the running process only.
	Store     Recorder
	Logger    *zap.Logger
	Selection kana.Selection
}

type transitionDoneMsg struct {
	token uint64
}

// Model implements the Bubble Tea quiz UI.
type Model struct {
	engine *quiz.Engine
	table  *kana.Table
	store  Recorder
	logger *zap.Logger

	state   quiz.State
	summary quiz.Summary
	sel     selection
	focus   int

	keys    keyMap
	help    help.Model
	bar     progress.Model
	results table.Model

	width  int
	height int

	lastAcc      float64
	allAcc       float64
	hasLast      bool
	localCount   int
	localAccSum  float64
	historyError bool
}

// NewModel constructs a quiz TUI model on the selection screen.
func NewModel(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Table == nil {
		opts.Table = kana.Default()
	}
	if opts.Engine == nil {
		opts.Engine = quiz.NewEngine(quiz.Settings{}, quiz.WithLogger(opts.Logger))
	}
	m := &Model{
		engine: opts.Engine,
		table:  opts.Table,
		store:  opts.Store,
		logger: opts.Logger,
		sel:    newSelection(opts.Table, opts.Selection),
		keys:   defaultKeyMap(),
		help:   help.New(),
		bar: progress.New(
			progress.WithGradient("#8C6A2A", "#C89A3A"),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
		),
	}
	m.state = m.engine.Idle()
	m.loadFooterStats()
	return m
}

// State returns the current session state.
func (m *Model) State() quiz.State {
	return m.state
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case transitionDoneMsg:
		return m, m.dispatch(quiz.TransitionDone{Token: msg.token})
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.state.Stage {
		case quiz.StageIdle:
			return m, m.updateSelection(msg)
		case quiz.StageActive, quiz.StageTransitioning:
			return m, m.updateQuiz(msg)
		case quiz.StageCompleted:
			return m, m.updateCompleted(msg)
		}
	}
	return m, nil
}

func (m *Model) updateSelection(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case msg.String() == "shift+tab":
		m.sel.nextScript(m.table, -1)
	case key.Matches(msg, m.keys.Script):
		m.sel.nextScript(m.table, 1)
	case key.Matches(msg, m.keys.Up):
		m.sel.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.sel.move(1)
	case key.Matches(msg, m.keys.Toggle):
		m.sel.toggle()
	case key.Matches(msg, m.keys.All):
		m.sel.toggleAll()
	case key.Matches(msg, m.keys.Combos):
		m.sel.combinations = !m.sel.combinations
	case key.Matches(msg, m.keys.Start):
		return m.dispatch(quiz.Start{Pool: m.buildPool()})
	}
	return nil
}

func (m *Model) updateQuiz(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Choose):
		return m.dispatch(quiz.SelectChoiceByIndex{Index: int(msg.String()[0] - '0')})
	case key.Matches(msg, m.keys.Left):
		m.moveFocus(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveFocus(1)
	case key.Matches(msg, m.keys.Submit):
		if m.focus < len(m.state.Choices) {
			return m.dispatch(quiz.SelectChoice{Text: m.state.Choices[m.focus]})
		}
	case key.Matches(msg, m.keys.Restart):
		return m.dispatch(quiz.Restart{})
	case key.Matches(msg, m.keys.Selection):
		return m.dispatch(quiz.SwitchToSelection{})
	}
	return nil
}

func (m *Model) updateCompleted(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Retry):
		return m.dispatch(quiz.Restart{})
	case key.Matches(msg, m.keys.Home):
		return m.dispatch(quiz.SwitchToSelection{})
	}
	return nil
}

func (m *Model) moveFocus(delta int) {
	n := len(m.state.Choices)
	if n == 0 || m.state.Stage != quiz.StageActive {
		return
	}
	m.focus = (m.focus + delta + n) % n
}

// dispatch runs an intent through the engine and turns the effect into a command.
func (m *Model) dispatch(in quiz.Intent) tea.Cmd {
	prev := m.state
	next, eff := m.engine.Reduce(m.state, in)
	m.state = next
	if next.Current != prev.Current || next.Direction != prev.Direction || next.Stage != prev.Stage {
		m.focus = 0
	}
	m.focus = min(m.focus, max(len(next.Choices)-1, 0))

	switch eff := eff.(type) {
	case quiz.ScheduleTransition:
		token := eff.Token
		return tea.Tick(eff.Delay, func(time.Time) tea.Msg {
			return transitionDoneMsg{token: token}
		})
	case quiz.SessionCompleted:
		m.summary = eff.Summary
		m.recordSession()
	}
	return nil
}

func (m *Model) buildPool() quiz.Pool {
	req := m.sel.request()
	return quiz.Pool{
		Script:  req.Script,
		Groups:  req.Groups,
		Entries: m.table.Pool(req, m.logger),
		Backup:  m.table.Entries(req.Script),
	}
}

func (m *Model) recordSession() {
	s := m.state
	tally := quiz.Tally(s.Answers)
	m.results = newResultsTable(tally)

	acc := float64(m.summary.Accuracy)
	m.localCount++
	m.localAccSum += acc
	m.lastAcc = acc
	m.hasLast = true
	m.allAcc = m.localAccSum / float64(m.localCount)

	if m.store == nil {
		return
	}
	rec := model.SessionRecord{
		StartedAt:   s.StartedAt,
		EndedAt:     s.EndedAt,
		Script:      s.Pool.Script,
		Groups:      s.Pool.Groups,
		MaxProgress: s.MaxProgress,
		Choices:     m.engine.Settings().Choices,
		WrongCount:  s.WrongCount,
		Accuracy:    m.summary.Accuracy,
		DurationMs:  m.summary.Duration.Milliseconds(),
	}
	id, err := m.store.InsertSession(context.Background(), rec, tally)
	if err != nil {
		m.logger.Error("failed to save session", zap.Error(err))
		return
	}
	m.logger.Info("session recorded",
		zap.String("id", id),
		zap.String("script", rec.Script),
		zap.Int("accuracy", rec.Accuracy))
	m.loadFooterStats()
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	last, overall, ok, err := m.store.AccuracySummary(context.Background())
	if err != nil {
		m.logger.Error("failed to load session stats", zap.Error(err))
		m.historyError = true
		return
	}
	m.historyError = false
	if !ok {
		return
	}
	m.lastAcc = last
	m.allAcc = overall
	m.hasLast = true
}
