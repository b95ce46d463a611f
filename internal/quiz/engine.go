package quiz

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/kanaquiz/internal/generator"
	"github.com/verte-zerg/kanaquiz/internal/kana"
)

// Defaults for Settings.
const (
	DefaultMaxProgress     = 5
	DefaultChoices         = 5
	DefaultTransitionDelay = time.Second

	MinChoices = 3
	MaxChoices = 5
)

// Settings are fixed for the lifetime of an Engine.
type Settings struct {
	MaxProgress int
	Choices     int
	// TransitionDelay is the pause after the first stage. Zero switches directions
	// without a Transitioning stage.
	TransitionDelay time.Duration
}

// Engine holds the collaborators of the transition functions. It keeps no session data.
type Engine struct {
	settings Settings
	gen      *generator.Generator
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithGenerator sets the question generator.
func WithGenerator(gen *generator.Generator) Option {
	return func(e *Engine) { e.gen = gen }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithClock sets the time source used for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an Engine. Out-of-range settings are replaced by defaults or clamped.
func NewEngine(settings Settings, opts ...Option) *Engine {
	if settings.MaxProgress <= 0 {
		settings.MaxProgress = DefaultMaxProgress
	}
	if settings.Choices == 0 {
		settings.Choices = DefaultChoices
	}
	settings.Choices = min(max(settings.Choices, MinChoices), MaxChoices)
	if settings.TransitionDelay < 0 {
		settings.TransitionDelay = 0
	}
	e := &Engine{
		settings: settings,
		gen:      generator.New(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Settings returns the effective settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Idle returns the state of the selection screen.
func (e *Engine) Idle() State {
	return State{MaxProgress: e.settings.MaxProgress, Stage: StageIdle}
}

// NewSession starts a session over pool.
func (e *Engine) NewSession(pool Pool) State {
	s := e.Idle()
	s.Pool = pool
	return e.ResetSession(s)
}

// GenerateQuestion replaces the current question. The new entry differs from the old one
// by romanization unless the pool offers nothing else.
func (e *Engine) GenerateQuestion(s State) State {
	entries := s.Pool.Entries
	if len(entries) == 0 {
		e.logger.Warn("question pool is empty, using fallback entry",
			zap.String("script", s.Pool.Script),
			zap.Strings("groups", s.Pool.Groups))
		entries = []kana.Entry{kana.Fallback(s.Pool.Script)}
	}

	next := e.gen.Pick(entries, s.Current)
	if next.IsZero() {
		next = kana.Fallback(s.Pool.Script)
	}
	s.Previous = s.Current
	s.Current = next
	s.Choices = e.gen.Choices(generator.ChoiceRequest{
		Correct:    next,
		Answer:     s.Direction.Answer,
		Count:      e.settings.Choices,
		Confusable: kana.ConfusableSet(s.Pool.Script, next.Romanization),
		Pool:       entries,
		Backup:     s.Pool.Backup,
		Reserve:    kana.FallbackEntries(s.Pool.Script),
	})
	s.wrongMarked = false
	s.WrongChoice = ""
	return s
}

// EvaluateAnswer scores a pick for the current question. It is a no-op for an empty pick,
// when there is no question, when the stage is full, or outside StageActive.
//
// A correct pick advances progress; filling the first stage flips the direction, filling
// the second completes the session. A wrong pick counts once per question, steps progress
// back and keeps the question.
func (e *Engine) EvaluateAnswer(s State, choice string) (State, Effect) {
	if choice == "" || s.Current.IsZero() || s.Stage != StageActive || s.Progress >= s.MaxProgress {
		return s, nil
	}

	correct := choice == s.Direction.Answer(s.Current)
	s.Answers = append(slices.Clip(s.Answers), AnswerRecord{
		Entry:     s.Current,
		Direction: s.Direction,
		Correct:   correct,
	})

	if !correct {
		if !s.wrongMarked {
			s.WrongCount++
			s.wrongMarked = true
		}
		s.WrongChoice = choice
		s.Progress = max(s.Progress-1, 0)
		return s, nil
	}

	s.Progress = min(s.Progress+1, s.MaxProgress)
	if s.Progress < s.MaxProgress {
		return e.GenerateQuestion(s), nil
	}
	return e.advanceStage(s)
}

func (e *Engine) advanceStage(s State) (State, Effect) {
	if s.Direction == KanaToRomaji {
		s.Stage = StageCompleted
		s.EndedAt = e.now()
		s.WrongChoice = ""
		e.logger.Debug("session completed",
			zap.Int("wrong", s.WrongCount),
			zap.Int("accuracy", ComputeAccuracy(s)))
		return s, SessionCompleted{Summary: Summarize(s)}
	}

	s.Direction = KanaToRomaji
	s.Progress = 0
	if e.settings.TransitionDelay <= 0 {
		return e.GenerateQuestion(s), nil
	}
	s.transitionSeq++
	s.PendingTransition = s.transitionSeq
	s.Stage = StageTransitioning
	s.WrongChoice = ""
	e.logger.Debug("stage transition scheduled",
		zap.Uint64("token", s.PendingTransition),
		zap.Duration("delay", e.settings.TransitionDelay))
	return s, ScheduleTransition{Token: s.PendingTransition, Delay: e.settings.TransitionDelay}
}

// CompleteTransition ends the transition pause identified by token. Tokens that are stale
// or unknown are ignored.
func (e *Engine) CompleteTransition(s State, token uint64) State {
	if s.Stage != StageTransitioning || token == 0 || token != s.PendingTransition {
		return s
	}
	s.PendingTransition = 0
	s.Stage = StageActive
	return e.GenerateQuestion(s)
}

// ResetSession restarts the session over the same pool and cancels any pending transition.
func (e *Engine) ResetSession(s State) State {
	s.Progress = 0
	s.MaxProgress = e.settings.MaxProgress
	s.WrongCount = 0
	s.Stage = StageActive
	s.Direction = RomajiToKana
	s.PendingTransition = 0
	s.Answers = nil
	s.StartedAt = e.now()
	s.EndedAt = time.Time{}
	return e.GenerateQuestion(s)
}

// SwitchToSelection drops the session and returns to the selection screen. The pool is
// kept so the selection screen can show what was played last.
func (e *Engine) SwitchToSelection(s State) State {
	idle := e.Idle()
	idle.Pool = s.Pool
	idle.transitionSeq = s.transitionSeq
	return idle
}
