package quiz

import "time"

// Intent is an input from the rendering layer.
type Intent interface {
	isIntent()
}

// SelectChoice picks a choice by its text.
type SelectChoice struct {
	Text string
}

// SelectChoiceByIndex picks the Nth rendered choice, 1-based. Keyboard shortcuts use it.
type SelectChoiceByIndex struct {
	Index int
}

// Restart starts the current session over.
type Restart struct{}

// SwitchToSelection returns to the selection screen.
type SwitchToSelection struct{}

// Start begins a session over a freshly selected pool.
type Start struct {
	Pool Pool
}

// TransitionDone reports that the scheduled transition pause elapsed.
type TransitionDone struct {
	Token uint64
}

func (SelectChoice) isIntent()        {}
func (SelectChoiceByIndex) isIntent() {}
func (Restart) isIntent()             {}
func (SwitchToSelection) isIntent()   {}
func (Start) isIntent()               {}
func (TransitionDone) isIntent()      {}

// Effect is work the caller performs after a transition. A nil Effect means none.
type Effect interface {
	isEffect()
}

// ScheduleTransition asks the caller to send TransitionDone{Token} after Delay.
type ScheduleTransition struct {
	Token uint64
	Delay time.Duration
}

// SessionCompleted reports a finished session.
type SessionCompleted struct {
	Summary Summary
}

func (ScheduleTransition) isEffect() {}
func (SessionCompleted) isEffect()   {}

// Reduce applies an intent to a state. It is the single entry point for every input.
func (e *Engine) Reduce(s State, intent Intent) (State, Effect) {
	switch in := intent.(type) {
	case SelectChoice:
		return e.EvaluateAnswer(s, in.Text)
	case SelectChoiceByIndex:
		if in.Index < 1 || in.Index > len(s.Choices) {
			return s, nil
		}
		return e.EvaluateAnswer(s, s.Choices[in.Index-1])
	case Restart:
		if s.Stage == StageIdle {
			return s, nil
		}
		return e.ResetSession(s), nil
	case SwitchToSelection:
		return e.SwitchToSelection(s), nil
	case Start:
		s.Pool = in.Pool
		return e.ResetSession(s), nil
	case TransitionDone:
		return e.CompleteTransition(s, in.Token), nil
	default:
		return s, nil
	}
}
