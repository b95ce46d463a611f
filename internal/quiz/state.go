// Package quiz implements the kana quiz session engine.
//
// A session is a State value. Every input goes through Engine.Reduce, which returns the
// next State and, optionally, an Effect the caller has to carry out (scheduling the
// transition beat, recording a finished session). States are never mutated in place, so a
// renderer can hold on to an old State safely.
package quiz

import (
	"math"
	"time"

	"github.com/verte-zerg/kanaquiz/internal/kana"
)

// Pool is the set of entries a session draws questions from.
type Pool struct {
	Script string
	Groups []string
	// Entries is the question pool.
	Entries []kana.Entry
	// Backup tops up distractors when Entries is too small, usually the whole script.
	Backup []kana.Entry
}

// AnswerRecord is one evaluated answer.
type AnswerRecord struct {
	Entry     kana.Entry
	Direction Direction
	Correct   bool
}

// State is a quiz session snapshot.
type State struct {
	Pool Pool

	Current  kana.Entry
	Previous kana.Entry
	Choices  []string

	Progress    int
	MaxProgress int
	Direction   Direction
	WrongCount  int
	Stage       Stage

	// WrongChoice is the last wrong pick for the current question, empty otherwise.
	WrongChoice string

	// PendingTransition is the token of the scheduled transition, 0 when none.
	PendingTransition uint64

	StartedAt time.Time
	EndedAt   time.Time

	Answers []AnswerRecord

	wrongMarked   bool
	transitionSeq uint64
}

// Prompt returns the text shown for the current question.
func (s State) Prompt() string {
	if s.Current.IsZero() {
		return ""
	}
	return s.Direction.Prompt(s.Current)
}

// CorrectAnswer returns the expected choice for the current question.
func (s State) CorrectAnswer() string {
	if s.Current.IsZero() {
		return ""
	}
	return s.Direction.Answer(s.Current)
}

// TotalQuestions is one full stage per direction.
func (s State) TotalQuestions() int {
	return s.MaxProgress * 2
}

// ComputeAccuracy returns round(100 * (total - wrong) / total). It is not clamped: enough
// wrong answers push it below zero.
func ComputeAccuracy(s State) int {
	total := s.TotalQuestions()
	if total <= 0 {
		return 0
	}
	correct := total - s.WrongCount
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// Summary is what the completion screen shows.
type Summary struct {
	TotalQuestions int
	Correct        int
	Wrong          int
	Accuracy       int
	Duration       time.Duration
}

// Summarize builds the completion summary of a session.
func Summarize(s State) Summary {
	total := s.TotalQuestions()
	var d time.Duration
	if !s.StartedAt.IsZero() && !s.EndedAt.IsZero() {
		d = s.EndedAt.Sub(s.StartedAt)
	}
	return Summary{
		TotalQuestions: total,
		Correct:        total - s.WrongCount,
		Wrong:          s.WrongCount,
		Accuracy:       ComputeAccuracy(s),
		Duration:       d,
	}
}
