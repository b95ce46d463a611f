package quiz

import (
	"fmt"

	"github.com/verte-zerg/kanaquiz/internal/kana"
)

// Direction determines which field of an entry is the prompt and which is the answer.
type Direction int

const (
	RomajiToKana Direction = iota // Prompt is the romanization, answer is the glyph.
	KanaToRomaji                  // Prompt is the glyph, answer is the romanization.
)

// String returns "romaji-to-kana" or "kana-to-romaji".
func (d Direction) String() string {
	switch d {
	case RomajiToKana:
		return "romaji-to-kana"
	case KanaToRomaji:
		return "kana-to-romaji"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Prompt returns the field shown to the learner.
func (d Direction) Prompt(e kana.Entry) string {
	if d == KanaToRomaji {
		return e.Glyph
	}
	return e.Romanization
}

// Answer returns the field the learner has to pick.
func (d Direction) Answer(e kana.Entry) string {
	if d == KanaToRomaji {
		return e.Romanization
	}
	return e.Glyph
}

// Stage is the lifecycle position of a session.
type Stage int

const (
	StageIdle          Stage = iota // Selection screen, no question.
	StageActive                     // Serving questions.
	StageTransitioning              // Pause between the two directions.
	StageCompleted                  // Both directions done.
)

var stageNames = [...]string{
	StageIdle:          "Idle",
	StageActive:        "Active",
	StageTransitioning: "Transitioning",
	StageCompleted:     "Completed",
}

// String returns the stage name, or "Stage(n)" for unknown values.
func (s Stage) String() string {
	if s >= StageIdle && s <= StageCompleted {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}
