// Package model defines shared data structures.
package model

import "time"

// Config defines quiz settings.
type Config struct {
	Script       string
	Groups       []string
	Combinations bool
	Choices      int
	MaxProgress  int
	TransitionMs int
	TablePath    string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Script string
	Since  *time.Time
	Last   int
	Window int
	Top    int
	// Kana selects glyphs for per-kana curves; empty picks the most practiced.
	Kana []string
}

// SessionRecord captures a completed quiz session.
type SessionRecord struct {
	ID          string
	StartedAt   time.Time
	EndedAt     time.Time
	Script      string
	Groups      []string
	MaxProgress int
	Choices     int
	WrongCount  int
	Accuracy    int
	DurationMs  int64
}

// KanaStats stores per-kana outcomes for a session.
type KanaStats struct {
	Glyph     string
	Romaji    string
	Correct   int
	Incorrect int
}

// KanaAggregate aggregates kana outcomes across sessions.
type KanaAggregate struct {
	Glyph     string
	Romaji    string
	Correct   int
	Incorrect int
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  string
	EndedAt    time.Time
	Script     string
	WrongCount int
	Accuracy   int
	DurationMs int64
}
