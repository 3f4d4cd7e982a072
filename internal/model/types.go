// Package model defines shared data structures.
package model

import "time"

// Mode selects how a practice session orders its words.
type Mode string

const (
	// ModeSequence keeps the catalog order and supports resume checkpoints.
	ModeSequence Mode = "sequence"
	// ModeRandom shuffles the session and never advances the resume checkpoint.
	ModeRandom Mode = "random"
)

// ParseMode validates a mode string, defaulting to sequence for empty input.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeSequence, "":
		return ModeSequence, true
	case ModeRandom:
		return ModeRandom, true
	default:
		return ModeSequence, false
	}
}

// Word is one catalog entry. Identity is the exact word string.
type Word struct {
	Word          string `json:"word"`
	Meaning       string `json:"meaning"`
	Pronunciation string `json:"pronunciation"`
	Syllables     string `json:"syllables"`
	PartOfSpeech  string `json:"partOfSpeech"`
	Example       string `json:"example"`
}

// PracticeWord annotates a Word with its Day and canonical catalog position.
// OrderIndex is stable across shuffles so resume checkpoints stay meaningful.
type PracticeWord struct {
	Word
	DayID      string
	OrderIndex int
}

// DayDescriptor describes one Day in the catalog manifest.
type DayDescriptor struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	CSV         string `json:"csv"`
	Total       int    `json:"total"`
	Description string `json:"description,omitempty"`
}

// DayStat is the persisted per-Day progress record.
type DayStat struct {
	Correct        int      `json:"correct"`
	Wrong          int      `json:"wrong"`
	LastIndex      int      `json:"lastIndex"`
	CompletedDates []string `json:"completedDates"`
	WrongSet       []string `json:"wrongSet"`
	ReviewCount    int      `json:"reviewCount"`
}

// HasWrong reports whether the word is currently flagged for review.
func (s DayStat) HasWrong(word string) bool {
	for _, w := range s.WrongSet {
		if w == word {
			return true
		}
	}
	return false
}

// GameSummary is the frozen scoreboard shown after a session ends.
type GameSummary struct {
	Score     int
	Accuracy  float64
	MaxStreak int
}

// Tuning holds the presentation-tuning constants for the evaluator.
// The values carry no stated rationale and are configurable, not invariants.
type Tuning struct {
	ScoreBase        int
	StreakBonus      int
	AdvanceDelay     time.Duration
	CountdownSeconds int
}

// DefaultTuning returns the stock scoring and timing parameters.
func DefaultTuning() Tuning {
	return Tuning{
		ScoreBase:        10,
		StreakBonus:      2,
		AdvanceDelay:     1200 * time.Millisecond,
		CountdownSeconds: 60,
	}
}

// Config defines practice settings resolved from flags and the config file.
type Config struct {
	DayID  string
	Mode   Mode
	Review bool
	Timer  bool
	Speech bool
	Word   string
	Tuning Tuning
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	DayID  string
	Window int
}
