package domain

import (
	"strings"
	"time"
)

// Difficulty selects the word pair tier
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known tier
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// WordPair is the agents' main word and the imposter's look-alike word.
type WordPair struct {
	Main     string `json:"main"`
	Imposter string `json:"imposter"`
}

// Valid reports whether both words are present and distinct
func (w WordPair) Valid() bool {
	m := strings.TrimSpace(w.Main)
	i := strings.TrimSpace(w.Imposter)
	return m != "" && i != "" && !strings.EqualFold(m, i)
}

// Settings bounds
const (
	MinTotalRounds     = 1
	MaxTotalRounds     = 20
	MinResponseSeconds = 10
	MaxResponseSeconds = 180
	MinVotingSeconds   = 10
	MaxVotingSeconds   = 120
	MaxCustomWordPairs = 100
)

// Settings holds the per-room game parameters negotiated in the lobby
type Settings struct {
	Difficulty          Difficulty `json:"difficulty"`
	TotalRounds         int        `json:"totalRounds"`
	ResponseTimeSeconds int        `json:"responseTimeSeconds"`
	VotingTimeSeconds   int        `json:"votingTimeSeconds"`
	CustomWordPairs     []WordPair `json:"customWordPairs,omitempty"`
}

// DefaultSettings returns the default game settings
func DefaultSettings() Settings {
	return Settings{
		Difficulty:          DifficultyMedium,
		TotalRounds:         5,
		ResponseTimeSeconds: 40,
		VotingTimeSeconds:   20,
	}
}

// ResponseTime returns the response phase duration
func (s Settings) ResponseTime() time.Duration {
	return time.Duration(s.ResponseTimeSeconds) * time.Second
}

// VotingTime returns the voting phase duration
func (s Settings) VotingTime() time.Duration {
	return time.Duration(s.VotingTimeSeconds) * time.Second
}

// Validate checks every field against its bounds
func (s Settings) Validate() error {
	switch {
	case !s.Difficulty.Valid():
		return ErrInvalidSettings
	case s.TotalRounds < MinTotalRounds || s.TotalRounds > MaxTotalRounds:
		return ErrInvalidSettings
	case s.ResponseTimeSeconds < MinResponseSeconds || s.ResponseTimeSeconds > MaxResponseSeconds:
		return ErrInvalidSettings
	case s.VotingTimeSeconds < MinVotingSeconds || s.VotingTimeSeconds > MaxVotingSeconds:
		return ErrInvalidSettings
	case len(s.CustomWordPairs) > MaxCustomWordPairs:
		return ErrInvalidSettings
	}
	for _, pair := range s.CustomWordPairs {
		if !pair.Valid() {
			return ErrInvalidSettings
		}
	}
	return nil
}

// Clone returns a copy that does not share the custom pair slice
func (s Settings) Clone() Settings {
	if s.CustomWordPairs != nil {
		s.CustomWordPairs = append([]WordPair(nil), s.CustomWordPairs...)
	}
	return s
}
