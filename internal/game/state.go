package game

import (
	"errors"
	"slices"

	"github.com/ayusman/shifumi/internal/gesture"
)

var (
	// ErrInvalidTransition is returned when a command does not apply to the
	// current phase.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInvalidRounds is returned for a round count outside the allowed options.
	ErrInvalidRounds = errors.New("invalid number of rounds")
)

// Phase is the round state machine's position.
type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseCountdown Phase = "countdown"
	PhaseResult    Phase = "result"
	PhaseFinished  Phase = "finished"
)

// Default match settings.
const (
	DefaultCountdownSeconds = 3
	DefaultRounds           = 3
)

// DefaultRoundOptions are the match lengths a player can choose.
var DefaultRoundOptions = []int{3, 5, 7}

// Config holds the tunable match parameters.
type Config struct {
	ConfidenceThreshold float64
	CountdownSeconds    int
	RoundOptions        []int
}

// DefaultConfig returns the standard match parameters.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: gesture.DefaultConfidenceThreshold,
		CountdownSeconds:    DefaultCountdownSeconds,
		RoundOptions:        slices.Clone(DefaultRoundOptions),
	}
}

// AllowsRounds reports whether n is one of the configured round options.
func (c Config) AllowsRounds(n int) bool {
	return slices.Contains(c.RoundOptions, n)
}

// RoundState is owned by the machine and recreated for every round.
type RoundState struct {
	Phase              Phase
	CountdownRemaining int
	PlayerMove         gesture.Move
	BotMove            gesture.Move
	Outcome            Outcome
}

// MatchState lives for one match.
type MatchState struct {
	ID                string
	CurrentRoundIndex int
	TotalRounds       int
	PlayerScore       int
	BotScore          int
	FinalWinner       Winner
}

// apply adds a round outcome to the scores.
func (m *MatchState) apply(o Outcome) {
	switch o {
	case PlayerWins:
		m.PlayerScore++
	case BotWins:
		m.BotScore++
	}
}

// MatchResult is delivered once when a match reaches the finished phase.
type MatchResult struct {
	MatchID     string `json:"match_id"`
	Winner      Winner `json:"winner"`
	PlayerScore int    `json:"player_score"`
	BotScore    int    `json:"bot_score"`
}

// Snapshot is the read-only view published to the UI shell.
type Snapshot struct {
	MatchID             string       `json:"match_id"`
	Phase               Phase        `json:"phase"`
	CountdownRemaining  int          `json:"countdown_remaining"`
	PlayerMove          gesture.Move `json:"player_move"`
	BotMove             gesture.Move `json:"bot_move"`
	RoundOutcome        Outcome      `json:"round_outcome"`
	LivePredictionLabel gesture.Move `json:"live_prediction_label"`
	CurrentRound        int          `json:"current_round"`
	TotalRounds         int          `json:"total_rounds"`
	PlayerScore         int          `json:"player_score"`
	BotScore            int          `json:"bot_score"`
	FinalWinner         Winner       `json:"final_winner"`
}
