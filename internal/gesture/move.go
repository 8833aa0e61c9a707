// Package gesture provides the rock-paper-scissors move vocabulary and the
// stabilizer that turns noisy per-frame classifications into a single move.
package gesture

import (
	"fmt"
	"strings"
)

// Move is one of the three hand gestures a player or the bot can show.
type Move string

const (
	Rock     Move = "Rock"
	Paper    Move = "Paper"
	Scissors Move = "Scissors"

	// NoMove is the sentinel used when no gesture was captured for a round.
	// It loses against every move.
	NoMove Move = ""
)

// Moves lists the playable gestures in a stable order.
var Moves = []Move{Rock, Paper, Scissors}

// DefaultLabels is the output order of the bundled gesture model.
var DefaultLabels = []Move{Paper, Rock, Scissors}

// Valid reports whether m is one of the three playable gestures.
func (m Move) Valid() bool {
	switch m {
	case Rock, Paper, Scissors:
		return true
	}
	return false
}

// String returns the move label, or "none" for NoMove.
func (m Move) String() string {
	if m == NoMove {
		return "none"
	}
	return string(m)
}

// ParseMove converts a label into a Move. Matching is case-insensitive.
func ParseMove(s string) (Move, error) {
	for _, m := range Moves {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("unknown gesture %q", s)
}

// ParseLabels converts model label names into moves, preserving order.
func ParseLabels(names []string) ([]Move, error) {
	labels := make([]Move, len(names))
	for i, name := range names {
		m, err := ParseMove(name)
		if err != nil {
			return nil, err
		}
		labels[i] = m
	}
	return labels, nil
}
