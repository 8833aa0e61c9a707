// Package game implements round orchestration and match scoring for
// gesture-controlled rock-paper-scissors.
package game

import "github.com/ayusman/shifumi/internal/gesture"

// Outcome is the result of a single round.
type Outcome string

const (
	PlayerWins Outcome = "PlayerWins"
	BotWins    Outcome = "BotWins"
	Draw       Outcome = "Draw"
)

// Winner names the side that took the match.
type Winner string

const (
	WinnerNone   Winner = ""
	WinnerPlayer Winner = "Player"
	WinnerBot    Winner = "Bot"
	WinnerDraw   Winner = "Draw"
)

// beats maps each move to the move it defeats.
var beats = map[gesture.Move]gesture.Move{
	gesture.Rock:     gesture.Scissors,
	gesture.Paper:    gesture.Rock,
	gesture.Scissors: gesture.Paper,
}

// Decide applies the rock-paper-scissors precedence. An empty player move
// never wins.
func Decide(player, bot gesture.Move) Outcome {
	if player == bot {
		return Draw
	}
	if victim, ok := beats[player]; ok && victim == bot {
		return PlayerWins
	}
	return BotWins
}

// FinalWinner compares cumulative scores.
func FinalWinner(playerScore, botScore int) Winner {
	switch {
	case playerScore > botScore:
		return WinnerPlayer
	case botScore > playerScore:
		return WinnerBot
	default:
		return WinnerDraw
	}
}
