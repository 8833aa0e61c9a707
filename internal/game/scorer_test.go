package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/shifumi/internal/gesture"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		player, bot gesture.Move
		want        Outcome
	}{
		{gesture.Rock, gesture.Rock, Draw},
		{gesture.Rock, gesture.Paper, BotWins},
		{gesture.Rock, gesture.Scissors, PlayerWins},
		{gesture.Paper, gesture.Rock, PlayerWins},
		{gesture.Paper, gesture.Paper, Draw},
		{gesture.Paper, gesture.Scissors, BotWins},
		{gesture.Scissors, gesture.Rock, BotWins},
		{gesture.Scissors, gesture.Paper, PlayerWins},
		{gesture.Scissors, gesture.Scissors, Draw},
		{gesture.NoMove, gesture.Rock, BotWins},
		{gesture.NoMove, gesture.Paper, BotWins},
		{gesture.NoMove, gesture.Scissors, BotWins},
	}

	for _, tt := range tests {
		t.Run(tt.player.String()+"_vs_"+tt.bot.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Decide(tt.player, tt.bot))
		})
	}
}

func TestDecide_Balanced(t *testing.T) {
	t.Parallel()

	counts := map[Outcome]int{}
	for _, p := range gesture.Moves {
		for _, b := range gesture.Moves {
			counts[Decide(p, b)]++
		}
	}
	assert.Equal(t, map[Outcome]int{Draw: 3, PlayerWins: 3, BotWins: 3}, counts)
}

func TestFinalWinner(t *testing.T) {
	t.Parallel()

	assert.Equal(t, WinnerPlayer, FinalWinner(2, 1))
	assert.Equal(t, WinnerBot, FinalWinner(0, 1))
	assert.Equal(t, WinnerDraw, FinalWinner(1, 1))
	assert.Equal(t, WinnerDraw, FinalWinner(0, 0))
}

func TestRandomBot(t *testing.T) {
	t.Parallel()

	bot := NewRandomBotWithSource(rand.NewSource(7))
	seen := map[gesture.Move]int{}
	for i := 0; i < 300; i++ {
		m := bot.Next()
		assert.True(t, m.Valid(), "unexpected move %q", m)
		seen[m]++
	}
	assert.Len(t, seen, 3)
}

func TestSequenceBot(t *testing.T) {
	t.Parallel()

	bot := NewSequenceBot(gesture.Rock, gesture.Paper)
	got := []gesture.Move{bot.Next(), bot.Next(), bot.Next()}
	assert.Equal(t, []gesture.Move{gesture.Rock, gesture.Paper, gesture.Rock}, got)

	assert.Panics(t, func() { NewSequenceBot() })
}
