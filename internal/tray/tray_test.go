package tray

import (
	"testing"

	"github.com/ayusman/shifumi/internal/game"
	"github.com/ayusman/shifumi/internal/gesture"
)

func TestScoreLine(t *testing.T) {
	got := ScoreLine(game.Snapshot{PlayerScore: 2, BotScore: 1})
	if got != "You 2 - 1 Bot" {
		t.Errorf("ScoreLine() = %q, want %q", got, "You 2 - 1 Bot")
	}
}

func TestPhaseLine(t *testing.T) {
	tests := []struct {
		name string
		snap game.Snapshot
		want string
	}{
		{
			name: "waiting",
			snap: game.Snapshot{Phase: game.PhaseWaiting, CurrentRound: 1, TotalRounds: 3},
			want: "Round 1/3: ready",
		},
		{
			name: "countdown",
			snap: game.Snapshot{Phase: game.PhaseCountdown, CurrentRound: 2, TotalRounds: 3, CountdownRemaining: 2},
			want: "Round 2/3: 2...",
		},
		{
			name: "result",
			snap: game.Snapshot{Phase: game.PhaseResult, CurrentRound: 1, TotalRounds: 5, PlayerMove: gesture.Rock, BotMove: gesture.Scissors},
			want: "Round 1/5: Rock vs Scissors",
		},
		{
			name: "forfeited result",
			snap: game.Snapshot{Phase: game.PhaseResult, CurrentRound: 1, TotalRounds: 1, BotMove: gesture.Paper},
			want: "Round 1/1: none vs Paper",
		},
		{
			name: "player wins",
			snap: game.Snapshot{Phase: game.PhaseFinished, FinalWinner: game.WinnerPlayer},
			want: "Match over: you win",
		},
		{
			name: "bot wins",
			snap: game.Snapshot{Phase: game.PhaseFinished, FinalWinner: game.WinnerBot},
			want: "Match over: bot wins",
		},
		{
			name: "draw",
			snap: game.Snapshot{Phase: game.PhaseFinished, FinalWinner: game.WinnerDraw},
			want: "Match over: draw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PhaseLine(tt.snap); got != tt.want {
				t.Errorf("PhaseLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTray_UpdateBeforeRun(t *testing.T) {
	tr := New()
	if tr.Last().Phase != game.PhaseWaiting {
		t.Errorf("initial phase = %s, want waiting", tr.Last().Phase)
	}

	updates := make(chan game.Snapshot, 2)
	updates <- game.Snapshot{Phase: game.PhaseCountdown, CountdownRemaining: 3}
	updates <- game.Snapshot{Phase: game.PhaseResult, PlayerScore: 1}
	close(updates)

	tr.Watch(updates)

	last := tr.Last()
	if last.Phase != game.PhaseResult || last.PlayerScore != 1 {
		t.Errorf("Last() = %+v, want result with player score 1", last)
	}
}
