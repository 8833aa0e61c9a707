package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ayusman/shifumi/internal/gesture"
)

// BotMoveGenerator produces the opponent's move for a round.
type BotMoveGenerator interface {
	Next() gesture.Move
}

// RandomBot picks uniformly among the three gestures.
type RandomBot struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomBot returns a RandomBot seeded with the current time.
func NewRandomBot() *RandomBot {
	return NewRandomBotWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewRandomBotWithSource returns a RandomBot drawing from src.
func NewRandomBotWithSource(src rand.Source) *RandomBot {
	return &RandomBot{rnd: rand.New(src)}
}

// Next returns a uniformly random gesture.
func (b *RandomBot) Next() gesture.Move {
	b.mu.Lock()
	defer b.mu.Unlock()
	return gesture.Moves[b.rnd.Intn(len(gesture.Moves))]
}

// SequenceBot replays a fixed list of moves, cycling when exhausted.
type SequenceBot struct {
	mu    sync.Mutex
	moves []gesture.Move
	next  int
}

// NewSequenceBot creates a SequenceBot. It panics on an empty sequence.
func NewSequenceBot(moves ...gesture.Move) *SequenceBot {
	if len(moves) == 0 {
		panic("game: empty bot sequence")
	}
	return &SequenceBot{moves: moves}
}

// Next returns the next move in the sequence.
func (b *SequenceBot) Next() gesture.Move {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.moves[b.next%len(b.moves)]
	b.next++
	return m
}
