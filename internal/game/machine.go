package game

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/shifumi/internal/gesture"
)

// ErrStaleObservation is returned by Observe when the classification was
// taken for a countdown that is no longer running.
var ErrStaleObservation = errors.New("observation does not belong to the running countdown")

// Ticker delivers countdown ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Option configures a Machine.
type Option func(*Machine)

// WithBot sets the opponent move generator.
func WithBot(b BotMoveGenerator) Option {
	return func(m *Machine) { m.bot = b }
}

// WithTicker sets the countdown ticker factory.
func WithTicker(f TickerFunc) Option {
	return func(m *Machine) { m.newTicker = f }
}

// WithTickInterval sets the countdown step. Defaults to one second.
func WithTickInterval(d time.Duration) Option {
	return func(m *Machine) { m.interval = d }
}

// Machine drives round phases, owns the countdown timer and keeps score.
// All methods are safe for concurrent use; the sensing loop and the
// countdown goroutine both enter through the mutex.
type Machine struct {
	cfg        Config
	bot        BotMoveGenerator
	stabilizer *gesture.Stabilizer
	newTicker  TickerFunc
	interval   time.Duration

	mu    sync.Mutex
	match MatchState
	round RoundState
	live  gesture.Move

	// token changes whenever a countdown starts or stops so that late ticks
	// and late classifications can be recognized.
	token      uint64
	stopTicker chan struct{}

	subs     map[int]chan Snapshot
	nextSub  int
	onEnd    map[int]func(MatchResult)
	nextEnd  int
	endFired bool
	closed   bool
}

// NewMachine creates a Machine with a fresh match of the default length.
func NewMachine(cfg Config, opts ...Option) (*Machine, error) {
	if len(cfg.RoundOptions) == 0 {
		return nil, fmt.Errorf("%w: no round options", ErrInvalidRounds)
	}
	if cfg.CountdownSeconds <= 0 {
		return nil, fmt.Errorf("countdown must be positive, got %d", cfg.CountdownSeconds)
	}

	m := &Machine{
		cfg:        cfg,
		stabilizer: gesture.NewStabilizer(cfg.ConfidenceThreshold),
		newTicker:  NewTimeTicker,
		interval:   time.Second,
		subs:       make(map[int]chan Snapshot),
		onEnd:      make(map[int]func(MatchResult)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.bot == nil {
		m.bot = NewRandomBot()
	}

	rounds := DefaultRounds
	if !cfg.AllowsRounds(rounds) {
		rounds = cfg.RoundOptions[0]
	}
	m.resetMatch(rounds)
	return m, nil
}

// Config returns the match parameters.
func (m *Machine) Config() Config {
	return m.cfg
}

// NewMatch discards the current match and starts a fresh one with the given
// number of rounds. It is allowed from any phase.
func (m *Machine) NewMatch(totalRounds int) error {
	if !m.cfg.AllowsRounds(totalRounds) {
		return fmt.Errorf("%w: %d (options %v)", ErrInvalidRounds, totalRounds, m.cfg.RoundOptions)
	}

	m.mu.Lock()
	m.haltCountdown()
	m.resetMatch(totalRounds)
	snap := m.snapshotLocked()
	m.publishLocked(snap)
	m.mu.Unlock()

	log.Printf("New match %s: %d rounds", snap.MatchID, totalRounds)
	return nil
}

// StartRound moves waiting to countdown and starts the countdown timer.
func (m *Machine) StartRound() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.round.Phase != PhaseWaiting {
		return fmt.Errorf("%w: start round in phase %s", ErrInvalidTransition, m.round.Phase)
	}

	m.round = RoundState{
		Phase:              PhaseCountdown,
		CountdownRemaining: m.cfg.CountdownSeconds,
	}
	m.stabilizer.Reset()
	m.token++

	stop := make(chan struct{})
	m.stopTicker = stop
	go m.runCountdown(m.token, m.newTicker(m.interval), stop)

	m.publishLocked(m.snapshotLocked())
	return nil
}

// NextRound leaves the result phase, either for the next round or for the end
// of the match.
func (m *Machine) NextRound() error {
	m.mu.Lock()
	if m.round.Phase != PhaseResult {
		phase := m.round.Phase
		m.mu.Unlock()
		return fmt.Errorf("%w: next round in phase %s", ErrInvalidTransition, phase)
	}

	if m.match.CurrentRoundIndex < m.match.TotalRounds {
		m.match.CurrentRoundIndex++
		m.round = RoundState{Phase: PhaseWaiting}
		m.publishLocked(m.snapshotLocked())
		m.mu.Unlock()
		return nil
	}

	return m.finishLocked()
}

// FinishMatch ends the match early from any phase but finished. A running
// countdown is discarded without resolving.
func (m *Machine) FinishMatch() error {
	m.mu.Lock()
	if m.round.Phase == PhaseFinished {
		m.mu.Unlock()
		return fmt.Errorf("%w: match already finished", ErrInvalidTransition)
	}
	m.haltCountdown()
	m.stabilizer.Reset()
	return m.finishLocked()
}

// finishLocked freezes the match, publishes and fires the end notification.
// It releases the lock.
func (m *Machine) finishLocked() error {
	m.match.FinalWinner = FinalWinner(m.match.PlayerScore, m.match.BotScore)
	m.round.Phase = PhaseFinished
	m.round.CountdownRemaining = 0

	snap := m.snapshotLocked()
	m.publishLocked(snap)

	var callbacks []func(MatchResult)
	if !m.endFired {
		m.endFired = true
		for _, fn := range m.onEnd {
			callbacks = append(callbacks, fn)
		}
	}
	m.mu.Unlock()

	log.Printf("Match %s finished: %s (player %d, bot %d)", snap.MatchID, snap.FinalWinner, snap.PlayerScore, snap.BotScore)
	result := MatchResult{
		MatchID:     snap.MatchID,
		Winner:      snap.FinalWinner,
		PlayerScore: snap.PlayerScore,
		BotScore:    snap.BotScore,
	}
	for _, fn := range callbacks {
		fn(result)
	}
	return nil
}

// Token identifies the running countdown. The sensing loop reads it before
// locating a hand and hands it back to Observe.
func (m *Machine) Token() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Observe feeds a classification into the stabilizer. It is accepted only
// while the countdown identified by token is still running.
func (m *Machine) Observe(token uint64, c gesture.Classification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token != m.token || m.round.Phase != PhaseCountdown {
		return ErrStaleObservation
	}
	return m.stabilizer.Record(c)
}

// SetLive updates the unstabilized prediction shown to the player.
func (m *Machine) SetLive(label gesture.Move) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.live == label {
		return
	}
	m.live = label
	m.publishLocked(m.snapshotLocked())
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.round.Phase
}

// Snapshot returns the current observable state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe returns a channel that receives every state change. Slow readers
// only see the latest snapshot. The current state is delivered immediately.
func (m *Machine) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if m.closed {
		close(ch)
		return ch, func() {}
	}

	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- m.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if c, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(c)
			}
		})
	}
}

// OnMatchEnd registers fn to be called once when a match reaches finished.
func (m *Machine) OnMatchEnd(fn func(Winner)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnd[m.nextEnd] = func(r MatchResult) { fn(r.Winner) }
	m.nextEnd++
}

// WatchMatchEnd registers fn to be called with the result of every match that
// finishes until cancel is called. fn runs on the goroutine that finished the
// match and must not block.
func (m *Machine) WatchMatchEnd(fn func(MatchResult)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextEnd
	m.nextEnd++
	m.onEnd[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.onEnd, id)
	}
}

// Close stops any countdown and closes all subscriptions.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	m.haltCountdown()
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}

func (m *Machine) runCountdown(token uint64, t Ticker, stop <-chan struct{}) {
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C():
			if done := m.tick(token); done {
				return
			}
		}
	}
}

// tick advances the countdown by one step. It returns true once the
// countdown identified by token is over.
func (m *Machine) tick(token uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token != m.token || m.round.Phase != PhaseCountdown {
		return true
	}

	m.round.CountdownRemaining--
	if m.round.CountdownRemaining > 0 {
		m.publishLocked(m.snapshotLocked())
		return false
	}

	m.resolveLocked()
	return true
}

// resolveLocked turns the buffered classifications into a round result.
func (m *Machine) resolveLocked() {
	player := m.stabilizer.Resolve()
	bot := m.bot.Next()
	outcome := Decide(player, bot)

	m.round.CountdownRemaining = 0
	m.round.PlayerMove = player
	m.round.BotMove = bot
	m.round.Outcome = outcome
	m.round.Phase = PhaseResult
	m.match.apply(outcome)

	m.stabilizer.Reset()
	m.haltCountdown()

	log.Printf("Round %d/%d: player %s vs bot %s -> %s",
		m.match.CurrentRoundIndex, m.match.TotalRounds, player, bot, outcome)
	m.publishLocked(m.snapshotLocked())
}

// haltCountdown stops the running countdown goroutine, if any.
func (m *Machine) haltCountdown() {
	if m.stopTicker != nil {
		close(m.stopTicker)
		m.stopTicker = nil
	}
	m.token++
}

func (m *Machine) resetMatch(totalRounds int) {
	m.match = MatchState{
		ID:                uuid.NewString(),
		CurrentRoundIndex: 1,
		TotalRounds:       totalRounds,
	}
	m.round = RoundState{Phase: PhaseWaiting}
	m.stabilizer.Reset()
	m.endFired = false
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{
		MatchID:             m.match.ID,
		Phase:               m.round.Phase,
		CountdownRemaining:  m.round.CountdownRemaining,
		PlayerMove:          m.round.PlayerMove,
		BotMove:             m.round.BotMove,
		RoundOutcome:        m.round.Outcome,
		LivePredictionLabel: m.live,
		CurrentRound:        m.match.CurrentRoundIndex,
		TotalRounds:         m.match.TotalRounds,
		PlayerScore:         m.match.PlayerScore,
		BotScore:            m.match.BotScore,
		FinalWinner:         m.match.FinalWinner,
	}
}

func (m *Machine) publishLocked(s Snapshot) {
	for _, ch := range m.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}
