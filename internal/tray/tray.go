// Package tray provides a system tray menu for driving a Shifumi match.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/shifumi/internal/game"
)

// Tray represents the system tray application.
type Tray struct {
	onStart func()
	onNext  func()
	onOpen  func()
	onQuit  func()
	last    game.Snapshot
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuStart *systray.MenuItem
	menuNext  *systray.MenuItem
	menuScore *systray.MenuItem
	menuPhase *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{
		last: game.Snapshot{Phase: game.PhaseWaiting},
	}
}

// OnStartRound sets the callback for the Start Round item.
func (t *Tray) OnStartRound(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStart = fn
}

// OnNextRound sets the callback for the Next Round item.
func (t *Tray) OnNextRound(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onNext = fn
}

// OnOpen sets the callback for the Open Game item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Shifumi")
	systray.SetTooltip("Shifumi Rock Paper Scissors")

	t.mu.Lock()
	t.menuStart = systray.AddMenuItem("Start Round", "Start the countdown")
	t.menuNext = systray.AddMenuItem("Next Round", "Advance to the next round")
	systray.AddSeparator()

	t.menuScore = systray.AddMenuItem(ScoreLine(t.last), "Match score")
	t.menuScore.Disable()
	t.menuPhase = systray.AddMenuItem(PhaseLine(t.last), "Round state")
	t.menuPhase.Disable()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Game...", "Open the game in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Shifumi")
	t.applyLocked()
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-t.menuStart.ClickedCh:
				t.call(func() func() { return t.onStart })
			case <-t.menuNext.ClickedCh:
				t.call(func() func() { return t.onNext })
			case <-menuOpen.ClickedCh:
				t.call(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.call(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// call runs a callback outside the lock.
func (t *Tray) call(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// Update refreshes the menu from a game snapshot.
func (t *Tray) Update(s game.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = s
	t.applyLocked()
}

// Watch applies snapshots until updates is closed.
func (t *Tray) Watch(updates <-chan game.Snapshot) {
	for s := range updates {
		t.Update(s)
	}
}

// Last returns the most recent snapshot shown.
func (t *Tray) Last() game.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

func (t *Tray) applyLocked() {
	if t.menuScore == nil {
		return
	}
	t.menuScore.SetTitle(ScoreLine(t.last))
	t.menuPhase.SetTitle(PhaseLine(t.last))
	setEnabled(t.menuStart, t.last.Phase == game.PhaseWaiting)
	setEnabled(t.menuNext, t.last.Phase == game.PhaseResult)
}

func setEnabled(item *systray.MenuItem, enabled bool) {
	if enabled {
		item.Enable()
	} else {
		item.Disable()
	}
}

// ScoreLine renders the match score for the menu.
func ScoreLine(s game.Snapshot) string {
	return fmt.Sprintf("You %d - %d Bot", s.PlayerScore, s.BotScore)
}

// PhaseLine renders the round state for the menu.
func PhaseLine(s game.Snapshot) string {
	switch s.Phase {
	case game.PhaseCountdown:
		return fmt.Sprintf("Round %d/%d: %d...", s.CurrentRound, s.TotalRounds, s.CountdownRemaining)
	case game.PhaseResult:
		return fmt.Sprintf("Round %d/%d: %s vs %s", s.CurrentRound, s.TotalRounds, s.PlayerMove, s.BotMove)
	case game.PhaseFinished:
		switch s.FinalWinner {
		case game.WinnerPlayer:
			return "Match over: you win"
		case game.WinnerBot:
			return "Match over: bot wins"
		default:
			return "Match over: draw"
		}
	default:
		return fmt.Sprintf("Round %d/%d: ready", s.CurrentRound, s.TotalRounds)
	}
}
