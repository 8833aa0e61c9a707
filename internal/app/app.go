// Package app wires capture, hand localization, crop extraction, gesture
// classification and the round state machine into one running game.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/shifumi/internal/capture"
	"github.com/ayusman/shifumi/internal/classifier"
	"github.com/ayusman/shifumi/internal/detector"
	"github.com/ayusman/shifumi/internal/game"
	"github.com/ayusman/shifumi/internal/gesture"
	"github.com/ayusman/shifumi/internal/region"
	"github.com/ayusman/shifumi/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while a hand may be in view.
	ActiveFPS = 15
	// IdleTimeout is how long without motion before returning to idle mode.
	IdleTimeout = 2 * time.Second
	// ReadyTimeout bounds localizer and model startup.
	ReadyTimeout = 30 * time.Second
)

var (
	// ErrNotReady is returned for commands that need the sensing loop running.
	ErrNotReady = errors.New("not ready")
	// ErrNoPreview is returned when no hand crop has been captured yet.
	ErrNoPreview = errors.New("no hand preview available")
	// ErrNoStore is returned by sample operations when no store is configured.
	ErrNoStore = errors.New("no sample store configured")
)

// State is the lifecycle stage of the App.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
	StateStopped State = "stopped"
)

// Status reports readiness to the UI.
type Status struct {
	State State  `json:"state"`
	Error string `json:"error,omitempty"`
}

// Config holds the collaborators and tuning of an App.
type Config struct {
	Camera    capture.Camera
	Detector  detector.Detector
	Model     classifier.LoadFunc
	Machine   *game.Machine
	Extractor *region.Extractor
	// Store is optional; without it samples cannot be saved.
	Store *store.Store

	MotionThresh float64
	IdleFPS      int
	ActiveFPS    int
	ReadyTimeout time.Duration
}

// App is the running game: one sensing loop feeding one state machine.
type App struct {
	config    Config
	camera    capture.Camera
	motion    *capture.MotionDetector
	gate      *capture.MotionGate
	localizer *detector.Localizer
	extractor *region.Extractor
	model     *classifier.Loader
	machine   *game.Machine

	mu      sync.RWMutex
	status  Status
	cancel  context.CancelFunc
	done    chan struct{}
	stopped atomic.Bool

	previewMu sync.Mutex
	preview   gocv.Mat

	skips frameSkips
}

// New creates an App. Camera, Detector, Model and Machine are required.
func New(config Config) (*App, error) {
	switch {
	case config.Camera == nil:
		return nil, errors.New("app: camera is required")
	case config.Detector == nil:
		return nil, errors.New("app: detector is required")
	case config.Model == nil:
		return nil, errors.New("app: model loader is required")
	case config.Machine == nil:
		return nil, errors.New("app: machine is required")
	}
	if config.Extractor == nil {
		config.Extractor = region.NewExtractor(region.DefaultConfig())
	}
	if config.IdleFPS <= 0 {
		config.IdleFPS = IdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = ActiveFPS
	}
	if config.ReadyTimeout <= 0 {
		config.ReadyTimeout = ReadyTimeout
	}

	return &App{
		config:    config,
		camera:    config.Camera,
		motion:    capture.NewMotionDetector(config.MotionThresh),
		gate:      capture.NewMotionGate(IdleTimeout),
		localizer: detector.NewLocalizer(config.Detector),
		extractor: config.Extractor,
		model:     classifier.NewLoader(config.Model),
		machine:   config.Machine,
		status:    Status{State: StateStopped},
		preview:   gocv.NewMat(),
	}, nil
}

// Start opens the camera and begins loading the hand localizer and the
// gesture model in the background. The sensing loop starts once both are
// ready; until then Status reports loading.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.camera.SetFPS(a.config.IdleFPS)

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	a.stopped.Store(false)
	a.status = Status{State: StateLoading}

	go a.run(ctx, a.done)

	log.Println("Loading hand localizer and gesture model")
	return nil
}

func (a *App) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	if err := a.waitReady(ctx); err != nil {
		if a.stopped.Load() {
			return
		}
		log.Printf("Startup failed: %v", err)
		a.setStatus(Status{State: StateFailed, Error: err.Error()})
		return
	}

	a.setStatus(Status{State: StateReady})
	log.Println("Sensing loop started")
	a.runPipeline(ctx)
}

// waitReady initializes the localizer and the model concurrently, bounded by
// ReadyTimeout.
func (a *App) waitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.ReadyTimeout)
	defer cancel()

	a.model.Start()

	initErr := make(chan error, 1)
	go func() { initErr <- a.localizer.Init() }()
	modelErr := make(chan error, 1)
	go func() { modelErr <- a.model.Wait(ctx) }()

	for pending := 2; pending > 0; pending-- {
		select {
		case err := <-initErr:
			if err != nil {
				return err
			}
		case err := <-modelErr:
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return fmt.Errorf("startup: %w", ctx.Err())
		}
	}
	return nil
}

// Stop halts the sensing loop and releases resources. The App cannot be
// restarted after Stop.
func (a *App) Stop() {
	a.mu.Lock()
	a.stopped.Store(true)
	cancel, done := a.cancel, a.done
	a.cancel = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.motion.Close()
	if err := a.localizer.Close(); err != nil {
		log.Printf("Error closing detector: %v", err)
	}
	if err := a.model.Close(); err != nil {
		log.Printf("Error closing model: %v", err)
	}
	a.clearPreview()

	a.setStatus(Status{State: StateStopped})
	log.Println("Sensing loop stopped")
}

// Status returns the current readiness.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

func (a *App) setStatus(s Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = s
}

// Machine returns the round state machine.
func (a *App) Machine() *game.Machine {
	return a.machine
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Snapshot returns the current game state.
func (a *App) Snapshot() game.Snapshot {
	return a.machine.Snapshot()
}

// RoundOptions returns the allowed match lengths.
func (a *App) RoundOptions() []int {
	return a.machine.Config().RoundOptions
}

// Subscribe streams game state changes.
func (a *App) Subscribe() (<-chan game.Snapshot, func()) {
	return a.machine.Subscribe()
}

// WatchMatchEnd reports every finished match until cancel is called.
func (a *App) WatchMatchEnd(fn func(game.MatchResult)) (cancel func()) {
	return a.machine.WatchMatchEnd(fn)
}

// NewMatch discards the current match and starts one with totalRounds.
func (a *App) NewMatch(totalRounds int) error {
	return a.machine.NewMatch(totalRounds)
}

// StartRound begins the countdown. The sensing loop must be running.
func (a *App) StartRound() error {
	if s := a.Status(); s.State != StateReady {
		return fmt.Errorf("%w: %s", ErrNotReady, s.State)
	}
	return a.machine.StartRound()
}

// NextRound advances from a round result.
func (a *App) NextRound() error {
	return a.machine.NextRound()
}

// FinishMatch ends the match early.
func (a *App) FinishMatch() error {
	return a.machine.FinishMatch()
}

// Preview returns the latest hand crop as JPEG.
func (a *App) Preview() ([]byte, error) {
	a.previewMu.Lock()
	defer a.previewMu.Unlock()

	if a.preview.Empty() {
		return nil, ErrNoPreview
	}
	buf, err := gocv.IMEncode(".jpg", a.preview)
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}

// PreviewImage returns the latest hand crop as an RGBA image.
func (a *App) PreviewImage() (image.Image, error) {
	a.previewMu.Lock()
	defer a.previewMu.Unlock()

	if a.preview.Empty() {
		return nil, ErrNoPreview
	}
	img, err := a.preview.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert preview: %w", err)
	}
	return img, nil
}

// SaveSample stores the latest hand crop as a training sample for label.
func (a *App) SaveSample(label gesture.Move) (*store.Sample, error) {
	if a.config.Store == nil {
		return nil, ErrNoStore
	}
	if !label.Valid() {
		return nil, fmt.Errorf("invalid gesture %q", label)
	}
	img, err := a.PreviewImage()
	if err != nil {
		return nil, err
	}
	sample, err := a.config.Store.Samples().Create(label, img)
	if err != nil {
		return nil, fmt.Errorf("save sample: %w", err)
	}
	log.Printf("Saved %s sample %s", label, sample.ID)
	return sample, nil
}

// setPreview replaces the latest preview, taking ownership of m.
func (a *App) setPreview(m gocv.Mat) {
	a.previewMu.Lock()
	defer a.previewMu.Unlock()
	a.preview.Close()
	a.preview = m
}

// clearPreview drops the preview so stale crops are neither streamed nor saved.
func (a *App) clearPreview() {
	a.previewMu.Lock()
	defer a.previewMu.Unlock()
	if a.preview.Empty() {
		return
	}
	a.preview.Close()
	a.preview = gocv.NewMat()
}
