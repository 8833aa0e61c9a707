package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/shifumi/internal/capture"
	"github.com/ayusman/shifumi/internal/detector"
	"github.com/ayusman/shifumi/internal/game"
	"github.com/ayusman/shifumi/internal/gesture"
	"github.com/ayusman/shifumi/internal/region"
)

// frameSkips counts frames that produced no accepted classification. It is
// only touched by the sensing loop.
type frameSkips struct {
	readErr       int
	noHand        int
	degenerate    int
	lowConfidence int
	locateErr     int
	extractErr    int
	previewErr    int
	classifyErr   int
	lastErr       error
}

func (f frameSkips) empty() bool {
	return f.readErr+f.noHand+f.degenerate+f.lowConfidence+f.locateErr+f.extractErr+f.previewErr+f.classifyErr == 0
}

func (f frameSkips) String() string {
	s := fmt.Sprintf("read errors %d, no hand %d, degenerate crop %d, low confidence %d, locate errors %d, extract errors %d, preview errors %d, classify errors %d",
		f.readErr, f.noHand, f.degenerate, f.lowConfidence, f.locateErr, f.extractErr, f.previewErr, f.classifyErr)
	if f.lastErr != nil {
		s += fmt.Sprintf(" (last error: %v)", f.lastErr)
	}
	return s
}

func (f *frameSkips) fail(counter *int, err error) {
	*counter++
	f.lastErr = err
}

// logSkips writes the skip summary and starts a new count.
func (a *App) logSkips() {
	if !a.skips.empty() {
		log.Printf("Skipped frames: %s", a.skips)
	}
	a.skips = frameSkips{}
}

// runPipeline is the sensing loop. Each tick reads one frame and runs locate,
// extract and classify to completion before the next tick is considered.
// Ticks that arrive while a frame is still being processed are dropped by the
// ticker, so a slow model throttles the loop instead of queueing work.
//
// The loop samples at IdleFPS and switches to ActiveFPS on motion or while a
// countdown is running. Once the match is finished it stops sensing until a
// new match begins.
func (a *App) runPipeline(ctx context.Context) {
	activeMode := false
	ticker := time.NewTicker(time.Second / time.Duration(a.config.IdleFPS))
	defer ticker.Stop()
	defer a.logSkips()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if a.stopped.Load() {
			return
		}

		active := a.processFrame(ctx)
		if active == activeMode {
			continue
		}

		activeMode = active
		fps := a.config.IdleFPS
		if activeMode {
			fps = a.config.ActiveFPS
		}
		a.camera.SetFPS(fps)
		ticker.Reset(time.Second / time.Duration(fps))
		if activeMode {
			log.Println("Switched to active mode")
		} else {
			log.Println("Switched to idle mode")
		}
		a.logSkips()
	}
}

// processFrame runs one sensing step and reports whether the loop should be
// in active mode. Motion only selects the frame rate; every frame is
// classified so the live label tracks a hand held still.
func (a *App) processFrame(ctx context.Context) bool {
	if a.machine.Phase() == game.PhaseFinished {
		a.machine.SetLive(gesture.NoMove)
		a.clearPreview()
		return false
	}

	frame, err := a.camera.ReadFrame()
	if err != nil {
		a.skips.fail(&a.skips.readErr, err)
		return a.gate.Active()
	}
	defer frame.Close()

	motion, _ := a.motion.Detect(frame)
	gateOpen, _ := a.gate.Observe(motion)

	// The token pins this frame's classification to the countdown that was
	// running when the frame was taken.
	token := a.machine.Token()
	counting := a.machine.Phase() == game.PhaseCountdown
	active := gateOpen || counting

	cls, ok := a.classifyFrame(ctx, frame)
	if a.stopped.Load() {
		return active
	}
	if !ok {
		a.machine.SetLive(gesture.NoMove)
		return active
	}

	a.machine.SetLive(cls.Label)
	err = a.machine.Observe(token, cls)
	switch {
	case err == nil, errors.Is(err, game.ErrStaleObservation):
	case errors.Is(err, gesture.ErrLowConfidence):
		a.skips.lowConfidence++
	default:
		log.Printf("Error recording classification: %v", err)
	}
	return active
}

// classifyFrame locates the hand, extracts the model input, refreshes the
// preview and classifies. Per-frame failures are counted and reported as !ok.
// The preview is dropped whenever no usable hand crop exists.
func (a *App) classifyFrame(ctx context.Context, frame *capture.Frame) (gesture.Classification, bool) {
	kp, err := a.localizer.Locate(&frame.Mat, frame.Layout)
	if err != nil {
		if errors.Is(err, detector.ErrNoHandDetected) {
			a.skips.noHand++
		} else {
			a.skips.fail(&a.skips.locateErr, err)
		}
		a.clearPreview()
		return gesture.Classification{}, false
	}

	res, err := a.extractor.Extract(frame.Mat, kp, frame.Layout)
	if err != nil {
		if errors.Is(err, region.ErrNoHandRegion) {
			a.skips.degenerate++
		} else {
			a.skips.fail(&a.skips.extractErr, err)
		}
		a.clearPreview()
		return gesture.Classification{}, false
	}
	defer res.Close()

	if preview, err := a.extractor.Preview(frame.Mat, res.Crop); err == nil {
		a.setPreview(preview)
	} else {
		preview.Close()
		a.clearPreview()
		a.skips.fail(&a.skips.previewErr, err)
	}

	cls, err := a.model.Classify(ctx, res.Tensor)
	if err != nil {
		a.skips.fail(&a.skips.classifyErr, err)
		return gesture.Classification{}, false
	}
	return cls, true
}
