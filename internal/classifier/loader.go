package classifier

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/shifumi/internal/gesture"
)

// LoadFunc constructs a Classifier. It may block for a long time.
type LoadFunc func() (Classifier, error)

// Loader loads a model once in the background and serves Classify calls once
// it is ready. Loader itself implements Classifier.
type Loader struct {
	load LoadFunc
	once sync.Once
	done chan struct{}

	mu  sync.RWMutex
	c   Classifier
	err error
}

// NewLoader creates a Loader. Loading begins with Start.
func NewLoader(load LoadFunc) *Loader {
	return &Loader{
		load: load,
		done: make(chan struct{}),
	}
}

// Start begins loading in a new goroutine. Later calls do nothing.
func (l *Loader) Start() {
	l.once.Do(func() {
		go l.run()
	})
}

func (l *Loader) run() {
	defer close(l.done)

	c, err := l.load()
	if err != nil && !errors.Is(err, ErrModelLoad) {
		err = fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	l.mu.Lock()
	l.c, l.err = c, err
	l.mu.Unlock()

	if err != nil {
		log.Printf("Gesture model failed to load: %v", err)
		return
	}
	log.Printf("Gesture model loaded")
}

// Ready reports whether the model loaded successfully.
func (l *Loader) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c != nil
}

// Err returns the load error, if loading has finished and failed.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Wait blocks until loading finishes or ctx is done. Start must have been
// called.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return l.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Classify delegates to the loaded model, or returns ErrNotLoaded.
func (l *Loader) Classify(ctx context.Context, tensor gocv.Mat) (gesture.Classification, error) {
	l.mu.RLock()
	c, err := l.c, l.err
	l.mu.RUnlock()

	if err != nil {
		return gesture.Classification{}, err
	}
	if c == nil {
		return gesture.Classification{}, ErrNotLoaded
	}
	return c.Classify(ctx, tensor)
}

// Close releases the model if it was loaded.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.c == nil {
		return nil
	}
	err := l.c.Close()
	l.c = nil
	if l.err == nil {
		l.err = ErrNotLoaded
	}
	return err
}
