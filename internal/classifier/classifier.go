// Package classifier runs the gesture model on extracted hand crops.
package classifier

import (
	"context"
	"errors"

	"gocv.io/x/gocv"

	"github.com/ayusman/shifumi/internal/gesture"
)

var (
	// ErrModelLoad is returned when the model file cannot be loaded.
	ErrModelLoad = errors.New("gesture model load failed")
	// ErrNotLoaded is returned by Classify before the model is available.
	ErrNotLoaded = errors.New("gesture model not loaded")
)

// Classifier maps a normalized RGB float32 crop to a gesture label.
type Classifier interface {
	// Classify runs the model on tensor. Implementations are not required to
	// be safe for concurrent use.
	Classify(ctx context.Context, tensor gocv.Mat) (gesture.Classification, error)

	// Close releases the model.
	Close() error
}
