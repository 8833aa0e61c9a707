package classifier

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/shifumi/internal/gesture"
)

// DNNClassifier runs an ONNX (or any OpenCV-readable) model through the
// OpenCV DNN module. The network takes a 1x3xHxW blob of RGB values in [0,1]
// and outputs one score per label.
type DNNClassifier struct {
	mu     sync.Mutex
	net    gocv.Net
	labels []gesture.Move
	size   int
}

// NewDNNClassifier loads the model at path. size is the square input side.
func NewDNNClassifier(path string, labels []gesture.Move, size int) (*DNNClassifier, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no labels", ErrModelLoad)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	net := gocv.ReadNet(path, "")
	if net.Empty() {
		return nil, fmt.Errorf("%w: cannot read %s", ErrModelLoad, path)
	}

	return &DNNClassifier{
		net:    net,
		labels: labels,
		size:   size,
	}, nil
}

// Classify runs the network on tensor, which must be a size x size CV_32FC3
// Mat already scaled to [0,1].
func (c *DNNClassifier) Classify(ctx context.Context, tensor gocv.Mat) (gesture.Classification, error) {
	if err := ctx.Err(); err != nil {
		return gesture.Classification{}, err
	}
	if tensor.Empty() {
		return gesture.Classification{}, errors.New("empty tensor")
	}
	if tensor.Type() != gocv.MatTypeCV32FC3 {
		return gesture.Classification{}, fmt.Errorf("tensor type %v, want CV_32FC3", tensor.Type())
	}

	blob := gocv.BlobFromImage(tensor, 1.0, image.Pt(c.size, c.size), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.net.SetInput(blob, "")
	out := c.net.Forward("")
	defer out.Close()

	probs, err := out.DataPtrFloat32()
	if err != nil {
		return gesture.Classification{}, fmt.Errorf("read model output: %w", err)
	}
	// Copy out of the Mat before it is closed.
	scores := append([]float32(nil), probs...)

	return gesture.FromProbabilities(c.labels, scores)
}

// Close releases the network.
func (c *DNNClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.net.Close()
}
