// Package transform crops and resizes extracted frames before encoding.
package transform

import (
	"context"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"vid2gif/internal/command"
	"vid2gif/internal/config"
)

// Transformer applies crop, then resize, to every frame. The returned
// sequence has the same length and order as the input.
type Transformer interface {
	Name() string
	// FrameExt is the image format the decoder must write for this backend.
	FrameExt() string
	Transform(ctx context.Context, frames []string, crop *config.Crop, width int) ([]string, error)
}

// New returns the backend registered under name.
func New(name string, exec command.Executor, mogrifyBin string, progress io.Writer, logger *zap.Logger) (Transformer, error) {
	switch name {
	case config.ResizerImaging:
		return NewImaging(progress, logger), nil
	case config.ResizerMogrify:
		return NewMogrify(exec, mogrifyBin, logger), nil
	default:
		return nil, fmt.Errorf("unknown resizer %q", name)
	}
}

// ResizedHeight scales height by the same factor that takes width to
// target, so the aspect ratio is kept. The result is at least one pixel.
func ResizedHeight(width, height, target int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	h := int(math.Round(float64(height) * float64(target) / float64(width)))
	if h < 1 {
		return 1
	}
	return h
}
