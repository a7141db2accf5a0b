package transform

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"vid2gif/internal/command"
	"vid2gif/internal/config"
)

// Mogrify edits all frames in place with a single ImageMagick invocation.
type Mogrify struct {
	exec   command.Executor
	bin    string
	logger *zap.Logger
}

func NewMogrify(exec command.Executor, bin string, logger *zap.Logger) *Mogrify {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mogrify{exec: exec, bin: bin, logger: logger}
}

func (m *Mogrify) Name() string     { return config.ResizerMogrify }
func (m *Mogrify) FrameExt() string { return "gif" }

// Args builds the mogrify arguments. ImageMagick applies operators in the
// order given, so the crop always precedes the resize.
func (m *Mogrify) Args(frames []string, crop *config.Crop, width int) []string {
	var args []string
	if crop != nil {
		// +repage drops the virtual canvas left behind by -crop
		args = append(args, "-crop", crop.Geometry(), "+repage")
	}
	if width > 0 {
		args = append(args, "-resize", strconv.Itoa(width))
	}
	if len(args) == 0 {
		return nil
	}
	return append(args, frames...)
}

func (m *Mogrify) Transform(ctx context.Context, frames []string, crop *config.Crop, width int) ([]string, error) {
	out := append([]string(nil), frames...)

	args := m.Args(frames, crop, width)
	if args == nil || len(frames) == 0 {
		return out, nil
	}

	m.logger.Debug("transforming frames with mogrify", zap.Int("frames", len(frames)))
	if _, err := m.exec.Execute(ctx, m.bin, args...); err != nil {
		return nil, fmt.Errorf("frame transform failed: %w", err)
	}
	return out, nil
}
