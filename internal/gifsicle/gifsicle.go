// Package gifsicle merges a frame sequence into an animated GIF.
package gifsicle

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"vid2gif/internal/command"
	"vid2gif/internal/config"
)

// DefaultDelay is the frame delay used when no frame rate is requested, in
// hundredths of a second (25 fps).
const DefaultDelay = 4

// Delay converts a frame rate to gifsicle's delay unit, hundredths of a
// second. GIF delays are whole centiseconds, so the result is rounded and
// never drops below one.
func Delay(fps float64) int {
	if fps <= 0 {
		return DefaultDelay
	}
	delay := int(math.Round(100 / fps))
	if delay < 1 {
		return 1
	}
	return delay
}

// EncodeArgs builds the encoder arguments. Frames are passed in playback
// order and the output comes last.
func EncodeArgs(opts config.Options, frames []string) []string {
	args := []string{"--loop"}

	if opts.Colors > 0 {
		args = append(args, "--colors", strconv.Itoa(opts.Colors))
	}

	args = append(args, "--delay", strconv.Itoa(Delay(opts.FPS)))
	args = append(args, fmt.Sprintf("-O%d", opts.Optimisation))

	args = append(args, frames...)
	return append(args, "-o", opts.OutFile)
}

// Encode runs gifsicle over frames and writes opts.OutFile.
func Encode(ctx context.Context, exec command.Executor, bin string, opts config.Options, frames []string) error {
	if _, err := exec.Execute(ctx, bin, EncodeArgs(opts, frames)...); err != nil {
		return fmt.Errorf("encoding failed: %w", err)
	}
	return nil
}
