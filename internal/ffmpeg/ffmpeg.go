// Package ffmpeg builds and runs the decoder and playback invocations.
package ffmpeg

import (
	"context"
	"fmt"
	"strings"

	"vid2gif/internal/command"
	"vid2gif/internal/config"
)

// ScaleFilter keeps the aspect ratio by letting the decoder derive the height.
func ScaleFilter(width int) string {
	return fmt.Sprintf("scale=%d:-1", width)
}

// timeArgs seeks to start and limits decoding to length. Both are optional.
func timeArgs(opts config.Options) []string {
	var args []string
	if opts.Start != "" {
		args = append(args, "-ss", opts.Start)
	}
	if opts.Length != "" {
		args = append(args, "-t", opts.Length)
	}
	return args
}

// ExtractArgs builds the decoder arguments that split the clip into
// numbered frames matching pattern.
func ExtractArgs(opts config.Options, pattern string) []string {
	args := timeArgs(opts)
	args = append(args, "-i", opts.InFile)

	if opts.InlineScale() {
		args = append(args, "-vf", ScaleFilter(opts.Width))
	}

	return append(args, pattern)
}

// PreviewArgs builds the player arguments for a silent, looping preview of
// the selected clip with crop and width applied.
func PreviewArgs(opts config.Options) []string {
	args := []string{"-an", "-loop", "0"}
	args = append(args, timeArgs(opts)...)

	var filters []string
	if opts.Crop != nil {
		filters = append(filters, opts.Crop.Filter())
	}
	if opts.Width > 0 {
		filters = append(filters, ScaleFilter(opts.Width))
	}
	if len(filters) > 0 {
		args = append(args, "-vf", strings.Join(filters, ","))
	}

	return append(args, opts.InFile)
}

// Extract runs the decoder. Frames land in the directory named by pattern.
func Extract(ctx context.Context, exec command.Executor, bin string, opts config.Options, pattern string) error {
	if _, err := exec.Execute(ctx, bin, ExtractArgs(opts, pattern)...); err != nil {
		return fmt.Errorf("frame extraction failed: %w", err)
	}
	return nil
}

// Preview plays the clip and blocks until the player exits.
func Preview(ctx context.Context, exec command.Executor, bin string, opts config.Options) error {
	if _, err := exec.Execute(ctx, bin, PreviewArgs(opts)...); err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	return nil
}
