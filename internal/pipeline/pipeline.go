// Package pipeline runs a conversion end to end: extract, transform,
// assemble and encode.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vid2gif/internal/command"
	"vid2gif/internal/config"
	"vid2gif/internal/ffmpeg"
	"vid2gif/internal/gifsicle"
	"vid2gif/internal/sequence"
	"vid2gif/internal/transform"
	"vid2gif/internal/ui"
	"vid2gif/internal/video"
	"vid2gif/internal/workspace"
)

// ErrNoFrames is returned when the decoder succeeds but writes no frames,
// e.g. when the start time lies past the end of the clip.
var ErrNoFrames = errors.New("no frames extracted from video")

const scratchPrefix = "vid2gif-"

type Deps struct {
	Executor command.Executor
	Tools    config.Tools
	Logger   *zap.Logger
	// Out receives user-facing messages.
	Out io.Writer
	// Progress receives the per-frame progress bar; nil disables it.
	Progress io.Writer
}

type Pipeline struct {
	exec     command.Executor
	tools    config.Tools
	logger   *zap.Logger
	out      io.Writer
	progress io.Writer
}

func New(deps Deps) *Pipeline {
	p := &Pipeline{
		exec:     deps.Executor,
		tools:    deps.Tools,
		logger:   deps.Logger,
		out:      deps.Out,
		progress: deps.Progress,
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.out == nil {
		p.out = io.Discard
	}
	return p
}

// Run executes one conversion. The scratch directory is removed on every
// return path, including errors and preview.
func (p *Pipeline) Run(ctx context.Context, opts config.Options) error {
	log := p.logger.With(zap.String("run_id", uuid.NewString()))

	transformer, err := transform.New(opts.Resizer, p.exec, p.tools.Mogrify, p.progress, log)
	if err != nil {
		return &config.ValidationError{Field: "resizer", Reason: err.Error()}
	}

	if err := p.checkTools(opts); err != nil {
		return err
	}

	if opts.Debug {
		p.showVideoInfo(ctx, opts, log)
	}

	scratch, err := workspace.New(p.tools.TempDir, scratchPrefix)
	if err != nil {
		return err
	}
	defer func() {
		if err := scratch.Close(); err != nil {
			log.Warn("scratch directory cleanup failed", zap.Error(err))
		}
	}()

	ui.Info(p.out, "Using temporary directory %q", scratch.Dir())
	log.Debug("scratch directory created", zap.String("dir", scratch.Dir()))

	if opts.Preview {
		return ffmpeg.Preview(ctx, p.exec, p.tools.FFplay, opts)
	}

	ext := "gif"
	if opts.NeedsTransform() {
		ext = transformer.FrameExt()
	}

	if err := ffmpeg.Extract(ctx, p.exec, p.tools.FFmpeg, opts, scratch.Pattern(ext)); err != nil {
		return err
	}

	frames, err := scratch.Frames(ext)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return ErrNoFrames
	}
	log.Debug("frames extracted", zap.Int("count", len(frames)))

	if opts.NeedsTransform() {
		transformed, err := transformer.Transform(ctx, frames, opts.Crop, opts.Width)
		if err != nil {
			return err
		}
		if len(transformed) != len(frames) {
			return fmt.Errorf("%s transform returned %d frames, expected %d", transformer.Name(), len(transformed), len(frames))
		}
		frames = transformed
	}

	frames = sequence.Assemble(frames, opts.LoopReverse)
	log.Debug("playback sequence assembled",
		zap.Int("count", len(frames)),
		zap.Bool("loop_reverse", opts.LoopReverse),
	)

	if err := gifsicle.Encode(ctx, p.exec, p.tools.Gifsicle, opts, frames); err != nil {
		return err
	}

	log.Debug("gif written", zap.String("output", opts.OutFile))
	return nil
}

// RequiredTools lists the programs a run with opts will invoke.
func (p *Pipeline) RequiredTools(opts config.Options) []string {
	if opts.Preview {
		return []string{p.tools.FFplay}
	}

	tools := []string{p.tools.FFmpeg}
	if opts.NeedsTransform() && opts.Resizer == config.ResizerMogrify {
		tools = append(tools, p.tools.Mogrify)
	}
	return append(tools, p.tools.Gifsicle)
}

func (p *Pipeline) checkTools(opts config.Options) error {
	var missing []string
	for _, tool := range p.RequiredTools(opts) {
		if !p.exec.IsAvailable(tool) {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return &config.ValidationError{
			Field:  "tools",
			Reason: fmt.Sprintf("not found in PATH: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}

func (p *Pipeline) showVideoInfo(ctx context.Context, opts config.Options, log *zap.Logger) {
	if !p.exec.IsAvailable(p.tools.FFprobe) {
		log.Debug("ffprobe not available, skipping input probe")
		return
	}

	info, err := video.GetVideoInfo(ctx, p.exec, p.tools.FFprobe, opts.InFile)
	if err != nil {
		log.Warn("could not probe input", zap.Error(err))
		return
	}
	ui.DisplayVideoInfo(p.out, info)
}
