// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vid2gif/internal/command"
	"vid2gif/internal/config"
	"vid2gif/internal/logging"
	"vid2gif/internal/pipeline"
	"vid2gif/internal/ui"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
)

// environment carries everything main pulls from the process so tests can
// swap it out.
type environment struct {
	Stdout io.Writer
	Stderr io.Writer
	// Interactive is true when stdin is a terminal and prompts are allowed.
	Interactive bool
	// ShowProgress is true when stderr is a terminal.
	ShowProgress bool
	NewExecutor  func(logger *zap.Logger) command.Executor
	Confirm      func(label string) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, os.Args[1:], environment{
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Interactive:  isTerminal(os.Stdin),
		ShowProgress: isTerminal(os.Stderr),
		NewExecutor: func(logger *zap.Logger) command.Executor {
			return command.NewExecExecutor(logger)
		},
		Confirm: ui.Confirm,
	})

	stop()
	os.Exit(code)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func run(ctx context.Context, args []string, env environment) int {
	tools, err := config.LoadTools()
	if err != nil {
		ui.Error(env.Stderr, fmt.Errorf("reading environment: %w", err))
		return exitValidation
	}

	cmd := newRootCmd(tools, env)
	cmd.SetArgs(args)
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)

	err = cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	ui.Error(env.Stderr, err)
	return exitCode(err)
}

func exitCode(err error) int {
	var validationErr *config.ValidationError
	if errors.As(err, &validationErr) {
		return exitValidation
	}
	return exitFailure
}

func newRootCmd(tools *config.Tools, env environment) *cobra.Command {
	raw := config.Raw{}

	cmd := &cobra.Command{
		Use:   "vid2gif infile outfile",
		Short: "Convert a section of a video to an animated GIF",
		Long: `Convert a section of a video to an animated GIF.

Frames are extracted with ffmpeg, optionally cropped and resized, and merged
with gifsicle. Use --preview to watch the selected clip with ffplay first.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(2)(cmd, args); err != nil {
				return &config.ValidationError{Field: "arguments", Reason: err.Error()}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw.InFile = args[0]
			raw.OutFile = args[1]
			return convert(cmd.Context(), raw, tools, env)
		},
	}

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &config.ValidationError{Field: "flags", Reason: err.Error()}
	})

	flags := cmd.Flags()
	flags.StringVarP(&raw.Start, "start", "s", "", "Start time of the clip (SS[.ms] or [HH:]MM:SS[.ms])")
	flags.StringVarP(&raw.Length, "length", "l", "", "Length of the clip (SS[.ms] or [HH:]MM:SS[.ms])")
	flags.IntVarP(&raw.Width, "width", "w", 0, "Output width in pixels, height follows the aspect ratio")
	flags.StringVarP(&raw.Crop, "crop", "x", "", "Crop rectangle as WIDTHxHEIGHT+X+Y")
	flags.Float64VarP(&raw.FPS, "fps", "f", 0, "Playback frame rate of the GIF")
	flags.IntVarP(&raw.Colors, "colors", "c", 0, "Reduce the palette to this many colors (2-256)")
	flags.IntVarP(&raw.Optimisation, "optimisation", "O", config.DefaultOptimisation, "gifsicle optimisation level (1-3)")
	flags.BoolVarP(&raw.LoopReverse, "loopreverse", "L", false, "Play the frames forward then backward")
	flags.BoolVarP(&raw.Preview, "preview", "p", false, "Play the selected clip instead of writing a GIF")
	flags.BoolVar(&raw.Debug, "debug", false, "Verbose logging and input probe")
	flags.BoolVarP(&raw.Yes, "yes", "y", false, "Overwrite outfile without asking")
	flags.StringVar(&raw.Resizer, "resizer", tools.Resizer, "Crop and resize backend: imaging or mogrify")

	return cmd
}

func convert(ctx context.Context, raw config.Raw, tools *config.Tools, env environment) error {
	opts, err := config.New(raw)
	if err != nil {
		return err
	}

	logger, err := logging.New(opts.Debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	if err := confirmOverwrite(opts, env); err != nil {
		return err
	}

	deps := pipeline.Deps{
		Executor: env.NewExecutor(logger),
		Tools:    *tools,
		Logger:   logger,
		Out:      env.Stdout,
	}
	if env.ShowProgress {
		deps.Progress = env.Stderr
	}

	if err := pipeline.New(deps).Run(ctx, opts); err != nil {
		return err
	}

	if !opts.Preview {
		ui.Success(env.Stdout, "GIF saved to: %s", opts.OutFile)
	}
	return nil
}

// confirmOverwrite asks before replacing an existing outfile. Without a
// terminal there is nobody to ask, so the file is overwritten.
func confirmOverwrite(opts config.Options, env environment) error {
	if opts.Preview || opts.Yes || !env.Interactive || env.Confirm == nil {
		return nil
	}
	if _, err := os.Stat(opts.OutFile); err != nil {
		return nil
	}
	return env.Confirm(fmt.Sprintf("%s exists, overwrite", opts.OutFile))
}
