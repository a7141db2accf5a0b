// Package config turns command-line input into a validated, immutable Options value.
package config

import (
	"fmt"
	"regexp"
	"strings"

	"vid2gif/internal/validation"
)

// Resizer backends for the per-frame transform stage.
const (
	ResizerImaging = "imaging"
	ResizerMogrify = "mogrify"
)

const (
	DefaultOptimisation = 1
	MaxOptimisation     = 3
	MinColors           = 2
	MaxColors           = 256
)

// ffmpeg time duration syntax: "SS[.m]" or "[HH:]MM:SS[.m]"
var timeRegex = regexp.MustCompile(`^(\d+(\.\d+)?|(\d+:)?\d{1,2}:\d{1,2}(\.\d+)?)$`)

// ValidationError reports an option that was missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Raw holds option values exactly as they were bound from the command line.
type Raw struct {
	InFile       string
	OutFile      string
	Start        string
	Length       string
	Width        int
	Crop         string
	FPS          float64
	Colors       int
	Optimisation int
	LoopReverse  bool
	Preview      bool
	Debug        bool
	Yes          bool
	Resizer      string
}

// Options is the validated run configuration. Zero values mean "unset".
type Options struct {
	InFile       string
	OutFile      string
	Start        string
	Length       string
	Width        int
	Crop         *Crop
	FPS          float64
	Colors       int
	Optimisation int
	LoopReverse  bool
	Preview      bool
	Debug        bool
	Yes          bool
	Resizer      string
}

// New validates raw input and builds Options. No file is created and no
// process is started here.
func New(raw Raw) (Options, error) {
	opts := Options{
		InFile:       validation.CleanPath(raw.InFile),
		OutFile:      validation.CleanPath(raw.OutFile),
		Start:        strings.TrimSpace(raw.Start),
		Length:       strings.TrimSpace(raw.Length),
		Width:        raw.Width,
		FPS:          raw.FPS,
		Colors:       raw.Colors,
		Optimisation: raw.Optimisation,
		LoopReverse:  raw.LoopReverse,
		Preview:      raw.Preview,
		Debug:        raw.Debug,
		Yes:          raw.Yes,
		Resizer:      strings.ToLower(strings.TrimSpace(raw.Resizer)),
	}

	if err := validation.ValidateInputPath(raw.InFile); err != nil {
		return Options{}, invalid("infile", "%v", err)
	}
	if !opts.Preview {
		if err := validation.ValidateOutputPath(raw.OutFile); err != nil {
			return Options{}, invalid("outfile", "%v", err)
		}
	}

	if opts.Start != "" && !timeRegex.MatchString(opts.Start) {
		return Options{}, invalid("start", "%q is not a time (expected SS[.ms] or [HH:]MM:SS[.ms])", opts.Start)
	}
	if opts.Length != "" && !timeRegex.MatchString(opts.Length) {
		return Options{}, invalid("length", "%q is not a duration (expected SS[.ms] or [HH:]MM:SS[.ms])", opts.Length)
	}

	if opts.Width < 0 {
		return Options{}, invalid("width", "must be a positive integer, got %d", opts.Width)
	}

	if strings.TrimSpace(raw.Crop) != "" {
		crop, err := ParseCrop(raw.Crop)
		if err != nil {
			return Options{}, err
		}
		opts.Crop = &crop
	}

	if opts.FPS < 0 {
		return Options{}, invalid("fps", "must be positive, got %g", opts.FPS)
	}

	if opts.Colors != 0 && (opts.Colors < MinColors || opts.Colors > MaxColors) {
		return Options{}, invalid("colors", "must be between %d and %d, got %d", MinColors, MaxColors, opts.Colors)
	}

	if opts.Optimisation == 0 {
		opts.Optimisation = DefaultOptimisation
	}
	if opts.Optimisation < 1 || opts.Optimisation > MaxOptimisation {
		return Options{}, invalid("optimisation", "must be between 1 and %d, got %d", MaxOptimisation, opts.Optimisation)
	}

	switch opts.Resizer {
	case "":
		opts.Resizer = ResizerImaging
	case ResizerImaging, ResizerMogrify:
	default:
		return Options{}, invalid("resizer", "unknown backend %q (use %s or %s)", opts.Resizer, ResizerImaging, ResizerMogrify)
	}

	return opts, nil
}

// NeedsTransform reports whether frames must go through the per-frame transform stage.
func (o Options) NeedsTransform() bool {
	return o.Crop != nil
}

// InlineScale reports whether the width can be applied by the decoder while
// extracting, which is only possible when nothing has to be cropped first.
func (o Options) InlineScale() bool {
	return o.Width > 0 && o.Crop == nil
}
