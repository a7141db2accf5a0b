package transform

import (
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"vid2gif/internal/config"
)

// Imaging processes one frame at a time in-process and writes each result
// next to its source as a GIF.
type Imaging struct {
	progress io.Writer
	logger   *zap.Logger
}

// NewImaging creates the in-process backend. A nil progress writer disables the progress bar.
func NewImaging(progress io.Writer, logger *zap.Logger) *Imaging {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Imaging{progress: progress, logger: logger}
}

func (t *Imaging) Name() string     { return config.ResizerImaging }
func (t *Imaging) FrameExt() string { return "png" }

func (t *Imaging) Transform(ctx context.Context, frames []string, crop *config.Crop, width int) ([]string, error) {
	var bar *progressbar.ProgressBar
	if t.progress != nil && len(frames) > 0 {
		bar = newProgressBar(t.progress, len(frames))
		defer bar.Finish()
	}

	out := make([]string, 0, len(frames))
	for _, frame := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dst, err := t.transformFrame(frame, crop, width)
		if err != nil {
			return nil, err
		}
		out = append(out, dst)

		if bar != nil {
			bar.Add(1)
		}
	}

	t.logger.Debug("frames transformed", zap.Int("frames", len(out)))
	return out, nil
}

func (t *Imaging) transformFrame(src string, crop *config.Crop, width int) (string, error) {
	img, err := imaging.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open frame %s: %w", filepath.Base(src), err)
	}

	img, err = Apply(img, crop, width)
	if err != nil {
		return "", fmt.Errorf("frame %s: %w", filepath.Base(src), err)
	}

	dst := strings.TrimSuffix(src, filepath.Ext(src)) + ".gif"
	if err := imaging.Save(img, dst); err != nil {
		return "", fmt.Errorf("failed to save frame %s: %w", filepath.Base(dst), err)
	}
	return dst, nil
}

// Apply crops img to the rectangle and then resizes it to width, deriving
// the height from the cropped aspect ratio.
func Apply(img image.Image, crop *config.Crop, width int) (image.Image, error) {
	if crop != nil {
		rect := crop.Rect().Intersect(img.Bounds())
		if rect.Empty() {
			return nil, fmt.Errorf("crop %s lies outside the %dx%d frame",
				crop.Geometry(), img.Bounds().Dx(), img.Bounds().Dy())
		}
		img = imaging.Crop(img, rect)
	}

	if width > 0 {
		b := img.Bounds()
		img = imaging.Resize(img, width, ResizedHeight(b.Dx(), b.Dy(), width), imaging.Lanczos)
	}

	return img, nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Transforming frames"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
	)
}
