package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vid2gif/internal/command"
	"vid2gif/internal/config"
	"vid2gif/internal/mocks"
)

type fixture struct {
	exec    *mocks.MockCommandExecutor
	tmp     string
	out     bytes.Buffer
	p       *Pipeline
	extract int // frames the fake decoder writes
}

func newFixture(t *testing.T, extract int) *fixture {
	t.Helper()

	f := &fixture{exec: mocks.NewMockCommandExecutor(), tmp: t.TempDir(), extract: extract}
	f.exec.OnExecute = func(name string, args []string) error {
		if name != "ffmpeg" {
			return nil
		}
		return writeFrames(args[len(args)-1], f.extract)
	}
	f.p = New(Deps{
		Executor: f.exec,
		Tools: config.Tools{
			FFmpeg:   "ffmpeg",
			FFplay:   "ffplay",
			FFprobe:  "ffprobe",
			Mogrify:  "mogrify",
			Gifsicle: "gifsicle",
			TempDir:  f.tmp,
		},
		Out: &f.out,
	})
	return f
}

// writeFrames plays the decoder: it fills the printf pattern with n frames.
func writeFrames(pattern string, n int) error {
	for i := 1; i <= n; i++ {
		path := fmt.Sprintf(pattern, i)
		if strings.HasSuffix(path, ".png") {
			img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
			for x := 0; x < 40; x++ {
				for y := 0; y < 20; y++ {
					img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 12), A: 255})
				}
			}
			file, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := png.Encode(file, img); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			continue
		}
		if err := os.WriteFile(path, []byte("GIF89a"), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fixture) assertScratchRemoved(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch directory left behind")
}

// encodedFrames returns the frame arguments of the single gifsicle call.
func (f *fixture) encodedFrames(t *testing.T) []string {
	t.Helper()
	calls := f.exec.CallsTo("gifsicle")
	require.Len(t, calls, 1)

	fields := strings.Fields(calls[0])
	var frames []string
	for _, field := range fields {
		if strings.HasPrefix(filepath.Base(field), "out") && strings.Contains(field, string(filepath.Separator)) {
			frames = append(frames, filepath.Base(field))
		}
	}
	return frames
}

func baseOptions() config.Options {
	return config.Options{
		InFile:       "clip.mp4",
		OutFile:      "out.gif",
		Optimisation: 1,
		Resizer:      config.ResizerImaging,
	}
}

func TestRunTimeWindowAndFrameRate(t *testing.T) {
	f := newFixture(t, 3)
	opts := baseOptions()
	opts.Start = "00:00:05"
	opts.Length = "00:00:02"
	opts.FPS = 10

	require.NoError(t, f.p.Run(context.Background(), opts))

	ffmpegCalls := f.exec.CallsTo("ffmpeg")
	require.Len(t, ffmpegCalls, 1)
	assert.Contains(t, ffmpegCalls[0], "-ss 00:00:05 -t 00:00:02 -i clip.mp4")

	gifsicleCalls := f.exec.CallsTo("gifsicle")
	require.Len(t, gifsicleCalls, 1)
	assert.Contains(t, gifsicleCalls[0], "--loop --delay 10 -O1")
	assert.True(t, strings.HasSuffix(gifsicleCalls[0], "-o out.gif"))

	assert.Contains(t, f.out.String(), "Using temporary directory")
	f.assertScratchRemoved(t)
}

func TestRunPassesExtractedFramesInOrder(t *testing.T) {
	f := newFixture(t, 12)

	require.NoError(t, f.p.Run(context.Background(), baseOptions()))

	var want []string
	for i := 1; i <= 12; i++ {
		want = append(want, fmt.Sprintf("out%04d.gif", i))
	}
	assert.Equal(t, want, f.encodedFrames(t))
	assert.Empty(t, f.exec.CallsTo("mogrify"))
	f.assertScratchRemoved(t)
}

func TestRunLoopReverse(t *testing.T) {
	f := newFixture(t, 4)
	opts := baseOptions()
	opts.LoopReverse = true

	require.NoError(t, f.p.Run(context.Background(), opts))

	assert.Equal(t, []string{
		"out0001.gif", "out0002.gif", "out0003.gif", "out0004.gif",
		"out0003.gif", "out0002.gif",
	}, f.encodedFrames(t))
}

func TestRunWidthOnlyScalesWhileDecoding(t *testing.T) {
	f := newFixture(t, 2)
	opts := baseOptions()
	opts.Width = 320

	require.NoError(t, f.p.Run(context.Background(), opts))

	assert.Contains(t, f.exec.CallsTo("ffmpeg")[0], "-vf scale=320:-1")
	assert.Len(t, f.encodedFrames(t), 2)
}

func TestRunCropAndResizeWithMogrify(t *testing.T) {
	f := newFixture(t, 3)
	opts := baseOptions()
	opts.Resizer = config.ResizerMogrify
	opts.Crop = &config.Crop{Width: 20, Height: 10, XOffset: 5, YOffset: 5}
	opts.Width = 10

	require.NoError(t, f.p.Run(context.Background(), opts))

	ffmpegCall := f.exec.CallsTo("ffmpeg")[0]
	assert.NotContains(t, ffmpegCall, "scale=")
	assert.True(t, strings.HasSuffix(ffmpegCall, "out%04d.gif"))

	mogrifyCalls := f.exec.CallsTo("mogrify")
	require.Len(t, mogrifyCalls, 1)
	assert.Contains(t, mogrifyCalls[0], "-crop 20x10+5+5 +repage -resize 10")
	assert.Less(t, strings.Index(mogrifyCalls[0], "-crop"), strings.Index(mogrifyCalls[0], "-resize"))

	assert.Equal(t, []string{"out0001.gif", "out0002.gif", "out0003.gif"}, f.encodedFrames(t))

	// extraction, transform, encode in that order
	require.Len(t, f.exec.CallLog, 3)
	assert.True(t, strings.HasPrefix(f.exec.CallLog[0], "ffmpeg"))
	assert.True(t, strings.HasPrefix(f.exec.CallLog[1], "mogrify"))
	assert.True(t, strings.HasPrefix(f.exec.CallLog[2], "gifsicle"))
	f.assertScratchRemoved(t)
}

func TestRunCropAndResizeWithImaging(t *testing.T) {
	f := newFixture(t, 5)
	opts := baseOptions()
	opts.Crop = &config.Crop{Width: 20, Height: 10, XOffset: 10, YOffset: 5}
	opts.Width = 8
	opts.LoopReverse = true

	require.NoError(t, f.p.Run(context.Background(), opts))

	assert.True(t, strings.HasSuffix(f.exec.CallsTo("ffmpeg")[0], "out%04d.png"))
	assert.Empty(t, f.exec.CallsTo("mogrify"))

	frames := f.encodedFrames(t)
	assert.Len(t, frames, 2*5-2)
	for _, frame := range frames {
		assert.Equal(t, ".gif", filepath.Ext(frame))
	}
	f.assertScratchRemoved(t)
}

func TestRunPreview(t *testing.T) {
	f := newFixture(t, 3)
	opts := baseOptions()
	opts.Preview = true
	opts.Width = 200

	require.NoError(t, f.p.Run(context.Background(), opts))

	require.Len(t, f.exec.CallLog, 1)
	assert.Equal(t, "ffplay -an -loop 0 -vf scale=200:-1 clip.mp4", f.exec.CallLog[0])
	f.assertScratchRemoved(t)
}

func TestRunPreviewFailure(t *testing.T) {
	f := newFixture(t, 0)
	f.exec.Errors["ffplay"] = errors.New("could not open display")
	opts := baseOptions()
	opts.Preview = true

	err := f.p.Run(context.Background(), opts)
	var toolErr *command.ToolError
	require.True(t, errors.As(err, &toolErr))
	f.assertScratchRemoved(t)
}

func TestRunExtractionFailureStopsPipeline(t *testing.T) {
	f := newFixture(t, 3)
	f.exec.Errors["ffmpeg"] = errors.New("clip.mp4: Invalid data found when processing input")

	err := f.p.Run(context.Background(), baseOptions())

	var toolErr *command.ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "ffmpeg", toolErr.Tool)
	assert.Contains(t, err.Error(), "Invalid data found")
	assert.Empty(t, f.exec.CallsTo("gifsicle"))
	f.assertScratchRemoved(t)
}

func TestRunTransformFailureStopsPipeline(t *testing.T) {
	f := newFixture(t, 3)
	f.exec.Errors["mogrify"] = errors.New("mogrify: no decode delegate")
	opts := baseOptions()
	opts.Resizer = config.ResizerMogrify
	opts.Crop = &config.Crop{Width: 1, Height: 1}

	err := f.p.Run(context.Background(), opts)
	require.Error(t, err)
	assert.Empty(t, f.exec.CallsTo("gifsicle"))
	f.assertScratchRemoved(t)
}

func TestRunEncodingFailure(t *testing.T) {
	f := newFixture(t, 3)
	f.exec.Errors["gifsicle"] = errors.New("gifsicle: out.gif: Permission denied")

	err := f.p.Run(context.Background(), baseOptions())

	var toolErr *command.ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "gifsicle", toolErr.Tool)
	f.assertScratchRemoved(t)
}

func TestRunNoFrames(t *testing.T) {
	f := newFixture(t, 0)

	err := f.p.Run(context.Background(), baseOptions())
	assert.ErrorIs(t, err, ErrNoFrames)
	assert.Empty(t, f.exec.CallsTo("gifsicle"))
	f.assertScratchRemoved(t)
}

func TestRunMissingTools(t *testing.T) {
	f := newFixture(t, 3)
	f.exec.AvailableCommands["gifsicle"] = false

	err := f.p.Run(context.Background(), baseOptions())

	var vErr *config.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "tools", vErr.Field)
	assert.Contains(t, vErr.Reason, "gifsicle")
	assert.Empty(t, f.exec.CallLog)
	f.assertScratchRemoved(t)
}

func TestRequiredTools(t *testing.T) {
	p := newFixture(t, 0).p

	opts := baseOptions()
	assert.Equal(t, []string{"ffmpeg", "gifsicle"}, p.RequiredTools(opts))

	opts.Crop = &config.Crop{Width: 1, Height: 1}
	assert.Equal(t, []string{"ffmpeg", "gifsicle"}, p.RequiredTools(opts))

	opts.Resizer = config.ResizerMogrify
	assert.Equal(t, []string{"ffmpeg", "mogrify", "gifsicle"}, p.RequiredTools(opts))

	opts.Preview = true
	assert.Equal(t, []string{"ffplay"}, p.RequiredTools(opts))
}

func TestRunDebugShowsVideoInfo(t *testing.T) {
	f := newFixture(t, 2)
	f.exec.Responses["ffprobe"] = []byte(`{"streams":[{"codec_type":"video","width":640,"height":360}],"format":{"format_name":"mp4","duration":"4.0"}}`)

	in := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(in, []byte("fake"), 0644))
	opts := baseOptions()
	opts.InFile = in
	opts.Debug = true

	require.NoError(t, f.p.Run(context.Background(), opts))
	assert.Len(t, f.exec.CallsTo("ffprobe"), 1)
	assert.Contains(t, f.out.String(), "640x360")
}

func TestRunDebugProbeFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, 2)
	f.exec.Errors["ffprobe"] = errors.New("End of file")

	in := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(in, []byte("fake"), 0644))
	opts := baseOptions()
	opts.InFile = in
	opts.Debug = true

	require.NoError(t, f.p.Run(context.Background(), opts))
	assert.Len(t, f.exec.CallsTo("gifsicle"), 1)
}

func TestRunCancelledContext(t *testing.T) {
	f := newFixture(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.p.Run(ctx, baseOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	f.assertScratchRemoved(t)
}
