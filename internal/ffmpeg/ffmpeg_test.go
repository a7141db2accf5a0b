package ffmpeg

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vid2gif/internal/command"
	"vid2gif/internal/config"
	"vid2gif/internal/mocks"
)

func TestExtractArgs(t *testing.T) {
	tests := []struct {
		name       string
		opts       config.Options
		expectArgs []string
	}{
		{
			name:       "Whole clip",
			opts:       config.Options{InFile: "clip.mp4"},
			expectArgs: []string{"-i", "clip.mp4", "/s/out%04d.gif"},
		},
		{
			name:       "Time window",
			opts:       config.Options{InFile: "clip.mp4", Start: "00:00:05", Length: "00:00:02"},
			expectArgs: []string{"-ss", "00:00:05", "-t", "00:00:02", "-i", "clip.mp4", "/s/out%04d.gif"},
		},
		{
			name:       "Length only",
			opts:       config.Options{InFile: "clip.mp4", Length: "3"},
			expectArgs: []string{"-t", "3", "-i", "clip.mp4", "/s/out%04d.gif"},
		},
		{
			name:       "Width applied while decoding",
			opts:       config.Options{InFile: "clip.mp4", Width: 320},
			expectArgs: []string{"-i", "clip.mp4", "-vf", "scale=320:-1", "/s/out%04d.gif"},
		},
		{
			name: "Width deferred when cropping",
			opts: config.Options{
				InFile: "clip.mp4",
				Width:  320,
				Crop:   &config.Crop{Width: 100, Height: 100},
			},
			expectArgs: []string{"-i", "clip.mp4", "/s/out%04d.gif"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractArgs(tt.opts, "/s/out%04d.gif")
			if strings.Join(got, " ") != strings.Join(tt.expectArgs, " ") {
				t.Errorf("Expected args %v, got %v", tt.expectArgs, got)
			}
		})
	}
}

func TestPreviewArgs(t *testing.T) {
	tests := []struct {
		name       string
		opts       config.Options
		expectArgs []string
	}{
		{
			name:       "Plain preview",
			opts:       config.Options{InFile: "clip.mp4"},
			expectArgs: []string{"-an", "-loop", "0", "clip.mp4"},
		},
		{
			name:       "Trimmed and scaled",
			opts:       config.Options{InFile: "clip.mp4", Start: "5", Length: "2", Width: 240},
			expectArgs: []string{"-an", "-loop", "0", "-ss", "5", "-t", "2", "-vf", "scale=240:-1", "clip.mp4"},
		},
		{
			name: "Crop before scale",
			opts: config.Options{
				InFile: "clip.mp4",
				Width:  240,
				Crop:   &config.Crop{Width: 640, Height: 360, XOffset: 0, YOffset: 60},
			},
			expectArgs: []string{"-an", "-loop", "0", "-vf", "crop=640:360:0:60,scale=240:-1", "clip.mp4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PreviewArgs(tt.opts)
			if strings.Join(got, " ") != strings.Join(tt.expectArgs, " ") {
				t.Errorf("Expected args %v, got %v", tt.expectArgs, got)
			}
		})
	}
}

func TestExtractRunsDecoder(t *testing.T) {
	mockCmd := mocks.NewMockCommandExecutor()
	opts := config.Options{InFile: "clip.mp4", Start: "1"}

	if err := Extract(context.Background(), mockCmd, "ffmpeg", opts, "/s/out%04d.gif"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(mockCmd.CallLog) != 1 || mockCmd.CallLog[0] != "ffmpeg -ss 1 -i clip.mp4 /s/out%04d.gif" {
		t.Errorf("Unexpected call log: %v", mockCmd.CallLog)
	}
}

func TestExtractFailure(t *testing.T) {
	mockCmd := mocks.NewMockCommandExecutor()
	mockCmd.Errors["ffmpeg"] = errors.New("Invalid data found when processing input")

	err := Extract(context.Background(), mockCmd, "ffmpeg", config.Options{InFile: "clip.mp4"}, "/s/out%04d.gif")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var toolErr *command.ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("Expected ToolError, got %T", err)
	}
	if !strings.Contains(err.Error(), "Invalid data") {
		t.Errorf("Expected captured output in error, got: %v", err)
	}
}

func TestPreviewRunsPlayer(t *testing.T) {
	mockCmd := mocks.NewMockCommandExecutor()

	if err := Preview(context.Background(), mockCmd, "ffplay", config.Options{InFile: "clip.mp4"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := mockCmd.CallsTo("ffplay"); len(got) != 1 {
		t.Errorf("Expected one ffplay call, got %v", mockCmd.CallLog)
	}
}
