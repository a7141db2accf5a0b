// Package video reads stream metadata from the input clip with ffprobe.
package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"vid2gif/internal/command"
)

type VideoInfo struct {
	Filepath string
	FileSize int64
	Width    int
	Height   int
	Duration float64
	Format   string
	Bitrate  int64
}

type FFProbeOutput struct {
	Streams []struct {
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
		CodecType string `json:"codec_type"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Bitrate  string `json:"bit_rate"`
		Format   string `json:"format_name"`
	} `json:"format"`
}

// ProbeArgs returns the ffprobe arguments that print stream and format data as JSON.
func ProbeArgs(path string) []string {
	return []string{"-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path}
}

func GetVideoInfo(ctx context.Context, exec command.Executor, ffprobe, path string) (*VideoInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	output, err := exec.Execute(ctx, ffprobe, ProbeArgs(path)...)
	if err != nil {
		return nil, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	info, err := ParseProbe(output)
	if err != nil {
		return nil, err
	}
	info.Filepath = path
	info.FileSize = fileInfo.Size()

	return info, nil
}

// ParseProbe decodes ffprobe JSON output
func ParseProbe(output []byte) (*VideoInfo, error) {
	var probe FFProbeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %v", err)
	}

	info := &VideoInfo{Format: probe.Format.Format}

	// Find video stream
	for _, stream := range probe.Streams {
		if stream.CodecType == "video" {
			info.Width = stream.Width
			info.Height = stream.Height
			if info.Duration == 0 && stream.Duration != "" {
				info.Duration, _ = strconv.ParseFloat(stream.Duration, 64)
			}
			break
		}
	}

	if probe.Format.Duration != "" {
		if duration, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			info.Duration = duration
		}
	}

	if probe.Format.Bitrate != "" {
		if bitrate, err := strconv.ParseInt(probe.Format.Bitrate, 10, 64); err == nil {
			info.Bitrate = bitrate
		}
	}

	return info, nil
}
