package config

import (
	"os"

	"github.com/caarlos0/env/v11"
)

// Tools names the external programs and the default transform backend.
// Every field can be overridden from the environment.
type Tools struct {
	FFmpeg   string `env:"VID2GIF_FFMPEG"   envDefault:"ffmpeg"`
	FFplay   string `env:"VID2GIF_FFPLAY"   envDefault:"ffplay"`
	FFprobe  string `env:"VID2GIF_FFPROBE"  envDefault:"ffprobe"`
	Mogrify  string `env:"VID2GIF_MOGRIFY"  envDefault:"mogrify"`
	Gifsicle string `env:"VID2GIF_GIFSICLE" envDefault:"gifsicle"`
	Resizer  string `env:"VID2GIF_RESIZER"  envDefault:"imaging"`
	TempDir  string `env:"VID2GIF_TMPDIR"`
}

// LoadTools reads tool overrides from the environment.
func LoadTools() (*Tools, error) {
	tools := &Tools{}
	if err := env.Parse(tools); err != nil {
		return nil, err
	}
	if tools.TempDir == "" {
		tools.TempDir = os.TempDir()
	}
	return tools, nil
}
