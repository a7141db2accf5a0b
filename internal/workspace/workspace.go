// Package workspace manages the scratch directory that holds intermediate frames.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FramePrefix is the file name prefix of every extracted frame.
const FramePrefix = "out"

// Scratch is an exclusively owned temporary directory. It is removed,
// with everything in it, by Close.
type Scratch struct {
	dir string
}

// New creates a fresh scratch directory under base (the system temp dir when empty).
func New(base, prefix string) (*Scratch, error) {
	dir, err := os.MkdirTemp(base, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return &Scratch{dir: dir}, nil
}

// Dir returns the scratch directory path
func (s *Scratch) Dir() string {
	return s.dir
}

// Pattern returns the printf-style output pattern handed to the decoder,
// e.g. <dir>/out%04d.gif.
func (s *Scratch) Pattern(ext string) string {
	return filepath.Join(s.dir, FramePrefix+"%04d."+ext)
}

// Frames lists the frames with the given extension in playback order.
func (s *Scratch) Frames(ext string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}

	suffix := "." + ext
	var frames []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, FramePrefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		frames = append(frames, filepath.Join(s.dir, name))
	}

	SortFrames(frames)
	return frames, nil
}

// Close removes the scratch directory recursively. Calling it more than once is safe.
func (s *Scratch) Close() error {
	if s == nil || s.dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove scratch directory %s: %w", s.dir, err)
	}
	s.dir = ""
	return nil
}

// SortFrames orders frame paths by index. The zero padding stops at four
// digits, so shorter names sort first.
func SortFrames(frames []string) {
	sort.Slice(frames, func(i, j int) bool {
		if len(frames[i]) == len(frames[j]) {
			return frames[i] < frames[j]
		}
		return len(frames[i]) < len(frames[j])
	})
}
