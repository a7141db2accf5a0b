// Package validation checks the input and output paths before any external tool runs.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// CleanPath trims whitespace and surrounding quotes (as added by some file
// managers when a path is dragged into a terminal) and cleans the result.
func CleanPath(input string) string {
	cleanedPath := strings.TrimSpace(input)

	if len(cleanedPath) >= 2 {
		if (cleanedPath[0] == '\'' && cleanedPath[len(cleanedPath)-1] == '\'') ||
			(cleanedPath[0] == '"' && cleanedPath[len(cleanedPath)-1] == '"') {
			cleanedPath = cleanedPath[1 : len(cleanedPath)-1]
		}
	}

	cleanedPath = strings.TrimSpace(cleanedPath)
	if cleanedPath == "" {
		return ""
	}
	return filepath.Clean(cleanedPath)
}

// ValidateInputPath checks that the input video exists and is a readable regular file
func ValidateInputPath(input string) error {
	cleanPath := CleanPath(input)
	if cleanPath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if err := validatePathCharacters(cleanPath); err != nil {
		return err
	}

	fileInfo, err := os.Stat(cleanPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", cleanPath)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %v", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path points to a directory, not a file: %s", cleanPath)
	}

	file, err := os.Open(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot read file (permission denied): %v", err)
	}
	file.Close()

	return nil
}

// ValidateOutputPath checks that the output file can be written: its parent
// directory must exist and the path itself must not be a directory.
func ValidateOutputPath(output string) error {
	cleanPath := CleanPath(output)
	if cleanPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	if err := validatePathCharacters(cleanPath); err != nil {
		return err
	}

	if stat, err := os.Stat(cleanPath); err == nil && stat.IsDir() {
		return fmt.Errorf("output path points to an existing directory: %s", cleanPath)
	}

	parentDir := filepath.Dir(cleanPath)
	parentInfo, err := os.Stat(parentDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", parentDir)
		}
		return fmt.Errorf("cannot access output directory: %v", err)
	}
	if !parentInfo.IsDir() {
		return fmt.Errorf("output parent path is not a directory: %s", parentDir)
	}

	if err := checkWritePermission(parentDir); err != nil {
		return fmt.Errorf("cannot write to output directory: %v", err)
	}

	return nil
}

// checkWritePermission tests if we can create a file inside dir
func checkWritePermission(dir string) error {
	file, err := os.CreateTemp(dir, ".vid2gif_write_test_*")
	if err != nil {
		return fmt.Errorf("no write permission: %v", err)
	}
	name := file.Name()
	file.Close()
	os.Remove(name)

	return nil
}

// validatePathCharacters checks for invalid characters based on OS
func validatePathCharacters(path string) error {
	if runtime.GOOS == "windows" {
		// the volume name carries the only legal ':'
		rest := strings.TrimPrefix(path, filepath.VolumeName(path))
		for _, char := range []string{"<", ">", ":", "\"", "|", "?", "*"} {
			if strings.Contains(rest, char) {
				return fmt.Errorf("path contains invalid character: %s", char)
			}
		}
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("path contains null bytes")
	}

	return nil
}
