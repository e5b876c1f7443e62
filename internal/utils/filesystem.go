package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/asap-static/asap/internal/errors"
)

// ValidateDirectory resolves path to an absolute path and checks that it
// exists and is a directory.
// Returns ErrInvalidInput if the path is missing and ErrNotADirectory if it
// is something else.
func ValidateDirectory(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: resolving %s: %v", kerrors.ErrInvalidInput, path, err)
	}

	info, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s does not exist", kerrors.ErrInvalidInput, absPath)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrInvalidInput, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w, rejecting %s", kerrors.ErrNotADirectory, absPath)
	}

	return absPath, nil
}

// IsHiddenPath reports whether any slash-separated segment of rel starts
// with a dot.
func IsHiddenPath(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
