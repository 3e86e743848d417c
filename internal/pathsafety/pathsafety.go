// Package pathsafety guards every externally influenced path: filename
// sanitization, unique-name collision resolution, and directory
// containment checks.
package pathsafety

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var allowedChars = regexp.MustCompile(`[^A-Za-z0-9 _.-]`)

const maxFilenameLength = 255

// SanitizeFilename strips path components, rejects traversal, and
// restricts to the allowlisted character set. On failure to produce a
// safe name (e.g. nothing but disallowed characters, or no extension)
// it substitutes a deterministic fallback "<short-id><ext>".
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	ext := filepath.Ext(base)

	if base == "." || base == ".." || base == "" || strings.Contains(name, "..") {
		return fallback(ext)
	}

	cleaned := allowedChars.ReplaceAllString(base, "")
	cleaned = strings.TrimSpace(cleaned)

	if len(cleaned) > maxFilenameLength {
		cleaned = cleaned[:maxFilenameLength]
	}

	if cleaned == "" || filepath.Ext(cleaned) == "" {
		return fallback(ext)
	}

	return cleaned
}

func fallback(ext string) string {
	if ext == "" {
		ext = ".bin"
	}
	id := uuid.New().String()
	short := id[:8]
	return fmt.Sprintf("%s%s", short, ext)
}

// UniqueFilename resolves a collision-free filename within dir by
// appending " (Copy)", " (Copy 2)", ... to the base name (before the
// extension) until no file exists at the candidate path.
func UniqueFilename(dir, desired string) string {
	candidate := desired
	if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
		return candidate
	}

	ext := filepath.Ext(desired)
	stem := strings.TrimSuffix(desired, ext)

	for n := 1; ; n++ {
		var suffix string
		if n == 1 {
			suffix = " (Copy)"
		} else {
			suffix = fmt.Sprintf(" (Copy %d)", n)
		}
		candidate = stem + suffix + ext
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
	}
}

// EnsureContained resolves path and confirms it lies within root (after
// lexical `..` resolution; symlinks are not followed, so a symlink
// inside root pointing elsewhere is accepted). Returns an error if path escapes
// root; callers must translate that into a 404 to avoid leaking
// filesystem layout.
func EnsureContained(root, path string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return "", fmt.Errorf("pathsafety: cannot relate %q to root", path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("pathsafety: path %q escapes root %q", path, root)
	}
	return absPath, nil
}
