package project

import (
	"fmt"
	"path"
	"strings"
)

// NormalizePath converts a file path to the canonical forward-slash form
// used as a key in Project.Files.
func NormalizePath(p string) (string, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	cleaned = strings.TrimLeft(cleaned, "/")
	if cleaned == "" {
		return "", ErrInvalidPath
	}
	cleaned = path.Clean(cleaned)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return cleaned, nil
}

// NormalizeFiles returns a copy of files keyed by normalized path. Two inputs
// that normalize to the same key are rejected rather than silently merged.
func NormalizeFiles(files map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(files))
	for p, content := range files {
		key, err := NormalizePath(p)
		if err != nil {
			return nil, err
		}
		if _, exists := out[key]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePath, key)
		}
		out[key] = content
	}
	return out, nil
}
