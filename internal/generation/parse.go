package generation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rpggio/codegenesis/internal/domain/project"
)

var fencedBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ExtractJSON decodes text into out. When text is not directly valid JSON,
// the first fenced code block is tried before giving up.
func ExtractJSON(text string, out any) error {
	trimmed := strings.TrimSpace(text)
	directErr := json.Unmarshal([]byte(trimmed), out)
	if directErr == nil {
		return nil
	}
	match := fencedBlock.FindStringSubmatch(trimmed)
	if len(match) < 2 || match[1] == "" {
		return directErr
	}
	if err := json.Unmarshal([]byte(match[1]), out); err != nil {
		return fmt.Errorf("parsing fenced block: %w", err)
	}
	return nil
}

// ParseFileSet reads a {"files": {path: content}} payload. Paths are
// normalized; a payload without files is an error, never a partial result.
func ParseFileSet(text string) (map[string]string, error) {
	var payload struct {
		Files map[string]any `json:"files"`
	}
	if err := ExtractJSON(text, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFileSet, err)
	}
	if len(payload.Files) == 0 {
		return nil, ErrEmptyFileSet
	}

	raw := make(map[string]string, len(payload.Files))
	for p, v := range payload.Files {
		content, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: content of %q is %T, not text", ErrMalformedFileSet, p, v)
		}
		raw[p] = content
	}

	files, err := project.NormalizeFiles(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFileSet, err)
	}
	return files, nil
}

// stripFence removes a single wrapping fenced block such as ```markdown.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	firstNL := strings.IndexByte(s, '\n')
	if firstNL == -1 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	s = s[firstNL+1:]
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
