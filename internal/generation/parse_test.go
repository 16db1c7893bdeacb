package generation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFileSet_Direct(t *testing.T) {
	files, err := ParseFileSet(`{"files": {"a.txt": "hello", "/src\\main.go": "package main"}}`)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a.txt": "hello", "src/main.go": "package main"}, files)
}

func TestParseFileSet_FencedFallback(t *testing.T) {
	text := "Here is your project:\n```json\n{\"files\": {\"README.md\": \"# Todo\"}}\n```\nEnjoy!"
	files, err := ParseFileSet(text)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"README.md": "# Todo"}, files)

	files, err = ParseFileSet("```\n{\"files\": {\"x\": \"y\"}}\n```")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"x": "y"}, files)
}

func TestParseFileSet_Failures(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{name: "not json", text: "sorry, I cannot do that", want: ErrMalformedFileSet},
		{name: "bad fenced json", text: "```json\n{files: }\n```", want: ErrMalformedFileSet},
		{name: "missing files", text: `{"other": 1}`, want: ErrEmptyFileSet},
		{name: "empty files", text: `{"files": {}}`, want: ErrEmptyFileSet},
		{name: "non-text content", text: `{"files": {"a": 1}}`, want: ErrMalformedFileSet},
		{name: "escaping path", text: `{"files": {"../etc/passwd": "x"}}`, want: ErrMalformedFileSet},
		{name: "colliding paths", text: `{"files": {"a/b": "1", "/a/b": "2"}}`, want: ErrMalformedFileSet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := ParseFileSet(tt.text)
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, files)
		})
	}
}

func TestStripFence(t *testing.T) {
	require.Equal(t, "# Doc\n\nBody", stripFence("```markdown\n# Doc\n\nBody\n```"))
	require.Equal(t, "# Doc", stripFence("  # Doc \n"))
}
