package lifecycle

import (
	"context"
	"io"

	"github.com/rpggio/codegenesis/internal/export"
)

// Export writes the current project's files to w as a zip archive and
// returns the project id.
func (m *Manager) Export(ctx context.Context, w io.Writer) (string, error) {
	current := m.Current(ctx)
	if err := export.WriteZip(w, current.Files, current.UpdatedAt); err != nil {
		return "", err
	}
	return current.ID, nil
}
