// Package export packages a project's files as a zip archive.
package export

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"
	"time"
)

// ArchiveName is the download name of an exported project.
const ArchiveName = "project-codegenesis.zip"

// WriteZip writes one archive entry per file, in path order, with the
// content unchanged. modified is stamped on every entry.
func WriteZip(w io.Writer, files map[string]string, modified time.Time) error {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	zw := zip.NewWriter(w)
	for _, p := range paths {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("creating entry %s: %w", p, err)
		}
		if _, err := io.WriteString(fw, files[p]); err != nil {
			return fmt.Errorf("writing entry %s: %w", p, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing archive: %w", err)
	}
	return nil
}
