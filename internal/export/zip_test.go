package export

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteZip_OneEntryPerFile(t *testing.T) {
	files := map[string]string{
		"backend/pom.xml":          "<project/>",
		"frontend/src/App.vue":     "<template></template>",
		"README.md":                "# Todo\n",
		"frontend/.env.production": "",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteZip(&buf, files, time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, len(files))

	got := map[string]string{}
	var names []string
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		got[f.Name] = string(data)
		names = append(names, f.Name)
	}
	require.Equal(t, files, got)
	require.Equal(t, []string{"README.md", "backend/pom.xml", "frontend/.env.production", "frontend/src/App.vue"}, names)
}

func TestWriteZip_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteZip(&buf, nil, time.Now()))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Empty(t, zr.File)
}
