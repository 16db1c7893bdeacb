package logging

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultFileLimit bounds the log file when no limit is configured.
const DefaultFileLimit = 6 * 1024 * 1024

// New returns a text logger writing to w at the named level.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps debug, warn and error to their slog levels; anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// File is an append-only log file bounded to limit bytes. When a write
// pushes it past the limit, the oldest half is discarded at a line boundary.
type File struct {
	mu    sync.Mutex
	f     *os.File
	limit int64
}

// OpenFile opens or creates the log file at path, creating parent directories.
func OpenFile(path string, limit int64) (*File, error) {
	if limit <= 0 {
		limit = DefaultFileLimit
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	lf := &File{f: f, limit: limit}
	if err := lf.shrink(); err != nil {
		f.Close()
		return nil, err
	}
	return lf, nil
}

func (l *File) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.f.Write(p)
	if err != nil {
		return n, err
	}
	return n, l.shrink()
}

func (l *File) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// shrink must be called with mu held.
func (l *File) shrink() error {
	info, err := l.f.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= l.limit {
		return nil
	}

	keep := l.limit / 2
	tail := make([]byte, keep)
	n, err := l.f.ReadAt(tail, size-keep)
	if err != nil && err != io.EOF {
		return fmt.Errorf("read log tail: %w", err)
	}
	tail = tail[:n]
	if i := bytes.IndexByte(tail, '\n'); i >= 0 {
		tail = tail[i+1:]
	}

	if err := l.f.Truncate(0); err != nil {
		return fmt.Errorf("truncate log: %w", err)
	}
	_, err = l.f.Write(tail)
	return err
}
