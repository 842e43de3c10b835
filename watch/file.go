package watch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pingwatch/pingwatch"
)

// defaultFilePollInterval is how often a FileSource re-reads its file when
// no interval is configured.
const defaultFilePollInterval = 2 * time.Second

// FileSource watches a local configuration file.
//
// The file is read immediately on Watch and then re-read on a short
// interval; a snapshot is delivered whenever the file's content actually
// changes (byte comparison, so touching the file without editing it
// delivers nothing). A file that temporarily cannot be read or parsed, for
// example mid-write, is logged and skipped; the previous task set keeps
// running until a readable revision appears.
//
// The zero value is not usable; create a FileSource with [NewFile]. Fields
// may be adjusted before Watch is called.
type FileSource struct {
	// Path is the configuration file to watch.
	Path string

	// PollInterval is how often the file is re-read. Defaults to 2s.
	PollInterval time.Duration

	// Seed is an already-read revision of the file. When set, Watch uses
	// it as the initial content instead of reading Path again, so a caller
	// that has just loaded the file for its settings does not race a
	// second read against a concurrent edit.
	Seed []byte

	// Logger reports transient read and parse failures.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// NewFile creates a [FileSource] watching the given path.
func NewFile(path string) *FileSource {
	return &FileSource{Path: path}
}

// Watch implements pingwatch.Source.
//
// The initial read happens synchronously: a missing or malformed file makes
// Watch fail rather than starting a watcher with nothing to probe.
func (s *FileSource) Watch(ctx context.Context) (<-chan pingwatch.Event, error) {
	interval := s.PollInterval
	if interval <= 0 {
		interval = defaultFilePollInterval
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	data := s.Seed
	if data == nil {
		var err error
		data, err = os.ReadFile(s.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	snap, err := parseSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", s.Path, err)
	}

	events := make(chan pingwatch.Event, 1)
	events <- pingwatch.Event{Snapshot: snap}

	go func() {
		defer close(events)

		last := data
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			data, err := os.ReadFile(s.Path)
			if err != nil {
				logger.Warn("config file unreadable, keeping current snapshot",
					"path", s.Path,
					"error", err.Error(),
				)
				continue
			}
			if bytes.Equal(data, last) {
				continue
			}

			snap, err := parseSnapshot(data)
			if err != nil {
				logger.Warn("config file invalid, keeping current snapshot",
					"path", s.Path,
					"error", err.Error(),
				)
				// remember the bad revision so it is not re-parsed every tick
				last = data
				continue
			}
			last = data

			select {
			case events <- pingwatch.Event{Snapshot: snap}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
