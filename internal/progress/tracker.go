// Package progress persists the durable, append-only record of processed
// filenames so interrupted batch runs can resume without reprocessing.
package progress

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/quanyeomans/content-tamer-ai-sub003/internal/common"
)

// Tracker appends one line per processed filename. Appends are guarded by
// an OS-level advisory lock so the file stays correct if a future batch
// driver runs pipelines in parallel against the same log.
type Tracker struct {
	path   string
	file   *os.File
	lock   *flock.Flock
	logger *slog.Logger
}

func NewTracker(path string, logger *slog.Logger) (*Tracker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, common.NewAppError(common.KindFilesystem, "create progress directory", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, common.NewAppError(common.KindFilesystem, "open progress file", err)
	}
	return &Tracker{
		path:   path,
		file:   f,
		lock:   flock.New(path),
		logger: logger,
	}, nil
}

// Record appends one entry. The sequence is unconditional even for a
// single-threaded caller: acquire, write, flush, release.
func (t *Tracker) Record(name string) error {
	if strings.ContainsRune(name, '\n') {
		return common.NewAppError(common.KindFilesystem,
			fmt.Sprintf("progress entry contains newline: %q", name), nil)
	}
	if err := t.lock.Lock(); err != nil {
		return common.NewAppError(common.KindFilesystem, "acquire progress lock", err)
	}
	defer func() {
		if err := t.lock.Unlock(); err != nil {
			t.logger.Warn("progress.unlock_failed", "path", t.path, "error", err)
		}
	}()

	if _, err := t.file.WriteString(name + "\n"); err != nil {
		return common.NewAppError(common.KindFilesystem, "append progress entry", err)
	}
	if err := t.file.Sync(); err != nil {
		return common.NewAppError(common.KindFilesystem, "flush progress file", err)
	}
	return nil
}

func (t *Tracker) Close() error {
	return t.file.Close()
}

// Load reads the resume set: filenames already processed in earlier runs.
// A missing file means a fresh run and yields an empty set. The tracker
// has no opinion on skip logic; the batch driver applies the set.
func Load(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, common.NewAppError(common.KindFilesystem, "open progress file", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("progress.close_failed", "path", path, "error", cerr)
		}
	}()

	done := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			done[line] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, common.NewAppError(common.KindFilesystem, "read progress file", err)
	}
	return done, nil
}
