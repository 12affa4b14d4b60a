// Package batch walks an input directory and feeds each eligible file to
// the processing pipeline, honoring the resume set from earlier runs.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/quanyeomans/content-tamer-ai-sub003/constants"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/pipeline"
)

// FileProcessor is what the driver needs from the pipeline.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) pipeline.Result
}

// FileResult pairs one input path with its outcome.
type FileResult struct {
	Path   string
	Result pipeline.Result
}

type Runner struct {
	logger    *slog.Logger
	processor FileProcessor
	done      map[string]struct{} // resume set: input names already processed
	skipDirs  map[string]struct{} // directory basenames never descended into
}

func NewRunner(logger *slog.Logger, processor FileProcessor, done map[string]struct{}, skipDirs ...string) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if done == nil {
		done = map[string]struct{}{}
	}
	skip := make(map[string]struct{}, len(skipDirs))
	for _, d := range skipDirs {
		if d != "" {
			skip[d] = struct{}{}
		}
	}
	return &Runner{logger: logger, processor: processor, done: done, skipDirs: skip}
}

// Run walks root, skips hidden entries, state directories and files whose
// names appear in the resume set, and processes the rest one at a time.
// Per-file failures never abort the walk.
func (r *Runner) Run(ctx context.Context, root string) ([]FileResult, Stats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, Stats{}, errors.New("input directory is required")
	}

	var results []FileResult
	var stats Stats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			r.logger.Warn("batch.walk_error", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}

		base := filepath.Base(path)
		if d.IsDir() {
			if path == root {
				return nil
			}
			if isHidden(path) {
				return filepath.SkipDir
			}
			if _, skip := r.skipDirs[base]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		stats.Scanned++
		if isHidden(path) {
			return nil
		}

		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			return nil
		}
		stats.Matched++

		if _, seen := r.done[base]; seen {
			r.logger.Debug("batch.skip_already_processed", "file", base)
			stats.Skipped++
			return nil
		}

		res := r.processor.ProcessFile(ctx, path)
		results = append(results, FileResult{Path: path, Result: res})
		if res.Success {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
