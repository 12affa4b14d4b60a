// Package pipeline orchestrates one file's journey: extract content,
// generate a filename, validate and dedupe it, move the file, and record
// progress exactly once no matter how any stage ends.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/quanyeomans/content-tamer-ai-sub003/constants"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/common"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/display"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/extract"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/filename"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/llm"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/retry"
)

// Result is created per file and immutable once returned.
type Result struct {
	Success   bool
	FinalName string      // validated+deduped name with extension; empty on failure
	Kind      common.Kind // failure classification; empty on success
}

// ContentExtractor is the extraction stage contract.
type ContentExtractor interface {
	Extract(ctx context.Context, path string) (extract.Content, error)
}

// Recorder receives exactly one Record call per processed file.
type Recorder interface {
	Record(name string) error
}

type Pipeline struct {
	logger         *slog.Logger
	extractor      ContentExtractor
	client         llm.Client
	recorder       Recorder
	exec           *retry.Executor
	display        display.Safe
	outputDir      string
	unprocessedDir string
}

func New(
	logger *slog.Logger,
	extractor ContentExtractor,
	client llm.Client,
	recorder Recorder,
	exec *retry.Executor,
	disp display.Context,
	outputDir string,
	unprocessedDir string,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if unprocessedDir == "" {
		unprocessedDir = filepath.Join(outputDir, "unprocessed")
	}
	return &Pipeline{
		logger:         logger,
		extractor:      extractor,
		client:         client,
		recorder:       recorder,
		exec:           exec,
		display:        display.NewSafe(disp),
		outputDir:      outputDir,
		unprocessedDir: unprocessedDir,
	}
}

// ProcessFile drives the per-file state machine
// Extracting -> GeneratingFilename -> Validating -> Moving and lands in
// exactly one of Completed/Failed. Expected failures come back inside the
// Result, never as a raised error; only programming defects panic through,
// and even those pass the progress-recording guarantee below.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (res Result) {
	base := filepath.Base(path)

	// The one correctness invariant that matters most here: progress is
	// recorded exactly once per file on every exit path, including panics
	// (which are re-raised after recording).
	defer func() {
		if err := p.recorder.Record(base); err != nil {
			p.logger.Error("pipeline.progress_record_failed", "file", base, "error", err)
			p.display.ShowError(fmt.Sprintf("failed to record progress for %s: %v", base, err))
		}
	}()

	p.display.SetStatus(base)

	// Extracting
	p.logger.Info("pipeline.stage", "file", base, "stage", constants.StageExtracting)
	content, err := p.extractor.Extract(ctx, path)
	if err != nil {
		p.logger.Warn("pipeline.extract_failed", "file", base, "error", err)
		return p.fail(path, base, err)
	}

	// GeneratingFilename (with bounded retry; sanitization happens inside
	// the adapter and a security refusal classifies as permanent)
	p.logger.Info("pipeline.stage", "file", base, "stage", constants.StageGenerating)
	var raw string
	outcome := p.exec.Do(ctx, "generate filename", func(ctx context.Context) error {
		var genErr error
		raw, genErr = p.client.GenerateFilename(ctx, llm.Request{
			Text:         content.Text,
			ImageB64:     content.ImageB64,
			OriginalName: base,
		})
		return genErr
	})
	if !outcome.Succeeded {
		p.logger.Warn("pipeline.generate_failed",
			"file", base, "attempts", outcome.Attempts, "error", outcome.LastErr)
		return p.fail(path, base, outcome.LastErr)
	}

	// Validating
	p.logger.Info("pipeline.stage", "file", base, "stage", constants.StageValidating)
	ext := constants.NormalizeExt(filepath.Ext(path))
	safe := filename.Validate(raw)
	final, err := filename.Dedupe(safe, p.outputDir, ext)
	if err != nil {
		p.logger.Warn("pipeline.validate_failed", "file", base, "candidate", raw, "error", err)
		return p.fail(path, base, err)
	}
	finalName := final + "." + ext

	// Moving (retried; rename falls back to copy-then-delete inside)
	p.logger.Info("pipeline.stage", "file", base, "stage", constants.StageMoving)
	dst := filepath.Join(p.outputDir, finalName)
	moveOutcome := p.exec.Do(ctx, "move file", func(context.Context) error {
		return moveFile(path, dst)
	})
	if !moveOutcome.Succeeded {
		p.logger.Error("pipeline.move_failed",
			"file", base, "dst", dst, "attempts", moveOutcome.Attempts, "error", moveOutcome.LastErr)
		return p.fail(path, base, moveOutcome.LastErr)
	}

	p.logger.Info("pipeline.completed", "file", base, "final_name", finalName)
	p.display.SetStatus(finalName)
	return Result{Success: true, FinalName: finalName}
}

// fail routes the original file into the unprocessed holding directory so
// the batch driver can tell attempted-but-failed files from untouched
// ones, then shapes the failure Result. Files are never silently dropped.
func (p *Pipeline) fail(path, base string, cause error) Result {
	kind := common.KindOf(cause)
	if mvErr := p.toUnprocessed(path, base); mvErr != nil {
		p.logger.Error("pipeline.unprocessed_move_failed", "file", base, "error", mvErr)
		p.display.ShowError(fmt.Sprintf("could not move %s to unprocessed: %v", base, mvErr))
	}
	p.display.ShowError(fmt.Sprintf("failed to process %s: %s", base, kind))
	return Result{Success: false, Kind: kind}
}

func (p *Pipeline) toUnprocessed(path, base string) error {
	if err := ensureDir(p.unprocessedDir); err != nil {
		return err
	}
	return moveFile(path, filepath.Join(p.unprocessedDir, base))
}
