package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/quanyeomans/content-tamer-ai-sub003/internal/batch"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/common"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/display"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/extract"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/llm"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/llm/providers"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/pipeline"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/progress"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/retry"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		input    = flag.String("input", "", "directory of documents to process (required unless configured)")
		output   = flag.String("output", "", "directory renamed files are moved into (required unless configured)")
		provider = flag.String("provider", "", "AI provider: openai | claude | gemini | deepseek | local")
		model    = flag.String("model", "", "model name (provider default if empty)")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	// Setup logger
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// Load configuration; flags override env/settings
	cfg, err := common.LoadConfig()
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Paths.InputDir = *input
	}
	if *output != "" {
		cfg.Paths.OutputDir = *output
	}
	if *provider != "" {
		cfg.LLM.Provider = *provider
	}
	if *model != "" {
		cfg.LLM.Model = *model
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	prov, err := llm.ParseProvider(cfg.LLM.Provider)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	client, err := providers.New(prov, llm.Config{
		Model:           cfg.LLM.Model,
		BaseURL:         cfg.LLM.BaseURL,
		Temperature:     cfg.LLM.Temperature,
		Timeout:         cfg.LLM.Timeout,
		MaxContentChars: cfg.LLM.MaxContentChars,
	}, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("provider initialized", "provider", prov, "model", cfg.LLM.Model)

	// Extraction
	extractor := extract.NewExtractor(extract.Config{
		Pdftotext:     cfg.Extract.Pdftotext,
		Pdftoppm:      cfg.Extract.Pdftoppm,
		Tesseract:     cfg.Extract.Tesseract,
		TesseractLang: cfg.Extract.TesseractLang,
		DPI:           cfg.Extract.DPI,
		MaxPages:      cfg.Extract.MaxPages,
		MinTextLen:    cfg.Extract.MinTextLen,
		MaxFileBytes:  cfg.Extract.MaxFileBytes,
	}, logger)

	// Progress: resume set + tracker
	progressPath := filepath.Join(cfg.Paths.InputDir, cfg.Paths.ProcessingDir, cfg.Paths.ProgressFile)
	done, err := progress.Load(progressPath)
	if err != nil {
		logger.Error("failed to load progress file", "path", progressPath, "error", err)
		os.Exit(1)
	}
	tracker, err := progress.NewTracker(progressPath, logger)
	if err != nil {
		logger.Error("failed to open progress file", "path", progressPath, "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := tracker.Close(); cerr != nil {
			logger.Warn("failed to close progress file", "error", cerr)
		}
	}()

	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		logger.Error("failed to create output directory", "dir", cfg.Paths.OutputDir, "error", err)
		os.Exit(1)
	}

	// Wire pipeline
	disp := display.Noop{}
	exec := retry.NewExecutor(cfg.Retry, disp, logger)
	unprocessedDir := filepath.Join(cfg.Paths.OutputDir, cfg.Paths.UnprocessedDir)
	pipe := pipeline.New(logger, extractor, client, tracker, exec, disp,
		cfg.Paths.OutputDir, unprocessedDir)

	// Run the batch
	runner := batch.NewRunner(logger, pipe, done,
		cfg.Paths.ProcessingDir, cfg.Paths.UnprocessedDir)
	logger.Info("starting batch", "input", cfg.Paths.InputDir, "output", cfg.Paths.OutputDir,
		"resume_entries", len(done))
	results, stats, err := runner.Run(ctx, cfg.Paths.InputDir)
	if err != nil {
		logger.Error("batch run failed", "error", err)
		os.Exit(1)
	}

	// Per-file failure categories for the summary (no stack traces)
	for _, r := range results {
		if !r.Result.Success {
			logger.Warn("file failed", "path", r.Path, "category", r.Result.Kind)
		}
	}

	logger.Info("batch complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"skipped", stats.Skipped,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"success_rate", fmt.Sprintf("%.0f%%", stats.SuccessRate()),
	)

	fmt.Printf("Batch complete!\n")
	fmt.Printf("- Processed: %d (skipped %d already done)\n", stats.Completed(), stats.Skipped)
	fmt.Printf("- Succeeded: %d\n", stats.Succeeded)
	fmt.Printf("- Failed:    %d (moved to %s)\n", stats.Failed, unprocessedDir)
	fmt.Printf("- Success rate: %.0f%%\n", stats.SuccessRate())
}
