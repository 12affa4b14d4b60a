package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quanyeomans/content-tamer-ai-sub003/internal/llm"
)

// Local talks to an Ollama-style endpoint on the local machine. No API
// key; the timeout is longer because local inference is slow on CPU.
type Local struct {
	cfg    llm.Config
	http   *http.Client
	logger *slog.Logger
}

func NewLocal(cfg llm.Config, logger *slog.Logger) *Local {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxContentChars <= 0 {
		cfg.MaxContentChars = 8000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (l *Local) GenerateFilename(ctx context.Context, req llm.Request) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	text, err := llm.SanitizeContent(req.Text, l.cfg.MaxContentChars)
	if err != nil {
		l.logger.Warn("llm.generate.sanitize_refused", "req_id", rid, "error", err)
		return "", err
	}
	req.Text = text

	withImage := req.ImageB64 != ""
	l.logger.Info("llm.generate.start",
		"req_id", rid, "model", l.cfg.Model, "text_len", len(req.Text), "with_image", withImage)

	name, err := l.generate(ctx, rid, req, withImage)
	if err != nil && withImage && llm.IsImageRejectionErr(err) {
		l.logger.Warn("llm.generate.image_rejected_retrying_text_only", "req_id", rid)
		name, err = l.generate(ctx, rid, req, false)
	}
	if err != nil {
		l.logger.Error("llm.generate.failed",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	l.logger.Info("llm.generate.ok",
		"req_id", rid, "filename", name, "elapsed_ms", time.Since(start).Milliseconds())
	return name, nil
}

func (l *Local) generate(ctx context.Context, rid string, req llm.Request, withImage bool) (string, error) {
	body := map[string]any{
		"model":  l.cfg.Model,
		"prompt": llm.BuildSystemPrompt() + "\n\n" + llm.BuildUserPrompt(req, withImage),
		"format": "json",
		"stream": false,
	}
	if withImage {
		// Ollama wants raw base64, not a data URI.
		if _, data, err := llm.SplitDataURI(req.ImageB64); err == nil {
			body["images"] = []string{data}
		}
	}

	endpoint := strings.TrimRight(l.cfg.BaseURL, "/") + "/api/generate"
	raw, status, err := llm.SendJSON(ctx, l.http, endpoint, body, nil, l.logger)
	if err != nil {
		if status == 0 {
			return "", llm.ClassifyTransportError(err)
		}
		if withImage && llm.IsImageRejection(status, raw) {
			return "", llm.NewImageRejectionError(status, raw)
		}
		return "", llm.ClassifyHTTPError(status, raw, "(none; local model)")
	}

	var or struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(raw, &or); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	name, err := llm.ParseFilenameReply(or.Response)
	if err != nil {
		l.logger.Error("llm.generate.bad_reply", "req_id", rid, "error", err)
		return "", fmt.Errorf("parse reply: %w", err)
	}
	return name, nil
}
