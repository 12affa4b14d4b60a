package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quanyeomans/content-tamer-ai-sub003/internal/llm"
)

const anthropicVersion = "2023-06-01"

// Claude talks to the Anthropic messages API.
type Claude struct {
	cfg    llm.Config
	apiKey string
	http   *http.Client
	logger *slog.Logger
}

func NewClaude(cfg llm.Config, logger *slog.Logger) *Claude {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxContentChars <= 0 {
		cfg.MaxContentChars = 8000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Claude{
		cfg:    cfg,
		apiKey: os.Getenv("ANTHROPIC_API_KEY"),
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Claude) GenerateFilename(ctx context.Context, req llm.Request) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	text, err := llm.SanitizeContent(req.Text, c.cfg.MaxContentChars)
	if err != nil {
		c.logger.Warn("llm.generate.sanitize_refused", "req_id", rid, "error", err)
		return "", err
	}
	req.Text = text

	withImage := req.ImageB64 != ""
	c.logger.Info("llm.generate.start",
		"req_id", rid, "model", c.cfg.Model, "text_len", len(req.Text), "with_image", withImage)

	name, err := c.generate(ctx, rid, req, withImage)
	if err != nil && withImage && llm.IsImageRejectionErr(err) {
		c.logger.Warn("llm.generate.image_rejected_retrying_text_only", "req_id", rid)
		name, err = c.generate(ctx, rid, req, false)
	}
	if err != nil {
		c.logger.Error("llm.generate.failed",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	c.logger.Info("llm.generate.ok",
		"req_id", rid, "filename", name, "elapsed_ms", time.Since(start).Milliseconds())
	return name, nil
}

func (c *Claude) generate(ctx context.Context, rid string, req llm.Request, withImage bool) (string, error) {
	content := []map[string]any{
		{"type": "text", "text": llm.BuildUserPrompt(req, withImage)},
	}
	if withImage {
		mediaType, data, err := llm.SplitDataURI(req.ImageB64)
		if err != nil {
			return "", fmt.Errorf("image payload: %w", err)
		}
		content = append(content, map[string]any{
			"type": "image",
			"source": map[string]any{
				"type":       "base64",
				"media_type": mediaType,
				"data":       data,
			},
		})
	}

	body := map[string]any{
		"model":      c.cfg.Model,
		"max_tokens": 256,
		"system": llm.BuildSystemPrompt() +
			"\nJSON Schema:\n" + mustJSON(llm.BuildFilenameJSONSchema()),
		"messages": []map[string]any{
			{"role": "user", "content": content},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/messages"
	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	}, c.logger)
	if err != nil {
		if status == 0 {
			return "", llm.ClassifyTransportError(err)
		}
		if withImage && llm.IsImageRejection(status, raw) {
			return "", llm.NewImageRejectionError(status, raw)
		}
		return "", llm.ClassifyHTTPError(status, raw, "ANTHROPIC_API_KEY")
	}

	var mr struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &mr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	var reply string
	for _, block := range mr.Content {
		if block.Type == "text" {
			reply = block.Text
			break
		}
	}
	if reply == "" {
		return "", fmt.Errorf("no text block in response")
	}
	name, err := llm.ParseFilenameReply(reply)
	if err != nil {
		c.logger.Error("llm.generate.bad_reply", "req_id", rid, "error", err)
		return "", fmt.Errorf("parse reply: %w", err)
	}
	return name, nil
}
