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

// chatCompletions is the OpenAI-compatible wire shape, shared by the
// OpenAI and Deepseek adapters.
type chatCompletions struct {
	cfg       llm.Config
	apiKey    string
	keyEnvVar string
	supportsVision bool
	http      *http.Client
	logger    *slog.Logger
}

// OpenAI talks to the chat/completions endpoint with optional vision input.
type OpenAI struct{ chatCompletions }

func NewOpenAI(cfg llm.Config, logger *slog.Logger) *OpenAI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &OpenAI{newChatCompletions(cfg, "OPENAI_API_KEY", true, logger)}
}

func newChatCompletions(cfg llm.Config, keyEnvVar string, vision bool, logger *slog.Logger) chatCompletions {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxContentChars <= 0 {
		cfg.MaxContentChars = 8000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return chatCompletions{
		cfg:            cfg,
		apiKey:         os.Getenv(keyEnvVar),
		keyEnvVar:      keyEnvVar,
		supportsVision: vision,
		http:           &http.Client{Timeout: cfg.Timeout},
		logger:         logger,
	}
}

func (c *chatCompletions) GenerateFilename(ctx context.Context, req llm.Request) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	text, err := llm.SanitizeContent(req.Text, c.cfg.MaxContentChars)
	if err != nil {
		c.logger.Warn("llm.generate.sanitize_refused", "req_id", rid, "error", err)
		return "", err
	}
	req.Text = text

	withImage := c.supportsVision && req.ImageB64 != ""
	c.logger.Info("llm.generate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(req.Text),
		"with_image", withImage,
	)

	name, err := c.generate(ctx, rid, req, withImage)
	if err != nil && withImage && llm.IsImageRejectionErr(err) {
		// Provider refused the image payload: one text-only retry before failing.
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

func (c *chatCompletions) generate(ctx context.Context, rid string, req llm.Request, withImage bool) (string, error) {
	userContent := any(llm.BuildUserPrompt(req, withImage))
	if withImage {
		userContent = []map[string]any{
			{"type": "text", "text": llm.BuildUserPrompt(req, true)},
			{"type": "image_url", "image_url": map[string]any{"url": req.ImageB64}},
		}
	}

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": userContent},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(llm.BuildFilenameJSONSchema())},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, c.logger)
	if err != nil {
		if status == 0 {
			return "", llm.ClassifyTransportError(err)
		}
		if withImage && llm.IsImageRejection(status, raw) {
			return "", llm.NewImageRejectionError(status, raw)
		}
		return "", llm.ClassifyHTTPError(status, raw, c.keyEnvVar)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	name, err := llm.ParseFilenameReply(cc.Choices[0].Message.Content)
	if err != nil {
		c.logger.Error("llm.generate.bad_reply", "req_id", rid, "error", err)
		return "", fmt.Errorf("parse reply: %w", err)
	}
	return name, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
