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

// Gemini talks to the generateContent endpoint. The API key travels as a
// query parameter, which is how Google's REST surface wants it.
type Gemini struct {
	cfg    llm.Config
	apiKey string
	http   *http.Client
	logger *slog.Logger
}

func NewGemini(cfg llm.Config, logger *slog.Logger) *Gemini {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
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
	return &Gemini{
		cfg:    cfg,
		apiKey: os.Getenv("GEMINI_API_KEY"),
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (g *Gemini) GenerateFilename(ctx context.Context, req llm.Request) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	text, err := llm.SanitizeContent(req.Text, g.cfg.MaxContentChars)
	if err != nil {
		g.logger.Warn("llm.generate.sanitize_refused", "req_id", rid, "error", err)
		return "", err
	}
	req.Text = text

	withImage := req.ImageB64 != ""
	g.logger.Info("llm.generate.start",
		"req_id", rid, "model", g.cfg.Model, "text_len", len(req.Text), "with_image", withImage)

	name, err := g.generate(ctx, rid, req, withImage)
	if err != nil && withImage && llm.IsImageRejectionErr(err) {
		g.logger.Warn("llm.generate.image_rejected_retrying_text_only", "req_id", rid)
		name, err = g.generate(ctx, rid, req, false)
	}
	if err != nil {
		g.logger.Error("llm.generate.failed",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	g.logger.Info("llm.generate.ok",
		"req_id", rid, "filename", name, "elapsed_ms", time.Since(start).Milliseconds())
	return name, nil
}

func (g *Gemini) generate(ctx context.Context, rid string, req llm.Request, withImage bool) (string, error) {
	parts := []map[string]any{
		{"text": llm.BuildSystemPrompt() + "\n\n" + llm.BuildUserPrompt(req, withImage)},
	}
	if withImage {
		mimeType, data, err := llm.SplitDataURI(req.ImageB64)
		if err != nil {
			return "", fmt.Errorf("image payload: %w", err)
		}
		parts = append(parts, map[string]any{
			"inline_data": map[string]any{
				"mime_type": mimeType,
				"data":      data,
			},
		})
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": parts},
		},
		"generationConfig": map[string]any{
			"temperature":      g.cfg.Temperature,
			"responseMimeType": "application/json",
		},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(g.cfg.BaseURL, "/"), g.cfg.Model, g.apiKey)
	raw, status, err := llm.SendJSON(ctx, g.http, endpoint, body, nil, g.logger)
	if err != nil {
		if status == 0 {
			return "", llm.ClassifyTransportError(err)
		}
		if withImage && llm.IsImageRejection(status, raw) {
			return "", llm.NewImageRejectionError(status, raw)
		}
		return "", llm.ClassifyHTTPError(status, raw, "GEMINI_API_KEY")
	}

	var gr struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	name, err := llm.ParseFilenameReply(gr.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		g.logger.Error("llm.generate.bad_reply", "req_id", rid, "error", err)
		return "", fmt.Errorf("parse reply: %w", err)
	}
	return name, nil
}
