package providers

import (
	"log/slog"

	"github.com/quanyeomans/content-tamer-ai-sub003/internal/llm"
)

// Deepseek speaks the OpenAI-compatible chat/completions dialect on its
// own endpoint. No vision support: image payloads are never sent.
type Deepseek struct{ chatCompletions }

func NewDeepseek(cfg llm.Config, logger *slog.Logger) *Deepseek {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepseek.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	return &Deepseek{newChatCompletions(cfg, "DEEPSEEK_API_KEY", false, logger)}
}
