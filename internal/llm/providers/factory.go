// Package providers holds the concrete adapters behind llm.Client, one
// per supported backend. All of them normalize to the same reply shape
// and error taxonomy; only the wire format differs.
package providers

import (
	"fmt"
	"log/slog"

	"github.com/quanyeomans/content-tamer-ai-sub003/internal/llm"
)

// New returns the adapter for the given provider. The switch is
// exhaustive over the closed provider set; a new provider is a new case
// here, checked at compile time against the constants in llm.
func New(p llm.Provider, cfg llm.Config, logger *slog.Logger) (llm.Client, error) {
	switch p {
	case llm.ProviderOpenAI:
		return NewOpenAI(cfg, logger), nil
	case llm.ProviderClaude:
		return NewClaude(cfg, logger), nil
	case llm.ProviderGemini:
		return NewGemini(cfg, logger), nil
	case llm.ProviderDeepseek:
		return NewDeepseek(cfg, logger), nil
	case llm.ProviderLocal:
		return NewLocal(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", p)
	}
}
