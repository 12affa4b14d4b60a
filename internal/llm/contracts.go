package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider identifies one of the supported backends. The set is closed:
// adding a provider means adding a constant here and a case to the
// factory, which the compiler checks.
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderClaude   Provider = "claude"
	ProviderGemini   Provider = "gemini"
	ProviderDeepseek Provider = "deepseek"
	ProviderLocal    Provider = "local"
)

// ParseProvider maps a user-supplied provider name to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderClaude:
		return ProviderClaude, nil
	case ProviderGemini:
		return ProviderGemini, nil
	case ProviderDeepseek:
		return ProviderDeepseek, nil
	case ProviderLocal:
		return ProviderLocal, nil
	default:
		return "", fmt.Errorf("unknown provider: %q", s)
	}
}

// Request carries sanitized document content to a provider adapter.
type Request struct {
	Text         string
	ImageB64     string // data URI; empty when no image representation exists
	OriginalName string // filename hint for the prompt
}

// Client is the interface the pipeline depends on. Implementations must
// sanitize input before transmission and honor the per-call timeout.
type Client interface {
	GenerateFilename(ctx context.Context, req Request) (string, error)
}

// Config is shared adapter configuration. API keys are resolved from the
// environment by each adapter and never appear here.
type Config struct {
	Model           string
	BaseURL         string
	Temperature     float32
	Timeout         time.Duration // per-call budget; a hung provider cannot stall the batch
	MaxContentChars int
}
