package llm

import (
	"context"
	"time"

	"github.com/Veraticus/finnet/internal/model"
)

// Client defines the interface for text-generation providers.
type Client interface {
	// Complete sends a prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for the advisory classifier and its provider.
type Config struct {
	Provider    string
	Endpoint    string
	APIKey      string
	Model       string
	Categories  []model.AdvisoryCategory
	Timeout     time.Duration
	CacheTTL    time.Duration
	RateLimit   int // Requests per minute
	Temperature float64
	MaxTokens   int
}

// Provider names.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Defaults for the local Ollama provider.
const (
	DefaultOllamaEndpoint = "http://localhost:11434/api/generate"
	DefaultOllamaModel    = "llama3"
	DefaultTimeout        = 30 * time.Second
)

const systemPrompt = "You are a compliance officer classifying bank transactions for cross-border purpose reporting. Reply with the purpose code only."
