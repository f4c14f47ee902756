package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/nerbatch/internal/config"
)

const defaultOllamaURL = "http://localhost:11434"

// NewClient builds the remote completion client for a model type.
// SPACY is a local pipeline and has no LLM client.
func NewClient(ctx context.Context, cfg config.ModelConfig) (LLMClient, error) {
	switch cfg.Type {
	case config.ModelGPT:
		return NewOpenAIClient(cfg.APIKey, cfg.URI, cfg.BaseURL), nil

	case config.ModelGemini:
		return NewGeminiClient(ctx, cfg.APIKey, cfg.URI)

	case config.ModelClaude:
		return NewClaudeClient(cfg.APIKey, cfg.URI, cfg.BaseURL), nil

	case config.ModelOllama:
		// Ollama serves an OpenAI-compatible completions endpoint under /v1.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.URI, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm model type: %s", cfg.Type)
	}
}
