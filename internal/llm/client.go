package llm

import (
	"context"
)

// CompletionParams are the sampling settings sent with every completion request.
type CompletionParams struct {
	MaxTokens        int
	Temperature      float32
	TopP             float32
	FrequencyPenalty float32
	PresencePenalty  float32
	Stop             []string
}

// DefaultParams returns the fixed extraction settings: long output, near-greedy
// sampling, no penalties, stopping at the completion separator.
func DefaultParams(stop string) CompletionParams {
	p := CompletionParams{
		MaxTokens:   1500,
		Temperature: 0.1,
		TopP:        0.1,
	}
	if stop != "" {
		p.Stop = []string{stop}
	}
	return p
}

type LLMClient interface {
	Complete(ctx context.Context, prompt string, params CompletionParams) (string, error)
}
