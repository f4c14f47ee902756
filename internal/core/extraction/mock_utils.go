package extraction

import (
	"context"
	"sync"

	"github.com/agenthands/nerbatch/internal/llm"
)

// MockLLMClient answers from Responses keyed by prompt, falling back to Response.
// Errs fails specific prompts; Err fails every call.
type MockLLMClient struct {
	Response  string
	Responses map[string]string
	Errs      map[string]error
	Err       error

	mu      sync.Mutex
	Prompts []string
	Params  []llm.CompletionParams
	Closed  bool
}

func (m *MockLLMClient) Complete(ctx context.Context, prompt string, params llm.CompletionParams) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.Params = append(m.Params, params)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if err, ok := m.Errs[prompt]; ok {
		return "", err
	}
	if resp, ok := m.Responses[prompt]; ok {
		return resp, nil
	}
	return m.Response, nil
}

func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

func (m *MockLLMClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
