package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClientComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"text_completion","model":"davinci:ft-test",
			"choices":[{"text":" REP_CITY: ['New York']\nREP_YEAR: 2024","index":0,"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "davinci:ft-test", srv.URL+"/v1")
	out, err := c.Complete(context.Background(), "text\n\n###\n\n", DefaultParams(" END"))
	require.NoError(t, err)

	assert.Equal(t, " REP_CITY: ['New York']\nREP_YEAR: 2024", out)
	assert.Equal(t, "davinci:ft-test", got["model"])
	assert.Equal(t, "text\n\n###\n\n", got["prompt"])
	assert.EqualValues(t, 1500, got["max_tokens"])
	assert.Equal(t, []any{" END"}, got["stop"])
}

func TestOpenAIClientNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-2","choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "davinci:ft-test", srv.URL+"/v1")
	_, err := c.Complete(context.Background(), "x", DefaultParams(""))
	assert.Error(t, err)
}

func TestOpenAIClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-bad", "davinci:ft-test", srv.URL+"/v1")
	_, err := c.Complete(context.Background(), "x", DefaultParams(""))
	assert.Error(t, err)
}
