package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ot-assessment-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestHTTPClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload completionPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Write the background section", payload.Prompt)
		assert.Equal(t, 500, payload.MaxTokens)

		json.NewEncoder(w).Encode(CompletionResult{Text: "The client presents with"})
	}))
	defer server.Close()

	client := NewHTTPClient(domain.LLMConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, testLogger())

	result, err := client.Complete(context.Background(), CompletionRequest{
		Prompt:    "Write the background section",
		MaxTokens: 500,
	})

	require.NoError(t, err)
	assert.Equal(t, "The client presents with", result.Text)
}

func TestHTTPClient_Complete_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewHTTPClient(domain.LLMConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, testLogger())

	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestHTTPClient_Complete_ContextCancelled(t *testing.T) {
	client := NewHTTPClient(domain.LLMConfig{BaseURL: "http://127.0.0.1:0", Timeout: time.Second}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, CompletionRequest{Prompt: "x"})
	require.Error(t, err)
}

type stubCompleter struct {
	calls int
	text  string
	err   error
}

func (s *stubCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &CompletionResult{Text: s.text}, nil
}

func TestCachedClient_MemoryTier(t *testing.T) {
	stub := &stubCompleter{text: "narrative text"}
	client, err := NewCachedClient(stub, domain.CacheConfig{MemoryEntries: 8}, testLogger())
	require.NoError(t, err)

	req := CompletionRequest{Prompt: "same prompt", MaxTokens: 100}

	first, err := client.Complete(context.Background(), req)
	require.NoError(t, err)
	second, err := client.Complete(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, stub.calls, "identical requests are served from cache")

	_, err = client.Complete(context.Background(), CompletionRequest{Prompt: "same prompt", MaxTokens: 200})
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls, "token budget is part of the cache key")
}

func TestCachedClient_ErrorNotCached(t *testing.T) {
	stub := &stubCompleter{err: errors.New("endpoint down")}
	client, err := NewCachedClient(stub, domain.CacheConfig{MemoryEntries: 8}, testLogger())
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	require.Error(t, err)
	_, err = client.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestResilientClient_PropagatesResult(t *testing.T) {
	stub := &stubCompleter{text: "ok"}
	client := NewResilientClient(stub, testLogger())

	result, err := client.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
}

func TestPrompts_InterpolateRecordFields(t *testing.T) {
	rec := domain.AssessmentRecord{
		"demographics": map[string]any{
			"firstName":       "Sam",
			"lastName":        "Carter",
			"dateOfBirth":     "1990-06-15",
			"primaryConcerns": []any{"hip pain"},
		},
		"symptoms": map[string]any{
			"physical": []any{
				map[string]any{"location": "Left Hip", "severity": "Severe", "painType": "Sharp"},
			},
		},
	}

	background := BackgroundPrompt(rec)
	assert.Contains(t, background, "Client: Sam Carter")
	assert.Contains(t, background, "Date of birth: 1990-06-15")

	symptoms := SymptomsPrompt(rec)
	assert.Contains(t, symptoms, "Left Hip")

	conclusion := ConclusionPrompt(rec)
	assert.Contains(t, conclusion, "hip pain")

	for _, prompt := range []string{background, symptoms, FunctionalPrompt(rec), ADLPrompt(rec), conclusion} {
		assert.True(t, strings.Contains(prompt, "occupational therapy medico-legal report"))
	}
}
