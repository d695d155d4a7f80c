package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
}

func newTestClassifier(provider, baseURL string, maxRetries uint64) *LLMClassifier {
	c := NewLLMClassifier(provider, "", "test-key", baseURL, maxRetries, 0)
	c.NewBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxRetries)
	}
	return c
}

func TestClassifyGemini(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var payload struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Contents, 1)
		assert.Contains(t, payload.Contents[0].Parts[0].Text, "Caesar Augustus IPA")

		json.NewEncoder(w).Encode(geminiResponse("IPA\n"))
	}))
	defer srv.Close()

	c := newTestClassifier("gemini", srv.URL, 3)
	category, err := c.Classify(context.Background(), "Caesar Augustus IPA")
	require.NoError(t, err)
	assert.Equal(t, "IPA", category, "response text is trimmed")
}

func TestClassifyOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Stout"}},
			},
		})
	}))
	defer srv.Close()

	c := newTestClassifier("openai", srv.URL, 3)
	category, err := c.Classify(context.Background(), "Dark Times")
	require.NoError(t, err)
	assert.Equal(t, "Stout", category)
}

func TestClassifyRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(geminiResponse("Cider"))
	}))
	defer srv.Close()

	c := newTestClassifier("gemini", srv.URL, 3)
	category, err := c.Classify(context.Background(), "Scrumpy Jack")
	require.NoError(t, err)
	assert.Equal(t, "Cider", category)
	assert.Equal(t, int64(3), calls.Load())
}

func TestClassifyExhaustsRetries(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClassifier("gemini", srv.URL, 2)
	_, err := c.Classify(context.Background(), "Scrumpy Jack")
	require.Error(t, err)
	assert.Equal(t, int64(3), calls.Load(), "initial attempt plus two retries")
}

func TestClassifyNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	c := newTestClassifier("gemini", srv.URL, 0)
	_, err := c.Classify(context.Background(), "Mystery Brew")
	assert.Error(t, err)
}

func TestClassifyDefaultModels(t *testing.T) {
	gemini := NewLLMClassifier("gemini", "", "k", "", 3, 0)
	assert.Equal(t, "gemini-2.0-flash", gemini.model)

	openai := NewLLMClassifier("openai", "", "k", "", 3, 0)
	assert.Equal(t, "gpt-4o-mini", openai.model)
}
