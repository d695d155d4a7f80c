// Package classify joins the item table with its classification catalog.
// Categories come from a sticky on-disk cache, topped up by a live LLM
// call for items never seen before; items that cannot be classified fall
// back to the Uncategorised sentinel.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const classifyPrompt = `Classify the type of drink this item fits into. Examples of type are [Lager, Pilsner, Stout, Weissbeir, Amber Ale, Cider, Red Wine]. You MUST only respond with your classification and no other words. The text must be capatilsed at the start 'Lager', not 'lager'. Item name: %s`

// Classifier maps an item name to a drink category.
type Classifier interface {
	Classify(ctx context.Context, name string) (string, error)
}

// LLMClassifier classifies item names with a hosted LLM. Each call is
// retried up to a bound with a fixed delay between attempts; the backoff
// policy is injectable so tests run with zero delay.
type LLMClassifier struct {
	client   *http.Client
	provider string // "gemini" or "openai"
	model    string
	apiKey   string
	baseURL  string

	// NewBackOff builds the retry policy for one classification call.
	NewBackOff func() backoff.BackOff
}

// NewLLMClassifier creates a classifier. Empty model selects a provider
// default; maxRetries bounds the retries after the first attempt.
func NewLLMClassifier(provider, model, apiKey, baseURL string, maxRetries uint64, retryDelay time.Duration) *LLMClassifier {
	if model == "" {
		switch provider {
		case "openai":
			model = "gpt-4o-mini"
		default:
			model = "gemini-2.0-flash"
		}
	}
	return &LLMClassifier{
		client:   &http.Client{Timeout: 30 * time.Second},
		provider: provider,
		model:    model,
		apiKey:   apiKey,
		baseURL:  baseURL,
		NewBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewConstantBackOff(retryDelay), maxRetries)
		},
	}
}

// Classify returns the category for an item name, or an error once the
// retry budget is exhausted.
func (c *LLMClassifier) Classify(ctx context.Context, name string) (string, error) {
	prompt := fmt.Sprintf(classifyPrompt, name)

	var category string
	operation := func() error {
		var raw string
		var err error
		switch c.provider {
		case "openai":
			raw, err = c.callOpenAI(ctx, prompt)
		default:
			raw, err = c.callGemini(ctx, prompt)
		}
		if err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return fmt.Errorf("empty classification for %q", name)
		}
		category = raw
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(c.NewBackOff(), ctx)); err != nil {
		return "", fmt.Errorf("classify %q: %w", name, err)
	}
	return category, nil
}

func (c *LLMClassifier) callGemini(ctx context.Context, prompt string) (string, error) {
	baseURL := c.baseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("gemini status %d: %v", resp.StatusCode, errResp)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: no candidates returned")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

func (c *LLMClassifier) callOpenAI(ctx context.Context, prompt string) (string, error) {
	baseURL := c.baseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.0,
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create openai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]any
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("openai status %d: %v", resp.StatusCode, errResp)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return result.Choices[0].Message.Content, nil
}
