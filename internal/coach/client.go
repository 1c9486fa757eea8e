// Package coach calls the text-generation backend for training advice and
// workout plan generation. Its failures degrade UI affordances only: no
// error from this package ever touches draft or history state.
package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable wraps any failure to get usable output from the
// generation service. Callers fall back to a static message.
var ErrUnavailable = errors.New("coach service unavailable")

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash"

	// Bounded retry policy: two attempts with a fixed delay between them,
	// independent of the reconciliation logic.
	maxAttempts = 2
	retryDelay  = time.Second
)

// Client talks to the Gemini generateContent API.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	delay      time.Duration
}

// New creates a Client. baseURL and model fall back to the production
// defaults when empty.
func New(baseURL, model, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL:    baseURL,
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		delay:      retryDelay,
	}
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends prompt and systemInstruction to the model and returns the
// raw text of the first candidate. At most two attempts are made, with a
// fixed delay between them; the final failure is surfaced as a single
// ErrUnavailable to the caller.
func (c *Client) Generate(ctx context.Context, prompt, systemInstruction string) (string, error) {
	payload := generateRequest{
		Contents:          []content{{Parts: []part{{Text: prompt}}}},
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		GenerationConfig:  &generationConfig{ResponseMIMEType: "application/json"},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			}
		}

		text, err := c.generateOnce(ctx, url, data)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("%w: after %d attempts: %v", ErrUnavailable, maxAttempts, lastErr)
}

func (c *Client) generateOnce(ctx context.Context, url string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil {
			return "", fmt.Errorf("generation failed (status %d): %s", resp.StatusCode, decoded.Error.Message)
		}
		return "", fmt.Errorf("generation failed (status %d)", resp.StatusCode)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}
