// Package openai provides an embedding provider for any OpenAI-compatible
// embeddings endpoint, including OpenRouter and local Ollama deployments.
package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/sagechat/sage/knowledge"
)

// Config configures the embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// Client is an OpenAI-compatible embeddings client.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
}

// NewClient creates an embeddings client from cfg. Zero-value fields fall
// back to the public OpenAI endpoint and text-embedding-3-small.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		client:     &http.Client{Timeout: timeout},
		maxRetries: 5,
	}, nil
}

// Embed returns the embedding vector for text. Rate limits and server errors
// are retried with exponential backoff before the call is reported failed.
func (c *Client) Embed(text string) ([]float64, error) {
	type reqBody struct {
		Input string `json:"input"`
		Model string `json:"model"`
	}
	url := fmt.Sprintf("%s/embeddings", c.baseURL)

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		data, _ := json.Marshal(reqBody{Input: text, Model: c.model})
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, &knowledge.EmbeddingError{Provider: "openai", Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if attempt < c.maxRetries {
				time.Sleep(retryDelay(attempt))
				continue
			}
			return nil, &knowledge.EmbeddingError{Provider: "openai", Err: err}
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			delay := retryDelay(attempt)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					delay = time.Duration(secs) * time.Second
				}
			}
			_ = resp.Body.Close()
			if attempt < c.maxRetries {
				time.Sleep(delay)
				continue
			}
			return nil, &knowledge.EmbeddingError{Provider: "openai", Err: fmt.Errorf("embeddings request failed: %s", resp.Status)}
		}

		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return nil, &knowledge.EmbeddingError{Provider: "openai", Err: fmt.Errorf("embeddings request failed: %s", resp.Status)}
		}

		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, &knowledge.EmbeddingError{Provider: "openai", Err: err}
		}

		var out struct {
			Data []struct {
				Embedding []float64 `json:"embedding"`
			} `json:"data"`
		}
		if err := json.Unmarshal(payload, &out); err == nil && len(out.Data) > 0 && len(out.Data[0].Embedding) > 0 {
			return out.Data[0].Embedding, nil
		}

		// Ollama-native shape: { "embedding": [...] }
		var native struct {
			Embedding []float64 `json:"embedding"`
		}
		if err := json.Unmarshal(payload, &native); err == nil && len(native.Embedding) > 0 {
			return native.Embedding, nil
		}

		return nil, &knowledge.EmbeddingError{Provider: "openai", Err: fmt.Errorf("no embedding in response")}
	}
	return nil, &knowledge.EmbeddingError{Provider: "openai", Err: fmt.Errorf("no embedding in response")}
}

// retryDelay grows exponentially from 200ms and caps at 5s.
func retryDelay(attempt int) time.Duration {
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
