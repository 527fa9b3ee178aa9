// Package gemini provides an embedding provider backed by the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/sagechat/sage/knowledge"
)

const defaultEmbeddingModel = "gemini-embedding-001"

// Embedder turns text into embedding vectors via the Gemini SDK.
type Embedder struct {
	client *genai.Client
	model  string
}

// NewEmbedder creates a Gemini embedder. The API key is read from the
// GEMINI_API_KEY environment variable.
func NewEmbedder(ctx context.Context) (*Embedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Embedder{client: client, model: defaultEmbeddingModel}, nil
}

// WithModel overrides the embedding model.
func (e *Embedder) WithModel(model string) *Embedder {
	e.model = model
	return e
}

// Embed returns the embedding vector for text.
func (e *Embedder) Embed(text string) ([]float64, error) {
	resp, err := e.client.Models.EmbedContent(
		context.Background(),
		e.model,
		genai.Text(text),
		nil,
	)
	if err != nil {
		return nil, &knowledge.EmbeddingError{Provider: "gemini", Err: err}
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, &knowledge.EmbeddingError{Provider: "gemini", Err: fmt.Errorf("empty embedding in response")}
	}

	values := resp.Embeddings[0].Values
	vector := make([]float64, len(values))
	for i, v := range values {
		vector[i] = float64(v)
	}
	return vector, nil
}
