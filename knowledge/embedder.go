package knowledge

import "fmt"

// Embedder maps text to a fixed-length vector for similarity comparison.
// Implementations wrap a remote embeddings API; failures are reported as
// *EmbeddingError so callers can degrade instead of crashing.
type Embedder interface {
	Embed(text string) ([]float64, error)
}

// EmbeddingError wraps a provider or network failure from an Embedder. During
// indexing the affected chunk is kept without a vector; at query time the
// search returns no results.
type EmbeddingError struct {
	Provider string
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("%s embedding failed: %v", e.Provider, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}
