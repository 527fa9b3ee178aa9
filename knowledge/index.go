package knowledge

import (
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"time"
)

// DocumentChunk is one indexed piece of a source document. Vector is nil when
// the embedding call failed; such chunks keep their text but are excluded
// from similarity scoring.
type DocumentChunk struct {
	ID     string
	Text   string
	Vector []float64
}

// IndexOptions configures an Index.
type IndexOptions struct {
	Chunking ChunkOptions
	// ReadyWait bounds how long a search waits for the initial background
	// indexing pass before degrading to an empty result.
	ReadyWait time.Duration
	// TopK caps the number of returned chunk texts.
	TopK int
	// MinScore is the exclusive cosine-similarity floor for a match.
	MinScore float64
	Logger   *log.Logger
}

const (
	defaultReadyWait = 2 * time.Second
	defaultTopK      = 3
	defaultMinScore  = 0.3
)

// Index is an embedding-indexed in-memory chunk store. Documents are chunked
// and embedded by a background goroutine started at construction; the chunk
// slice is built in full and published atomically by closing the ready
// channel, so searches never observe a partially indexed state.
//
// Search is a linear scan over every vectorized chunk. That is O(n) per query
// and deliberate: the corpus here is a single small document. Scaling this up
// needs an ANN structure, not a bigger loop.
type Index struct {
	embedder Embedder
	opts     IndexOptions
	logger   *log.Logger

	// chunks is written once by the indexing goroutine before ready is
	// closed and is read-only afterwards.
	chunks []DocumentChunk
	ready  chan struct{}
}

// NewIndex creates an index over the given documents and starts the indexing
// pass in the background. The index answers searches immediately; queries
// arriving before indexing completes wait up to ReadyWait.
func NewIndex(embedder Embedder, documents []string, opts IndexOptions) *Index {
	if opts.ReadyWait <= 0 {
		opts.ReadyWait = defaultReadyWait
	}
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.MinScore == 0 {
		opts.MinScore = defaultMinScore
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[INDEX] ", log.LstdFlags)
	}

	ix := &Index{
		embedder: embedder,
		opts:     opts,
		logger:   logger,
		ready:    make(chan struct{}),
	}
	go ix.build(documents)
	return ix
}

func (ix *Index) build(documents []string) {
	defer close(ix.ready)

	var chunks []DocumentChunk
	embedded := 0
	for docIdx, doc := range documents {
		for chunkIdx, text := range Chunk(doc, ix.opts.Chunking) {
			chunk := DocumentChunk{
				ID:   fmt.Sprintf("doc%d:chunk%d", docIdx, chunkIdx),
				Text: text,
			}
			vector, err := ix.embedder.Embed(text)
			if err != nil {
				// Keep the chunk so no document content is lost; it just
				// cannot participate in similarity search.
				ix.logger.Printf("Embedding failed for %s, keeping chunk without vector: %v", chunk.ID, err)
			} else {
				chunk.Vector = vector
				embedded++
			}
			chunks = append(chunks, chunk)
		}
	}

	// Publish the full slice before flipping readiness.
	ix.chunks = chunks
	ix.logger.Printf("Indexed %d chunks (%d embedded)", len(chunks), embedded)
}

// Ready reports whether the initial indexing pass has completed.
func (ix *Index) Ready() bool {
	select {
	case <-ix.ready:
		return true
	default:
		return false
	}
}

// Search returns the texts of the most similar chunks, best first, at most
// TopK, only scores strictly above MinScore. It waits a single bounded
// interval for index readiness and returns an empty result if the index is
// still building or the query embedding fails. It never returns an error.
func (ix *Index) Search(query string) []string {
	select {
	case <-ix.ready:
	case <-time.After(ix.opts.ReadyWait):
		ix.logger.Printf("Index not ready after %v, returning no results", ix.opts.ReadyWait)
		return nil
	}

	queryVector, err := ix.embedder.Embed(query)
	if err != nil {
		ix.logger.Printf("Query embedding failed: %v", err)
		return nil
	}

	type match struct {
		text  string
		score float64
	}
	var matches []match
	for _, chunk := range ix.chunks {
		if chunk.Vector == nil {
			continue
		}
		score := CosineSimilarity(chunk.Vector, queryVector)
		if score > ix.opts.MinScore {
			matches = append(matches, match{text: chunk.Text, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > ix.opts.TopK {
		matches = matches[:ix.opts.TopK]
	}

	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.text
	}
	return texts
}

// Chunks returns the indexed chunks. It blocks until the indexing pass
// completes; intended for tests and diagnostics.
func (ix *Index) Chunks() []DocumentChunk {
	<-ix.ready
	out := make([]DocumentChunk, len(ix.chunks))
	copy(out, ix.chunks)
	return out
}

// CosineSimilarity computes dot(a,b) / (|a| * |b|), the standard signed
// similarity in [-1, 1]. A zero-magnitude vector yields 0 rather than an
// error.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
