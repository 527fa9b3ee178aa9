// Package knowledge implements the retrieval side of the agent: a
// sentence-respecting chunker, an embedding-indexed in-memory store queried
// by cosine similarity, and a cron-driven reindexer.
package knowledge

import "strings"

// ChunkOptions controls how a document is split.
type ChunkOptions struct {
	// MaxChunkSize is the target upper bound on chunk length in bytes. A
	// single sentence longer than this is kept whole and becomes its own
	// oversized chunk; no sentence is ever split.
	MaxChunkSize int
	// OverlapSize is the target number of trailing bytes from one chunk to
	// carry into the next. Overlap is sentence-granular: the carried suffix
	// is the longest run of whole sentences not exceeding this size.
	OverlapSize int
	// PreserveHeaders treats markdown heading lines as standalone sentences
	// so a heading stays at a chunk boundary instead of being glued into the
	// middle of one.
	PreserveHeaders bool
}

const (
	defaultMaxChunkSize = 1000
	defaultOverlapSize  = 200
)

// Chunk splits text into overlapping, sentence-respecting segments. The
// concatenation of all chunks, minus the duplicated overlap, reproduces every
// non-whitespace character of the input.
//
// MaxChunkSize is a soft bound: the carried overlap is never trimmed to fit,
// so a chunk may exceed it by up to OverlapSize plus one sentence. Dropping
// the overlap instead would break the shared-context guarantee between
// adjacent chunks.
func Chunk(text string, opts ChunkOptions) []string {
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = defaultMaxChunkSize
	}
	if opts.OverlapSize < 0 {
		opts.OverlapSize = defaultOverlapSize
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) <= opts.MaxChunkSize {
		return []string{trimmed}
	}

	sentences := splitSentences(trimmed, opts.PreserveHeaders)

	var chunks []string
	var current []string
	currentLen := 0

	for _, sentence := range sentences {
		added := len(sentence)
		if currentLen > 0 {
			added++ // joining space
		}

		if currentLen+added > opts.MaxChunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))

			current = overlapSuffix(current, opts.OverlapSize)
			currentLen = joinedLen(current)

			added = len(sentence)
			if currentLen > 0 {
				added++
			}
		}

		current = append(current, sentence)
		currentLen += added
	}

	if len(current) > 0 {
		last := strings.Join(current, " ")
		// The overlap can consume an entire short remainder; do not emit the
		// same chunk twice.
		if len(chunks) == 0 || chunks[len(chunks)-1] != last {
			chunks = append(chunks, last)
		}
	}

	return chunks
}

// splitSentences breaks text at `.`, `!` or `?` followed by whitespace. The
// terminator stays attached to its sentence, so "3.14" is never split.
func splitSentences(text string, preserveHeaders bool) []string {
	if !preserveHeaders {
		return scanSentences(text)
	}

	var sentences []string
	var pending []string
	flush := func() {
		if len(pending) > 0 {
			sentences = append(sentences, scanSentences(strings.Join(pending, " "))...)
			pending = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		switch {
		case stripped == "":
			flush()
		case strings.HasPrefix(stripped, "#"):
			flush()
			sentences = append(sentences, stripped)
		default:
			pending = append(pending, stripped)
		}
	}
	flush()
	return sentences
}

func scanSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 < len(text) && !isSpace(text[i+1]) {
				continue
			}
			if sentence := strings.TrimSpace(text[start : i+1]); sentence != "" {
				sentences = append(sentences, sentence)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// overlapSuffix returns the longest suffix of sentences whose joined length
// does not exceed limit. A sentence is carried whole or not at all.
func overlapSuffix(sentences []string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	total := 0
	start := len(sentences)
	for i := len(sentences) - 1; i >= 0; i-- {
		added := len(sentences[i])
		if total > 0 {
			added++
		}
		if total+added > limit {
			break
		}
		total += added
		start = i
	}
	out := make([]string, len(sentences)-start)
	copy(out, sentences[start:])
	return out
}

func joinedLen(sentences []string) int {
	total := 0
	for i, s := range sentences {
		total += len(s)
		if i > 0 {
			total++
		}
	}
	return total
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
