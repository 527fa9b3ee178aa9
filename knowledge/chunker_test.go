package knowledge

import (
	"strings"
	"testing"
)

func TestChunk_EmptyInput(t *testing.T) {
	if chunks := Chunk("", ChunkOptions{MaxChunkSize: 100}); chunks != nil {
		t.Errorf("Expected nil for empty input, got %v", chunks)
	}
	if chunks := Chunk("   \n\t ", ChunkOptions{MaxChunkSize: 100}); chunks != nil {
		t.Errorf("Expected nil for whitespace input, got %v", chunks)
	}
}

func TestChunk_ShortInputSingleChunk(t *testing.T) {
	chunks := Chunk("  A short text.  ", ChunkOptions{MaxChunkSize: 100})
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "A short text." {
		t.Errorf("Expected trimmed input as single chunk, got %q", chunks[0])
	}
}

func TestChunk_SizeDiscipline(t *testing.T) {
	text := "One sentence here. Another sentence follows. A third one arrives. The fourth closes it out. And a fifth for good measure."
	chunks := Chunk(text, ChunkOptions{MaxChunkSize: 50, OverlapSize: 0})
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 50 {
			t.Errorf("Chunk %d exceeds max size (%d bytes): %q", i, len(c), c)
		}
	}
}

func TestChunk_OverlapMaySoftenSizeBound(t *testing.T) {
	// The carried overlap plus the next sentence can push a chunk past
	// MaxChunkSize. The overlap is kept anyway; the exceedance stays within
	// OverlapSize plus the joining space.
	text := "The cat sat on the mat. The dog ran off fast. Birds flew over my tall green tree today. The sun set early today."
	chunks := Chunk(text, ChunkOptions{MaxChunkSize: 50, OverlapSize: 25})
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	exceeded := false
	for i, c := range chunks {
		if len(c) > 50 {
			exceeded = true
		}
		if len(c) > 50+25+1 {
			t.Errorf("Chunk %d exceeds the soft bound by more than the overlap (%d bytes): %q", i, len(c), c)
		}
	}
	if !exceeded {
		t.Error("Expected at least one chunk past MaxChunkSize, the carried overlap should not be trimmed")
	}
	if !strings.Contains(chunks[1], "The dog ran off fast.") {
		t.Errorf("Expected the overlap sentence carried into chunk 1, got %q", chunks[1])
	}
}

func TestChunk_OversizedSentenceKeptWhole(t *testing.T) {
	long := "This single sentence is far longer than the configured maximum chunk size and must not be split."
	text := "Short one. " + long + " Tail."
	chunks := Chunk(text, ChunkOptions{MaxChunkSize: 30, OverlapSize: 0})

	found := false
	for _, c := range chunks {
		if c == long {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected the oversized sentence to appear whole in %v", chunks)
	}
}

func TestChunk_CoverageNoContentLoss(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon zeta! Eta theta iota? Kappa lambda mu. Nu xi omicron pi."
	chunks := Chunk(text, ChunkOptions{MaxChunkSize: 40, OverlapSize: 20})

	stripped := func(s string) string {
		return strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\t' {
				return -1
			}
			return r
		}, s)
	}

	joined := stripped(strings.Join(chunks, " "))
	for _, sentence := range []string{"Alphabetagamma.", "Deltaepsilonzeta!", "Etathetaiota?", "Kappalambdamu.", "Nuxiomicronpi."} {
		if !strings.Contains(joined, sentence) {
			t.Errorf("Sentence %q lost during chunking; chunks: %v", sentence, chunks)
		}
	}
}

func TestChunk_OverlapSharesWords(t *testing.T) {
	text := "The cat sat on the mat. The dog ran off fast. Birds flew over my tree. The sun set early today."
	chunks := Chunk(text, ChunkOptions{MaxChunkSize: 50, OverlapSize: 25})
	if len(chunks) < 2 {
		t.Fatalf("Expected at least 2 chunks, got %d: %v", len(chunks), chunks)
	}

	for i := 0; i < len(chunks)-1; i++ {
		tailWords := strings.Fields(chunks[i])
		headWords := strings.Fields(chunks[i+1])
		shared := false
		for _, tw := range tailWords {
			for _, hw := range headWords {
				if tw == hw {
					shared = true
				}
			}
		}
		if !shared {
			t.Errorf("Chunks %d and %d share no words: %q | %q", i, i+1, chunks[i], chunks[i+1])
		}
	}
}

func TestChunk_NoDuplicateFinalChunk(t *testing.T) {
	// Overlap large enough to consume the whole remainder.
	text := "First sentence goes here. Second sentence is last."
	chunks := Chunk(text, ChunkOptions{MaxChunkSize: 30, OverlapSize: 30})
	for i := 1; i < len(chunks); i++ {
		if chunks[i] == chunks[i-1] {
			t.Errorf("Duplicate consecutive chunks at %d: %q", i, chunks[i])
		}
	}
}

func TestChunk_NoMidNumberSplit(t *testing.T) {
	text := "Pi is roughly 3.14159 in value. " + strings.Repeat("Padding sentence to force splitting. ", 5)
	chunks := Chunk(text, ChunkOptions{MaxChunkSize: 60, OverlapSize: 0})
	for _, c := range chunks {
		if strings.HasSuffix(c, "roughly 3.") {
			t.Errorf("Sentence split inside a number: %q", c)
		}
	}
}

func TestChunk_PreserveHeaders(t *testing.T) {
	text := "# Setup\nInstall the binary first. Then configure it properly.\n# Usage\nRun the command. Check the output carefully."
	chunks := Chunk(text, ChunkOptions{MaxChunkSize: 60, OverlapSize: 0, PreserveHeaders: true})

	joined := strings.Join(chunks, "\n")
	if !strings.Contains(joined, "# Setup") || !strings.Contains(joined, "# Usage") {
		t.Errorf("Expected headers preserved in chunks: %v", chunks)
	}
}
