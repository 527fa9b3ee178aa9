package common_tools

import (
	"fmt"
	"strings"

	"github.com/sagechat/sage/knowledge"
)

// KnowledgeBaseSearcher returns a callable that queries the given index. The
// callable never reports an error: an unready index, a failed query embedding,
// or no matching chunks all come back as "no information found" text so the
// model can answer from what it already knows.
func KnowledgeBaseSearcher(ix *knowledge.Index) func(string) (string, error) {
	return func(query string) (string, error) {
		results := ix.Search(query)
		if len(results) == 0 {
			return "No information found for this query.", nil
		}

		var builder strings.Builder
		builder.WriteString("Knowledge Base Results:\n\n")
		for i, text := range results {
			builder.WriteString(fmt.Sprintf("--- Result %d ---\n", i+1))
			builder.WriteString(text)
			builder.WriteString("\n\n")
		}
		return builder.String(), nil
	}
}
