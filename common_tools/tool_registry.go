package common_tools

import (
	"github.com/sagechat/sage/knowledge"
	"github.com/sagechat/sage/models"
)

// WebSearchTool returns a FunctionDeclaration for the Tavily web search tool.
func WebSearchTool() models.FunctionDeclaration {
	return models.FunctionDeclaration{
		Name:        "web_search",
		Description: "Search the web for current or recent information. Returns titles, URLs, and content snippets.",
		Parameters: models.Parameters{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query string",
				},
			},
			Required: []string{"query"},
		},
		Callable: Web_Search,
	}
}

// KnowledgeBaseTool returns a FunctionDeclaration that searches the given
// knowledge index.
func KnowledgeBaseTool(ix *knowledge.Index) models.FunctionDeclaration {
	return models.FunctionDeclaration{
		Name:        "knowledge_base",
		Description: "Search the local knowledge base for domain-specific information. Returns the most relevant document passages.",
		Parameters: models.Parameters{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Query to match against indexed documents",
				},
			},
			Required: []string{"query"},
		},
		Callable: KnowledgeBaseSearcher(ix),
	}
}

// DefaultTools returns the standard toolset: web search plus knowledge base
// search over ix. Pass a nil index to get web search only.
func DefaultTools(ix *knowledge.Index) []models.FunctionDeclaration {
	tools := []models.FunctionDeclaration{
		WebSearchTool(),
	}
	if ix != nil {
		tools = append(tools, KnowledgeBaseTool(ix))
	}
	return tools
}
