// Package common_tools provides the tools the agent can call during a
// conversation.
//
// Available tools:
//   - Web_Search: Search the web using the Tavily Search API
//   - KnowledgeBaseSearcher: Query the local knowledge base by similarity
//
// Each tool is defined in its own file for better organization and maintainability.
package common_tools
