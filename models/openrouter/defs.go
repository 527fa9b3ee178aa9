package openrouter

import "github.com/sagechat/sage/models"

// OpenRouter API request/response types (OpenAI-compatible format)

type OpenRouterRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Tools       []Tool    `json:"tools,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type Message struct {
	Role       string     `json:"role"` // "system", "user", "assistant", "tool"
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // for assistant messages with tool calls
	ToolCallID *string    `json:"tool_call_id,omitempty"` // for tool response messages
}

type Tool struct {
	Type     string       `json:"type"` // "function"
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  interface{} `json:"parameters"` // JSON Schema object
}

type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"` // "function"
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string of arguments
}

type OpenRouterResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"` // "chat.completion"
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Index        int      `json:"index"`
	Message      Message  `json:"message,omitempty"` // non-streaming
	Delta        *Message `json:"delta,omitempty"`   // streaming
	FinishReason *string  `json:"finish_reason,omitempty"`
}

// StreamResponse is one Server-Sent Events chunk.
type StreamResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"` // "chat.completion.chunk"
	Choices []Choice `json:"choices"`
}

type ErrorResponse struct {
	Error OpenRouterError `json:"error"`
}

type OpenRouterError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// SanitizedParameters ensures the parameters object has proper structure for
// strict providers that reject null properties or required fields.
type SanitizedParameters struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Required   []string               `json:"required"`
}

// ConvertToOpenRouterTool converts a FunctionDeclaration to the OpenRouter
// tool format.
func ConvertToOpenRouterTool(fd models.FunctionDeclaration) Tool {
	sanitized := SanitizedParameters{
		Type:       fd.Parameters.Type,
		Properties: fd.Parameters.Properties,
		Required:   fd.Parameters.Required,
	}
	if sanitized.Properties == nil {
		sanitized.Properties = make(map[string]interface{})
	}
	if sanitized.Required == nil {
		sanitized.Required = []string{}
	}
	if sanitized.Type == "" {
		sanitized.Type = "object"
	}

	return Tool{
		Type: "function",
		Function: ToolFunction{
			Name:        fd.Name,
			Description: fd.Description,
			Parameters:  sanitized,
		},
	}
}

// ConvertToOpenRouterTools converts multiple FunctionDeclarations.
func ConvertToOpenRouterTools(fds []models.FunctionDeclaration) []Tool {
	tools := make([]Tool, len(fds))
	for i, fd := range fds {
		tools[i] = ConvertToOpenRouterTool(fd)
	}
	return tools
}
