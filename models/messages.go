package models

import "strings"

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleTool   Role = "tool"
)

// Message is one entry in a conversation transcript. A message carries text
// content, one or more tool calls requested by the model, or a tool result --
// never none of the three.
type Message struct {
	Role       Role           `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []FunctionCall `json:"tool_calls,omitempty"`
	ToolResult *Tool_Result   `json:"tool_result,omitempty"`
}

// Empty reports whether the message has no content, no tool calls and no
// tool result.
func (m Message) Empty() bool {
	return strings.TrimSpace(m.Content) == "" && len(m.ToolCalls) == 0 && m.ToolResult == nil
}

// FunctionCall is a request from the model to invoke a named tool with
// structured arguments. ID correlates the call with its Tool_Result.
type FunctionCall struct {
	ID   string                 `json:"id,omitempty"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// Tool_Result is the output of a tool invocation, keyed by the ID of the
// FunctionCall it answers.
type Tool_Result struct {
	Tool_ID     string `json:"tool_id"`
	Tool_Name   string `json:"tool_name"`
	Tool_Output string `json:"tool_output"`
}
