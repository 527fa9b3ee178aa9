package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ValidationError signals a malformed message or conversation argument. It is
// surfaced to the immediate caller and never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Reason)
}

// Conversation is an append-only ordered message log. Messages are never
// edited, removed or reordered once appended.
type Conversation struct {
	ID       string
	messages []Message
}

// NewConversation creates an empty conversation. An empty id gets a generated
// one.
func NewConversation(id string) *Conversation {
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	return &Conversation{ID: id}
}

// RestoreConversation rebuilds a conversation from a persisted message
// snapshot.
func RestoreConversation(id string, messages []Message) *Conversation {
	conv := NewConversation(id)
	conv.messages = append(conv.messages, messages...)
	return conv
}

// AddMessage appends a plain text message. Content must be non-empty after
// trimming.
func (c *Conversation) AddMessage(role Role, content string) error {
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Reason: "message content is empty"}
	}
	c.messages = append(c.messages, Message{Role: role, Content: content})
	return nil
}

// AddMessageWithToolCalls appends a model turn that may carry tool calls.
// Either content or at least one tool call must be present.
func (c *Conversation) AddMessageWithToolCalls(role Role, content string, calls []FunctionCall) error {
	if strings.TrimSpace(content) == "" && len(calls) == 0 {
		return &ValidationError{Reason: "message needs content or tool calls"}
	}
	c.messages = append(c.messages, Message{Role: role, Content: content, ToolCalls: calls})
	return nil
}

// AddToolResult appends a tool turn recording the output of a prior call.
func (c *Conversation) AddToolResult(result Tool_Result) error {
	if result.Tool_ID == "" {
		return &ValidationError{Reason: "tool result needs a tool call id"}
	}
	c.messages = append(c.messages, Message{Role: RoleTool, ToolResult: &result})
	return nil
}

// History returns a snapshot copy of the message log. Mutating the returned
// slice does not affect the conversation.
func (c *Conversation) History() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the conversation.
func (c *Conversation) Len() int {
	return len(c.messages)
}
