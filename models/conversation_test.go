package models

import (
	"errors"
	"testing"
)

func TestAddMessage_RejectsEmptyContent(t *testing.T) {
	conv := NewConversation("c1")

	err := conv.AddMessage(RoleUser, "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for empty content, got %v", err)
	}

	err = conv.AddMessage(RoleUser, "   ")
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for whitespace content, got %v", err)
	}

	if conv.Len() != 0 {
		t.Errorf("Expected no messages appended, got %d", conv.Len())
	}
}

func TestAddMessageWithToolCalls_AllowsEmptyContent(t *testing.T) {
	conv := NewConversation("c1")
	calls := []FunctionCall{{ID: "call-1", Name: "web_search", Args: map[string]interface{}{"query": "go"}}}

	if err := conv.AddMessageWithToolCalls(RoleModel, "", calls); err != nil {
		t.Fatalf("Expected tool-call message with empty content to succeed, got %v", err)
	}
	if err := conv.AddMessageWithToolCalls(RoleModel, "", nil); err == nil {
		t.Errorf("Expected error when both content and tool calls are empty")
	}
}

func TestHistory_ReturnsSnapshotCopy(t *testing.T) {
	conv := NewConversation("c1")
	if err := conv.AddMessage(RoleUser, "hello"); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}
	if err := conv.AddMessage(RoleModel, "hi there"); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}

	first := conv.History()
	second := conv.History()

	if len(first) != len(second) {
		t.Fatalf("Expected equal histories, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Content != second[i].Content || first[i].Role != second[i].Role {
			t.Errorf("History mismatch at %d: %+v vs %+v", i, first[i], second[i])
		}
	}

	// Mutating one snapshot must not leak into the other or the aggregate.
	first[0].Content = "mutated"
	if second[0].Content != "hello" {
		t.Errorf("Expected snapshots to be independent, got %q", second[0].Content)
	}
	if conv.History()[0].Content != "hello" {
		t.Errorf("Expected aggregate to be unaffected by snapshot mutation")
	}
}

func TestNewConversation_GeneratesID(t *testing.T) {
	conv := NewConversation("")
	if conv.ID == "" {
		t.Errorf("Expected generated conversation id")
	}
	other := NewConversation("")
	if conv.ID == other.ID {
		t.Errorf("Expected distinct generated ids, got %s twice", conv.ID)
	}
}

func TestAddToolResult_RequiresCallID(t *testing.T) {
	conv := NewConversation("c1")
	if err := conv.AddToolResult(Tool_Result{Tool_Name: "web_search"}); err == nil {
		t.Errorf("Expected error for tool result without call id")
	}
	if err := conv.AddToolResult(Tool_Result{Tool_ID: "call-1", Tool_Name: "web_search", Tool_Output: "ok"}); err != nil {
		t.Errorf("Expected tool result with id to succeed, got %v", err)
	}
}
