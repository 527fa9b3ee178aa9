package models

// Chat_Request is the body of a chat API call.
type Chat_Request struct {
	Message         string   `json:"message"`
	Conversation_ID string   `json:"conversation_id,omitempty"`
	Model           string   `json:"model,omitempty"`
	// EnabledTools restricts the tool catalog for this turn. Nil means all
	// registered tools are available.
	EnabledTools []string `json:"enabled_tools,omitempty"`
}

// GenerateOptions configures a single agent generation run.
type GenerateOptions struct {
	// Model names the completion model to use; empty selects the adapter's
	// default.
	Model string
	// SystemPrompt, when set, is prepended to the transcript as a system
	// instruction.
	SystemPrompt string
	// EnabledTools filters the advertised tool catalog by name. Nil means
	// every registered tool; an empty non-nil slice disables all tools.
	EnabledTools []string
}

// ToolEnabled reports whether the named tool is available under these
// options.
func (o GenerateOptions) ToolEnabled(name string) bool {
	if o.EnabledTools == nil {
		return true
	}
	for _, enabled := range o.EnabledTools {
		if enabled == name {
			return true
		}
	}
	return false
}
