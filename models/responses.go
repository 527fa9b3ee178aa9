package models

// Model_Response is the provider-neutral shape every completion adapter maps
// into. Streaming adapters emit a sequence of partial responses; buffered
// adapters emit exactly one.
type Model_Response struct {
	Parts []Model_Part `json:"parts"`
}

// Model_Part is either a text fragment or a function call, never both.
type Model_Part struct {
	Text         *string       `json:"text,omitempty"`
	FunctionCall *FunctionCall `json:"functionCall,omitempty"`
}

// Text concatenates the text parts of the response.
func (r Model_Response) Text() string {
	var out string
	for _, part := range r.Parts {
		if part.Text != nil {
			out += *part.Text
		}
	}
	return out
}

// FirstFunctionCall returns the first function call in the response, or nil.
// Additional calls in the same response are not acted on; the loop processes
// one tool request per turn.
func (r Model_Response) FirstFunctionCall() *FunctionCall {
	for _, part := range r.Parts {
		if part.FunctionCall != nil {
			return part.FunctionCall
		}
	}
	return nil
}
