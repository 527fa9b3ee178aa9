package gemini

import (
	models "github.com/sagechat/sage/models"
)

// Request body sent to the generateContent endpoints.
type Gemini_Request_Body struct {
	Contents          *[]Gemini_Content  `json:"contents,omitempty"`
	Tools             *[]Gemini_Tools    `json:"tools,omitempty"`
	SystemInstruction *SystemInstruction `json:"system_instruction,omitempty"`
}

type Gemini_Content struct {
	Role  string         `json:"role"`
	Parts []Request_Part `json:"parts"`
}

type Request_Part struct {
	Text             string               `json:"text,omitempty"`
	FunctionCall     *models.FunctionCall `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse    `json:"functionResponse,omitempty"`
}

// FunctionResponse is the wire form of a tool result fed back to the model.
type FunctionResponse struct {
	ID       string                 `json:"id,omitempty"`
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}

type Gemini_Tools struct {
	FunctionDeclarations []models.FunctionDeclaration `json:"function_declarations"`
}

type SystemInstruction struct {
	Parts []SystemPart `json:"parts"`
}

type SystemPart struct {
	Text string `json:"text"`
}

// Gemini_response is the subset of a generateContent response the agent
// consumes.
type Gemini_response struct {
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	Content      Candidate_Content `json:"content"`
	FinishReason string            `json:"finishReason,omitempty"`
}

type Candidate_Content struct {
	Role  string          `json:"role"`
	Parts []Response_Part `json:"parts"`
}

type Response_Part struct {
	Text         *string              `json:"text,omitempty"`
	FunctionCall *models.FunctionCall `json:"functionCall,omitempty"`
}
