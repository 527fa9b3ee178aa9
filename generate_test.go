package sage

import (
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	models "github.com/sagechat/sage/models"
)

// scriptedModel replays a fixed sequence of responses and records every
// transcript and toolset it was called with. The last response repeats if
// the loop asks for more.
type scriptedModel struct {
	responses   []models.Model_Response
	transcripts [][]models.Message
	toolsets    [][]models.FunctionDeclaration
	err         error
}

func (m *scriptedModel) Model_Request(transcript []models.Message, tools []models.FunctionDeclaration, model string) (models.Model_Response, error) {
	snapshot := make([]models.Message, len(transcript))
	copy(snapshot, transcript)
	m.transcripts = append(m.transcripts, snapshot)
	m.toolsets = append(m.toolsets, tools)

	if m.err != nil {
		return models.Model_Response{}, m.err
	}
	i := len(m.transcripts) - 1
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	return m.responses[i], nil
}

func (m *scriptedModel) Stream_Model_Request(transcript []models.Message, tools []models.FunctionDeclaration, model string) (<-chan models.Model_Response, <-chan error) {
	respChan := make(chan models.Model_Response)
	errChan := make(chan error, 1)
	go func() {
		defer close(respChan)
		defer close(errChan)
		resp, err := m.Model_Request(transcript, tools, model)
		if err != nil {
			errChan <- err
			return
		}
		respChan <- resp
	}()
	return respChan, errChan
}

func textResponse(text string) models.Model_Response {
	return models.Model_Response{Parts: []models.Model_Part{{Text: &text}}}
}

func callResponse(name, query string) models.Model_Response {
	return models.Model_Response{Parts: []models.Model_Part{{
		FunctionCall: &models.FunctionCall{ID: "call-1", Name: name, Args: map[string]interface{}{"query": query}},
	}}}
}

func echoTool(name string, record *[]string) models.FunctionDeclaration {
	return models.FunctionDeclaration{
		Name: name,
		Parameters: models.Parameters{
			Type:       "object",
			Properties: map[string]interface{}{"query": map[string]interface{}{"type": "string"}},
			Required:   []string{"query"},
		},
		Callable: func(query string) (string, error) {
			*record = append(*record, query)
			return "echo: " + query, nil
		},
	}
}

func testAgent(model Model, tools ...models.FunctionDeclaration) Agent {
	return Agent{Model: model, Tools: tools, Logger: log.New(io.Discard, "", 0)}
}

func TestGenerate_DirectAnswer(t *testing.T) {
	model := &scriptedModel{responses: []models.Model_Response{textResponse("Hello there.")}}
	var calls []string
	agent := testAgent(model, echoTool("web_search", &calls))

	answer, err := agent.Generate([]models.Message{{Role: models.RoleUser, Content: "Hi"}}, models.GenerateOptions{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if answer != "Hello there." {
		t.Errorf("Expected the model text, got %q", answer)
	}
	if len(model.transcripts) != 1 {
		t.Errorf("Expected a single model call, got %d", len(model.transcripts))
	}
	if len(calls) != 0 {
		t.Errorf("Expected no tool executions, got %v", calls)
	}
}

func TestGenerate_ToolRoundTrip(t *testing.T) {
	model := &scriptedModel{responses: []models.Model_Response{
		callResponse("web_search", "weather in oslo"),
		textResponse("It is raining in Oslo."),
	}}
	var calls []string
	agent := testAgent(model, echoTool("web_search", &calls))

	answer, err := agent.Generate([]models.Message{{Role: models.RoleUser, Content: "Weather in Oslo?"}}, models.GenerateOptions{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if answer != "It is raining in Oslo." {
		t.Errorf("Expected the follow-up text, got %q", answer)
	}
	if len(calls) != 1 || calls[0] != "weather in oslo" {
		t.Errorf("Expected one tool execution with the model's query, got %v", calls)
	}
	if len(model.transcripts) != 2 {
		t.Fatalf("Expected two model calls, got %d", len(model.transcripts))
	}

	// The second call must carry the tool exchange.
	second := model.transcripts[1]
	last := second[len(second)-1]
	if last.Role != models.RoleTool || last.ToolResult == nil {
		t.Fatalf("Expected a tool result message at the end of the transcript, got %+v", last)
	}
	if !strings.Contains(last.ToolResult.Tool_Output, "echo: weather in oslo") {
		t.Errorf("Expected the tool output in the transcript, got %q", last.ToolResult.Tool_Output)
	}
	if prev := second[len(second)-2]; len(prev.ToolCalls) != 1 || prev.ToolCalls[0].Name != "web_search" {
		t.Errorf("Expected the model's tool call before its result, got %+v", prev)
	}
}

func TestGenerate_ToolFailureFoldedIntoTranscript(t *testing.T) {
	model := &scriptedModel{responses: []models.Model_Response{
		callResponse("web_search", "anything"),
		textResponse("Answering from what I know."),
	}}
	failing := models.FunctionDeclaration{
		Name: "web_search",
		Callable: func(query string) (string, error) {
			return "", errors.New("upstream 503")
		},
	}
	agent := testAgent(model, failing)

	answer, err := agent.Generate([]models.Message{{Role: models.RoleUser, Content: "Hi"}}, models.GenerateOptions{})
	if err != nil {
		t.Fatalf("Expected the failure to degrade, got error %v", err)
	}
	if answer != "Answering from what I know." {
		t.Errorf("Expected the fallback answer, got %q", answer)
	}

	second := model.transcripts[1]
	last := second[len(second)-1]
	if last.ToolResult == nil || !strings.HasPrefix(last.ToolResult.Tool_Output, "Tool unavailable:") {
		t.Errorf("Expected a tool-unavailable marker in the transcript, got %+v", last)
	}
}

func TestGenerate_UnknownToolDegrades(t *testing.T) {
	model := &scriptedModel{responses: []models.Model_Response{
		callResponse("no_such_tool", "x"),
		textResponse("Done anyway."),
	}}
	agent := testAgent(model)

	answer, err := agent.Generate([]models.Message{{Role: models.RoleUser, Content: "Hi"}}, models.GenerateOptions{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if answer != "Done anyway." {
		t.Errorf("Expected the follow-up answer, got %q", answer)
	}
	last := model.transcripts[1][len(model.transcripts[1])-1]
	if last.ToolResult == nil || !strings.Contains(last.ToolResult.Tool_Output, "unknown or unavailable tool") {
		t.Errorf("Expected the unknown-tool marker, got %+v", last)
	}
}

func TestGenerate_TurnBudgetBoundsTheLoop(t *testing.T) {
	model := &scriptedModel{responses: []models.Model_Response{
		callResponse("web_search", "again"),
	}}
	var calls []string
	agent := testAgent(model, echoTool("web_search", &calls))

	answer, err := agent.Generate([]models.Message{{Role: models.RoleUser, Content: "Loop?"}}, models.GenerateOptions{})
	if err != nil {
		t.Fatalf("Expected exhaustion to return cleanly, got %v", err)
	}
	if answer != "" {
		t.Errorf("Expected no text from a never-answering model, got %q", answer)
	}
	if len(model.transcripts) != maxToolTurns {
		t.Errorf("Expected exactly %d model calls, got %d", maxToolTurns, len(model.transcripts))
	}
	if len(calls) != maxToolTurns-1 {
		t.Errorf("Expected %d tool executions, got %d", maxToolTurns-1, len(calls))
	}
}

func TestGenerate_ModelErrorPropagates(t *testing.T) {
	model := &scriptedModel{err: errors.New("connection refused")}
	agent := testAgent(model)

	if _, err := agent.Generate([]models.Message{{Role: models.RoleUser, Content: "Hi"}}, models.GenerateOptions{}); err == nil {
		t.Errorf("Expected a model failure to propagate")
	}
}

func TestGenerate_SystemPromptPrepended(t *testing.T) {
	model := &scriptedModel{responses: []models.Model_Response{textResponse("ok")}}
	agent := testAgent(model)

	_, err := agent.Generate(
		[]models.Message{{Role: models.RoleUser, Content: "Hi"}},
		models.GenerateOptions{SystemPrompt: "You are terse."},
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	first := model.transcripts[0][0]
	if first.Role != models.RoleSystem || first.Content != "You are terse." {
		t.Errorf("Expected the system prompt first in the transcript, got %+v", first)
	}
}

func TestGenerate_EnabledToolsFilter(t *testing.T) {
	model := &scriptedModel{responses: []models.Model_Response{textResponse("ok")}}
	var calls []string
	agent := testAgent(model, echoTool("web_search", &calls), echoTool("knowledge_base", &calls))

	_, err := agent.Generate(
		[]models.Message{{Role: models.RoleUser, Content: "Hi"}},
		models.GenerateOptions{EnabledTools: []string{"knowledge_base"}},
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	sent := model.toolsets[0]
	if len(sent) != 1 || sent[0].Name != "knowledge_base" {
		t.Errorf("Expected only the enabled tool to reach the model, got %+v", sent)
	}
}

func TestGenerate_DisabledToolNeverDispatched(t *testing.T) {
	model := &scriptedModel{responses: []models.Model_Response{
		callResponse("web_search", "secret"),
		textResponse("Answering without it."),
	}}
	var calls []string
	agent := testAgent(model, echoTool("web_search", &calls), echoTool("knowledge_base", &calls))

	answer, err := agent.Generate(
		[]models.Message{{Role: models.RoleUser, Content: "Hi"}},
		models.GenerateOptions{EnabledTools: []string{"knowledge_base"}},
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if answer != "Answering without it." {
		t.Errorf("Expected the follow-up answer, got %q", answer)
	}
	if len(calls) != 0 {
		t.Errorf("Expected the disabled tool to stay unexecuted, got calls %v", calls)
	}
	last := model.transcripts[1][len(model.transcripts[1])-1]
	if last.ToolResult == nil || !strings.HasPrefix(last.ToolResult.Tool_Output, "Tool unavailable:") {
		t.Errorf("Expected a tool-unavailable marker in the transcript, got %+v", last)
	}
}

func TestGenerate_EmptyToolResultMadeExplicit(t *testing.T) {
	model := &scriptedModel{responses: []models.Model_Response{
		callResponse("web_search", "anything"),
		textResponse("Nothing came back."),
	}}
	silent := models.FunctionDeclaration{
		Name: "web_search",
		Callable: func(query string) (string, error) {
			return "", nil
		},
	}
	agent := testAgent(model, silent)

	_, err := agent.Generate([]models.Message{{Role: models.RoleUser, Content: "Hi"}}, models.GenerateOptions{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	last := model.transcripts[1][len(model.transcripts[1])-1]
	if last.ToolResult == nil || !strings.Contains(last.ToolResult.Tool_Output, "No information found for this query") {
		t.Errorf("Expected the no-information substitute, got %+v", last)
	}
}

func TestGenerateStream_ForwardsToolRoundTrip(t *testing.T) {
	model := &scriptedModel{responses: []models.Model_Response{
		callResponse("web_search", "streamed"),
		textResponse("Streamed answer."),
	}}
	var calls []string
	agent := testAgent(model, echoTool("web_search", &calls))

	respChan, errChan := agent.Generate_Stream(
		[]models.Message{{Role: models.RoleUser, Content: "Hi"}},
		models.GenerateOptions{},
	)

	var text strings.Builder
	for resp := range respChan {
		text.WriteString(resp.Text())
	}
	if err := <-errChan; err != nil {
		t.Fatalf("Expected no stream error, got %v", err)
	}
	if text.String() != "Streamed answer." {
		t.Errorf("Expected the streamed text, got %q", text.String())
	}
	if len(calls) != 1 || calls[0] != "streamed" {
		t.Errorf("Expected one tool execution, got %v", calls)
	}
}

func TestGenerateStream_ModelErrorOnChannel(t *testing.T) {
	model := &scriptedModel{err: errors.New("connection refused")}
	agent := testAgent(model)

	respChan, errChan := agent.Generate_Stream(
		[]models.Message{{Role: models.RoleUser, Content: "Hi"}},
		models.GenerateOptions{},
	)
	for range respChan {
	}
	if err := <-errChan; err == nil {
		t.Errorf("Expected the stream error to surface")
	}
}
