package openrouter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	models "github.com/sagechat/sage/models"
)

const (
	OpenRouterBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModel      = "openai/gpt-4o-mini"
)

func init() {
	// Load .env file if it exists (not present in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

// OpenRouter_Model implements the Model interface for the OpenRouter API.
// Also works against any OpenAI-compatible endpoint via BaseURL.
type OpenRouter_Model struct {
	Model       string // model identifier, e.g. "openai/gpt-4o-mini"
	Temperature *float64
	MaxTokens   *int
	SiteURL     string // optional: your site URL for OpenRouter rankings
	SiteName    string // optional: your site name for OpenRouter rankings
	BaseURL     string // optional: custom API base URL (defaults to OpenRouter)
	APIKeyEnv   string // optional: env var holding the API key (defaults to OPENROUTER_API_KEY)
}

func (o *OpenRouter_Model) Model_Request(transcript []models.Message, tools []models.FunctionDeclaration, model string) (models.Model_Response, error) {
	response, err := o.makeRequest(o.resolve(model), transcript, tools)
	if err != nil {
		return models.Model_Response{}, err
	}
	return openRouterResponseToModelResponse(response), nil
}

func (o *OpenRouter_Model) Stream_Model_Request(transcript []models.Message, tools []models.FunctionDeclaration, model string) (<-chan models.Model_Response, <-chan error) {
	return o.makeStreamRequest(o.resolve(model), transcript, tools)
}

func (o *OpenRouter_Model) resolve(model string) string {
	if model != "" {
		return model
	}
	if o.Model != "" {
		return o.Model
	}
	return DefaultModel
}

// openRouterResponseToModelResponse converts an OpenRouter response to the
// standard Model_Response. Tool call arguments that fail to parse fall back
// to empty args so the reply still degrades to whatever text came with it.
func openRouterResponseToModelResponse(response OpenRouterResponse) models.Model_Response {
	modelResponse := models.Model_Response{}

	for _, choice := range response.Choices {
		if choice.Message.Content != "" {
			text := choice.Message.Content
			modelResponse.Parts = append(modelResponse.Parts, models.Model_Part{Text: &text})
		}

		for _, toolCall := range choice.Message.ToolCalls {
			if toolCall.Type != "function" {
				continue
			}
			var args map[string]interface{}
			if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
				log.Printf("Warning: Failed to unmarshal tool call arguments: %v", err)
				args = map[string]interface{}{}
			}
			modelResponse.Parts = append(modelResponse.Parts, models.Model_Part{
				FunctionCall: &models.FunctionCall{
					ID:   toolCall.ID,
					Name: toolCall.Function.Name,
					Args: args,
				},
			})
		}
	}

	return modelResponse
}

// createOpenRouterRequest maps the transcript into OpenAI-compatible chat
// messages.
func (o *OpenRouter_Model) createOpenRouterRequest(model string, transcript []models.Message, tools []models.FunctionDeclaration, stream bool) OpenRouterRequest {
	messages := make([]Message, 0, len(transcript))

	for _, msg := range transcript {
		switch msg.Role {
		case models.RoleSystem:
			messages = append(messages, Message{Role: "system", Content: msg.Content})

		case models.RoleModel:
			assistant := Message{Role: "assistant", Content: msg.Content}
			for _, call := range msg.ToolCalls {
				argBytes, err := json.Marshal(call.Args)
				if err != nil {
					argBytes = []byte("{}")
				}
				assistant.ToolCalls = append(assistant.ToolCalls, ToolCall{
					ID:   call.ID,
					Type: "function",
					Function: ToolCallFunction{
						Name:      call.Name,
						Arguments: string(argBytes),
					},
				})
			}
			messages = append(messages, assistant)

		case models.RoleTool:
			if msg.ToolResult == nil {
				continue
			}
			callID := msg.ToolResult.Tool_ID
			messages = append(messages, Message{
				Role:       "tool",
				Content:    msg.ToolResult.Tool_Output,
				ToolCallID: &callID,
			})

		default:
			messages = append(messages, Message{Role: "user", Content: msg.Content})
		}
	}

	request := OpenRouterRequest{
		Model:       model,
		Messages:    messages,
		Stream:      stream,
		MaxTokens:   o.MaxTokens,
		Temperature: o.Temperature,
	}
	if len(tools) > 0 {
		request.Tools = ConvertToOpenRouterTools(tools)
	}
	return request
}

func (o *OpenRouter_Model) makeRequest(model string, transcript []models.Message, tools []models.FunctionDeclaration) (OpenRouterResponse, error) {
	jsonBytes, err := json.Marshal(o.createOpenRouterRequest(model, transcript, tools, false))
	if err != nil {
		return OpenRouterResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest("POST", o.baseURL(), bytes.NewReader(jsonBytes))
	if err != nil {
		return OpenRouterResponse{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	o.setHeaders(req)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return OpenRouterResponse{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return OpenRouterResponse{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return OpenRouterResponse{}, fmt.Errorf("OpenRouter API error: %s (type: %s)", errResp.Error.Message, errResp.Error.Type)
		}
		return OpenRouterResponse{}, fmt.Errorf("OpenRouter API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var response OpenRouterResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return OpenRouterResponse{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return response, nil
}

// makeStreamRequest sends a streaming request and forwards SSE chunks. Text
// deltas go out immediately; tool call deltas accumulate until the stream
// ends because argument JSON arrives in fragments.
func (o *OpenRouter_Model) makeStreamRequest(model string, transcript []models.Message, tools []models.FunctionDeclaration) (<-chan models.Model_Response, <-chan error) {
	respChan := make(chan models.Model_Response)
	errChan := make(chan error, 1)

	go func() {
		defer close(respChan)
		defer close(errChan)

		jsonBytes, err := json.Marshal(o.createOpenRouterRequest(model, transcript, tools, true))
		if err != nil {
			errChan <- fmt.Errorf("failed to marshal request body: %w", err)
			return
		}

		req, err := http.NewRequest("POST", o.baseURL(), bytes.NewReader(jsonBytes))
		if err != nil {
			errChan <- fmt.Errorf("failed to create HTTP request: %w", err)
			return
		}
		o.setHeaders(req)

		client := &http.Client{}
		resp, err := client.Do(req)
		if err != nil {
			errChan <- fmt.Errorf("HTTP request failed: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			var errResp ErrorResponse
			if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
				errChan <- fmt.Errorf("OpenRouter API error: %s (type: %s)", errResp.Error.Message, errResp.Error.Type)
			} else {
				errChan <- fmt.Errorf("OpenRouter API error: status %d, body: %s", resp.StatusCode, string(body))
			}
			return
		}

		toolCallAccumulator := make(map[int]*ToolCall)
		flushToolCalls := func() {
			if len(toolCallAccumulator) == 0 {
				return
			}
			modelResp := models.Model_Response{}
			for _, tc := range toolCallAccumulator {
				var args map[string]interface{}
				if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
					log.Printf("Warning: Failed to unmarshal final tool call arguments: %v", err)
					args = map[string]interface{}{}
				}
				modelResp.Parts = append(modelResp.Parts, models.Model_Part{
					FunctionCall: &models.FunctionCall{
						ID:   tc.ID,
						Name: tc.Function.Name,
						Args: args,
					},
				})
			}
			respChan <- modelResp
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					flushToolCalls()
					return
				}
				errChan <- fmt.Errorf("error reading stream: %w", err)
				return
			}

			line = strings.TrimSpace(line)
			if line == "" || !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				flushToolCalls()
				return
			}

			var streamResp StreamResponse
			if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
				log.Printf("Warning: Failed to unmarshal stream chunk: %v, data: %s", err, data)
				continue
			}

			for _, choice := range streamResp.Choices {
				if choice.Delta == nil {
					continue
				}

				if choice.Delta.Content != "" {
					text := choice.Delta.Content
					respChan <- models.Model_Response{Parts: []models.Model_Part{{Text: &text}}}
				}

				for _, toolCall := range choice.Delta.ToolCalls {
					idx := choice.Index
					if existing, ok := toolCallAccumulator[idx]; ok {
						existing.Function.Arguments += toolCall.Function.Arguments
					} else {
						toolCallAccumulator[idx] = &ToolCall{
							ID:   toolCall.ID,
							Type: toolCall.Type,
							Function: ToolCallFunction{
								Name:      toolCall.Function.Name,
								Arguments: toolCall.Function.Arguments,
							},
						}
					}
				}
			}
		}
	}()

	return respChan, errChan
}

func (o *OpenRouter_Model) baseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}
	return OpenRouterBaseURL
}

// setHeaders sets the required headers for OpenRouter API requests
func (o *OpenRouter_Model) setHeaders(req *http.Request) {
	apiKeyEnv := o.APIKeyEnv
	if apiKeyEnv == "" {
		apiKeyEnv = "OPENROUTER_API_KEY"
	}
	req.Header.Set("Authorization", "Bearer "+os.Getenv(apiKeyEnv))
	req.Header.Set("Content-Type", "application/json")

	// Optional headers for OpenRouter rankings
	if o.SiteURL != "" {
		req.Header.Set("HTTP-Referer", o.SiteURL)
	}
	if o.SiteName != "" {
		req.Header.Set("X-Title", o.SiteName)
	}
}
