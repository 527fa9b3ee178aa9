package gemini

import (
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

func init() {
	// Load .env file if it exists (not present in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

// Gemini_Model is a completion provider backed by the Gemini REST API.
type Gemini_Model struct {
	Model string `json:"model"`
}

func (g *Gemini_Model) Model_Request(transcript []models.Message, tools []models.FunctionDeclaration, model string) (models.Model_Response, error) {
	requestBody, err := create_gemini_request(transcript, tools)
	if err != nil {
		return models.Model_Response{}, fmt.Errorf("failed to create gemini request: %w", err)
	}
	jsonBytes, err := json.Marshal(requestBody)
	if err != nil {
		return models.Model_Response{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	geminiResponse, err := make_request(string(jsonBytes), g.resolve(model))
	if err != nil {
		return models.Model_Response{}, err
	}
	return gemini_response_to_model_response(geminiResponse), nil
}

func (g *Gemini_Model) Stream_Model_Request(transcript []models.Message, tools []models.FunctionDeclaration, model string) (<-chan models.Model_Response, <-chan error) {
	requestBody, err := create_gemini_request(transcript, tools)
	if err != nil {
		return failedStream(fmt.Errorf("failed to create gemini stream request body: %w", err))
	}
	jsonBytes, err := json.Marshal(requestBody)
	if err != nil {
		return failedStream(fmt.Errorf("failed to marshal stream request body: %w", err))
	}

	geminiRespChan, geminiErrChan := make_request_stream(string(jsonBytes), g.resolve(model))
	return convertStream(geminiRespChan, geminiErrChan)
}

func (g *Gemini_Model) resolve(model string) string {
	if model != "" {
		return model
	}
	if g.Model != "" {
		return g.Model
	}
	return "gemini-2.0-flash"
}

func failedStream(err error) (<-chan models.Model_Response, <-chan error) {
	respChan := make(chan models.Model_Response)
	errChan := make(chan error, 1)
	errChan <- err
	close(errChan)
	close(respChan)
	return respChan, errChan
}

func gemini_response_to_model_response(response Gemini_response) models.Model_Response {
	modelResponse := models.Model_Response{}
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			var modelPart models.Model_Part
			if part.Text != nil && *part.Text != "" {
				modelPart.Text = part.Text
			}
			if part.FunctionCall != nil {
				modelPart.FunctionCall = &models.FunctionCall{
					ID:   part.FunctionCall.ID,
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				}
			}
			modelResponse.Parts = append(modelResponse.Parts, modelPart)
		}
	}
	return modelResponse
}

func convertStream(geminiResponseChan <-chan Gemini_response, geminiErrChan <-chan error) (<-chan models.Model_Response, <-chan error) {
	modelResponseChan := make(chan models.Model_Response)
	finalErrChan := make(chan error, 1)

	go func() {
		defer close(modelResponseChan)
		defer close(finalErrChan)

		for geminiResponseChan != nil || geminiErrChan != nil {
			select {
			case geminiResp, ok := <-geminiResponseChan:
				if !ok {
					geminiResponseChan = nil
					continue
				}
				modelResponseChan <- gemini_response_to_model_response(geminiResp)

			case geminiErr, ok := <-geminiErrChan:
				if !ok {
					geminiErrChan = nil
					continue
				}
				if geminiErr != nil {
					finalErrChan <- geminiErr
					return
				}
			}
		}
	}()

	return modelResponseChan, finalErrChan
}

// create_gemini_request maps the transcript into the Gemini wire format.
// System messages become the system instruction, tool results become
// functionResponse parts with the user role, everything else keeps its role.
func create_gemini_request(transcript []models.Message, tools []models.FunctionDeclaration) (Gemini_Request_Body, error) {
	allContents := []Gemini_Content{}
	var systemInstruction *SystemInstruction

	for _, msg := range transcript {
		switch msg.Role {
		case models.RoleSystem:
			systemInstruction = &SystemInstruction{
				Parts: []SystemPart{{Text: msg.Content}},
			}

		case models.RoleTool:
			if msg.ToolResult == nil {
				continue
			}
			var respMap map[string]interface{}
			if err := json.Unmarshal([]byte(msg.ToolResult.Tool_Output), &respMap); err != nil {
				// Non-JSON tool output still reaches the model.
				respMap = map[string]interface{}{"output": msg.ToolResult.Tool_Output}
			}
			allContents = append(allContents, Gemini_Content{
				Role: "user", // function responses always get the user role
				Parts: []Request_Part{{
					FunctionResponse: &FunctionResponse{
						ID:       msg.ToolResult.Tool_ID,
						Name:     msg.ToolResult.Tool_Name,
						Response: respMap,
					},
				}},
			})

		case models.RoleModel:
			parts := []Request_Part{}
			if msg.Content != "" {
				parts = append(parts, Request_Part{Text: msg.Content})
			}
			for i := range msg.ToolCalls {
				parts = append(parts, Request_Part{FunctionCall: &msg.ToolCalls[i]})
			}
			if len(parts) > 0 {
				allContents = append(allContents, Gemini_Content{Role: "model", Parts: parts})
			}

		default:
			if msg.Content == "" {
				continue
			}
			allContents = append(allContents, Gemini_Content{
				Role:  "user",
				Parts: []Request_Part{{Text: msg.Content}},
			})
		}
	}

	if len(allContents) == 0 {
		return Gemini_Request_Body{}, fmt.Errorf("cannot create Gemini request with no content")
	}

	geminiTools := []Gemini_Tools{}
	if len(tools) > 0 {
		geminiTools = append(geminiTools, Gemini_Tools{FunctionDeclarations: tools})
	}

	return Gemini_Request_Body{
		Contents:          &allContents,
		Tools:             &geminiTools,
		SystemInstruction: systemInstruction,
	}, nil
}

func make_request(requestBody string, model string) (Gemini_response, error) {
	resp, err := http.Post(fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", model, os.Getenv("GEMINI_API_KEY")), "application/json", strings.NewReader(requestBody))
	if err != nil {
		return Gemini_response{}, fmt.Errorf("error making POST request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Gemini_response{}, fmt.Errorf("error reading body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Gemini_response{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var response Gemini_response
	if err := json.Unmarshal(body, &response); err != nil {
		return Gemini_response{}, fmt.Errorf("error unmarshalling response: %w", err)
	}
	return response, nil
}

// make_request_stream calls streamGenerateContent, which answers with a JSON
// array of response objects written incrementally. Each decoded element goes
// out on the channel as it arrives.
func make_request_stream(requestBody string, model string) (<-chan Gemini_response, <-chan error) {
	resChan := make(chan Gemini_response)
	errChan := make(chan error, 1)

	go func() {
		defer close(resChan)
		defer close(errChan)

		resp, err := http.Post(fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:streamGenerateContent?key=%s", model, os.Getenv("GEMINI_API_KEY")), "application/json", strings.NewReader(requestBody))
		if err != nil {
			errChan <- fmt.Errorf("error making POST request: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			bodyBytes, _ := io.ReadAll(resp.Body)
			errChan <- fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(bodyBytes))
			return
		}

		decoder := json.NewDecoder(resp.Body)

		t, err := decoder.Token()
		if err != nil {
			errChan <- fmt.Errorf("error reading opening bracket: %w", err)
			return
		}
		if delim, ok := t.(json.Delim); !ok || delim != '[' {
			errChan <- fmt.Errorf("expected '[' at start of stream, got %T: %v", t, t)
			return
		}

		for decoder.More() {
			var response Gemini_response
			if err := decoder.Decode(&response); err != nil {
				errChan <- fmt.Errorf("error decoding JSON object in stream: %w", err)
				return
			}
			resChan <- response
		}

		t, err = decoder.Token()
		if err != nil && err != io.EOF {
			errChan <- fmt.Errorf("error reading closing bracket: %w", err)
			return
		}
		if err != io.EOF {
			if delim, ok := t.(json.Delim); !ok || delim != ']' {
				errChan <- fmt.Errorf("expected ']' at end of stream, got %T: %v", t, t)
				return
			}
		}
	}()

	return resChan, errChan
}
