package sage

import (
	"fmt"
	"log"
	"os"
	"strings"

	models "github.com/sagechat/sage/models"
)

// maxToolTurns bounds how many model calls one Generate may make. When the
// model still wants a tool on the final turn, the loop stops and whatever
// text has been produced so far is the answer.
const maxToolTurns = 5

// Generate runs the tool-augmented completion loop over the conversation
// history and returns the model's final text. Tool failures are folded into
// the transcript as text rather than surfaced as errors, so the model gets a
// chance to answer from what it already knows. Only a failing model call
// returns an error.
func (agent *Agent) Generate(history []models.Message, opts models.GenerateOptions) (string, error) {
	transcript := buildTranscript(history, opts)
	tools := agent.filterTools(opts)
	logger := agent.logger()

	var answer strings.Builder
	for turn := 0; turn < maxToolTurns; turn++ {
		resp, err := agent.Model.Model_Request(transcript, tools, opts.Model)
		if err != nil {
			return "", fmt.Errorf("model request failed: %w", err)
		}
		if text := resp.Text(); text != "" {
			answer.WriteString(text)
		}

		call := resp.FirstFunctionCall()
		if call == nil {
			return answer.String(), nil
		}
		if turn == maxToolTurns-1 {
			break
		}

		transcript = append(transcript, toolCallMessage(resp.Text(), call))
		transcript = append(transcript, toolResultMessage(call, agent.runTool(logger, opts, call)))
	}

	logger.Printf("Tool turn budget exhausted, returning text produced so far")
	return answer.String(), nil
}

// Generate_Stream is Generate with the model's partial responses forwarded on
// a channel as they arrive. Both channels close when the loop finishes; a
// model failure mid-loop arrives on the error channel.
func (agent *Agent) Generate_Stream(history []models.Message, opts models.GenerateOptions) (<-chan models.Model_Response, <-chan error) {
	respChan := make(chan models.Model_Response)
	errChan := make(chan error, 1)

	go func() {
		defer close(respChan)
		defer close(errChan)

		transcript := buildTranscript(history, opts)
		tools := agent.filterTools(opts)
		logger := agent.logger()

		for turn := 0; turn < maxToolTurns; turn++ {
			inner, innerErr := agent.Model.Stream_Model_Request(transcript, tools, opts.Model)

			var call *models.FunctionCall
			var turnText strings.Builder
			for resp := range inner {
				if fc := resp.FirstFunctionCall(); fc != nil && call == nil {
					call = fc
				}
				turnText.WriteString(resp.Text())
				respChan <- resp
			}
			if err := <-innerErr; err != nil {
				errChan <- fmt.Errorf("model stream failed: %w", err)
				return
			}

			if call == nil {
				return
			}
			if turn == maxToolTurns-1 {
				logger.Printf("Tool turn budget exhausted, ending stream")
				return
			}

			transcript = append(transcript, toolCallMessage(turnText.String(), call))
			transcript = append(transcript, toolResultMessage(call, agent.runTool(logger, opts, call)))
		}
	}()

	return respChan, errChan
}

// runTool executes one requested call. A failure becomes plain text the
// model can read on the next turn. A call to a tool the options disable is
// never dispatched; it gets the same fallback text as a failing tool.
func (agent *Agent) runTool(logger *log.Logger, opts models.GenerateOptions, call *models.FunctionCall) string {
	if !opts.ToolEnabled(call.Name) {
		logger.Printf("Tool %s requested but not enabled", call.Name)
		return fmt.Sprintf("Tool unavailable: tool %s is not enabled", call.Name)
	}
	logger.Printf("Executing tool %s", call.Name)
	output, err := agent.ExecuteTool(call.Name, call.Args)
	if err != nil {
		logger.Printf("Tool %s failed: %v", call.Name, err)
		return fmt.Sprintf("Tool unavailable: %v", err)
	}
	return output
}

func buildTranscript(history []models.Message, opts models.GenerateOptions) []models.Message {
	transcript := make([]models.Message, 0, len(history)+1)
	if opts.SystemPrompt != "" {
		transcript = append(transcript, models.Message{Role: models.RoleSystem, Content: opts.SystemPrompt})
	}
	return append(transcript, history...)
}

func toolCallMessage(text string, call *models.FunctionCall) models.Message {
	return models.Message{
		Role:      models.RoleModel,
		Content:   text,
		ToolCalls: []models.FunctionCall{*call},
	}
}

func toolResultMessage(call *models.FunctionCall, output string) models.Message {
	return models.Message{
		Role: models.RoleTool,
		ToolResult: &models.Tool_Result{
			Tool_ID:     call.ID,
			Tool_Name:   call.Name,
			Tool_Output: output,
		},
	}
}

func (agent *Agent) logger() *log.Logger {
	if agent.Logger != nil {
		return agent.Logger
	}
	return log.New(os.Stdout, "[AGENT] ", log.LstdFlags)
}
