package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	models "github.com/sagechat/sage/models"
	"github.com/sagechat/sage/stores"
)

// loadOrCreate fetches the session's conversation, starting a fresh one for
// unknown ids.
func (s *ChatSession) loadOrCreate() (*models.Conversation, error) {
	conv, err := s.Store.FindByID(s.ConversationID)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return models.NewConversation(s.ConversationID), nil
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return conv, nil
}

// RunSingleInteraction handles a complete request-response cycle: append the
// user message, run the agent loop, append and persist the answer.
func (s *ChatSession) RunSingleInteraction(userMessage string) (string, error) {
	conv, err := s.loadOrCreate()
	if err != nil {
		return "", err
	}
	if err := conv.AddMessage(models.RoleUser, userMessage); err != nil {
		return "", err
	}

	answer, err := s.Agent.Generate(conv.History(), s.Opts)
	if err != nil {
		return "", fmt.Errorf("agent error: %w", err)
	}

	if answer != "" {
		if err := conv.AddMessage(models.RoleModel, answer); err != nil {
			s.Logger.Printf("Error appending model answer: %v", err)
		}
	}
	if err := s.Store.Save(conv); err != nil {
		s.Logger.Printf("Error saving conversation: %v", err)
	}

	return answer, nil
}

// RunStreamInteraction handles a streaming interaction. Responses are
// forwarded as they arrive; the accumulated text is persisted when the
// stream finishes.
func (s *ChatSession) RunStreamInteraction(userMessage string) (<-chan models.Model_Response, <-chan error) {
	respChan := make(chan models.Model_Response)
	errChan := make(chan error, 1)

	go func() {
		defer close(respChan)
		defer close(errChan)

		conv, err := s.loadOrCreate()
		if err != nil {
			errChan <- err
			return
		}
		if err := conv.AddMessage(models.RoleUser, userMessage); err != nil {
			errChan <- err
			return
		}

		agentRespChan, agentErrChan := s.Agent.Generate_Stream(conv.History(), s.Opts)

		answer := ""
		for response := range agentRespChan {
			answer += response.Text()
			respChan <- response
		}
		if err := <-agentErrChan; err != nil {
			errChan <- err
			return
		}

		if answer != "" {
			if err := conv.AddMessage(models.RoleModel, answer); err != nil {
				s.Logger.Printf("Error appending model answer: %v", err)
			}
		}
		if err := s.Store.Save(conv); err != nil {
			s.Logger.Printf("Error saving conversation: %v", err)
		}
	}()

	return respChan, errChan
}

// RunSSEInteraction runs a streaming interaction and writes each response as
// a Server-Sent Event until the stream ends or the client disconnects.
func (s *ChatSession) RunSSEInteraction(userMessage string, writer SSEWriter, ctx context.Context) error {
	respChan, errChan := s.RunStreamInteraction(userMessage)

	for {
		select {
		case response, ok := <-respChan:
			if !ok {
				// The error, if any, is buffered before the response
				// channel closes.
				select {
				case err, ok := <-errChan:
					if ok && err != nil {
						s.Logger.Printf("SSE stream error: %v", err)
						if writeErr := writer.WriteSSEError(err); writeErr != nil {
							s.Logger.Printf("Error writing SSE error: %v", writeErr)
						}
						writer.Flush()
						return err
					}
				default:
				}
				s.Logger.Printf("SSE stream finished.")
				return nil
			}

			jsonData, err := json.Marshal(response)
			if err != nil {
				s.Logger.Printf("Error marshalling response: %v", err)
				continue
			}
			if err := writer.WriteSSE(string(jsonData)); err != nil {
				s.Logger.Printf("Error writing to SSE stream: %v", err)
				return err
			}
			writer.Flush()

		case err, ok := <-errChan:
			if ok && err != nil {
				s.Logger.Printf("SSE stream error: %v", err)
				if writeErr := writer.WriteSSEError(err); writeErr != nil {
					s.Logger.Printf("Error writing SSE error: %v", writeErr)
				}
				writer.Flush()
				return err
			}
			if !ok {
				errChan = nil
			}

		case <-ctx.Done():
			s.Logger.Printf("SSE client disconnected")
			return ctx.Err()
		}
	}
}

// GetChatHistory returns the stored messages for this session's
// conversation. A fresh conversation yields an empty history.
func (s *ChatSession) GetChatHistory() ([]models.Message, error) {
	conv, err := s.loadOrCreate()
	if err != nil {
		return nil, err
	}
	return conv.History(), nil
}
