package sessions

import (
	"errors"
	"fmt"
	"time"

	models "github.com/sagechat/sage/models"
	"github.com/sagechat/sage/stores"
)

// ChatMessage is one inbound WebSocket frame from the client.
type ChatMessage struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// HandleMessage runs one interaction over the WebSocket: stream the agent's
// responses to the client, then persist the exchange and send a done frame.
func (s *WSSession) HandleMessage(msg ChatMessage) error {
	conv, err := s.loadOrCreate()
	if err != nil {
		_ = s.Writer.WriteError(err.Error())
		return err
	}
	if err := conv.AddMessage(models.RoleUser, msg.Message); err != nil {
		_ = s.Writer.WriteError(err.Error())
		return err
	}

	opts := s.Opts
	if msg.Model != "" {
		opts.Model = msg.Model
	}

	s.Writer.StartTime = time.Now()
	s.Writer.FirstTokenTime = nil
	s.Writer.FirstTokenLogged = false

	respChan, errChan := s.Agent.Generate_Stream(conv.History(), opts)

	answer := ""
	for response := range respChan {
		answer += response.Text()
		if err := s.Writer.WriteResponse(response); err != nil {
			s.Logger.Printf("Error writing to WebSocket: %v", err)
			return err
		}
	}
	if err := <-errChan; err != nil {
		s.Logger.Printf("Agent stream error: %v", err)
		_ = s.Writer.WriteError(err.Error())
		return err
	}

	if answer != "" {
		if err := conv.AddMessage(models.RoleModel, answer); err != nil {
			s.Logger.Printf("Error appending model answer: %v", err)
		}
	}
	if err := s.Store.Save(conv); err != nil {
		s.Logger.Printf("Error saving conversation: %v", err)
	}

	return s.Writer.WriteDone()
}

// Run reads chat messages off the connection until the client disconnects.
func (s *WSSession) Run() error {
	for {
		var msg ChatMessage
		if err := s.Writer.Conn.ReadJSON(&msg); err != nil {
			s.Logger.Printf("WebSocket closed: %v", err)
			return err
		}
		if err := s.HandleMessage(msg); err != nil {
			s.Logger.Printf("Interaction failed: %v", err)
		}
	}
}

func (s *WSSession) loadOrCreate() (*models.Conversation, error) {
	conv, err := s.Store.FindByID(s.SessionID)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return models.NewConversation(s.SessionID), nil
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return conv, nil
}
