// Package sessions binds the agent loop to transports: plain HTTP, SSE
// streaming, and WebSocket. A session owns conversation persistence around
// each interaction.
package sessions

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	models "github.com/sagechat/sage/models"
	"github.com/sagechat/sage/stores"
)

// AgentInterface defines the interface that agents must implement
type AgentInterface interface {
	Generate(history []models.Message, opts models.GenerateOptions) (string, error)
	Generate_Stream(history []models.Message, opts models.GenerateOptions) (<-chan models.Model_Response, <-chan error)
}

// ChatSession handles HTTP-based chat interactions for one conversation.
type ChatSession struct {
	Agent          AgentInterface
	ConversationID string
	Store          stores.ConversationRepository
	Opts           models.GenerateOptions
	Logger         *log.Logger
}

// WSSession handles WebSocket chat interactions.
type WSSession struct {
	Agent     AgentInterface
	SessionID string
	Writer    *WebSocketWriter
	Store     stores.ConversationRepository
	Opts      models.GenerateOptions
	Logger    *log.Logger
}

// SSEWriter handles Server-Sent Events writing
type SSEWriter interface {
	WriteSSE(data string) error
	WriteSSEError(err error) error
	Flush()
}

// WebSocketWriter serializes all writes to one WebSocket connection and
// tracks time to first token.
type WebSocketWriter struct {
	Conn             *websocket.Conn
	Logger           *log.Logger
	StartTime        time.Time
	FirstTokenTime   *time.Time
	FirstTokenLogged bool
	mu               sync.Mutex
}

func (w *WebSocketWriter) WriteResponse(resp interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.FirstTokenLogged && w.FirstTokenTime == nil && !w.StartTime.IsZero() {
		now := time.Now()
		w.FirstTokenTime = &now
		w.Logger.Printf("Time to first token: %v", now.Sub(w.StartTime))
		w.FirstTokenLogged = true
	}
	return w.Conn.WriteJSON(resp)
}

func (w *WebSocketWriter) WriteError(message string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteJSON(map[string]string{"error": message})
}

func (w *WebSocketWriter) WriteDone() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteJSON(map[string]string{"type": "done"})
}
