package sessions

import (
	"fmt"
	"log"
	"os"

	"github.com/gorilla/websocket"

	models "github.com/sagechat/sage/models"
	"github.com/sagechat/sage/stores"
)

// NewChatSession creates a new HTTP chat session
func NewChatSession(conversationID string, agent AgentInterface, store stores.ConversationRepository, opts models.GenerateOptions) *ChatSession {
	logger := log.New(os.Stdout, fmt.Sprintf("[HTTP %s] ", conversationID), log.LstdFlags)

	return &ChatSession{
		Agent:          agent,
		ConversationID: conversationID,
		Store:          store,
		Opts:           opts,
		Logger:         logger,
	}
}

// NewWSSession creates a new WebSocket chat session
func NewWSSession(sessionID string, conn *websocket.Conn, agent AgentInterface, store stores.ConversationRepository, opts models.GenerateOptions) *WSSession {
	logger := log.New(os.Stdout, fmt.Sprintf("[WS %s] ", sessionID), log.LstdFlags)
	writer := &WebSocketWriter{
		Conn:   conn,
		Logger: logger,
	}

	return &WSSession{
		Agent:     agent,
		SessionID: sessionID,
		Writer:    writer,
		Store:     store,
		Opts:      opts,
		Logger:    logger,
	}
}
