package sage

import (
	"github.com/gorilla/websocket"

	"github.com/sagechat/sage/sessions"
)

// Re-export session types for convenience
type ChatSession = sessions.ChatSession
type WSSession = sessions.WSSession
type WebSocketWriter = sessions.WebSocketWriter
type SSEWriter = sessions.SSEWriter
type AgentInterface = sessions.AgentInterface

// NewChatSession creates an HTTP chat session for one conversation.
func NewChatSession(conversationID string, agent *Agent, config *ChatConfig) *ChatSession {
	return sessions.NewChatSession(conversationID, agent, config.Store, config.GenerateOptions())
}

// NewWSSession creates a WebSocket chat session.
func NewWSSession(sessionID string, conn *websocket.Conn, agent *Agent, config *ChatConfig) *WSSession {
	return sessions.NewWSSession(sessionID, conn, agent, config.Store, config.GenerateOptions())
}
