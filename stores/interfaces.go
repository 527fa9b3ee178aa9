// Package stores persists conversations behind a small repository interface
// with in-memory, SQLite, and PostgreSQL implementations.
package stores

import (
	"errors"

	"gorm.io/gorm"

	models "github.com/sagechat/sage/models"
)

// ErrNotFound is returned when a conversation id has no stored record.
var ErrNotFound = errors.New("conversation not found")

// ConversationRepository abstracts conversation persistence. Saves are
// append-only: messages already stored for an id are never rewritten.
type ConversationRepository interface {
	// FindByID loads a conversation. Returns ErrNotFound for unknown ids.
	FindByID(id string) (*models.Conversation, error)
	// Save persists any messages appended since the last save.
	Save(conv *models.Conversation) error
	// ListConversations returns all stored conversation ids.
	ListConversations() ([]string, error)

	Close() error
	Ping() error
}

// ConversationRecord is the gorm row for conversation metadata.
type ConversationRecord struct {
	gorm.Model
	ConversationID string `gorm:"uniqueIndex;not null"`
	MessageCount   int    `gorm:"default:0"`
}

// MessageRecord is the gorm row for one conversation turn. ToolCallsJSON and
// ToolResultJSON hold the JSON marshaled tool exchange for model and tool
// turns respectively.
type MessageRecord struct {
	gorm.Model
	ConversationID string `gorm:"index;not null"`
	Sequence       int    `gorm:"not null"`
	Role           string `gorm:"not null"`
	Content        string `gorm:"type:text"`
	ToolCallsJSON  string `gorm:"type:json"`
	ToolResultJSON string `gorm:"type:json"`
}

// StoreConfig holds configuration for database stores
type StoreConfig struct {
	Type       string            `json:"type"`       // "memory", "sqlite", "postgres"
	Connection string            `json:"connection"` // connection string
	Options    map[string]string `json:"options"`    // additional options
}

// NewStoreConfig creates a new store configuration
func NewStoreConfig(storeType, connection string) *StoreConfig {
	return &StoreConfig{
		Type:       storeType,
		Connection: connection,
		Options:    make(map[string]string),
	}
}

// WithOption adds an option to the store configuration
func (c *StoreConfig) WithOption(key, value string) *StoreConfig {
	c.Options[key] = value
	return c
}
