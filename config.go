package sage

import (
	"github.com/sagechat/sage/models"
	"github.com/sagechat/sage/stores"
)

// ChatConfig holds configuration for chat sessions
type ChatConfig struct {
	ModelName    string
	SystemPrompt string
	EnabledTools []string
	Store        stores.ConversationRepository
}

// NewChatConfig creates a new chat configuration with default values
func NewChatConfig() *ChatConfig {
	return &ChatConfig{
		ModelName: "gemini-2.0-flash",
		Store:     stores.NewMemoryStore(),
	}
}

// WithModelName sets the model name for the configuration
func (c *ChatConfig) WithModelName(modelName string) *ChatConfig {
	c.ModelName = modelName
	return c
}

// WithSystemPrompt sets the system prompt for the configuration
func (c *ChatConfig) WithSystemPrompt(prompt string) *ChatConfig {
	c.SystemPrompt = prompt
	return c
}

// WithEnabledTools restricts which registered tools the model may call
func (c *ChatConfig) WithEnabledTools(names []string) *ChatConfig {
	c.EnabledTools = names
	return c
}

// WithStore sets the conversation store for the configuration
func (c *ChatConfig) WithStore(store stores.ConversationRepository) *ChatConfig {
	c.Store = store
	return c
}

// WithSQLiteStore sets a SQLite store with the specified database path
func (c *ChatConfig) WithSQLiteStore(dbPath string) *ChatConfig {
	store, err := stores.NewSQLiteStoreSimple(dbPath)
	if err != nil {
		panic("Failed to create SQLite store: " + err.Error())
	}
	c.Store = store
	return c
}

// WithPostgresStore sets a PostgreSQL store with the specified connection parameters
func (c *ChatConfig) WithPostgresStore(host, user, password, dbname string, port int) *ChatConfig {
	store, err := stores.NewPostgresStoreDefault(host, user, password, dbname, port)
	if err != nil {
		panic("Failed to create PostgreSQL store: " + err.Error())
	}
	c.Store = store
	return c
}

// GenerateOptions converts the configuration into per-call options.
func (c *ChatConfig) GenerateOptions() models.GenerateOptions {
	return models.GenerateOptions{
		Model:        c.ModelName,
		SystemPrompt: c.SystemPrompt,
		EnabledTools: c.EnabledTools,
	}
}
