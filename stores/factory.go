package stores

import "fmt"

// NewStore creates a ConversationRepository from a StoreConfig.
func NewStore(config *StoreConfig) (ConversationRepository, error) {
	switch config.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(config)
	case "postgres":
		return NewPostgresStore(config)
	default:
		return nil, fmt.Errorf("unknown store type: %s", config.Type)
	}
}
