package stores

import (
	"sync"

	models "github.com/sagechat/sage/models"
)

// MemoryStore is an in-memory ConversationRepository. Useful for tests and
// single-process deployments that don't need durability.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]models.Message
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{conversations: make(map[string][]models.Message)}
}

// FindByID loads a conversation. Returns ErrNotFound for unknown ids.
func (s *MemoryStore) FindByID(id string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	snapshot := make([]models.Message, len(messages))
	copy(snapshot, messages)
	return models.RestoreConversation(id, snapshot), nil
}

// Save stores a snapshot of the conversation's messages.
func (s *MemoryStore) Save(conv *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[conv.ID] = conv.History()
	return nil
}

// ListConversations returns all stored conversation ids.
func (s *MemoryStore) ListConversations() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.conversations))
	for id := range s.conversations {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Ping() error { return nil }
