package stores

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	models "github.com/sagechat/sage/models"
)

// gormStore is the shared backend for the SQL stores. The driver-specific
// types only differ in how they open the connection.
type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) migrate() error {
	if err := s.db.AutoMigrate(&ConversationRecord{}, &MessageRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return nil
}

// FindByID loads a conversation with its messages in sequence order.
func (s *gormStore) FindByID(id string) (*models.Conversation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var count int64
	if err := s.db.Model(&ConversationRecord{}).Where("conversation_id = ?", id).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	var records []MessageRecord
	if err := s.db.Where("conversation_id = ?", id).Order("sequence ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	messages := make([]models.Message, 0, len(records))
	for _, rec := range records {
		msg, err := recordToMessage(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to decode message %d of conversation %s: %w", rec.Sequence, id, err)
		}
		messages = append(messages, msg)
	}

	return models.RestoreConversation(id, messages), nil
}

// Save writes the messages appended since the conversation was last
// persisted. Earlier messages are left untouched.
func (s *gormStore) Save(conv *models.Conversation) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}

	history := conv.History()

	tx := s.db.Begin()

	var count int64
	if err := tx.Model(&ConversationRecord{}).Where("conversation_id = ?", conv.ID).Count(&count).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to look up conversation: %w", err)
	}
	if count == 0 {
		if err := tx.Create(&ConversationRecord{ConversationID: conv.ID}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create conversation record: %w", err)
		}
	}

	var stored int64
	if err := tx.Model(&MessageRecord{}).Where("conversation_id = ?", conv.ID).Count(&stored).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to count existing messages: %w", err)
	}

	for i := int(stored); i < len(history); i++ {
		rec, err := messageToRecord(conv.ID, i+1, history[i])
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to encode message for database: %w", err)
		}
		if err := tx.Create(&rec).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create message record: %w", err)
		}
	}

	if err := tx.Model(&ConversationRecord{}).Where("conversation_id = ?", conv.ID).Update("message_count", len(history)).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update conversation message count: %w", err)
	}

	return tx.Commit().Error
}

// ListConversations returns all conversation IDs
func (s *gormStore) ListConversations() ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var records []ConversationRecord
	if err := s.db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %w", err)
	}

	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ConversationID
	}
	return ids, nil
}

// Close closes the database connection
func (s *gormStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (s *gormStore) Ping() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func messageToRecord(conversationID string, sequence int, msg models.Message) (MessageRecord, error) {
	rec := MessageRecord{
		ConversationID: conversationID,
		Sequence:       sequence,
		Role:           string(msg.Role),
		Content:        msg.Content,
	}

	if len(msg.ToolCalls) > 0 {
		callsJSON, err := json.Marshal(msg.ToolCalls)
		if err != nil {
			return MessageRecord{}, err
		}
		rec.ToolCallsJSON = string(callsJSON)
	}
	if msg.ToolResult != nil {
		resultJSON, err := json.Marshal(msg.ToolResult)
		if err != nil {
			return MessageRecord{}, err
		}
		rec.ToolResultJSON = string(resultJSON)
	}

	return rec, nil
}

func recordToMessage(rec MessageRecord) (models.Message, error) {
	msg := models.Message{
		Role:    models.Role(rec.Role),
		Content: rec.Content,
	}

	if rec.ToolCallsJSON != "" {
		if err := json.Unmarshal([]byte(rec.ToolCallsJSON), &msg.ToolCalls); err != nil {
			return models.Message{}, err
		}
	}
	if rec.ToolResultJSON != "" {
		var result models.Tool_Result
		if err := json.Unmarshal([]byte(rec.ToolResultJSON), &result); err != nil {
			return models.Message{}, err
		}
		msg.ToolResult = &result
	}

	return msg, nil
}
