package repositories

import (
	"errors"
	"strings"

	"github.com/volunhub/backend/internal/models"
	"gorm.io/gorm"
)

// ErrEmptyMessageContent is returned when a message body is empty after
// trimming whitespace.
var ErrEmptyMessageContent = errors.New("message content must not be empty")

// DefaultHistoryLimit caps a single history fetch at the most recent 100
// messages of a conversation.
const DefaultHistoryLimit = 100

// MessageRepository defines the interface for chat message operations.
// Messages are append-only; there is no update or delete.
type MessageRepository interface {
	CreateMessage(message *models.Message) error
	GetBetweenUsers(userA, userB uint, limit int) ([]models.Message, error)
	GetForUser(userID uint) ([]models.Message, error)
}

type postgresMessageRepository struct {
	db *gorm.DB
}

func NewPostgresMessageRepository(db *gorm.DB) MessageRepository {
	return &postgresMessageRepository{db: db}
}

// CreateMessage persists a new message. Content must be non-empty after
// trimming; the stored content keeps its original whitespace.
func (r *postgresMessageRepository) CreateMessage(message *models.Message) error {
	if strings.TrimSpace(message.Content) == "" {
		return ErrEmptyMessageContent
	}
	return r.db.Create(message).Error
}

// GetBetweenUsers returns the most recent `limit` messages exchanged between
// the two users in either direction, in ascending creation order. Timestamp
// ties fall back to insertion order via the id column.
func (r *postgresMessageRepository) GetBetweenUsers(userA, userB uint, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var messages []models.Message
	err := r.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// The query fetches newest-first so LIMIT keeps the latest window;
	// reverse in memory to hand back chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// GetForUser returns every message the user sent or received, newest first.
// Only used to derive the conversation list.
func (r *postgresMessageRepository) GetForUser(userID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&messages).Error
	return messages, err
}
