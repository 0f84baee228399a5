package repository

import (
	"fmt"

	"gorm.io/gorm"

	"eduvantage/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(msg *model.Message) error {
	if err := r.db.Create(msg).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListByUserID(userID string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var messages []model.Message
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages by user failed: %w", err)
	}
	return messages, nil
}
