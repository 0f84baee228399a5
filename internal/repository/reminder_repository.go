package repository

import (
	"fmt"

	"gorm.io/gorm"

	"eduvantage/internal/model"
)

type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(reminder *model.Reminder) error {
	if err := r.db.Create(reminder).Error; err != nil {
		return fmt.Errorf("create reminder failed: %w", err)
	}
	return nil
}
