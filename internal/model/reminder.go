package model

import "time"

// Reminder records a transactional email accepted by the mailer.
type Reminder struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RecipientEmail string    `gorm:"size:256;not null;index" json:"recipient_email"`
	RecipientName  string    `gorm:"size:256;not null" json:"recipient_name"`
	Subject        string    `gorm:"size:512;not null" json:"subject"`
	Status         string    `gorm:"size:16;not null" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

const (
	ReminderStatusSent   = "sent"
	ReminderStatusFailed = "failed"
)
