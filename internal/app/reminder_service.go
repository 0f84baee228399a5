package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	mailclient "eduvantage/internal/mail"
	"eduvantage/internal/model"
)

var (
	ErrInvalidEmail = errors.New("recipient email is invalid")
	ErrMailNotReady = errors.New("mail credentials are not configured")
	ErrMailDelivery = errors.New("mail delivery failed")
)

// MailSender delivers one transactional email.
type MailSender interface {
	Send(ctx context.Context, email mailclient.Email) error
}

// ReminderRepository records delivery attempts.
type ReminderRepository interface {
	Create(reminder *model.Reminder) error
}

// ReminderService sends transactional email reminders and records each
// attempt.
type ReminderService struct {
	sender     MailSender
	repo       ReminderRepository
	fromEmail  string
	fromName   string
	configured bool
}

func NewReminderService(sender MailSender, repo ReminderRepository, fromEmail, fromName string, configured bool) *ReminderService {
	return &ReminderService{
		sender:     sender,
		repo:       repo,
		fromEmail:  fromEmail,
		fromName:   fromName,
		configured: configured,
	}
}

type SendReminderInput struct {
	RecipientEmail string
	RecipientName  string
	Subject        string
	HTMLBody       string
}

func (s *ReminderService) SendReminder(ctx context.Context, input SendReminderInput) error {
	if !s.configured {
		return ErrMailNotReady
	}
	recipient := strings.TrimSpace(input.RecipientEmail)
	if _, err := mail.ParseAddress(recipient); err != nil {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(input.Subject) == "" || strings.TrimSpace(input.HTMLBody) == "" {
		return ErrInvalidInput
	}

	err := s.sender.Send(ctx, mailclient.Email{
		FromEmail: s.fromEmail,
		FromName:  s.fromName,
		ToEmail:   recipient,
		ToName:    input.RecipientName,
		Subject:   input.Subject,
		HTMLBody:  input.HTMLBody,
	})

	s.record(recipient, input, err)

	if err != nil {
		log.Printf("send reminder to %s failed: %v", recipient, err)
		// Keep the provider's rejection detail on the error so the handler
		// can return it to the caller.
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

func (s *ReminderService) record(recipient string, input SendReminderInput, sendErr error) {
	if s.repo == nil {
		return
	}
	status := model.ReminderStatusSent
	if sendErr != nil {
		status = model.ReminderStatusFailed
	}
	reminder := &model.Reminder{
		RecipientEmail: recipient,
		RecipientName:  input.RecipientName,
		Subject:        input.Subject,
		Status:         status,
	}
	if err := s.repo.Create(reminder); err != nil {
		log.Printf("record reminder failed: %v", err)
	}
}
