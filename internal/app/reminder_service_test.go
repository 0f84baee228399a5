package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mailclient "eduvantage/internal/mail"
	"eduvantage/internal/model"
)

type fakeSender struct {
	sent []mailclient.Email
	err  error
}

func (f *fakeSender) Send(_ context.Context, email mailclient.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

type fakeReminderRepo struct {
	created []model.Reminder
}

func (f *fakeReminderRepo) Create(reminder *model.Reminder) error {
	f.created = append(f.created, *reminder)
	return nil
}

func validInput() SendReminderInput {
	return SendReminderInput{
		RecipientEmail: "student@example.org",
		RecipientName:  "Student",
		Subject:        "Application deadline",
		HTMLBody:       "<p>Apply by Friday.</p>",
	}
}

func TestSendReminder_Success(t *testing.T) {
	sender := &fakeSender{}
	repo := &fakeReminderRepo{}
	svc := NewReminderService(sender, repo, "noreply@eduvantage.app", "EduVantage", true)

	err := svc.SendReminder(context.Background(), validInput())
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "noreply@eduvantage.app", sender.sent[0].FromEmail)
	assert.Equal(t, "EduVantage", sender.sent[0].FromName)
	assert.Equal(t, "student@example.org", sender.sent[0].ToEmail)

	require.Len(t, repo.created, 1)
	assert.Equal(t, model.ReminderStatusSent, repo.created[0].Status)
}

func TestSendReminder_NotConfigured(t *testing.T) {
	svc := NewReminderService(&fakeSender{}, &fakeReminderRepo{}, "from@x.y", "X", false)

	err := svc.SendReminder(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrMailNotReady)
}

func TestSendReminder_InvalidEmail(t *testing.T) {
	svc := NewReminderService(&fakeSender{}, &fakeReminderRepo{}, "from@x.y", "X", true)

	input := validInput()
	input.RecipientEmail = "not-an-address"
	err := svc.SendReminder(context.Background(), input)
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestSendReminder_MissingSubjectOrBody(t *testing.T) {
	svc := NewReminderService(&fakeSender{}, &fakeReminderRepo{}, "from@x.y", "X", true)

	input := validInput()
	input.Subject = " "
	assert.ErrorIs(t, svc.SendReminder(context.Background(), input), ErrInvalidInput)

	input = validInput()
	input.HTMLBody = ""
	assert.ErrorIs(t, svc.SendReminder(context.Background(), input), ErrInvalidInput)
}

func TestSendReminder_DeliveryFailureIsRecorded(t *testing.T) {
	sender := &fakeSender{err: errors.New("provider rejected")}
	repo := &fakeReminderRepo{}
	svc := NewReminderService(sender, repo, "from@x.y", "X", true)

	err := svc.SendReminder(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrMailDelivery)
	assert.Contains(t, err.Error(), "provider rejected")

	require.Len(t, repo.created, 1)
	assert.Equal(t, model.ReminderStatusFailed, repo.created[0].Status)
}
