package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eduvantage/internal/app"
	"eduvantage/internal/transport/http/response"
)

type ReminderHandler struct {
	reminderService *app.ReminderService
}

type SendReminderRequest struct {
	RecipientEmail string `json:"recipient_email" binding:"required"`
	RecipientName  string `json:"recipient_name" binding:"required"`
	Subject        string `json:"subject" binding:"required"`
	HTMLBody       string `json:"html_body" binding:"required"`
}

func NewReminderHandler(reminderService *app.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

func (h *ReminderHandler) SendReminder(c *gin.Context) {
	var req SendReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	err := h.reminderService.SendReminder(c.Request.Context(), app.SendReminderInput{
		RecipientEmail: req.RecipientEmail,
		RecipientName:  req.RecipientName,
		Subject:        req.Subject,
		HTMLBody:       req.HTMLBody,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidEmail), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			// Missing credentials and delivery failures; delivery errors
			// carry the provider's rejection detail.
			response.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Email sent successfully",
	})
}
