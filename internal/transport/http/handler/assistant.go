package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"eduvantage/internal/ai"
	"eduvantage/internal/app"
	"eduvantage/internal/transport/http/response"
)

type AssistantHandler struct {
	chatService      *app.ChatService
	retrievalService *app.RetrievalService
}

func NewAssistantHandler(chatService *app.ChatService, retrievalService *app.RetrievalService) *AssistantHandler {
	return &AssistantHandler{
		chatService:      chatService,
		retrievalService: retrievalService,
	}
}

type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message             string     `json:"message" binding:"required"`
	ConversationHistory []ChatTurn `json:"conversation_history"`
	UserID              string     `json:"user_id" binding:"required"`
}

func (h *AssistantHandler) Ask(c *gin.Context) {
	query := c.Query("query")
	if strings.TrimSpace(query) == "" {
		response.Error(c, http.StatusBadRequest, "query parameter is required")
		return
	}

	text, err := h.chatService.Ask(c.Request.Context(), query)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	response.AskOK(c, text)
}

func (h *AssistantHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	history := make([]ai.ChatMessage, 0, len(req.ConversationHistory))
	for _, turn := range req.ConversationHistory {
		history = append(history, ai.ChatMessage{Role: turn.Role, Content: turn.Content})
	}

	result, err := h.chatService.Chat(c.Request.Context(), app.ChatInput{
		UserID:  req.UserID,
		Message: req.Message,
		History: history,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrMessageEmpty):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "chat failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":        result.Response,
		"sources":         []string{},
		"model":           result.Model,
		"confidence":      result.Confidence,
		"processing_time": result.ProcessingTime,
	})
}

func (h *AssistantHandler) ListUniversities(c *gin.Context) {
	universities := h.retrievalService.ListUniversities(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"universities": universities})
}
