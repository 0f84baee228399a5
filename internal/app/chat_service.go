package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"eduvantage/internal/ai"
	"eduvantage/internal/model"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrMessageEmpty = errors.New("message content is empty")
)

const chatConfidence = 0.95

// historyFallbackLimit caps how many stored messages seed a conversation when
// the client sends none and the cache is cold.
const historyFallbackLimit = 20

// Assistant produces a user-facing answer for a query plus conversation
// history. Always returns displayable text.
type Assistant interface {
	Run(ctx context.Context, query string, history []ai.ChatMessage) string
}

type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.Message) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, userID string) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, userID string, messages []model.Message) error
	DeleteHistory(ctx context.Context, userID string) error
}

// MessageStore reads back persisted chat turns when the cache has nothing.
type MessageStore interface {
	ListByUserID(userID string, limit int) ([]model.Message, error)
}

// ChatService handles conversational turns: it runs the assistant, enqueues
// both sides of the exchange for persistence, and refreshes the cached
// history.
type ChatService struct {
	assistant    Assistant
	publisher    AsyncMessagePublisher
	historyCache HistoryCache
	messages     MessageStore
	modelName    string
}

func NewChatService(assistant Assistant, publisher AsyncMessagePublisher, historyCache HistoryCache, messages MessageStore, modelName string) *ChatService {
	return &ChatService{
		assistant:    assistant,
		publisher:    publisher,
		historyCache: historyCache,
		messages:     messages,
		modelName:    modelName,
	}
}

type ChatInput struct {
	UserID  string
	Message string
	History []ai.ChatMessage
}

type ChatResult struct {
	Response       string  `json:"response"`
	Model          string  `json:"model"`
	Confidence     float64 `json:"confidence"`
	ProcessingTime float64 `json:"processing_time"`
}

// Ask answers a one-shot query with no history, for the GET /ask surface.
func (s *ChatService) Ask(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrMessageEmpty
	}
	return s.assistant.Run(ctx, query, nil), nil
}

// Chat answers one conversational turn. Persistence and caching are best
// effort: once the assistant has answered, the answer is returned even if the
// bookkeeping around it fails.
func (s *ChatService) Chat(ctx context.Context, input ChatInput) (*ChatResult, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, ErrMessageEmpty
	}

	history := input.History
	if len(history) == 0 {
		history = s.loadHistory(ctx, userID)
	}

	start := time.Now()
	answer := s.assistant.Run(ctx, message, history)
	elapsed := time.Since(start).Seconds()

	userMsg := model.Message{UserID: userID, Role: "user", Content: message}
	assistantMsg := model.Message{UserID: userID, Role: "assistant", Content: answer}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, userMsg); err != nil {
			log.Printf("enqueue user message failed: %v", err)
		}
		if err := s.publisher.Publish(ctx, assistantMsg); err != nil {
			log.Printf("enqueue assistant message failed: %v", err)
		}
	}

	s.refreshHistory(ctx, userID, userMsg, assistantMsg)

	return &ChatResult{
		Response:       answer,
		Model:          s.modelName,
		Confidence:     chatConfidence,
		ProcessingTime: elapsed,
	}, nil
}

// loadHistory seeds a conversation whose request carried no history: cache
// first, then the message store. A cache entry that cannot be read is dropped
// so the next turn rebuilds it, and a store hit rewarms the cache.
func (s *ChatService) loadHistory(ctx context.Context, userID string) []ai.ChatMessage {
	if s.historyCache != nil {
		cached, ok, err := s.historyCache.GetHistory(ctx, userID)
		if err == nil && ok {
			return toChatMessages(cached)
		}
		if err != nil {
			log.Printf("get cached history failed: %v", err)
			if delErr := s.historyCache.DeleteHistory(ctx, userID); delErr != nil {
				log.Printf("drop cached history failed: %v", delErr)
			}
		}
	}

	if s.messages == nil {
		return nil
	}
	stored, err := s.messages.ListByUserID(userID, historyFallbackLimit)
	if err != nil {
		log.Printf("load stored history failed: %v", err)
		return nil
	}
	if len(stored) == 0 {
		return nil
	}
	if s.historyCache != nil {
		if err := s.historyCache.SetHistory(ctx, userID, stored); err != nil {
			log.Printf("rewarm cached history failed: %v", err)
		}
	}
	return toChatMessages(stored)
}

func toChatMessages(messages []model.Message) []ai.ChatMessage {
	out := make([]ai.ChatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, ai.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func (s *ChatService) refreshHistory(ctx context.Context, userID string, turns ...model.Message) {
	if s.historyCache == nil {
		return
	}
	history, _, err := s.historyCache.GetHistory(ctx, userID)
	if err != nil {
		log.Printf("get cached history failed: %v", err)
		return
	}
	history = append(history, turns...)
	if err := s.historyCache.SetHistory(ctx, userID, history); err != nil {
		log.Printf("set cached history failed: %v", err)
	}
}
