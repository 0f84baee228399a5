package agent

import (
	"context"
	"log"
	"strings"

	"eduvantage/internal/ai"
	"eduvantage/internal/app"
)

const systemPrompt = "You are a university assistant. Focus only on the university mentioned in the user's query. " +
	"Your job is to find accurate information using the retrieved content below. Never make up an answer. " +
	"The user might ask general or specific questions about a university's admission, courses, facilities, etc."

const (
	completionRetries  = 2
	maxHistoryMessages = 20
)

// Retriever is the callable tool the agent drives.
type Retriever interface {
	Retrieve(ctx context.Context, query string) string
}

// Agent is a thin shell over the chat-completions API: it runs the retrieval
// tool, then asks the model to synthesize an answer from the tool output.
type Agent struct {
	llmClient *ai.OpenAICompatibleClient
	chatCfg   ai.ChatConfig
	retriever Retriever
}

func New(llmClient *ai.OpenAICompatibleClient, chatCfg ai.ChatConfig, retriever Retriever) *Agent {
	return &Agent{
		llmClient: llmClient,
		chatCfg:   chatCfg,
		retriever: retriever,
	}
}

// Run answers a user query. Guidance and apology strings from the tool pass
// through verbatim; anything else is handed to the model together with the
// conversation history. If synthesis fails after retries, the raw tool output
// is returned — it is already user-readable.
func (a *Agent) Run(ctx context.Context, query string, history []ai.ChatMessage) string {
	toolOutput := a.retriever.Retrieve(ctx, query)
	if isTerminal(toolOutput) {
		return toolOutput
	}

	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}

	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, ai.ChatMessage{
		Role:    "user",
		Content: "Retrieved content:\n\n" + toolOutput + "\n\nQuestion: " + query + "\n\nAnswer:",
	})

	for attempt := 0; attempt <= completionRetries; attempt++ {
		answer, err := a.llmClient.Complete(ctx, a.chatCfg, messages)
		if err != nil {
			log.Printf("agent completion attempt %d failed: %v", attempt+1, err)
			continue
		}
		if trimmed := strings.TrimSpace(answer); trimmed != "" {
			return trimmed
		}
	}
	return toolOutput
}

func isTerminal(toolOutput string) bool {
	switch toolOutput {
	case app.MsgAskForUniversity, app.MsgStoreError, app.MsgWebSearchError:
		return true
	}
	return false
}
