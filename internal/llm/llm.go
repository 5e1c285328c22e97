package llm

import "context"

// Message is a single turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assistant answers journal chat requests.
type Assistant interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

const systemPrompt = "You are an AI trading copilot for forex futures traders. Answer with practical, concise guidance grounded in forex futures concepts, strategies, journal insights, and risk management. If a request is unrelated to forex futures trading, reply that you can only help with that domain."

// sanitizeMessages drops turns with unknown roles or empty content so an
// arbitrary client payload cannot smuggle extra system prompts upstream.
func sanitizeMessages(messages []Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Content == "" {
			continue
		}
		switch m.Role {
		case "user", "assistant":
			out = append(out, m)
		}
	}
	return out
}

// NoopAssistant is the fallback when no chat model is configured.
type NoopAssistant struct{}

func NewNoopAssistant() *NoopAssistant {
	return &NoopAssistant{}
}

func (a *NoopAssistant) Chat(_ context.Context, _ []Message) (string, error) {
	return "The trading copilot is not configured. Set OPENAI_API_KEY to enable chat.", nil
}
