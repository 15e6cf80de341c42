package llm

import "context"

// Message is one chat turn; Role is system, user or assistant.
type Message struct {
	Role    string
	Content string
}

// Response is a completion with its token usage.
type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client produces one completion for a conversation.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
