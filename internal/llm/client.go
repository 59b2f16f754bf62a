package llm

import "context"

// Chat roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-neutral completion request.
type Request struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
}

// Response is the provider's completion.
type Response struct {
	Text       string
	StopReason string
}

// Client completes chat requests against a language model provider.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
