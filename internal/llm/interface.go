package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// Client is minimal subset of openai.Client used by the OpenAI session; it is easy to mock in tests.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Session is one stateful chat with a model. The model sees every message
// previously sent on the same session.
type Session interface {
	Send(ctx context.Context, message string) (string, error)
}

// Backend opens independent sessions against one model.
type Backend interface {
	NewSession(ctx context.Context) (Session, error)
	Close() error
}
