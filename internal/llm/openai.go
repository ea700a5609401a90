package llm

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

// OpenAIBackend talks to any OpenAI-compatible chat completion endpoint.
type OpenAIBackend struct {
	client Client
	model  string
}

func NewOpenAIBackend(client Client, model string) *OpenAIBackend {
	return &OpenAIBackend{client: client, model: model}
}

func (b *OpenAIBackend) NewSession(context.Context) (Session, error) {
	return &openAISession{client: b.client, model: b.model}, nil
}

func (b *OpenAIBackend) Close() error { return nil }

// openAISession replays the whole message history on every request.
type openAISession struct {
	client   Client
	model    string
	messages []openai.ChatCompletionMessage
}

func (s *openAISession) Send(ctx context.Context, message string) (string, error) {
	messages := append(s.messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}

	reply := resp.Choices[0].Message
	reply.Role = openai.ChatMessageRoleAssistant
	// History only grows on success so a failed turn can be retried.
	s.messages = append(messages, reply)
	return reply.Content, nil
}
