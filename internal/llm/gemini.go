package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiBackend opens chat sessions on a Gemini model.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini client authenticated with apiKey.
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is not set")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

func (b *GeminiBackend) NewSession(context.Context) (Session, error) {
	cs := b.client.GenerativeModel(b.model).StartChat()
	return &geminiSession{chat: cs}, nil
}

func (b *GeminiBackend) Close() error {
	return b.client.Close()
}

// chatSender is satisfied by *genai.ChatSession, which keeps the history.
type chatSender interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type geminiSession struct {
	chat chatSender
}

func (s *geminiSession) Send(ctx context.Context, message string) (string, error) {
	resp, err := s.chat.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates returned")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", fmt.Errorf("candidate has no content (finish reason %s)", cand.FinishReason)
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String(), nil
}
