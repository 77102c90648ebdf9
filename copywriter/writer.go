package copywriter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

var ErrEmptyAnswer = errors.New("copywriter: empty answer from openai")

const systemPrompt = "Eres un asesor inmobiliario en Aguascalientes. Redacta una descripción de venta " +
	"en español, clara y atractiva, de máximo 500 caracteres, usando solo los datos proporcionados."

const maxTokens = 300

type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Writer drafts listing descriptions with a chat completion model.
type Writer struct {
	client completer
	model  string
}

func New(token, model string) *Writer {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Writer{client: openai.NewClient(token), model: model}
}

func (w *Writer) Suggest(ctx context.Context, facts string) (string, error) {
	resp, err := w.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: w.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: facts},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyAnswer
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyAnswer
	}
	if r := []rune(text); len(r) > 500 {
		text = string(r[:500])
	}
	return text, nil
}
