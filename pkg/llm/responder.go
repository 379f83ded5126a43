package llm

import (
	"context"
	"strings"
)

const assistantPrompt = "You are a friendly grocery store assistant. Answer in at most three short sentences. " +
	"If the question is not about groceries, cooking or the store, say what you can help with instead."

// Responder answers free-form shopper questions with a provider.
type Responder struct {
	provider LLMProvider
}

func NewResponder(provider LLMProvider) *Responder {
	return &Responder{provider: provider}
}

func (r *Responder) Answer(ctx context.Context, question string) (string, error) {
	out, err := r.provider.Chat(ctx, []Message{
		{Role: "system", Content: assistantPrompt},
		{Role: "user", Content: question},
	}, WithTemperature(0.4), WithMaxTokens(200))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
