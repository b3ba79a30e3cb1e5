package model

import (
	"context"
	"fmt"
)

// MockEchoPrefixLength bounds how much of the user message the mock
// responder echoes back.
const MockEchoPrefixLength = 100

// MockProvider stands in for the real model backend when no credential is
// configured. It is fully deterministic: it echoes a truncated prefix of
// the last user message, states that tools cannot be invoked, and reports
// token usage derived from the input. It never emits tool calls and never
// touches the network.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Invoke(ctx context.Context, model, systemPrompt string, messages []*Message, opts ...InvokeOption) (*Message, error) {
	if err := validateInvokeInput(model, systemPrompt, messages); err != nil {
		return nil, err
	}

	options := DefaultInvokeOptions()
	for _, opt := range opts {
		opt(options)
	}

	lastUserText := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Source == MessageSourceUser {
			lastUserText = messages[i].Text()
			break
		}
	}

	prefix := []rune(lastUserText)
	if len(prefix) > MockEchoPrefixLength {
		prefix = prefix[:MockEchoPrefixLength]
	}

	reply := fmt.Sprintf(
		"You said: %q. No model credential is configured, so I cannot call any tools right now.",
		string(prefix),
	)

	if options.StreamCallback != nil {
		options.StreamCallback(ctx, reply)
	}

	return NewModelMessage(
		[]ContentBlock{&TextBlock{Text: reply}},
		Usage{
			InputTokens:  int64(len([]rune(lastUserText))),
			OutputTokens: int64(len([]rune(reply))),
		},
	), nil
}
