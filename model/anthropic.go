package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/byggassist/backend/tool"
)

type AnthropicProvider struct {
	client anthropic.Client
}

type AnthropicOption func(*[]option.RequestOption)

func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(opts *[]option.RequestOption) {
		*opts = append(*opts, option.WithBaseURL(url))
	}
}

func NewAnthropicProvider(apiKey string, opts ...AnthropicOption) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	clientOptions := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, opt := range opts {
		opt(&clientOptions)
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(clientOptions...),
	}, nil
}

func (p *AnthropicProvider) Invoke(ctx context.Context, model, systemPrompt string, messages []*Message, opts ...InvokeOption) (*Message, error) {
	if err := validateInvokeInput(model, systemPrompt, messages); err != nil {
		return nil, err
	}

	options := DefaultInvokeOptions()
	for _, opt := range opts {
		opt(options)
	}

	anthropicMessages, err := transformMessages(messages)
	if err != nil {
		return nil, err
	}

	request := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   options.MaxTokens,
		Temperature: anthropic.Float(options.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: anthropicMessages,
	}

	if len(options.Contracts) > 0 {
		tools, err := transformContracts(options.Contracts)
		if err != nil {
			return nil, err
		}
		request.Tools = tools
	}

	stream := p.client.Messages.NewStreaming(ctx, request)
	defer stream.Close()

	message := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return nil, fmt.Errorf("accumulate stream event: %w", err)
		}

		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if deltaVariant.Text != "" && options.StreamCallback != nil {
					options.StreamCallback(ctx, deltaVariant.Text)
				}
			}
		}
	}

	if stream.Err() != nil {
		return nil, p.parseError(stream.Err())
	}

	content := make([]ContentBlock, 0, len(message.Content))
	for _, block := range message.Content {
		switch blockVariant := block.AsAny().(type) {
		case anthropic.TextBlock:
			content = append(content, &TextBlock{Text: blockVariant.Text})
		case anthropic.ToolUseBlock:
			content = append(content, &ToolCallBlock{
				ID:   blockVariant.ID,
				Tool: blockVariant.Name,
				Args: json.RawMessage(blockVariant.Input),
			})
		}
	}

	return NewModelMessage(content, Usage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}), nil
}

func transformMessages(messages []*Message) ([]anthropic.MessageParam, error) {
	anthropicMessages := make([]anthropic.MessageParam, 0, len(messages))
	for _, message := range messages {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(message.Content))
		for _, b := range message.Content {
			switch block := b.(type) {
			case *TextBlock:
				blocks = append(blocks, anthropic.NewTextBlock(block.Text))
			case *ToolCallBlock:
				blocks = append(blocks, anthropic.NewToolUseBlock(block.ID, json.RawMessage(block.Args), block.Tool))
			case *ToolResultBlock:
				blocks = append(blocks, anthropic.NewToolResultBlock(block.ID, block.Result, !block.Succeeded))
			default:
				return nil, fmt.Errorf("unsupported content block type %T", b)
			}
		}

		switch message.Source {
		case MessageSourceModel:
			anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(blocks...))
		default:
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(blocks...))
		}
	}

	return anthropicMessages, nil
}

func transformContracts(contracts []tool.Contract) ([]anthropic.ToolUnionParam, error) {
	tools := make([]anthropic.ToolUnionParam, 0, len(contracts))
	for _, contract := range contracts {
		var schema struct {
			Properties any      `json:"properties"`
			Required   []string `json:"required"`
		}
		if err := json.Unmarshal(contract.InputSchema, &schema); err != nil {
			return nil, fmt.Errorf("decode input schema for %s: %w", contract.Name, err)
		}

		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        contract.Name,
				Description: anthropic.String(contract.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: schema.Properties,
					Required:   schema.Required,
				},
			},
		})
	}
	return tools, nil
}

func (p *AnthropicProvider) parseError(err error) *ProviderError {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return NewProviderError("anthropic", ProviderErrorKindConnection, err)
	}

	providerErr := NewProviderError("anthropic", ProviderErrorKindUnknown, err)
	switch {
	case apiErr.StatusCode == http.StatusBadRequest:
		providerErr.Kind = ProviderErrorKindInvalidRequest
	case apiErr.StatusCode == http.StatusTooManyRequests:
		providerErr.Kind = ProviderErrorKindRateLimitExceeded
		if retryAfter := apiErr.Response.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil {
				providerErr.RetryAfter = time.Duration(seconds) * time.Second
			}
		}
	case apiErr.StatusCode == 529:
		providerErr.Kind = ProviderErrorKindOverloaded
		providerErr.RetryAfter = 10 * time.Second
	case apiErr.StatusCode >= 500:
		providerErr.Kind = ProviderErrorKindInternal
	}

	return providerErr
}

func validateInvokeInput(model, systemPrompt string, messages []*Message) error {
	if model == "" {
		return fmt.Errorf("model is required")
	}
	if systemPrompt == "" {
		return fmt.Errorf("system prompt is required")
	}
	if len(messages) == 0 {
		return fmt.Errorf("at least one message is required")
	}
	return nil
}
