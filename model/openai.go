package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

type OpenAIProvider struct {
	client openai.Client
}

func NewOpenAIProvider(apiKey string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	return &OpenAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}, nil
}

func (p *OpenAIProvider) Invoke(ctx context.Context, model, systemPrompt string, messages []*Message, opts ...InvokeOption) (*Message, error) {
	if err := validateInvokeInput(model, systemPrompt, messages); err != nil {
		return nil, err
	}

	options := DefaultInvokeOptions()
	for _, opt := range opts {
		opt(options)
	}

	openaiMessages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
	}

	for _, message := range messages {
		converted, err := convertOpenAIMessage(message)
		if err != nil {
			return nil, err
		}
		openaiMessages = append(openaiMessages, converted...)
	}

	params := openai.ChatCompletionNewParams{
		Model:               shared.ChatModel(model),
		Messages:            openaiMessages,
		MaxCompletionTokens: openai.Int(options.MaxTokens),
		Temperature:         openai.Float(options.Temperature),
	}

	if len(options.Contracts) > 0 {
		tools := make([]openai.ChatCompletionToolParam, 0, len(options.Contracts))
		for _, contract := range options.Contracts {
			var schema map[string]any
			if err := json.Unmarshal(contract.InputSchema, &schema); err != nil {
				return nil, fmt.Errorf("decode input schema for %s: %w", contract.Name, err)
			}
			tools = append(tools, openai.ChatCompletionToolParam{
				Function: shared.FunctionDefinitionParam{
					Name:        contract.Name,
					Description: openai.String(contract.Description),
					Parameters:  shared.FunctionParameters(schema),
				},
			})
		}
		params.Tools = tools
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, p.parseError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, NewProviderError("openai", ProviderErrorKindInternal, fmt.Errorf("empty response"))
	}

	choice := resp.Choices[0]
	var content []ContentBlock
	if choice.Message.Content != "" {
		content = append(content, &TextBlock{Text: choice.Message.Content})
		if options.StreamCallback != nil {
			// Chat Completions are requested unbuffered; surface the whole
			// reply through the stream callback in one chunk.
			options.StreamCallback(ctx, choice.Message.Content)
		}
	}
	for _, call := range choice.Message.ToolCalls {
		content = append(content, &ToolCallBlock{
			ID:   call.ID,
			Tool: call.Function.Name,
			Args: json.RawMessage(call.Function.Arguments),
		})
	}

	return NewModelMessage(content, Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}), nil
}

// convertOpenAIMessage flattens one internal message into the Chat
// Completions message list. Tool results become standalone tool messages.
func convertOpenAIMessage(message *Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	var out []openai.ChatCompletionMessageParamUnion

	if message.Source == MessageSourceModel {
		assistant := openai.ChatCompletionAssistantMessageParam{}
		for _, b := range message.Content {
			switch block := b.(type) {
			case *TextBlock:
				assistant.Content.OfString = openai.String(block.Text)
			case *ToolCallBlock:
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: block.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      block.Tool,
						Arguments: string(block.Args),
					},
				})
			default:
				return nil, fmt.Errorf("unsupported assistant content block type %T", b)
			}
		}
		return []openai.ChatCompletionMessageParamUnion{{OfAssistant: &assistant}}, nil
	}

	for _, b := range message.Content {
		switch block := b.(type) {
		case *TextBlock:
			out = append(out, openai.UserMessage(block.Text))
		case *ToolResultBlock:
			out = append(out, openai.ToolMessage(block.Result, block.ID))
		default:
			return nil, fmt.Errorf("unsupported user content block type %T", b)
		}
	}
	return out, nil
}

func (p *OpenAIProvider) parseError(err error) *ProviderError {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return NewProviderError("openai", ProviderErrorKindConnection, err)
	}

	kind := ProviderErrorKindUnknown
	switch {
	case apiErr.StatusCode == http.StatusBadRequest:
		kind = ProviderErrorKindInvalidRequest
	case apiErr.StatusCode == http.StatusTooManyRequests:
		kind = ProviderErrorKindRateLimitExceeded
	case apiErr.StatusCode >= 500:
		kind = ProviderErrorKindInternal
	}
	return NewProviderError("openai", kind, err)
}
