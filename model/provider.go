package model

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/byggassist/backend/tool"
)

type InvokeOptions struct {
	Contracts      []tool.Contract
	StreamCallback func(ctx context.Context, chunk string)
	MaxTokens      int64
	Temperature    float64
}

func DefaultInvokeOptions() *InvokeOptions {
	return &InvokeOptions{
		MaxTokens:   4096,
		Temperature: 0.2,
	}
}

type InvokeOption func(*InvokeOptions)

func WithContracts(contracts ...tool.Contract) InvokeOption {
	return func(o *InvokeOptions) {
		o.Contracts = contracts
	}
}

func WithStreamHandler(handler func(ctx context.Context, chunk string)) InvokeOption {
	return func(o *InvokeOptions) {
		o.StreamCallback = handler
	}
}

func WithMaxTokens(maxTokens int64) InvokeOption {
	return func(o *InvokeOptions) {
		o.MaxTokens = maxTokens
	}
}

// Provider is one conversational model backend. Implementations translate
// between the internal message shape and the backend's wire format.
type Provider interface {
	Invoke(ctx context.Context, model, systemPrompt string, messages []*Message, opts ...InvokeOption) (*Message, error)
}

type MessageSource string

const (
	MessageSourceUser   MessageSource = "user"
	MessageSourceModel  MessageSource = "model"
	MessageSourceSystem MessageSource = "system"
)

type Message struct {
	Source  MessageSource  `json:"source"`
	Content []ContentBlock `json:"content"`
	Usage   Usage          `json:"usage"`
}

func NewUserTextMessage(text string) *Message {
	return &Message{
		Source:  MessageSourceUser,
		Content: []ContentBlock{&TextBlock{Text: text}},
	}
}

func NewModelMessage(content []ContentBlock, usage Usage) *Message {
	return &Message{
		Source:  MessageSourceModel,
		Content: content,
		Usage:   usage,
	}
}

// Text concatenates every text block of the message.
func (m *Message) Text() string {
	var text string
	for _, block := range m.Content {
		if tb, ok := block.(*TextBlock); ok {
			text += tb.Text
		}
	}
	return text
}

// ToolCalls returns the tool call blocks of the message, in order.
func (m *Message) ToolCalls() []*ToolCallBlock {
	var calls []*ToolCallBlock
	for _, block := range m.Content {
		if call, ok := block.(*ToolCallBlock); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

type ContentBlockType string

const (
	ContentBlockTypeText        ContentBlockType = "text"
	ContentBlockTypeToolRequest ContentBlockType = "tool_request"
	ContentBlockTypeToolResult  ContentBlockType = "tool_result"
)

type ContentBlock interface {
	Type() ContentBlockType
}

type TextBlock struct {
	Text string `json:"text"`
}

func (t *TextBlock) Type() ContentBlockType {
	return ContentBlockTypeText
}

type ToolCallBlock struct {
	ID   string          `json:"id"`
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args"`
}

func (t *ToolCallBlock) Type() ContentBlockType {
	return ContentBlockTypeToolRequest
}

type ToolResultBlock struct {
	ID        string `json:"id"`
	Tool      string `json:"tool"`
	Result    string `json:"result"`
	Succeeded bool   `json:"succeeded"`
}

func (t *ToolResultBlock) Type() ContentBlockType {
	return ContentBlockTypeToolResult
}

type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

type ProviderErrorKind string

const (
	ProviderErrorKindInvalidRequest    ProviderErrorKind = "invalid_request"
	ProviderErrorKindRateLimitExceeded ProviderErrorKind = "rate_limit_exceeded"
	ProviderErrorKindOverloaded        ProviderErrorKind = "overloaded"
	ProviderErrorKindInternal          ProviderErrorKind = "internal"
	ProviderErrorKindConnection        ProviderErrorKind = "connection"
	ProviderErrorKindUnknown           ProviderErrorKind = "unknown"
)

type ProviderError struct {
	Provider   string
	Kind       ProviderErrorKind
	RetryAfter time.Duration
	Err        error
}

func NewProviderError(provider string, kind ProviderErrorKind, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Kind:     kind,
		Err:      err,
	}
}

func (pe *ProviderError) Message() string {
	switch pe.Kind {
	case ProviderErrorKindInvalidRequest:
		return "Invalid request format or content"
	case ProviderErrorKindRateLimitExceeded:
		if pe.RetryAfter > 0 {
			return fmt.Sprintf("Rate limit exceeded, retry after %s", pe.RetryAfter)
		}
		return "Rate limit exceeded"
	case ProviderErrorKindOverloaded:
		return "API temporarily overloaded"
	case ProviderErrorKindInternal:
		return "Internal server error"
	case ProviderErrorKindConnection:
		return "Model backend unreachable"
	default:
		return "Unknown error"
	}
}

func (pe *ProviderError) Retryable() (bool, time.Duration) {
	switch pe.Kind {
	case ProviderErrorKindRateLimitExceeded:
		return true, pe.RetryAfter
	case ProviderErrorKindOverloaded:
		return true, 20 * time.Second
	default:
		return false, 0
	}
}

func (pe *ProviderError) Error() string {
	if pe.Err != nil {
		return fmt.Sprintf("%s: %s: %s", pe.Provider, pe.Message(), pe.Err.Error())
	}
	return fmt.Sprintf("%s: %s", pe.Provider, pe.Message())
}

func (pe *ProviderError) Unwrap() error {
	return pe.Err
}
