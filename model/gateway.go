package model

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/byggassist/backend/tool"
)

// DefaultSystemPrompt frames the assistant for the construction-business
// domain. Tools are described separately through their contracts.
const DefaultSystemPrompt = `You are an assistant for a construction business. You help the user manage
customers, projects, offers, receipts and invoices. Use the available tools to
read or modify business records; when a tool fails, explain the failure to the
user in plain language and suggest what to do next. Never invent record data.`

// maxToolRounds bounds how many provider round-trips a single turn may
// spend on tool calls before the turn is cut off.
const maxToolRounds = 8

// ToolExecutor is the slice of the tool executor the gateway needs.
type ToolExecutor interface {
	Execute(ctx context.Context, invocation tool.Invocation) tool.Result
}

type GatewayOptions struct {
	SystemPrompt string
	ModelName    string
}

type GatewayOption func(*GatewayOptions)

func WithSystemPrompt(prompt string) GatewayOption {
	return func(o *GatewayOptions) {
		o.SystemPrompt = prompt
	}
}

func WithModelName(name string) GatewayOption {
	return func(o *GatewayOptions) {
		o.ModelName = name
	}
}

// Gateway drives one conversational turn: it forwards the transcript to
// the model backend, routes any tool calls the backend emits through the
// executor, feeds the results back into the ongoing generation, and
// returns the final transcript. It is constructed explicitly and injected
// where needed; there is no process-wide instance.
type Gateway struct {
	provider     Provider
	executor     ToolExecutor
	registry     *tool.Registry
	systemPrompt string
	modelName    string
}

func NewGateway(provider Provider, executor ToolExecutor, registry *tool.Registry, opts ...GatewayOption) *Gateway {
	options := &GatewayOptions{
		SystemPrompt: DefaultSystemPrompt,
		ModelName:    "claude-sonnet-4-20250514",
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Gateway{
		provider:     provider,
		executor:     executor,
		registry:     registry,
		systemPrompt: options.SystemPrompt,
		modelName:    options.ModelName,
	}
}

// TurnResult is the outcome of one completed turn.
type TurnResult struct {
	// Messages is the full transcript including tool results and the
	// final model reply.
	Messages []*Message
	// Reply is the text of the final model message.
	Reply string
	// Usage aggregates token counts across every provider round.
	Usage Usage
}

// RunTurn completes one turn. streamFn (optional) receives text deltas as
// the backend produces them. Tool invocations already dispatched run to
// completion even if the turn is later cut off.
func (g *Gateway) RunTurn(ctx context.Context, messages []*Message, caller tool.Identity, streamFn func(ctx context.Context, chunk string)) (*TurnResult, error) {
	transcript := make([]*Message, len(messages))
	copy(transcript, messages)

	var usage Usage
	invokeOpts := []InvokeOption{
		WithContracts(g.registry.Contracts()...),
	}
	if streamFn != nil {
		invokeOpts = append(invokeOpts, WithStreamHandler(streamFn))
	}

	for round := 0; ; round++ {
		if round >= maxToolRounds {
			return nil, fmt.Errorf("turn exceeded %d tool rounds", maxToolRounds)
		}

		response, err := g.provider.Invoke(ctx, g.modelName, g.systemPrompt, transcript, invokeOpts...)
		if err != nil {
			return nil, fmt.Errorf("invoke model: %w", err)
		}

		transcript = append(transcript, response)
		usage.Add(response.Usage)

		calls := response.ToolCalls()
		if len(calls) == 0 {
			return &TurnResult{
				Messages: transcript,
				Reply:    response.Text(),
				Usage:    usage,
			}, nil
		}

		results := make([]ContentBlock, 0, len(calls))
		for _, call := range calls {
			result := g.executor.Execute(ctx, tool.Invocation{
				Tool:         call.Tool,
				RawArguments: call.Args,
				Caller:       caller,
			})

			encoded, err := json.Marshal(result)
			if err != nil {
				// The result envelope always marshals; guard anyway so a
				// bad payload cannot abort the turn.
				slog.ErrorContext(ctx, "encode tool result", "tool", call.Tool, "error", err)
				encoded = []byte(`{"success":false,"errorMessage":"internal error"}`)
			}

			results = append(results, &ToolResultBlock{
				ID:        call.ID,
				Tool:      call.Tool,
				Result:    string(encoded),
				Succeeded: result.Success,
			})
		}

		transcript = append(transcript, &Message{
			Source:  MessageSourceUser,
			Content: results,
		})
	}
}
