package model

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/byggassist/backend/tool"
)

// scriptedProvider returns its responses in order, recording what it was
// handed on each round.
type scriptedProvider struct {
	responses []*Message
	seen      [][]*Message
	contracts []tool.Contract
}

func (p *scriptedProvider) Invoke(ctx context.Context, model, systemPrompt string, messages []*Message, opts ...InvokeOption) (*Message, error) {
	options := DefaultInvokeOptions()
	for _, opt := range opts {
		opt(options)
	}
	p.contracts = options.Contracts

	snapshot := make([]*Message, len(messages))
	copy(snapshot, messages)
	p.seen = append(p.seen, snapshot)

	response := p.responses[0]
	p.responses = p.responses[1:]
	return response, nil
}

type recordingExecutor struct {
	invocations []tool.Invocation
	result      tool.Result
}

func (e *recordingExecutor) Execute(ctx context.Context, invocation tool.Invocation) tool.Result {
	e.invocations = append(e.invocations, invocation)
	return e.result
}

func testRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(tool.NewTool("listCustomers", "List customers.",
		func(ctx context.Context, caller tool.Identity, input struct{}) ([]string, error) {
			return nil, nil
		})))
	return registry
}

func TestRunTurnPlainReply(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{
		responses: []*Message{
			NewModelMessage([]ContentBlock{&TextBlock{Text: "All done."}}, Usage{InputTokens: 10, OutputTokens: 5}),
		},
	}
	executor := &recordingExecutor{}
	gateway := NewGateway(provider, executor, testRegistry(t))

	result, err := gateway.RunTurn(context.Background(),
		[]*Message{NewUserTextMessage("hi")}, tool.Identity{}, nil)
	require.NoError(t, err)

	require.Equal(t, "All done.", result.Reply)
	require.Equal(t, Usage{InputTokens: 10, OutputTokens: 5}, result.Usage)
	require.Len(t, result.Messages, 2)
	require.Empty(t, executor.invocations)
	require.Len(t, provider.contracts, 1, "tool contracts ride along on every invoke")
}

func TestRunTurnRoutesToolCalls(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{
		responses: []*Message{
			NewModelMessage([]ContentBlock{
				&ToolCallBlock{ID: "call-1", Tool: "listCustomers", Args: json.RawMessage(`{}`)},
			}, Usage{InputTokens: 10, OutputTokens: 2}),
			NewModelMessage([]ContentBlock{
				&TextBlock{Text: "You have 2 customers."},
			}, Usage{InputTokens: 30, OutputTokens: 8}),
		},
	}
	executor := &recordingExecutor{
		result: tool.Result{Success: true, Payload: json.RawMessage(`["Anna","Bo"]`)},
	}
	gateway := NewGateway(provider, executor, testRegistry(t))

	caller := tool.Identity{UserID: "u1", CompanyID: "c1"}
	result, err := gateway.RunTurn(context.Background(),
		[]*Message{NewUserTextMessage("who are my customers?")}, caller, nil)
	require.NoError(t, err)

	require.Equal(t, "You have 2 customers.", result.Reply)
	require.Equal(t, Usage{InputTokens: 40, OutputTokens: 10}, result.Usage)

	require.Len(t, executor.invocations, 1)
	require.Equal(t, "listCustomers", executor.invocations[0].Tool)
	require.Equal(t, caller, executor.invocations[0].Caller)

	// Round two must carry the tool result back as a user-sourced message.
	require.Len(t, provider.seen, 2)
	secondRound := provider.seen[1]
	last := secondRound[len(secondRound)-1]
	require.Equal(t, MessageSourceUser, last.Source)
	require.Len(t, last.Content, 1)
	block, ok := last.Content[0].(*ToolResultBlock)
	require.True(t, ok)
	require.Equal(t, "call-1", block.ID)
	require.True(t, block.Succeeded)
	require.Contains(t, block.Result, `"success":true`)
}

func TestRunTurnFailedToolResultStillFlowsBack(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{
		responses: []*Message{
			NewModelMessage([]ContentBlock{
				&ToolCallBlock{ID: "call-1", Tool: "listCustomers", Args: json.RawMessage(`{}`)},
			}, Usage{}),
			NewModelMessage([]ContentBlock{
				&TextBlock{Text: "That did not work."},
			}, Usage{}),
		},
	}
	executor := &recordingExecutor{
		result: tool.Result{Success: false, Error: "unknown tool: listCustomers"},
	}
	gateway := NewGateway(provider, executor, testRegistry(t))

	result, err := gateway.RunTurn(context.Background(),
		[]*Message{NewUserTextMessage("hi")}, tool.Identity{}, nil)
	require.NoError(t, err)
	require.Equal(t, "That did not work.", result.Reply)

	secondRound := provider.seen[1]
	last := secondRound[len(secondRound)-1]
	block := last.Content[0].(*ToolResultBlock)
	require.False(t, block.Succeeded)
	require.Contains(t, block.Result, "unknown tool")
}

func TestRunTurnBoundsToolRounds(t *testing.T) {
	t.Parallel()

	// A provider that asks for tools forever must be cut off.
	responses := make([]*Message, 0, maxToolRounds)
	for range maxToolRounds {
		responses = append(responses, NewModelMessage([]ContentBlock{
			&ToolCallBlock{ID: "c", Tool: "listCustomers", Args: json.RawMessage(`{}`)},
		}, Usage{}))
	}
	provider := &scriptedProvider{responses: responses}
	executor := &recordingExecutor{result: tool.Result{Success: true, Payload: json.RawMessage(`[]`)}}
	gateway := NewGateway(provider, executor, testRegistry(t))

	_, err := gateway.RunTurn(context.Background(),
		[]*Message{NewUserTextMessage("hi")}, tool.Identity{}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "tool rounds")
}
