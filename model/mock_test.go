package model

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockProviderEchoesLastUserMessage(t *testing.T) {
	t.Parallel()

	provider := NewMockProvider()
	messages := []*Message{
		NewUserTextMessage("first"),
		NewModelMessage([]ContentBlock{&TextBlock{Text: "reply"}}, Usage{}),
		NewUserTextMessage("add a customer named Anna"),
	}

	response, err := provider.Invoke(context.Background(), "any-model", "prompt", messages)
	require.NoError(t, err)

	require.Equal(t, MessageSourceModel, response.Source)
	require.Contains(t, response.Text(), `You said: "add a customer named Anna"`)
	require.Empty(t, response.ToolCalls(), "the mock never calls tools")
	require.Equal(t, int64(len([]rune("add a customer named Anna"))), response.Usage.InputTokens)
	require.Equal(t, int64(len([]rune(response.Text()))), response.Usage.OutputTokens)
}

func TestMockProviderTruncatesLongInput(t *testing.T) {
	t.Parallel()

	provider := NewMockProvider()
	long := strings.Repeat("x", 500)

	response, err := provider.Invoke(context.Background(), "any-model", "prompt",
		[]*Message{NewUserTextMessage(long)})
	require.NoError(t, err)

	require.Contains(t, response.Text(), strings.Repeat("x", MockEchoPrefixLength))
	require.NotContains(t, response.Text(), strings.Repeat("x", MockEchoPrefixLength+1))
}

func TestMockProviderIsDeterministic(t *testing.T) {
	t.Parallel()

	provider := NewMockProvider()
	messages := []*Message{NewUserTextMessage("hello")}

	first, err := provider.Invoke(context.Background(), "m", "p", messages)
	require.NoError(t, err)
	second, err := provider.Invoke(context.Background(), "m", "p", messages)
	require.NoError(t, err)

	require.Equal(t, first.Text(), second.Text())
	require.Equal(t, first.Usage, second.Usage)
}

func TestMockProviderStreams(t *testing.T) {
	t.Parallel()

	provider := NewMockProvider()
	var streamed string

	response, err := provider.Invoke(context.Background(), "m", "p",
		[]*Message{NewUserTextMessage("hi")},
		WithStreamHandler(func(_ context.Context, chunk string) {
			streamed += chunk
		}))
	require.NoError(t, err)
	require.Equal(t, response.Text(), streamed)
}
