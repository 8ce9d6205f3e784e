package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"promptd/internal/domain"
)

func connectClient(t *testing.T, ctx context.Context, server *mcp.Server) *mcp.ClientSession {
	t.Helper()
	ct, st := mcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func echoHandler(name string) domain.Handler {
	return domain.Handler{
		Kind: domain.HandlerPrompt,
		Name: name,
		Render: func(_ context.Context, args map[string]string) (domain.Transcript, error) {
			return domain.Transcript{
				Description: "echo",
				Messages: []domain.Message{
					{Role: domain.RoleAssistant, Text: "using " + name},
					{Role: domain.RoleUser, Text: args[domain.ContextArgument]},
				},
			}, nil
		},
	}
}

func TestPromptSinkRegistersAndRenders(t *testing.T) {
	ctx := context.Background()
	server := NewServer("test")
	sink := NewPromptSink(server, zap.NewNop())

	require.NoError(t, sink.RegisterPrompt(domain.PromptDefinition{
		Name:        "hello",
		Title:       "Greeting",
		Description: "Say hi.",
		Arguments:   []domain.PromptArgument{{Name: domain.ContextArgument, Description: "extra"}},
	}, echoHandler("hello")))
	require.True(t, sink.Registered("hello"))

	session := connectClient(t, ctx, server)

	prompts, err := session.ListPrompts(ctx, &mcp.ListPromptsParams{})
	require.NoError(t, err)
	require.Len(t, prompts.Prompts, 1)
	require.Equal(t, "hello", prompts.Prompts[0].Name)
	require.Equal(t, "Say hi.", prompts.Prompts[0].Description)
	require.Len(t, prompts.Prompts[0].Arguments, 1)
	require.False(t, prompts.Prompts[0].Arguments[0].Required)

	result, err := session.GetPrompt(ctx, &mcp.GetPromptParams{
		Name:      "hello",
		Arguments: map[string]string{domain.ContextArgument: "be brief"},
	})
	require.NoError(t, err)
	require.Len(t, result.Messages, 2)
	require.Equal(t, mcp.Role("assistant"), result.Messages[0].Role)
	require.Equal(t, "using hello", result.Messages[0].Content.(*mcp.TextContent).Text)
	require.Equal(t, "be brief", result.Messages[1].Content.(*mcp.TextContent).Text)
}

func TestPromptSinkRejectsDuplicatesAndEmptyNames(t *testing.T) {
	sink := NewPromptSink(NewServer(""), nil)
	require.NoError(t, sink.RegisterPrompt(domain.PromptDefinition{Name: "a"}, echoHandler("a")))

	err := sink.RegisterPrompt(domain.PromptDefinition{Name: "a"}, echoHandler("a"))
	require.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	err = sink.RegisterPrompt(domain.PromptDefinition{Name: ""}, echoHandler(""))
	require.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestToolSinkRegistersAndCalls(t *testing.T) {
	ctx := context.Background()
	server := NewServer("test")
	sink := NewToolSink(server, nil)

	schema := json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"}},"required":["name"]}`)
	require.NoError(t, sink.RegisterTool(domain.ToolDefinition{Name: "greet", Description: "greets", InputSchema: schema},
		func(_ context.Context, args json.RawMessage) (*domain.ToolResult, error) {
			var in struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, err
			}
			return domain.TextResult("hi " + in.Name), nil
		}))
	require.NoError(t, sink.RegisterTool(domain.ToolDefinition{Name: "fail"},
		func(context.Context, json.RawMessage) (*domain.ToolResult, error) {
			return nil, errors.New("boom")
		}))

	session := connectClient(t, ctx, server)

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, tools.Tools, 2)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "greet", Arguments: map[string]any{"name": "bob"}})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "hi bob", res.Content[0].(*mcp.TextContent).Text)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "fail", Arguments: map[string]any{}})
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Equal(t, "Error: boom", res.Content[0].(*mcp.TextContent).Text)
}

func TestToolSinkRejectsNonObjectSchema(t *testing.T) {
	sink := NewToolSink(NewServer(""), nil)
	noop := func(context.Context, json.RawMessage) (*domain.ToolResult, error) { return nil, nil }

	err := sink.RegisterTool(domain.ToolDefinition{Name: "x", InputSchema: json.RawMessage(`{"type":"string"}`)}, noop)
	require.Error(t, err)

	require.NoError(t, sink.RegisterTool(domain.ToolDefinition{Name: "y"}, noop))
	require.ErrorIs(t, sink.RegisterTool(domain.ToolDefinition{Name: "y"}, noop), domain.ErrAlreadyRegistered)
}
