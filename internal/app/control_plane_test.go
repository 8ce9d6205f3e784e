package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"promptd/internal/app/content"
	"promptd/internal/domain"
	"promptd/internal/infra/gateway"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(evt domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testPlane struct {
	cp           *ControlPlane
	server       *mcp.Server
	events       *recordingPublisher
	promptsDir   string
	resourcesDir string
}

func newTestPlane(t *testing.T) testPlane {
	t.Helper()
	root := t.TempDir()
	promptsDir := filepath.Join(root, "prompts")
	resourcesDir := filepath.Join(root, "resources")
	require.NoError(t, os.MkdirAll(promptsDir, 0o755))
	require.NoError(t, os.MkdirAll(resourcesDir, 0o755))

	server := gateway.NewServer("test")
	sink := gateway.NewPromptSink(server, zap.NewNop())
	prompts := content.NewPromptRegistry()
	resources := content.NewResourceRegistry()
	events := &recordingPublisher{}

	cp, err := NewControlPlane(ControlPlaneOptions{
		Prompts:   content.NewPromptLoader(prompts, sink, nil, nil, content.PromptLoaderOptions{Dir: promptsDir}, nil, nil),
		Resources: content.NewResourceLoader(resources, resourcesDir, nil, nil),
		Exporter:  content.NewExporter(resources, prompts, sink, true, nil, nil),
		Events:    events,
		Auth:      domain.AuthStatus{Enabled: true, Mode: "static", TokenConfigured: true},
	})
	require.NoError(t, err)
	return testPlane{cp: cp, server: server, events: events, promptsDir: promptsDir, resourcesDir: resourcesDir}
}

func writeTestFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestControlPlane_ReloadPromptsAndRender(t *testing.T) {
	p := newTestPlane(t)
	ctx := context.Background()
	writeTestFile(t, p.promptsDir, "hello.md", "# Greeting\n\nSay hi.")

	res, err := p.cp.ReloadPrompts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Local.NewlyRegistered)

	out, err := p.cp.RenderPrompt(ctx, "hello", map[string]string{"context": "be brief"})
	require.NoError(t, err)
	require.Equal(t, "# Greeting\n\nSay hi.\n\nUser context:\nbe brief", out.Messages[1].Text)

	_, err = p.cp.RenderPrompt(ctx, "missing", nil)
	require.True(t, domain.IsNotFound(err))

	res, err = p.cp.ReloadPrompts(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, res.Local.NewlyRegistered)
	require.Equal(t, []string{domain.EventReloadPrompts, domain.EventReloadPrompts}, p.events.types())
}

func TestControlPlane_ReloadResourcesExports(t *testing.T) {
	p := newTestPlane(t)
	ctx := context.Background()
	writeTestFile(t, p.resourcesDir, "notes.json", `{"a":1}`)

	res, err := p.cp.ReloadResources(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Resources.NewlyRegistered)
	require.Equal(t, 1, res.Export.Exported)

	resource, err := p.cp.GetResource(ctx, "notes")
	require.NoError(t, err)
	require.Equal(t, domain.ContentJSON, resource.Type)
	require.Equal(t, "{\n  \"a\": 1\n}", resource.Content)

	exported := p.cp.ListResourcePrompts(ctx)
	require.Len(t, exported, 1)
	require.Equal(t, "resource_notes", exported[0].Name)

	res, err = p.cp.ReloadResources(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, res.Export.Exported)

	status := p.cp.Status(ctx)
	require.Equal(t, 1, status.Resources)
	require.Equal(t, []string{"resource_notes"}, status.PromptNames)
	require.True(t, status.Auth.Enabled)
}

func TestControlPlane_InvokeTool(t *testing.T) {
	p := newTestPlane(t)
	ctx := context.Background()
	writeTestFile(t, p.promptsDir, "hello.md", "# Greeting\n\nSay hi.")
	writeTestFile(t, p.resourcesDir, "notes.json", `{"a":1}`)

	out, err := p.cp.InvokeTool(ctx, "reload_prompts", nil)
	require.NoError(t, err)
	require.Equal(t, "Reloaded. Local newly registered: 1. Remote newly registered: 0", out.Text())

	out, err = p.cp.InvokeTool(ctx, "reload_resources", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Contains(t, out.Text(), "Resources reloaded. Newly registered: 1. Total: 1.")

	out, err = p.cp.InvokeTool(ctx, "get_resource", json.RawMessage(`{"name":"notes"}`))
	require.NoError(t, err)
	require.False(t, out.IsError)
	require.Equal(t, "# notes (type: json)\n\n{\n  \"a\": 1\n}", out.Text())

	out, err = p.cp.InvokeTool(ctx, "get_resource", json.RawMessage(`{"name":"nope"}`))
	require.NoError(t, err)
	require.True(t, out.IsError)
	require.Contains(t, out.Text(), "Error: ")
	require.Contains(t, out.Text(), "resource not found: nope")

	out, err = p.cp.InvokeTool(ctx, "list_resource_prompts", nil)
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal([]byte(out.Text()), &names))
	require.Equal(t, []string{"resource_notes"}, names)

	out, err = p.cp.InvokeTool(ctx, "list_dynamic_prompts", nil)
	require.NoError(t, err)
	var listed []domain.PromptListing
	require.NoError(t, json.Unmarshal([]byte(out.Text()), &listed))
	require.Len(t, listed, 2)

	out, err = p.cp.InvokeTool(ctx, "render_prompt", json.RawMessage(`{"name":"hello","context":"ctx"}`))
	require.NoError(t, err)
	var transcript domain.Transcript
	require.NoError(t, json.Unmarshal([]byte(out.Text()), &transcript))
	require.Equal(t, "# Greeting\n\nSay hi.\n\nUser context:\nctx", transcript.Messages[1].Text)
}

func TestControlPlane_InvokeToolErrors(t *testing.T) {
	p := newTestPlane(t)
	ctx := context.Background()

	_, err := p.cp.InvokeTool(ctx, "getApiKey", nil)
	require.ErrorIs(t, err, domain.ErrToolNotFound)
	require.True(t, domain.IsNotFound(err))

	_, err = p.cp.InvokeTool(ctx, "get_resource", json.RawMessage(`{}`))
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeInvalidArgument, code)

	_, err = p.cp.InvokeTool(ctx, "get_resource", json.RawMessage(`{"name":`))
	code, _ = domain.CodeFrom(err)
	require.Equal(t, domain.CodeInvalidArgument, code)
}

func TestControlPlane_ToolsOverMCP(t *testing.T) {
	p := newTestPlane(t)
	ctx := context.Background()
	writeTestFile(t, p.resourcesDir, "readme.md", "# Readme")
	_, err := p.cp.ReloadResources(ctx)
	require.NoError(t, err)

	require.NoError(t, p.cp.RegisterTools(gateway.NewToolSink(p.server, zap.NewNop())))

	ct, st := mcp.NewInMemoryTransports()
	_, err = p.server.Connect(ctx, st, nil)
	require.NoError(t, err)
	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tl := range tools.Tools {
		names = append(names, tl.Name)
	}
	assert.ElementsMatch(t, p.cp.ToolNames(), names)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_resource",
		Arguments: map[string]any{"name": "readme"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	require.Equal(t, "# readme (type: markdown)\n\n# Readme", text.Text)

	prompts, err := session.ListPrompts(ctx, &mcp.ListPromptsParams{})
	require.NoError(t, err)
	require.Len(t, prompts.Prompts, 1)
	require.Equal(t, "resource_readme", prompts.Prompts[0].Name)
}
