package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"promptd/internal/domain"
)

const (
	emptyInputSchema = `{"type":"object"}`
	getResourceInput = `{
  "type": "object",
  "properties": {
    "name": {"type": "string", "minLength": 1, "description": "Resource name (filename slug)"}
  },
  "required": ["name"]
}`
	renderPromptInput = `{
  "type": "object",
  "properties": {
    "name": {"type": "string", "minLength": 1, "description": "Registered prompt name"},
    "context": {"type": "string", "description": "Additional context appended to the prompt"}
  },
  "required": ["name"]
}`
)

type tool struct {
	def     domain.ToolDefinition
	schema  *jsonschema.Resolved
	handler domain.ToolHandler
}

// toolSet is the fixed tool surface exposed over MCP and HTTP.
type toolSet struct {
	order  []string
	byName map[string]tool
}

func newToolSet(cp *ControlPlane) (*toolSet, error) {
	set := &toolSet{byName: make(map[string]tool)}
	defs := []struct {
		name        string
		description string
		schema      string
		handler     domain.ToolHandler
	}{
		{"list_dynamic_prompts", "List the names and source files of dynamically loaded markdown prompts", emptyInputSchema, cp.toolListPrompts},
		{"reload_prompts", "Reload markdown prompt files from the prompts directory and remote sources", emptyInputSchema, cp.toolReloadPrompts},
		{"list_resources", "List dynamically loaded resource files", emptyInputSchema, cp.toolListResources},
		{"reload_resources", "Reload resource files and export new ones as prompts", emptyInputSchema, cp.toolReloadResources},
		{"get_resource", "Get content of a resource by name", getResourceInput, cp.toolGetResource},
		{"list_resource_prompts", "List prompt names generated automatically from resources", emptyInputSchema, cp.toolListResourcePrompts},
		{"render_prompt", "Render a registered prompt with optional context", renderPromptInput, cp.toolRenderPrompt},
	}
	for _, d := range defs {
		var schema jsonschema.Schema
		if err := json.Unmarshal([]byte(d.schema), &schema); err != nil {
			return nil, fmt.Errorf("tool %s: parse schema: %w", d.name, err)
		}
		resolved, err := schema.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("tool %s: resolve schema: %w", d.name, err)
		}
		set.order = append(set.order, d.name)
		set.byName[d.name] = tool{
			def: domain.ToolDefinition{
				Name:        d.name,
				Description: d.description,
				InputSchema: json.RawMessage(d.schema),
			},
			schema:  resolved,
			handler: d.handler,
		}
	}
	return set, nil
}

func (s *toolSet) names() []string {
	return append([]string(nil), s.order...)
}

func (s *toolSet) register(sink domain.ToolSink) error {
	for _, name := range s.order {
		handler := func(ctx context.Context, args json.RawMessage) (*domain.ToolResult, error) {
			return s.invoke(ctx, name, args)
		}
		if err := sink.RegisterTool(s.byName[name].def, handler); err != nil {
			return err
		}
	}
	return nil
}

func (s *toolSet) invoke(ctx context.Context, name string, args json.RawMessage) (*domain.ToolResult, error) {
	const op = "control_plane.invoke_tool"
	t, ok := s.byName[name]
	if !ok {
		return nil, domain.NotFound(op, domain.ErrToolNotFound, name)
	}
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}
	var instance any
	if err := json.Unmarshal(args, &instance); err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, op, "invalid json body", err)
	}
	if err := t.schema.Validate(instance); err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, op, fmt.Sprintf("%s: %v", name, err), err)
	}
	return t.handler(ctx, args)
}

func (c *ControlPlane) toolListPrompts(ctx context.Context, _ json.RawMessage) (*domain.ToolResult, error) {
	return jsonResult(c.ListPrompts(ctx))
}

func (c *ControlPlane) toolReloadPrompts(ctx context.Context, _ json.RawMessage) (*domain.ToolResult, error) {
	res, err := c.ReloadPrompts(ctx)
	if err != nil {
		return nil, err
	}
	return domain.TextResult(fmt.Sprintf("Reloaded. Local newly registered: %d. Remote newly registered: %d",
		res.Local.NewlyRegistered, res.RemoteCount)), nil
}

func (c *ControlPlane) toolListResources(ctx context.Context, _ json.RawMessage) (*domain.ToolResult, error) {
	return jsonResult(c.ListResources(ctx))
}

func (c *ControlPlane) toolReloadResources(ctx context.Context, _ json.RawMessage) (*domain.ToolResult, error) {
	res, err := c.ReloadResources(ctx)
	if err != nil {
		return nil, err
	}
	return domain.TextResult(fmt.Sprintf("Resources reloaded. Newly registered: %d. Total: %d. Dir: %s. Exported as prompts: %d",
		res.Resources.NewlyRegistered, res.Resources.Total, res.Resources.Dir, res.Export.Exported)), nil
}

func (c *ControlPlane) toolGetResource(ctx context.Context, args json.RawMessage) (*domain.ToolResult, error) {
	var params struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return domain.ErrorResult("Error: " + err.Error()), nil
	}
	res, err := c.GetResource(ctx, params.Name)
	if err != nil {
		return domain.ErrorResult("Error: " + err.Error()), nil
	}
	return domain.TextResult(fmt.Sprintf("# %s (type: %s)\n\n%s", params.Name, res.Type, res.Content)), nil
}

func (c *ControlPlane) toolListResourcePrompts(ctx context.Context, _ json.RawMessage) (*domain.ToolResult, error) {
	listings := c.ListResourcePrompts(ctx)
	names := make([]string, 0, len(listings))
	for _, l := range listings {
		names = append(names, l.Name)
	}
	return jsonResult(names)
}

func (c *ControlPlane) toolRenderPrompt(ctx context.Context, args json.RawMessage) (*domain.ToolResult, error) {
	var params struct {
		Name    string `json:"name"`
		Context string `json:"context"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return domain.ErrorResult("Error: " + err.Error()), nil
	}
	var promptArgs map[string]string
	if params.Context != "" {
		promptArgs = map[string]string{domain.ContextArgument: params.Context}
	}
	out, err := c.RenderPrompt(ctx, params.Name, promptArgs)
	if err != nil {
		return domain.ErrorResult("Error: " + err.Error()), nil
	}
	return jsonResult(out)
}

func jsonResult(v any) (*domain.ToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, domain.E(domain.CodeInternal, "control_plane.encode", "", err)
	}
	return domain.TextResult(string(data)), nil
}
