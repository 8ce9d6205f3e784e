package gateway

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"promptd/internal/domain"
)

// ToolSink registers tools on an MCP server.
type ToolSink struct {
	server     *mcp.Server
	logger     *zap.Logger
	mu         sync.Mutex
	registered map[string]struct{}
}

var _ domain.ToolSink = (*ToolSink)(nil)

func NewToolSink(server *mcp.Server, logger *zap.Logger) *ToolSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToolSink{
		server:     server,
		logger:     logger.Named("tool_sink"),
		registered: make(map[string]struct{}),
	}
}

func (s *ToolSink) RegisterTool(def domain.ToolDefinition, handler domain.ToolHandler) error {
	if def.Name == "" || handler == nil {
		return domain.E(domain.CodeInvalidArgument, "tool_sink.register", "tool name and handler are required", domain.ErrInvalidName)
	}
	schema, err := objectSchema(def.InputSchema)
	if err != nil {
		return domain.E(domain.CodeInvalidArgument, "tool_sink.register", def.Name+": invalid input schema", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registered[def.Name]; ok {
		return domain.E(domain.CodeAlreadyExists, "tool_sink.register", def.Name, domain.ErrAlreadyRegistered)
	}
	s.server.AddTool(&mcp.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: schema,
	}, toolHandler(handler))
	s.registered[def.Name] = struct{}{}
	return nil
}

func objectSchema(raw json.RawMessage) (*jsonschema.Schema, error) {
	if len(raw) == 0 {
		return &jsonschema.Schema{Type: "object"}, nil
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, err
	}
	if !strings.EqualFold(schema.Type, "object") {
		return nil, domain.ErrInvalidConfig
	}
	return &schema, nil
}

func toolHandler(handler domain.ToolHandler) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		result, err := handler(ctx, args)
		if err != nil {
			result = domain.ErrorResult("Error: " + err.Error())
		}
		if result == nil {
			result = domain.TextResult("")
		}
		content := make([]mcp.Content, 0, len(result.Content))
		for _, c := range result.Content {
			content = append(content, &mcp.TextContent{Text: c.Text})
		}
		return &mcp.CallToolResult{Content: content, IsError: result.IsError}, nil
	}
}
