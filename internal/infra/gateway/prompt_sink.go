package gateway

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"promptd/internal/domain"
)

// PromptSink registers prompts on an MCP server. Each name is accepted once.
type PromptSink struct {
	server     *mcp.Server
	logger     *zap.Logger
	mu         sync.Mutex
	registered map[string]struct{}
}

var _ domain.PromptSink = (*PromptSink)(nil)

func NewPromptSink(server *mcp.Server, logger *zap.Logger) *PromptSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromptSink{
		server:     server,
		logger:     logger.Named("prompt_sink"),
		registered: make(map[string]struct{}),
	}
}

func (s *PromptSink) RegisterPrompt(def domain.PromptDefinition, handler domain.Handler) error {
	if def.Name == "" || handler.Render == nil {
		return domain.E(domain.CodeInvalidArgument, "prompt_sink.register", "prompt name and handler are required", domain.ErrInvalidName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registered[def.Name]; ok {
		return domain.E(domain.CodeAlreadyExists, "prompt_sink.register", def.Name, domain.ErrAlreadyRegistered)
	}

	args := make([]*mcp.PromptArgument, 0, len(def.Arguments))
	for _, arg := range def.Arguments {
		args = append(args, &mcp.PromptArgument{
			Name:        arg.Name,
			Description: arg.Description,
			Required:    arg.Required,
		})
	}
	s.server.AddPrompt(&mcp.Prompt{
		Name:        def.Name,
		Title:       def.Title,
		Description: def.Description,
		Arguments:   args,
	}, promptHandler(handler))
	s.registered[def.Name] = struct{}{}
	s.logger.Debug("prompt registered", zap.String("prompt", def.Name), zap.String("kind", string(handler.Kind)))
	return nil
}

// Registered reports whether name was accepted.
func (s *PromptSink) Registered(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.registered[name]
	return ok
}

func promptHandler(handler domain.Handler) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		transcript, err := handler.Render(ctx, args)
		if err != nil {
			return nil, err
		}
		messages := make([]*mcp.PromptMessage, 0, len(transcript.Messages))
		for _, msg := range transcript.Messages {
			messages = append(messages, &mcp.PromptMessage{
				Role:    mcp.Role(msg.Role),
				Content: &mcp.TextContent{Text: msg.Text},
			})
		}
		return &mcp.GetPromptResult{
			Description: transcript.Description,
			Messages:    messages,
		}, nil
	}
}
