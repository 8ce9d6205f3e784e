package gateway

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"promptd/internal/domain"
)

// NewServer creates the MCP server that prompts and tools are registered on.
func NewServer(version string) *mcp.Server {
	if version == "" {
		version = "dev"
	}
	return mcp.NewServer(&mcp.Implementation{
		Name:    domain.DefaultImplementationName,
		Title:   domain.DefaultImplementationTitle,
		Version: version,
	}, &mcp.ServerOptions{
		HasPrompts: true,
		HasTools:   true,
	})
}

// RunStdio serves the MCP server over stdin/stdout until ctx is done or the client disconnects.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
