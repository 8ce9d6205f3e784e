package domain

import (
	"context"
	"encoding/json"
)

// ControlPlane is the surface shared by the MCP tools and the HTTP front end.
type ControlPlane interface {
	ReloadPrompts(ctx context.Context) (PromptReloadResult, error)
	ReloadResources(ctx context.Context) (ResourceReloadResult, error)
	ListPrompts(ctx context.Context) []PromptListing
	ListResources(ctx context.Context) []ResourceListing
	ListResourcePrompts(ctx context.Context) []PromptListing
	GetResource(ctx context.Context, name string) (ResourceContent, error)
	RenderPrompt(ctx context.Context, name string, args map[string]string) (Transcript, error)
	InvokeTool(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error)
	Status(ctx context.Context) Status
}

// Status is a point in time summary of the control plane.
type Status struct {
	Prompts     int        `json:"prompts"`
	Resources   int        `json:"resources"`
	PromptNames []string   `json:"promptNames"`
	Auth        AuthStatus `json:"auth"`
}

// AuthStatus reports how the HTTP front end authenticates callers.
type AuthStatus struct {
	Enabled         bool   `json:"enabled"`
	Mode            string `json:"mode,omitempty"`
	TokenConfigured bool   `json:"tokenConfigured"`
	DisabledByCLI   bool   `json:"disabledByCli"`
}

// Event is a notification fanned out to HTTP subscribers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

const (
	EventHello           = "hello"
	EventReloadPrompts   = "reload_prompts"
	EventReloadResources = "reload_resources"
	EventToolResult      = "tool_result"
)

// EventPublisher broadcasts events to subscribers.
type EventPublisher interface {
	Publish(evt Event)
}
