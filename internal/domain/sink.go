package domain

import (
	"context"
	"encoding/json"
)

// PromptSink receives prompt registrations. Registrations are permanent for the
// lifetime of the process; a sink rejects names it has already accepted.
type PromptSink interface {
	RegisterPrompt(def PromptDefinition, handler Handler) error
}

// TextContent is a single text block in a tool result.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the outcome of a tool invocation.
type ToolResult struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// TextResult wraps plain text in a ToolResult.
func TextResult(text string) *ToolResult {
	return &ToolResult{Content: []TextContent{{Type: "text", Text: text}}}
}

// ErrorResult wraps a failure message in a ToolResult flagged as an error.
func ErrorResult(text string) *ToolResult {
	res := TextResult(text)
	res.IsError = true
	return res
}

// Text concatenates all text blocks.
func (r *ToolResult) Text() string {
	if r == nil {
		return ""
	}
	out := ""
	for i, c := range r.Content {
		if i > 0 {
			out += "\n"
		}
		out += c.Text
	}
	return out
}

// ToolHandler executes a tool with raw JSON arguments.
type ToolHandler func(ctx context.Context, args json.RawMessage) (*ToolResult, error)

// ToolDefinition describes a tool for registration.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// ToolSink receives tool registrations.
type ToolSink interface {
	RegisterTool(def ToolDefinition, handler ToolHandler) error
}
