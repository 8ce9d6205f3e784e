package domain

import (
	"context"
	"time"
)

// Role identifies the speaker of a rendered message.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Message is one rendered turn of a prompt transcript.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript is the output of invoking a prompt.
type Transcript struct {
	Description string    `json:"description,omitempty"`
	Messages    []Message `json:"messages"`
}

// RenderFunc renders a prompt with the caller supplied arguments.
type RenderFunc func(ctx context.Context, args map[string]string) (Transcript, error)

// HandlerKind tags the variant of a Handler.
type HandlerKind string

const (
	HandlerPrompt   HandlerKind = "prompt"
	HandlerResource HandlerKind = "resource"
)

// Handler is the invokable half of a registered prompt.
type Handler struct {
	Kind   HandlerKind
	Name   string
	Render RenderFunc
}

// PromptOrigin records where a prompt entry came from.
type PromptOrigin string

const (
	OriginLocal    PromptOrigin = "local"
	OriginRemote   PromptOrigin = "remote"
	OriginResource PromptOrigin = "resource"
)

// PromptMeta is stored with each prompt registry entry. Title and Description are the
// values delivered to the sink at registration and are never re-derived.
type PromptMeta struct {
	Title       string
	Description string
	Origin      PromptOrigin
	Source      string
	Handler     Handler
}

// ResourceMeta is stored with each resource registry entry.
type ResourceMeta struct {
	Kind ContentKind
}

// PromptArgument describes one optional or required prompt argument.
type PromptArgument struct {
	Name        string
	Description string
	Required    bool
}

// PromptDefinition is what the sink sees when a prompt is registered.
type PromptDefinition struct {
	Name        string
	Title       string
	Description string
	Arguments   []PromptArgument
}

// ContextArgument is the single optional argument every dynamic prompt accepts.
const ContextArgument = "context"

// LoadResult summarizes one directory load.
type LoadResult struct {
	NewlyRegistered int    `json:"count"`
	Total           int    `json:"total"`
	Dir             string `json:"dir"`
	DirMissing      bool   `json:"dirMissing,omitempty"`
}

// PromptReloadResult summarizes a full prompt reload.
type PromptReloadResult struct {
	Local       LoadResult `json:"local"`
	RemoteCount int        `json:"remoteCount"`
	RemoteFails int        `json:"remoteFailures,omitempty"`
}

// ExportResult summarizes one resource export pass.
type ExportResult struct {
	Enabled  bool `json:"enabled"`
	Exported int  `json:"exported"`
	Skipped  int  `json:"skipped"`
	Failed   int  `json:"failed,omitempty"`
}

// ResourceReloadResult summarizes a resource reload followed by export.
type ResourceReloadResult struct {
	Resources LoadResult   `json:"resources"`
	Export    ExportResult `json:"export"`
}

// PromptListing is the public view of a prompt entry.
type PromptListing struct {
	Name        string       `json:"name"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	File        string       `json:"file"`
	Origin      PromptOrigin `json:"origin"`
	ModifiedAt  time.Time    `json:"modifiedAt"`
}

// ResourceListing is the public view of a resource entry.
type ResourceListing struct {
	Name       string      `json:"name"`
	File       string      `json:"file"`
	Type       ContentKind `json:"type"`
	ModifiedAt time.Time   `json:"modifiedAt"`
}

// ResourceContent is a resource entry with its current body.
type ResourceContent struct {
	ResourceListing
	Content string `json:"content"`
}
