package domain

import (
	"path/filepath"
	"strings"
)

// ContentKind is the coarse type of a resource file.
type ContentKind string

const (
	ContentMarkdown ContentKind = "markdown"
	ContentJSON     ContentKind = "json"
	ContentText     ContentKind = "text"
	ContentUnknown  ContentKind = "unknown"
)

// ClassifyContent derives the content kind from the file extension.
func ClassifyContent(path string) ContentKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		return ContentMarkdown
	case ".json":
		return ContentJSON
	case ".txt":
		return ContentText
	default:
		return ContentUnknown
	}
}

// PromptExtensions lists the file extensions scanned as prompts.
var PromptExtensions = []string{".md"}

// ResourceExtensions lists the file extensions scanned as resources.
var ResourceExtensions = []string{".md", ".txt", ".json"}
