package content

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"promptd/internal/domain"
)

var contextArguments = []domain.PromptArgument{{
	Name:        domain.ContextArgument,
	Description: "Additional context appended to the prompt",
}}

// promptHandler renders a prompt file captured at registration time.
func promptHandler(name, title, body string) domain.Handler {
	return domain.Handler{
		Kind: domain.HandlerPrompt,
		Name: name,
		Render: func(_ context.Context, args map[string]string) (domain.Transcript, error) {
			user := body
			if extra := args[domain.ContextArgument]; extra != "" {
				user += "\n\nUser context:\n" + extra
			}
			return domain.Transcript{
				Description: title,
				Messages: []domain.Message{
					{Role: domain.RoleAssistant, Text: "You are using the dynamic prompt: " + title},
					{Role: domain.RoleUser, Text: user},
				},
			}, nil
		},
	}
}

// resourceHandler renders an exported resource captured at export time.
func resourceHandler(name, resourceName, raw string) domain.Handler {
	preview := Preview(raw, domain.ExportPreviewLength)
	return domain.Handler{
		Kind: domain.HandlerResource,
		Name: name,
		Render: func(_ context.Context, args map[string]string) (domain.Transcript, error) {
			user := raw
			if extra := args[domain.ContextArgument]; extra != "" {
				user += "\n\nExtra context:\n" + extra
			}
			return domain.Transcript{
				Description: resourceName,
				Messages: []domain.Message{
					{Role: domain.RoleAssistant, Text: fmt.Sprintf("You are using the exported resource '%s'. Preview: %s", resourceName, preview)},
					{Role: domain.RoleUser, Text: user},
				},
			}, nil
		},
	}
}

// Preview returns the first limit runes of text with whitespace runs collapsed.
func Preview(text string, limit int) string {
	if utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		text = string(runes[:limit])
	}
	return strings.Join(strings.Fields(text), " ")
}

// ExportedName derives the prompt name for an exported resource.
func ExportedName(resourceName string) string {
	name := domain.ExportedPromptPrefix + resourceName
	if len(name) > domain.MaxExportedNameLength {
		name = name[:domain.MaxExportedNameLength]
	}
	return name
}
