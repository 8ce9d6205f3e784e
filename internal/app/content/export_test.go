package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"promptd/internal/domain"
)

func loadResources(t *testing.T, dir string) *ResourceRegistry {
	t.Helper()
	loader := NewResourceLoader(NewResourceRegistry(), dir, nil, nil)
	_, err := loader.Reload(context.Background())
	require.NoError(t, err)
	return loader.Registry()
}

func TestExportRegistersResourcePrompts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.json", `{"a":1}`)
	resources := loadResources(t, dir)
	prompts := NewPromptRegistry()
	sink := newRecordingSink()
	exporter := NewExporter(resources, prompts, sink, true, nil, nil)

	res, err := exporter.Export(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.ExportResult{Enabled: true, Exported: 1}, res)
	require.Equal(t, "resource_notes", sink.defs[0].Name)
	require.Equal(t, "Auto-exported resource (json) from notes.json", sink.defs[0].Description)

	entry, err := prompts.Get("resource_notes")
	require.NoError(t, err)
	require.Equal(t, domain.OriginResource, entry.Meta.Origin)
	resource, err := resources.Get("notes")
	require.NoError(t, err)
	require.Equal(t, resource.ModifiedAt, entry.ModifiedAt)

	out := sink.render(t, "resource_notes", map[string]string{"context": "ctx"})
	require.Equal(t, []domain.Message{
		{Role: domain.RoleAssistant, Text: `You are using the exported resource 'notes'. Preview: {"a":1}`},
		{Role: domain.RoleUser, Text: "{\"a\":1}\n\nExtra context:\nctx"},
	}, out.Messages)

	res, err = exporter.Export(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, res.Exported)
	require.Equal(t, 1, res.Skipped)
	require.Equal(t, 1, sink.calls())

	require.Len(t, ListExported(prompts), 1)
}

func TestListExportedIgnoresLocalResourceNamedPrompts(t *testing.T) {
	promptsDir := t.TempDir()
	writeFile(t, promptsDir, "resource_guide.md", "# Guide\n\nRead me.")
	resourcesDir := t.TempDir()
	writeFile(t, resourcesDir, "notes.md", "notes")

	prompts := NewPromptRegistry()
	sink := newRecordingSink()
	loader := NewPromptLoader(prompts, sink, nil, nil, PromptLoaderOptions{Dir: promptsDir}, nil, nil)
	_, err := loader.LoadLocal(context.Background(), promptsDir, "")
	require.NoError(t, err)
	_, err = NewExporter(loadResources(t, resourcesDir), prompts, sink, true, nil, nil).Export(context.Background())
	require.NoError(t, err)

	exported := ListExported(prompts)
	require.Len(t, exported, 1)
	require.Equal(t, "resource_notes", exported[0].Name)
	require.Equal(t, domain.OriginResource, exported[0].Origin)
}

func TestExportDisabled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "x")
	sink := newRecordingSink()
	exporter := NewExporter(loadResources(t, dir), NewPromptRegistry(), sink, false, nil, nil)

	res, err := exporter.Export(context.Background())
	require.NoError(t, err)
	require.False(t, res.Enabled)
	require.Zero(t, sink.calls())
}

func TestExportFailureIsRetried(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "x")
	prompts := NewPromptRegistry()
	sink := newRecordingSink()
	sink.failWith = errors.New("rejected")
	exporter := NewExporter(loadResources(t, dir), prompts, sink, true, nil, nil)

	res, err := exporter.Export(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Failed)
	require.False(t, prompts.Has("resource_notes"))

	sink.failWith = nil
	res, err = exporter.Export(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Exported)
}

func TestPreview(t *testing.T) {
	require.Equal(t, "a b c", Preview("  a \n\n b\tc  ", 120))
	long := strings.Repeat("é", 200)
	require.Equal(t, strings.Repeat("é", 120), Preview(long, 120))
	require.Equal(t, "", Preview("", 10))
}

func TestExportedName(t *testing.T) {
	require.Equal(t, "resource_notes", ExportedName("notes"))
	long := strings.Repeat("x", domain.MaxNameLength)
	got := ExportedName(long)
	require.Len(t, got, domain.MaxExportedNameLength)
	require.True(t, strings.HasPrefix(got, "resource_"))
}
