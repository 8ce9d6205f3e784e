package content

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"promptd/internal/domain"
)

func TestResourceLoaderLoadAndGetContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.json", `{"b":2,"a":[1,{"c":true}]}`)
	writeFile(t, dir, "readme.md", "# Readme")
	writeFile(t, dir, "list.txt", "one\ntwo")
	writeFile(t, dir, "skip.yaml", "x: 1")
	loader := NewResourceLoader(NewResourceRegistry(), dir, nil, nil)

	res, err := loader.Reload(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, res.NewlyRegistered)
	require.Equal(t, 3, res.Total)
	require.Equal(t, dir, res.Dir)

	kinds := map[string]domain.ContentKind{}
	for _, r := range loader.List() {
		kinds[r.Name] = r.Type
	}
	want := map[string]domain.ContentKind{"notes": domain.ContentJSON, "readme": domain.ContentMarkdown, "list": domain.ContentText}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}

	got, err := loader.GetContent("notes")
	require.NoError(t, err)
	require.Equal(t, "{\n  \"b\": 2,\n  \"a\": [\n    1,\n    {\n      \"c\": true\n    }\n  ]\n}", got.Content)
	var decoded, original any
	require.NoError(t, json.Unmarshal([]byte(got.Content), &decoded))
	require.NoError(t, json.Unmarshal([]byte(`{"b":2,"a":[1,{"c":true}]}`), &original))
	require.Equal(t, original, decoded)

	txt, err := loader.GetContent("list")
	require.NoError(t, err)
	require.Equal(t, "one\ntwo", txt.Content)

	res, err = loader.Reload(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, res.NewlyRegistered)
}

func TestResourceLoaderInvalidJSONFallsBackToRaw(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", "{not json")
	loader := NewResourceLoader(NewResourceRegistry(), dir, nil, nil)
	_, err := loader.Reload(context.Background())
	require.NoError(t, err)

	got, err := loader.GetContent("broken")
	require.NoError(t, err)
	require.Equal(t, "{not json", got.Content)
	require.Equal(t, domain.ContentJSON, got.Type)
}

func TestResourceLoaderGetContentNotFound(t *testing.T) {
	loader := NewResourceLoader(NewResourceRegistry(), t.TempDir(), nil, nil)
	_, err := loader.GetContent("missing")
	require.ErrorIs(t, err, domain.ErrResourceNotFound)
	require.True(t, domain.IsNotFound(err))
}

func TestResourceLoaderUpdatesModifiedAt(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "v1")
	loader := NewResourceLoader(NewResourceRegistry(), dir, nil, nil)
	_, err := loader.Reload(context.Background())
	require.NoError(t, err)
	before, err := loader.Registry().Get("notes")
	require.NoError(t, err)

	writeFile(t, dir, "notes.txt", "v2")
	touch(t, path, 2*time.Second)
	res, err := loader.Reload(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, res.NewlyRegistered)

	after, err := loader.Registry().Get("notes")
	require.NoError(t, err)
	require.True(t, after.ModifiedAt.After(before.ModifiedAt))

	got, err := loader.GetContent("notes")
	require.NoError(t, err)
	require.Equal(t, "v2", got.Content)
}

func TestResourceLoaderMissingDirectory(t *testing.T) {
	loader := NewResourceLoader(NewResourceRegistry(), t.TempDir()+"/none", nil, nil)
	res, err := loader.Reload(context.Background())
	require.NoError(t, err)
	require.True(t, res.DirMissing)
	require.Zero(t, res.Total)
}
