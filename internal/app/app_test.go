package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"promptd/internal/infra/auth"
	"promptd/internal/infra/catalog"
)

func TestValidateConfigReportsLoadCycle(t *testing.T) {
	root := t.TempDir()
	promptsDir := filepath.Join(root, "prompts")
	resourcesDir := filepath.Join(root, "resources")
	configDir := filepath.Join(root, "config")
	for _, dir := range []string{promptsDir, resourcesDir, configDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	writeTestFile(t, promptsDir, "hello.md", "# Greeting\n\nSay hi.")
	writeTestFile(t, resourcesDir, "notes.json", `{"a":1}`)
	writeTestFile(t, configDir, "prompts_config.json", `{"prefixLocal":"team"}`)

	t.Setenv("PROMPTS_DIR", promptsDir)
	t.Setenv("RESOURCES_DIR", resourcesDir)
	t.Setenv("PROMPTD_CONFIG_DIR", configDir)
	t.Setenv("PROMPTD_CACHE_DIR", filepath.Join(root, "cache"))

	var out bytes.Buffer
	err := New(zap.NewNop()).ValidateConfig(context.Background(), ValidateConfig{Output: &out})
	require.NoError(t, err)

	var report ValidationReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.Equal(t, promptsDir, report.PromptsDir)
	require.Equal(t, 1, report.Prompts.Local.NewlyRegistered)
	require.Equal(t, 1, report.Resources.Resources.NewlyRegistered)
	require.Equal(t, []string{"team_hello", "resource_notes"}, report.Registered)
	require.Empty(t, report.RemoteSources)
}

func TestValidateConfigRejectsBadSettings(t *testing.T) {
	t.Setenv("AUTH_TYPE", "oauth")
	err := New(nil).ValidateConfig(context.Background(), ValidateConfig{Output: &bytes.Buffer{}})
	require.Error(t, err)
}

func TestAuthConfigFromSettings(t *testing.T) {
	settings := catalog.Settings{Auth: catalog.AuthSettings{Type: "jwt", JWTSecret: "s3cret", LeewaySeconds: 30}}
	cfg := AuthConfig(ServeConfig{DisableAuth: true}, settings)
	require.Equal(t, auth.Config{
		DisabledByCLI: true,
		Mode:          auth.ModeJWT,
		Secret:        "s3cret",
		Leeway:        30 * time.Second,
	}, cfg)
	require.False(t, auth.New(cfg, nil).Enabled())
}

func TestApplicationRejectsUnknownTransport(t *testing.T) {
	p := newTestPlane(t)
	application := NewApplication(ApplicationOptions{
		ServeConfig:  ServeConfig{Transport: "grpc"},
		Logger:       zap.NewNop(),
		ControlPlane: p.cp,
	})
	require.ErrorContains(t, application.Run(), "unsupported transport")

	require.Equal(t, TransportStdio, NewApplication(ApplicationOptions{Logger: zap.NewNop()}).cfg.Transport)
}
