package app_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/recall/internal/app"
	"github.com/xhad/recall/pkg/config"
)

func demoConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.LLM.Backend = "demo"
	cfg.Embedding.Provider = "hash"
	cfg.Store.Type = "memory"
	return cfg
}

func TestNew_WiresDemoPipeline(t *testing.T) {
	a, err := app.New(context.Background(), demoConfig(t), config.NewSettingsStore(), nil)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Engine)
	require.NotNil(t, a.Orchestrator)
	require.NotNil(t, a.Session)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := demoConfig(t)
	cfg.Embedding.Provider = "quantum"

	_, err := app.New(context.Background(), cfg, config.NewSettingsStore(), nil)
	assert.Error(t, err)
}

func TestApp_EndToEndDemoAnswer(t *testing.T) {
	a, err := app.New(context.Background(), demoConfig(t), config.NewSettingsStore(), nil)
	require.NoError(t, err)
	defer a.Close()
	ctx := context.Background()

	_, err = a.Engine.Ingest(ctx, "The cat sat quietly on the warm mat near the window.", nil)
	require.NoError(t, err)

	msg, err := a.Session.Send(ctx, "cat", nil)
	require.NoError(t, err)
	assert.True(t, strings.Contains(msg.Content, "cat"),
		"demo answer should echo the matched passage, got %q", msg.Content)
}

func TestApp_EmptyKnowledgeBaseAnswer(t *testing.T) {
	a, err := app.New(context.Background(), demoConfig(t), config.NewSettingsStore(), nil)
	require.NoError(t, err)
	defer a.Close()

	msg, err := a.Session.Send(context.Background(), "anything at all", nil)
	require.NoError(t, err)
	assert.Contains(t, msg.Content, "don't have enough information")
}
