package embedder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xhad/recall/internal/types"
	"github.com/xhad/recall/pkg/embedder"
)

type stubSettings map[string]string

func (s stubSettings) Get(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

func (s stubSettings) Set(key, value string) { s[key] = value }

func TestOpenAIEmbedder_MissingKeyIsConfigurationError(t *testing.T) {
	e := embedder.NewOpenAIEmbedder(embedder.OpenAIConfig{Settings: stubSettings{}})

	_, err := e.EmbedOne(context.Background(), "anything")
	assert.ErrorIs(t, err, embedder.ErrConfiguration)

	_, err = e.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, embedder.ErrConfiguration)
}

func TestOpenAIEmbedder_DimensionUnknownBeforeFirstCall(t *testing.T) {
	settings := stubSettings{types.SettingAPIKey: "sk-test"}
	e := embedder.NewOpenAIEmbedder(embedder.OpenAIConfig{Settings: settings})
	assert.Zero(t, e.Dimension())
}
