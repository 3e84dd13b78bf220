// Package llm provides completion backends: a langchaingo-backed chat
// engine for OpenAI-compatible APIs and a scripted completer for offline
// demos and tests.
package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/xhad/recall/internal/types"
)

// ErrConfiguration indicates missing or invalid completion backend
// credentials, surfaced verbatim for the user to correct.
var ErrConfiguration = errors.New("chat configuration error")

// ChatConfig configures the chat engine. Credentials are read from
// Settings at call time, never at construction.
type ChatConfig struct {
	Settings    types.Settings
	Model       string
	Temperature float64
	MaxTokens   int
}

// ChatEngine streams completions from an OpenAI-compatible backend. The
// backing client is built lazily on first use and rebuilt whenever the
// credential or base URL changes.
type ChatEngine struct {
	config ChatConfig

	mu        sync.Mutex
	client    *openai.LLM
	clientKey string
	clientURL string
}

func NewChatEngine(config ChatConfig) *ChatEngine {
	if config.Model == "" {
		config.Model = "gpt-3.5-turbo"
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	return &ChatEngine{config: config}
}

// Complete streams the answer for prompt, invoking onChunk for every
// fragment in arrival order. Fragments are forwarded as received from the
// backend, never reordered or buffered.
func (ce *ChatEngine) Complete(ctx context.Context, prompt string, onChunk func(chunk string) error) error {
	client, err := ce.getClient()
	if err != nil {
		return err
	}

	_, err = llms.GenerateFromSinglePrompt(ctx, client, prompt,
		llms.WithTemperature(ce.config.Temperature),
		llms.WithMaxTokens(ce.config.MaxTokens),
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			return onChunk(string(chunk))
		}),
	)
	if err != nil {
		return fmt.Errorf("completion failed: %w", err)
	}
	return nil
}

func (ce *ChatEngine) getClient() (*openai.LLM, error) {
	key, _ := ce.config.Settings.Get(types.SettingAPIKey)
	if key == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrConfiguration, types.SettingAPIKey)
	}
	baseURL, _ := ce.config.Settings.Get(types.SettingBaseURL)

	ce.mu.Lock()
	defer ce.mu.Unlock()

	if ce.client != nil && ce.clientKey == key && ce.clientURL == baseURL {
		return ce.client, nil
	}

	opts := []openai.Option{
		openai.WithToken(key),
		openai.WithModel(ce.config.Model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	ce.client = client
	ce.clientKey = key
	ce.clientURL = baseURL
	return client, nil
}
