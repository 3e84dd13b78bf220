package embedder

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/xhad/recall/internal/types"
)

const defaultEmbeddingModel = "text-embedding-ada-002"

// OpenAIConfig configures the network-backed embedder. Credentials are not
// part of the config; they are read from Settings at call time.
type OpenAIConfig struct {
	Settings types.Settings
	Model    string
	// RateLimit caps outbound embedding requests per second. Zero means
	// the default of 2 req/s.
	RateLimit float64
}

// OpenAIEmbedder embeds text through an OpenAI-compatible backend via
// langchaingo. The backing client is built lazily on first use and rebuilt
// whenever the credential or base URL in Settings changes.
type OpenAIEmbedder struct {
	config  OpenAIConfig
	limiter *rate.Limiter

	mu        sync.Mutex
	client    *openai.LLM
	clientKey string
	clientURL string
	dimension int
}

func NewOpenAIEmbedder(config OpenAIConfig) *OpenAIEmbedder {
	if config.Model == "" {
		config.Model = defaultEmbeddingModel
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 2.0
	}
	return &OpenAIEmbedder{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

// Dimension reports the vector width observed on the first successful call,
// or 0 when nothing has been embedded yet.
func (e *OpenAIEmbedder) Dimension() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimension
}

func (e *OpenAIEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	client, err := e.getClient()
	if err != nil {
		return nil, err
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	vectors, err := client.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", ErrProvider, len(vectors), len(texts))
	}
	for i, vec := range vectors {
		if err := validateVector(vec); err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
	}

	e.mu.Lock()
	if e.dimension == 0 && len(vectors) > 0 {
		e.dimension = len(vectors[0])
	}
	e.mu.Unlock()

	return vectors, nil
}

// getClient returns the backing client, rebuilding it if the credential or
// base URL changed since the last call. Missing credential is a
// configuration error at first use, not at startup.
func (e *OpenAIEmbedder) getClient() (*openai.LLM, error) {
	key, _ := e.config.Settings.Get(types.SettingAPIKey)
	if key == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrConfiguration, types.SettingAPIKey)
	}
	baseURL, _ := e.config.Settings.Get(types.SettingBaseURL)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil && e.clientKey == key && e.clientURL == baseURL {
		return e.client, nil
	}

	opts := []openai.Option{
		openai.WithToken(key),
		openai.WithEmbeddingModel(e.config.Model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	e.client = client
	e.clientKey = key
	e.clientURL = baseURL
	e.dimension = 0
	return client, nil
}

func validateVector(vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: backend returned an empty vector", ErrProvider)
	}
	for _, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: backend returned a non-finite component", ErrProvider)
		}
	}
	return nil
}
