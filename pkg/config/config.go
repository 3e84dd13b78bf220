// Package config loads the application configuration from YAML with
// environment overrides, and holds the user-editable settings store.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		// Backend is "openai" for an OpenAI-compatible API or "demo"
		// for the offline echo backend.
		Backend     string  `yaml:"backend"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Embedding struct {
		// Provider is "hash" for the offline deterministic embedder or
		// "openai" for an OpenAI-compatible backend.
		Provider  string  `yaml:"provider"`
		Model     string  `yaml:"model"`
		RateLimit float64 `yaml:"rate_limit"`
	} `yaml:"embedding"`

	Store struct {
		// Type is "memory" or "pgvector".
		Type      string `yaml:"type"`
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
		VectorDim int    `yaml:"vector_dim"`
	} `yaml:"store"`

	Retrieval struct {
		ChunkSize    int     `yaml:"chunk_size"`
		ChunkOverlap int     `yaml:"chunk_overlap"`
		TopK         int     `yaml:"top_k"`
		MinScore     float64 `yaml:"min_score"`
	} `yaml:"retrieval"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/recall/config.yaml"),
			"/etc/recall/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Backend == "" {
		config.LLM.Backend = "openai"
	}
	if config.LLM.Model == "" {
		config.LLM.Model = "gpt-3.5-turbo"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}

	if config.Embedding.Provider == "" {
		config.Embedding.Provider = "hash"
	}
	if config.Embedding.Model == "" {
		config.Embedding.Model = "text-embedding-ada-002"
	}
	if config.Embedding.RateLimit == 0 {
		config.Embedding.RateLimit = 2.0
	}

	if config.Store.Type == "" {
		config.Store.Type = "memory"
	}
	if config.Store.TableName == "" {
		config.Store.TableName = "documents"
	}
	if config.Store.VectorDim == 0 {
		config.Store.VectorDim = 1536
	}

	if config.Retrieval.ChunkSize == 0 {
		config.Retrieval.ChunkSize = 500
	}
	if config.Retrieval.ChunkOverlap == 0 {
		config.Retrieval.ChunkOverlap = 50
	}
	if config.Retrieval.TopK == 0 {
		config.Retrieval.TopK = 4
	}
	if config.Retrieval.MinScore == 0 {
		config.Retrieval.MinScore = 0.1
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8765"
	}
}

func mergeWithEnv(config *Config) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Store.URL = dbURL
	}
	if provider := os.Getenv("RECALL_EMBEDDING_PROVIDER"); provider != "" {
		config.Embedding.Provider = provider
	}
}
