package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	switch c.LLM.Backend {
	case "openai", "demo":
	default:
		errors = append(errors, ValidationError{
			Field:   "llm.backend",
			Message: "backend must be openai or demo",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	switch c.Embedding.Provider {
	case "hash", "openai":
	default:
		errors = append(errors, ValidationError{
			Field:   "embedding.provider",
			Message: "provider must be hash or openai",
		})
	}

	switch c.Store.Type {
	case "memory":
	case "pgvector":
		if c.Store.URL == "" {
			errors = append(errors, ValidationError{
				Field:   "store.url",
				Message: "connection string is required for pgvector",
			})
		} else if _, err := url.Parse(c.Store.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "store.url",
				Message: "invalid connection string",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "store.type",
			Message: "type must be memory or pgvector",
		})
	}

	if c.Retrieval.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.chunk_size",
			Message: "chunk_size must be positive",
		})
	}
	if c.Retrieval.ChunkOverlap < 0 || c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "retrieval.chunk_overlap",
			Message: "chunk_overlap must be non-negative and smaller than chunk_size",
		})
	}
	if c.Retrieval.MinScore < -1 || c.Retrieval.MinScore > 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.min_score",
			Message: "min_score must be between -1 and 1",
		})
	}

	return errors
}
