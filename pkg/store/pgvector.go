package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/xhad/recall/internal/models"
)

// PGVectorConfig configures the Postgres-backed store.
type PGVectorConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
}

// PGVectorStore is a durable VectorStore backed by Postgres with the
// pgvector extension. Unlike the in-memory store the dimension is fixed up
// front because the column type requires it.
type PGVectorStore struct {
	config PGVectorConfig
	pool   *pgxpool.Pool
}

func NewPGVectorStore(ctx context.Context, config PGVectorConfig) (*PGVectorStore, error) {
	if config.TableName == "" {
		config.TableName = "documents"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 1536
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PGVectorStore{config: config, pool: pool}
	if err := s.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PGVectorStore) initialize(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	// seq keeps insertion order so equal-distance rows rank oldest first.
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			seq BIGSERIAL,
			content TEXT NOT NULL,
			metadata JSONB,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.config.TableName, s.config.VectorDim)
	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		s.config.TableName, s.config.TableName)
	if _, err := s.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

func (s *PGVectorStore) Add(ctx context.Context, docs []models.StoredDocument) ([]models.StoredDocument, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	for i, doc := range docs {
		if len(doc.Vector) != s.config.VectorDim {
			return nil, fmt.Errorf("%w: document %d has dimension %d, store has %d",
				ErrDimensionMismatch, i, len(doc.Vector), s.config.VectorDim)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, content, metadata, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.config.TableName)

	added := make([]models.StoredDocument, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now()
		}
		_, err = tx.Exec(ctx, stmt,
			doc.ID,
			doc.Content,
			doc.Metadata,
			pgvector.NewVector(doc.Vector),
			doc.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert document: %w", err)
		}
		added[i] = doc
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return added, nil
}

func (s *PGVectorStore) Search(ctx context.Context, vector []float32, k int) ([]models.ScoredResult, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(vector) != s.config.VectorDim {
		return nil, fmt.Errorf("%w: query has dimension %d, store has %d",
			ErrDimensionMismatch, len(vector), s.config.VectorDim)
	}

	// <=> is cosine distance; similarity = 1 - distance.
	query := fmt.Sprintf(`
		SELECT id, content, metadata, embedding, created_at,
		       1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1, seq
		LIMIT $2`,
		s.config.TableName)

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var results []models.ScoredResult
	for rows.Next() {
		var doc models.StoredDocument
		var embedding pgvector.Vector
		var score float64
		err := rows.Scan(&doc.ID, &doc.Content, &doc.Metadata, &embedding, &doc.CreatedAt, &score)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		doc.Vector = embedding.Slice()
		results = append(results, models.ScoredResult{Document: doc, Score: float32(score)})
	}
	return results, rows.Err()
}

func (s *PGVectorStore) Remove(ctx context.Context, id string) error {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.config.TableName)
	if _, err := s.pool.Exec(ctx, stmt, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *PGVectorStore) Clear(ctx context.Context) error {
	stmt := fmt.Sprintf("DELETE FROM %s", s.config.TableName)
	if _, err := s.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}
	return nil
}

func (s *PGVectorStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
