// Package vectorstore implements the two retrieval collections the pipeline
// depends on: "prototypes" (one seed document per target category) and
// "golden_standards" (many labeled exemplars). Backed by Postgres + pgvector
// with an HNSW index, grounded on go-inference-service/main.go's table/index
// pattern; ranking and reasoning-string shape grounded on
// go-enhanced-rag-service/vector_store.go.
package vectorstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"legalrisk/internal/embeddings"
)

// RiskLevel is the golden_standards label.
type RiskLevel string

const (
	RiskSafe  RiskLevel = "safe"
	RiskRisky RiskLevel = "risky"
)

// Match is one retrieval result.
type Match struct {
	ID         string
	Text       string
	Category   string
	RiskLevel  RiskLevel
	Similarity float64
}

// protoSeeds are the verbatim prototype seed documents for the three target
// categories, ported from original_source's rag/vector_store.py
// _create_prototype_collection.
var protoSeeds = map[string]string{
	"Unilateral Termination": "This clause allows one party to terminate the agreement at its sole discretion, without cause, and often without advance notice to the other party, creating a one-sided exit right.",
	"Unlimited Liability":    "This clause exposes a party to liability for damages, losses, or claims with no cap, ceiling, or limitation on the total amount that may be owed, regardless of fault or foreseeability.",
	"Non-Compete":            "This clause restricts a party's ability to engage in competing business activities, work for competitors, or solicit clients/employees, typically for a defined duration and geographic scope after the relationship ends.",
}

// Store is the pgvector-backed vector store.
type Store struct {
	pool     *pgxpool.Pool
	embedder *embeddings.Service
	logger   *zap.Logger

	categories []string
}

// New wires a Store to an existing connection pool and embedding service.
func New(pool *pgxpool.Pool, embedder *embeddings.Service, categories []string, logger *zap.Logger) *Store {
	return &Store{pool: pool, embedder: embedder, categories: categories, logger: logger}
}

// EnsureSchema creates the two collections' tables and an HNSW index on
// embedding if they do not already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS prototypes (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			text TEXT NOT NULL,
			embedding vector(384) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS golden_standards (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			text TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'seed',
			embedding vector(384) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS golden_standards_embedding_hnsw
			ON golden_standards USING hnsw (embedding vector_cosine_ops)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("vectorstore schema: %w", err)
		}
	}
	return nil
}

// EnsureSeeded auto-initializes the prototypes collection with one seed
// document per target category when empty, per spec.md §4.7.
func (s *Store) EnsureSeeded(ctx context.Context) error {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM prototypes`).Scan(&count); err != nil {
		return fmt.Errorf("vectorstore count prototypes: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, category := range s.categories {
		text, ok := protoSeeds[category]
		if !ok {
			continue
		}
		vec, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("vectorstore seed embed %q: %w", category, err)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO prototypes (id, category, text, embedding) VALUES ($1,$2,$3,$4)`,
			uuid.NewString(), category, text, pgvector.NewVector(vec))
		if err != nil {
			return fmt.Errorf("vectorstore insert prototype %q: %w", category, err)
		}
	}
	return nil
}

// QueryPrototypes returns the top-k nearest prototypes to text.
// similarity = 1 - cosine_distance.
func (s *Store) QueryPrototypes(ctx context.Context, text string, k int) ([]Match, error) {
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorstore embed query: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, category, text, embedding <=> $1 AS distance
		 FROM prototypes ORDER BY distance ASC LIMIT $2`,
		pgvector.NewVector(vec), k)
	if err != nil {
		return nil, fmt.Errorf("vectorstore query prototypes: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		var distance float64
		if err := rows.Scan(&m.ID, &m.Category, &m.Text, &distance); err != nil {
			return nil, err
		}
		m.Similarity = 1 - distance
		out = append(out, m)
	}
	return out, rows.Err()
}

// QueryCategory returns the top-k golden_standards entries matching
// category and, when non-empty, riskLevel.
func (s *Store) QueryCategory(ctx context.Context, text, category string, riskLevel RiskLevel, k int) ([]Match, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorstore embed query: %w", err)
	}

	query := `SELECT id, category, risk_level, text, embedding <=> $1 AS distance
		FROM golden_standards WHERE category = $2`
	args := []any{pgvector.NewVector(vec), category}
	if riskLevel != "" {
		query += ` AND risk_level = $3 ORDER BY distance ASC LIMIT $4`
		args = append(args, string(riskLevel), k)
	} else {
		query += ` ORDER BY distance ASC LIMIT $3`
		args = append(args, k)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vectorstore query category: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		var level string
		var distance float64
		if err := rows.Scan(&m.ID, &m.Category, &level, &m.Text, &distance); err != nil {
			return nil, err
		}
		m.RiskLevel = RiskLevel(level)
		m.Similarity = 1 - distance
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	return out, rows.Err()
}

// AddVerifiedClause appends a new labeled exemplar to golden_standards.
// Outside the online analysis path per spec.md §4.8/§9.
func (s *Store) AddVerifiedClause(ctx context.Context, text, category string, riskLevel RiskLevel) (string, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("vectorstore embed verified clause: %w", err)
	}
	id := uuid.NewString()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO golden_standards (id, category, risk_level, text, source, embedding)
		 VALUES ($1,$2,$3,$4,'verified',$5)`,
		id, category, string(riskLevel), text, pgvector.NewVector(vec))
	if err != nil {
		return "", fmt.Errorf("vectorstore insert verified clause: %w", err)
	}
	return id, nil
}
