// Package embeddings implements the pipeline's deterministic
// sentence-embedding function: a fixed-dimension MiniLM-class model served
// over HTTP, with an in-process cache and exponential-backoff retry.
// Grounded on go-enhanced-rag-service/embedding_service.go.
package embeddings

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Dimension is fixed for the 384-dim MiniLM-class model spec.md requires.
const Dimension = 384

// Service embeds text via an HTTP embedding backend (an Ollama-compatible
// /api/embeddings endpoint, matching legal-gateway/worker.go's convention),
// caching results by normalized text.
type Service struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.RWMutex
	cache map[string][]float32

	stats Stats
}

// Stats mirrors the teacher's tracked counters for embedding_service.go.
type Stats struct {
	Requests  int64
	CacheHits int64
	Errors    int64
}

// NewService builds an embedding client for a single backend model name;
// every request goes to that model, and there is no fallback to another
// model when a request fails.
func NewService(baseURL string, model string, logger *zap.Logger) *Service {
	return &Service{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		cache:      make(map[string][]float32),
	}
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(normalize(text)))
	return hex.EncodeToString(sum[:])
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns the vector for a single piece of text, serving from cache
// when available and retrying any failed request (up to 4 attempts in all)
// with exponential backoff (promoted from the teacher's hand-rolled sleep
// loop to cenkalti/backoff, already present in the teacher's dependency
// graph).
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)

	s.mu.RLock()
	v, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		s.mu.Lock()
		s.stats.CacheHits++
		s.mu.Unlock()
		return v, nil
	}

	op := func() ([]float32, error) {
		vec, err := s.request(ctx, text)
		if err != nil {
			return nil, err
		}
		return vec, nil
	}

	vec, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(4),
	)
	if err != nil {
		s.mu.Lock()
		s.stats.Errors++
		s.mu.Unlock()
		return nil, fmt.Errorf("embed: %w", err)
	}

	s.mu.Lock()
	s.cache[key] = vec
	s.stats.Requests++
	s.mu.Unlock()
	return vec, nil
}

func (s *Service) request(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: s.model, Prompt: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding backend status %d: %s", resp.StatusCode, string(b))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Embedding, nil
}

// EmbedBatch embeds many texts in input order with no progress reporting.
// It is not a single batched backend request: each text goes through Embed
// (one request per uncached text), and the first failure aborts the batch.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("embed batch item %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// WarmCache pre-populates the cache for a fixed set of texts (mirrors
// embedding_service.go's WarmCache). Nothing in this module calls it at
// startup.
func (s *Service) WarmCache(ctx context.Context, texts []string) error {
	_, err := s.EmbedBatch(ctx, texts)
	return err
}

// Stats returns a snapshot of usage counters.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// CosineSimilarity computes cosine similarity between two equal-length
// vectors. Returns 0 for mismatched lengths or zero vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
