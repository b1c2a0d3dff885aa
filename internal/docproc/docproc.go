// Package docproc implements S1, the Document Processor: bytes in, cleaned
// text + metadata + definitions + ordered chunks out. Grounded on
// original_source/.../document_processor/__init__.py for stage ordering and
// document-chunker/main.go for the Go service texture (zap logging,
// processing-time accounting).
package docproc

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"legalrisk/internal/config"
	"legalrisk/internal/embeddings"
	"legalrisk/internal/model"
	"legalrisk/internal/textutil"
)

// ProcessedDocument is S1's full output.
type ProcessedDocument struct {
	Metadata              model.DocumentMetadata
	FullText              string
	Definitions           []model.Definition
	Chunks                []model.SemanticChunk
	TotalChunks           int
	AvgChunkLength        float64
	ProcessingTimeSeconds float64
}

// Processor wires the extraction, cleaning, enrichment and chunking stages.
type Processor struct {
	embedder *embeddings.Service
	cfg      config.ChunkingConfig
	logger   *zap.Logger
}

// New builds a Document Processor.
func New(embedder *embeddings.Service, cfg config.ChunkingConfig, logger *zap.Logger) *Processor {
	return &Processor{embedder: embedder, cfg: cfg, logger: logger}
}

// Process runs the full S1 pipeline for one PDF at path.
func (p *Processor) Process(ctx context.Context, path string) (ProcessedDocument, error) {
	start := time.Now()

	info, err := os.Stat(path)
	if err != nil {
		return ProcessedDocument{}, fmt.Errorf("document processor stat: %w", err)
	}

	extracted, err := Extract(path, p.logger)
	if err != nil {
		return ProcessedDocument{}, fmt.Errorf("document processor extract: %w", err)
	}

	fullText := textutil.Clean(extracted.Text)

	meta := model.DocumentMetadata{
		Filename:    info.Name(),
		ByteSize:    info.Size(),
		PageCount:   extracted.PageCount,
		ExtractedAt: time.Now().UTC(),
	}
	if !extracted.UsedOCR {
		ExtractMetadata(fullText, &meta)
	}

	definitions := ExtractDefinitions(fullText)

	chunks, err := Chunk(ctx, fullText, p.embedder, p.cfg)
	if err != nil {
		return ProcessedDocument{}, fmt.Errorf("document processor chunk: %w", err)
	}

	var totalLen int
	for _, c := range chunks {
		totalLen += len(c.Text)
	}
	avg := 0.0
	if len(chunks) > 0 {
		avg = float64(totalLen) / float64(len(chunks))
	}

	if p.logger != nil {
		p.logger.Info("document processed",
			zap.String("filename", meta.Filename),
			zap.Int("chunks", len(chunks)),
			zap.Bool("used_ocr", extracted.UsedOCR))
	}

	return ProcessedDocument{
		Metadata:              meta,
		FullText:              fullText,
		Definitions:           definitions,
		Chunks:                chunks,
		TotalChunks:           len(chunks),
		AvgChunkLength:        avg,
		ProcessingTimeSeconds: time.Since(start).Seconds(),
	}, nil
}
