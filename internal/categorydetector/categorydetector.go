// Package categorydetector implements S2: three-zone retrieval-augmented
// category classification. Grounded on
// original_source/.../rag/category_detector.py.
package categorydetector

import (
	"context"
	"fmt"

	"legalrisk/internal/config"
	"legalrisk/internal/model"
	"legalrisk/internal/vectorstore"
)

// Detector classifies one chunk into a category, zone, and review need.
type Detector struct {
	store *vectorstore.Store
	zones config.ZoneConfig
}

// New builds a Category Detector.
func New(store *vectorstore.Store, zones config.ZoneConfig) *Detector {
	return &Detector{store: store, zones: zones}
}

// Detect runs S2's algorithm for one chunk.
func (d *Detector) Detect(ctx context.Context, chunk model.SemanticChunk) (model.CategoryDetection, error) {
	protos, err := d.store.QueryPrototypes(ctx, chunk.Text, 1)
	if err != nil {
		return model.CategoryDetection{}, fmt.Errorf("categorydetector query prototypes: %w", err)
	}
	if len(protos) == 0 {
		return model.CategoryDetection{
			Category:          "Unknown",
			Zone:              model.ZoneNoise,
			NeedsAgentReview:  false,
			DecisionReasoning: "reference corpus has no prototypes; cannot classify",
		}, nil
	}

	top := protos[0]
	similarity := top.Similarity

	detection := model.CategoryDetection{
		Category:              top.Category,
		Confidence:            similarity,
		SimilarityToPrototype: similarity,
	}

	switch {
	case similarity < d.zones.NoiseThreshold:
		detection.Zone = model.ZoneNoise
		detection.NeedsAgentReview = false
		detection.DecisionReasoning = fmt.Sprintf("similarity %.3f below noise threshold %.2f", similarity, d.zones.NoiseThreshold)
		return detection, nil

	case similarity >= d.zones.SafeThreshold:
		safeMatches, err := d.store.QueryCategory(ctx, chunk.Text, top.Category, vectorstore.RiskSafe, 1)
		if err != nil {
			return model.CategoryDetection{}, fmt.Errorf("categorydetector query safe exemplar: %w", err)
		}
		if len(safeMatches) > 0 && safeMatches[0].Similarity > d.zones.SafeExemplarCutoff {
			detection.Zone = model.ZoneSafe
			detection.NeedsAgentReview = false
			detection.DecisionReasoning = fmt.Sprintf(
				"high category match (%.3f) and close match to known-safe phrasing (%.3f > %.2f)",
				similarity, safeMatches[0].Similarity, d.zones.SafeExemplarCutoff)
			return detection, nil
		}
		detection.Zone = model.ZoneCourtroom
		detection.NeedsAgentReview = true
		detection.DecisionReasoning = fmt.Sprintf(
			"high category match (%.3f) but not in distribution with known-safe phrasing", similarity)

	default:
		detection.Zone = model.ZoneCourtroom
		detection.NeedsAgentReview = true
		detection.DecisionReasoning = fmt.Sprintf("similarity %.3f between noise and safe thresholds", similarity)
	}

	if detection.NeedsAgentReview {
		safe, err := d.store.QueryCategory(ctx, chunk.Text, top.Category, vectorstore.RiskSafe, 3)
		if err != nil {
			return model.CategoryDetection{}, fmt.Errorf("categorydetector query safe exemplars: %w", err)
		}
		risky, err := d.store.QueryCategory(ctx, chunk.Text, top.Category, vectorstore.RiskRisky, 3)
		if err != nil {
			return model.CategoryDetection{}, fmt.Errorf("categorydetector query risky exemplars: %w", err)
		}
		for _, m := range safe {
			detection.SafeExemplars = append(detection.SafeExemplars, m.Text)
		}
		for _, m := range risky {
			detection.RiskyExemplars = append(detection.RiskyExemplars, m.Text)
		}
	}

	return detection, nil
}
