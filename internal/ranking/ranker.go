// Copyright 2025 Turkmen Assistant Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ranking scores stored segments against a query by blending content
// and title cosine similarity, then filters, sorts and truncates the result.
package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/your-org/turkmen-assistant/internal/store"
	"go.uber.org/zap"
)

const (
	// DefaultContentWeight is the weight of the content-vector similarity
	DefaultContentWeight = 0.7
	// DefaultTitleWeight is the weight of the title-vector similarity
	DefaultTitleWeight = 0.3
)

// Embedder maps text to a fixed-dimension vector
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// RankedSegment is one scored retrieval result, ephemeral per query
type RankedSegment struct {
	Title      string
	Content    string
	Similarity float64
}

// Ranker computes combined similarity scores over a candidate set
type Ranker struct {
	embedder      Embedder
	contentWeight float64
	titleWeight   float64
	logger        *zap.Logger
}

// NewRanker creates a ranker. Zero weights fall back to the 0.7/0.3 defaults.
func NewRanker(embedder Embedder, contentWeight, titleWeight float64, logger *zap.Logger) *Ranker {
	if contentWeight <= 0 && titleWeight <= 0 {
		contentWeight = DefaultContentWeight
		titleWeight = DefaultTitleWeight
	}
	return &Ranker{
		embedder:      embedder,
		contentWeight: contentWeight,
		titleWeight:   titleWeight,
		logger:        logger,
	}
}

// Rank encodes the query once, scores every candidate with
// contentWeight*cosine(query, content) + titleWeight*cosine(query, title),
// drops candidates below threshold and returns at most topK results sorted
// by descending score. Ties keep the original candidate order. A failure on
// one candidate is logged and skips only that candidate.
//
// Title vectors are recomputed per query; contents carry precomputed vectors.
func (r *Ranker) Rank(ctx context.Context, query string, candidates []store.Segment, topK int, threshold float64) ([]RankedSegment, error) {
	if topK < 1 {
		return nil, fmt.Errorf("top_k must be at least 1, got %d", topK)
	}

	if len(candidates) == 0 {
		r.logger.Warn("No document segments available for ranking")
		return nil, nil
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	ranked := make([]RankedSegment, 0, len(candidates))
	for _, cand := range candidates {
		titleVec, err := r.embedder.EmbedQuery(ctx, cand.Title)
		if err != nil {
			r.logger.Error("Failed to embed candidate title, skipping",
				zap.String("title", cand.Title),
				zap.Error(err),
			)
			continue
		}

		contentSim := Cosine(queryVec, cand.Embedding)
		titleSim := Cosine(queryVec, titleVec)
		combined := r.contentWeight*contentSim + r.titleWeight*titleSim

		if combined >= threshold {
			ranked = append(ranked, RankedSegment{
				Title:      cand.Title,
				Content:    cand.Content,
				Similarity: combined,
			})
		}
	}

	if len(ranked) == 0 {
		r.logger.Info("No segments above similarity threshold",
			zap.Float64("threshold", threshold),
			zap.Int("candidates", len(candidates)),
		)
		return nil, nil
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	return ranked, nil
}
