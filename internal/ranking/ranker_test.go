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

package ranking

import (
	"context"
	"fmt"
	"testing"

	"github.com/your-org/turkmen-assistant/internal/store"
	"go.uber.org/zap/zaptest"
)

// fakeEmbedder returns canned vectors per text and can fail selectively
type fakeEmbedder struct {
	vectors map[string][]float32
	failOn  map[string]bool
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if f.failOn[text] {
		return nil, fmt.Errorf("embedding service unavailable")
	}
	vec, ok := f.vectors[text]
	if !ok {
		return []float32{0, 0, 0}, nil
	}
	return vec, nil
}

func newTestRanker(t *testing.T, embedder *fakeEmbedder) *Ranker {
	return NewRanker(embedder, DefaultContentWeight, DefaultTitleWeight, zaptest.NewLogger(t))
}

func TestRank_EmptyCandidates(t *testing.T) {
	ranker := newTestRanker(t, &fakeEmbedder{vectors: map[string][]float32{}})

	ranked, err := ranker.Rank(context.Background(), "query", nil, 3, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 0 {
		t.Errorf("expected empty result, got %d", len(ranked))
	}
}

func TestRank_TopKBound(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"query": {1, 0, 0},
	}}

	var candidates []store.Segment
	for i := 0; i < 10; i++ {
		candidates = append(candidates, store.Segment{
			Title:     fmt.Sprintf("doc %d", i),
			Content:   "content",
			Embedding: []float32{1, 0, 0},
		})
	}

	ranker := newTestRanker(t, embedder)
	ranked, err := ranker.Rank(context.Background(), "query", candidates, 3, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 3 {
		t.Errorf("expected 3 results, got %d", len(ranked))
	}
}

func TestRank_SortedDescendingWithStableTies(t *testing.T) {
	// Titles all embed to the zero vector so only content similarity varies
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"query": {1, 0},
	}}

	candidates := []store.Segment{
		{Title: "weak", Content: "c", Embedding: []float32{1, 4}},
		{Title: "tie first", Content: "c", Embedding: []float32{1, 0}},
		{Title: "tie second", Content: "c", Embedding: []float32{2, 0}},
	}

	ranker := newTestRanker(t, embedder)
	ranked, err := ranker.Rank(context.Background(), "query", candidates, 5, 0.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("expected 3 results, got %d", len(ranked))
	}

	for i := 1; i < len(ranked); i++ {
		if ranked[i].Similarity > ranked[i-1].Similarity {
			t.Errorf("results not sorted descending at index %d", i)
		}
	}

	// Equal scores keep candidate order
	if ranked[0].Title != "tie first" || ranked[1].Title != "tie second" {
		t.Errorf("expected stable tie ordering, got %q then %q", ranked[0].Title, ranked[1].Title)
	}
}

func TestRank_ThresholdFilter(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"query": {1, 0},
	}}

	candidates := []store.Segment{
		{Title: "aligned", Content: "c", Embedding: []float32{1, 0}},
		{Title: "orthogonal", Content: "c", Embedding: []float32{0, 1}},
	}

	ranker := newTestRanker(t, embedder)
	ranked, err := ranker.Rank(context.Background(), "query", candidates, 5, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ranked) != 1 {
		t.Fatalf("expected 1 result above threshold, got %d", len(ranked))
	}
	if ranked[0].Title != "aligned" {
		t.Errorf("expected the aligned candidate, got %q", ranked[0].Title)
	}
	for _, seg := range ranked {
		if seg.Similarity < 0.5 {
			t.Errorf("result below threshold: %v", seg.Similarity)
		}
	}
}

func TestRank_SkipsFailingCandidate(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors: map[string][]float32{
			"query": {1, 0},
		},
		failOn: map[string]bool{"broken": true},
	}

	candidates := []store.Segment{
		{Title: "broken", Content: "c", Embedding: []float32{1, 0}},
		{Title: "healthy", Content: "c", Embedding: []float32{1, 0}},
	}

	ranker := newTestRanker(t, embedder)
	ranked, err := ranker.Rank(context.Background(), "query", candidates, 5, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ranked) != 1 || ranked[0].Title != "healthy" {
		t.Errorf("expected only the healthy candidate, got %+v", ranked)
	}
}

func TestRank_QueryEmbeddingFailure(t *testing.T) {
	embedder := &fakeEmbedder{failOn: map[string]bool{"query": true}}

	candidates := []store.Segment{
		{Title: "doc", Content: "c", Embedding: []float32{1, 0}},
	}

	ranker := newTestRanker(t, embedder)
	if _, err := ranker.Rank(context.Background(), "query", candidates, 3, 0.3); err == nil {
		t.Errorf("expected error when the query cannot be embedded")
	}
}

func TestRank_InvalidTopK(t *testing.T) {
	ranker := newTestRanker(t, &fakeEmbedder{})
	if _, err := ranker.Rank(context.Background(), "query", nil, 0, 0.3); err == nil {
		t.Errorf("expected error for top_k < 1")
	}
}

func TestRank_CombinedWeighting(t *testing.T) {
	// Content disagrees with the query but the title matches perfectly:
	// combined score must be the 0.3-weighted title similarity
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"query":       {1, 0},
		"title match": {1, 0},
	}}

	candidates := []store.Segment{
		{Title: "title match", Content: "c", Embedding: []float32{0, 1}},
	}

	ranker := newTestRanker(t, embedder)
	ranked, err := ranker.Rank(context.Background(), "query", candidates, 1, 0.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("expected 1 result, got %d", len(ranked))
	}

	if diff := ranked[0].Similarity - 0.3; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected combined similarity 0.3, got %v", ranked[0].Similarity)
	}
}
