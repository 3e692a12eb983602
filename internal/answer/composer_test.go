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

package answer

import (
	"strings"
	"testing"

	"github.com/your-org/turkmen-assistant/internal/llm"
	"github.com/your-org/turkmen-assistant/internal/ranking"
)

func TestCompose_UsableModelText(t *testing.T) {
	result := llm.CompletionResult{Text: "  Salgyt kanuny boýunça jogap.  "}
	ranked := []ranking.RankedSegment{{Title: "Madda 5", Content: "content", Similarity: 0.9}}

	got := Compose(result, ranked)
	if got != "Salgyt kanuny boýunça jogap." {
		t.Errorf("expected trimmed model text, got %q", got)
	}
}

func TestCompose_EmptyTextFallsBackToSegments(t *testing.T) {
	result := llm.CompletionResult{Text: "   "}
	ranked := []ranking.RankedSegment{{Title: "Madda 5", Content: "Salgyt düzgünleri.", Similarity: 0.9}}

	got := Compose(result, ranked)
	if !strings.Contains(got, "### 📌 1. Madda 5") {
		t.Errorf("expected segment header in fallback, got %q", got)
	}
	if !strings.Contains(got, "🔎 Benzetme derejesi: **90.0%**") {
		t.Errorf("expected one-decimal confidence line, got %q", got)
	}
}

func TestCompose_FailureWithSegments(t *testing.T) {
	result := llm.CompletionResult{Failed: true, Kind: llm.FailureTimeout}
	ranked := []ranking.RankedSegment{{Title: "Madda 1", Content: "content", Similarity: 0.5}}

	got := Compose(result, ranked)
	if !strings.Contains(got, "📚 **Tapylan maglumatlar:**") {
		t.Errorf("expected composed segments on completion failure, got %q", got)
	}
}

func TestCompose_FailureWithoutSegments(t *testing.T) {
	result := llm.CompletionResult{Failed: true, Kind: llm.FailureTransport}

	if got := Compose(result, nil); got != GeneralKnowledgeNotice {
		t.Errorf("expected general knowledge notice, got %q", got)
	}
}

func TestCompose_EmptyEverything(t *testing.T) {
	if got := Compose(llm.CompletionResult{}, nil); got != DefaultNoInfoResponse {
		t.Errorf("expected no-info response, got %q", got)
	}
}

func TestComposeFromSegments_Format(t *testing.T) {
	ranked := []ranking.RankedSegment{
		{Title: "Birinji madda", Content: "Birinji mazmun.", Similarity: 0.877},
		{Title: "Ikinji madda", Content: "Ikinji mazmun.", Similarity: 0.5},
	}

	got := ComposeFromSegments(ranked)

	for _, want := range []string{
		"📚 **Tapylan maglumatlar:**",
		"### 📌 1. Birinji madda",
		"🔎 Benzetme derejesi: **87.7%**",
		"### 📌 2. Ikinji madda",
		"🔎 Benzetme derejesi: **50.0%**",
		"--- ✨ ---",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}

	if strings.Count(got, "--- ✨ ---") != 1 {
		t.Errorf("expected a single divider between two segments")
	}
}

func TestComposeFromSegments_TruncatesLongContent(t *testing.T) {
	ranked := []ranking.RankedSegment{
		{Title: "Uzyn madda", Content: strings.Repeat("a", 3000), Similarity: 0.9},
	}

	got := ComposeFromSegments(ranked)
	if strings.Contains(got, strings.Repeat("a", 2600)) {
		t.Errorf("expected segment content to be truncated")
	}
	if !strings.Contains(got, Ellipsis) {
		t.Errorf("expected ellipsis after a non-sentence cut")
	}
}

func TestComposeFromSegments_Empty(t *testing.T) {
	if got := ComposeFromSegments(nil); got != DefaultNoInfoResponse {
		t.Errorf("expected no-info response for empty segments, got %q", got)
	}
}
