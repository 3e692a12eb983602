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

// Package answer turns a completion result and the ranked retrieval results
// into the final answer text, synthesizing a direct answer from segments when
// the model yields nothing usable.
package answer

import (
	"fmt"
	"strings"

	"github.com/your-org/turkmen-assistant/internal/llm"
	"github.com/your-org/turkmen-assistant/internal/ranking"
)

const (
	// DefaultNoInfoResponse is returned when neither the model nor the
	// retrieval produced anything
	DefaultNoInfoResponse = "❌ Maglumat tapylmady."
	// GeneralKnowledgeNotice is returned when the completion failed and no
	// segments were retrieved
	GeneralKnowledgeNotice = "🟢 Bu umumy maglumatlara esaslanyp berilen jogap 💡."
)

// Compose selects the answer text. Usable model output wins; otherwise the
// ranked segments are rendered directly; otherwise a fixed notice.
func Compose(result llm.CompletionResult, ranked []ranking.RankedSegment) string {
	if text := strings.TrimSpace(result.Text); result.OK() && text != "" {
		return text
	}

	if len(ranked) > 0 {
		return ComposeFromSegments(ranked)
	}

	if result.Failed {
		return GeneralKnowledgeNotice
	}

	return DefaultNoInfoResponse
}

// ComposeFromSegments renders ranked segments as a direct answer: an indexed
// header, a one-decimal confidence line and the length-bounded content per
// segment, divided by a visual separator.
func ComposeFromSegments(ranked []ranking.RankedSegment) string {
	if len(ranked) == 0 {
		return DefaultNoInfoResponse
	}

	var sb strings.Builder
	sb.WriteString("📚 **Tapylan maglumatlar:**\n\n")
	for i, seg := range ranked {
		confidence := seg.Similarity * 100
		sb.WriteString(fmt.Sprintf("### 📌 %d. %s\n", i+1, seg.Title))
		sb.WriteString(fmt.Sprintf("🔎 Benzetme derejesi: **%.1f%%**\n\n", confidence))
		sb.WriteString(SmartTruncate(seg.Content, ContentTruncationLimit))
		sb.WriteString("\n\n")
		if i < len(ranked)-1 {
			sb.WriteString("--- ✨ ---\n\n")
		}
	}
	return sb.String()
}
