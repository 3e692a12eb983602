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

// Package prompt assembles the completion payload from conversation history,
// the current query and the ranked retrieval results. History is never
// truncated here; length budgeting is left to the completion endpoint.
package prompt

import (
	"fmt"
	"strings"

	"github.com/your-org/turkmen-assistant/internal/llm"
	"github.com/your-org/turkmen-assistant/internal/ranking"
	"github.com/your-org/turkmen-assistant/internal/store"
)

// BuildSystemPrompt creates the fixed assistant policy prompt
func BuildSystemPrompt() string {
	return "🤖 You are an assistant that always answers in Turkmen. Rules:\n" +
		"1️⃣ Always answer in Turkmen.\n" +
		"2️⃣ If relevant retrieved information exists, use it 📚.\n" +
		"3️⃣ If no relevant info is found, answer using your general knowledge 💡.\n" +
		"4️⃣ Do not include greetings 🙅‍♂️.\n" +
		"5️⃣ Use Markdown format 📝.\n" +
		"6️⃣ If you truly cannot answer, reply with: " +
		"'⚠️ Bu barada maglumatym ýok. Başga size nädip kömek edip bilerin?'\n"
}

// BuildUserMessage serializes the chronological history, the current query
// and, when present, a labeled block with every ranked segment
func BuildUserMessage(history []store.Turn, query string, ranked []ranking.RankedSegment) string {
	var sb strings.Builder

	for _, turn := range history {
		role := "🤖 Assistant"
		if turn.IsUser {
			role = "👤 User"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", role, turn.Text))
	}

	sb.WriteString(fmt.Sprintf("\n👤 User soragy: %s", query))

	if len(ranked) > 0 {
		lines := make([]string, len(ranked))
		for i, seg := range ranked {
			lines[i] = fmt.Sprintf("%s: %s", seg.Title, seg.Content)
		}
		sb.WriteString(fmt.Sprintf("\n\n📌 Relevant info:\n%s", strings.Join(lines, "\n")))
	}

	return sb.String()
}

// Assemble builds the full message sequence for a completion call
func Assemble(history []store.Turn, query string, ranked []ranking.RankedSegment) []llm.Message {
	return []llm.Message{
		{Role: "system", Content: BuildSystemPrompt()},
		{Role: "user", Content: BuildUserMessage(history, query, ranked)},
	}
}
