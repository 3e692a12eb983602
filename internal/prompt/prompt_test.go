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

package prompt

import (
	"strings"
	"testing"

	"github.com/your-org/turkmen-assistant/internal/ranking"
	"github.com/your-org/turkmen-assistant/internal/store"
)

func TestBuildSystemPrompt_Policy(t *testing.T) {
	got := BuildSystemPrompt()

	for _, want := range []string{
		"always answers in Turkmen",
		"general knowledge 💡",
		"⚠️ Bu barada maglumatym ýok. Başga size nädip kömek edip bilerin?",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected system prompt to contain %q", want)
		}
	}
}

func TestBuildUserMessage_HistoryOrderAndRoles(t *testing.T) {
	history := []store.Turn{
		{IsUser: true, Text: "birinji sorag"},
		{IsUser: false, Text: "birinji jogap"},
		{IsUser: true, Text: "ikinji sorag"},
	}

	got := BuildUserMessage(history, "täze sorag", nil)

	userIdx := strings.Index(got, "👤 User: birinji sorag")
	assistantIdx := strings.Index(got, "🤖 Assistant: birinji jogap")
	secondIdx := strings.Index(got, "👤 User: ikinji sorag")
	if userIdx < 0 || assistantIdx < 0 || secondIdx < 0 {
		t.Fatalf("expected all turns rendered, got:\n%s", got)
	}
	if !(userIdx < assistantIdx && assistantIdx < secondIdx) {
		t.Errorf("expected chronological turn order, got:\n%s", got)
	}
	if !strings.Contains(got, "\n👤 User soragy: täze sorag") {
		t.Errorf("expected the current query line, got:\n%s", got)
	}
}

func TestBuildUserMessage_NoContextBlockWithoutSegments(t *testing.T) {
	got := BuildUserMessage(nil, "sorag", nil)

	if strings.Contains(got, "📌 Relevant info:") {
		t.Errorf("expected no context block without segments, got:\n%s", got)
	}
}

func TestBuildUserMessage_ContextBlock(t *testing.T) {
	ranked := []ranking.RankedSegment{
		{Title: "Madda 1", Content: "birinji mazmun", Similarity: 0.9},
		{Title: "Madda 2", Content: "ikinji mazmun", Similarity: 0.7},
	}

	got := BuildUserMessage(nil, "sorag", ranked)

	if !strings.Contains(got, "📌 Relevant info:\nMadda 1: birinji mazmun\nMadda 2: ikinji mazmun") {
		t.Errorf("expected every segment as a title: content line, got:\n%s", got)
	}
}

func TestAssemble_MessageSequence(t *testing.T) {
	messages := Assemble(nil, "sorag", nil)

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != "system" || messages[1].Role != "user" {
		t.Errorf("expected system then user roles, got %q and %q", messages[0].Role, messages[1].Role)
	}
	if messages[0].Content != BuildSystemPrompt() {
		t.Errorf("expected the policy prompt as the system message")
	}
	if !strings.Contains(messages[1].Content, "👤 User soragy: sorag") {
		t.Errorf("expected the query inside the user message")
	}
}
