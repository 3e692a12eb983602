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

// Package chunker splits ingested documents into embedding-sized segments.
// Splitting is rune-aware and prefers sentence boundaries so Turkmen text is
// never cut mid-letter or mid-sentence.
package chunker

import (
	"strings"
	"unicode"
)

// DefaultChunkSize is the segment size used when ingestion enables chunking
// without an explicit size
const DefaultChunkSize = 1500

// Split cuts text into chunks of at most chunkSize runes. Each cut prefers
// the last sentence boundary inside the window, then the last whitespace,
// then a hard cut. Chunks are trimmed; empty chunks are dropped.
func Split(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= chunkSize {
		return []string{string(runes)}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= chunkSize {
			if chunk := strings.TrimSpace(string(runes)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		window := runes[:chunkSize]
		cut := lastSentenceEnd(window)
		if cut <= 0 {
			cut = lastWhitespace(window)
		}
		if cut <= 0 {
			cut = chunkSize
		}

		if chunk := strings.TrimSpace(string(runes[:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
		for len(runes) > 0 && unicode.IsSpace(runes[0]) {
			runes = runes[1:]
		}
	}

	return chunks
}

// StripMarkdown reduces markdown content to plain text for embedding: headers
// lose their prefixes and blank-line runs collapse
func StripMarkdown(content string) string {
	for strings.Contains(content, "\n\n\n") {
		content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, "#")
		if trimmed != line {
			lines[i] = strings.TrimPrefix(trimmed, " ")
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// lastSentenceEnd returns the position just past the final sentence-ending
// punctuation followed by whitespace, or -1 if none exists
func lastSentenceEnd(runes []rune) int {
	end := -1
	for i := 0; i < len(runes)-1; i++ {
		if isSentenceEnd(runes[i]) && unicode.IsSpace(runes[i+1]) {
			end = i + 1
		}
	}
	return end
}

// lastWhitespace returns the index of the final whitespace rune, or -1
func lastWhitespace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
