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
	"unicode"
)

const (
	// ContentTruncationLimit is the default bound for content surfaced to
	// clients
	ContentTruncationLimit = 2500
	// MinTruncationLimit is the floor below which truncation hard-cuts
	MinTruncationLimit = 500
	// Ellipsis marks a non-sentence-boundary cut
	Ellipsis = "..."
	// sentenceSearchWindow extends the sentence-boundary search past the limit
	sentenceSearchWindow = 200
)

// SmartTruncate bounds text to maxLength runes, preferring a sentence
// boundary within maxLength (searched up to maxLength+200), then the last
// whole word, then a hard cut. Sentence-boundary cuts carry no ellipsis.
func SmartTruncate(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	if maxLength < MinTruncationLimit {
		return string(runes[:maxLength]) + Ellipsis
	}

	window := runes
	if len(window) > maxLength+sentenceSearchWindow {
		window = window[:maxLength+sentenceSearchWindow]
	}

	if end := lastSentenceEnd(window); end > 0 && end <= maxLength {
		return strings.TrimSpace(string(window[:end]))
	}

	// Drop trailing words until the ellipsis fits within maxLength, so the
	// result never grows past the limit and re-truncation leaves it alone
	words := strings.Fields(string(runes[:maxLength]))
	for len(words) > 1 {
		words = words[:len(words)-1]
		joined := strings.Join(words, " ")
		if len([]rune(joined))+len(Ellipsis) <= maxLength {
			return joined + Ellipsis
		}
	}

	return string(runes[:maxLength]) + Ellipsis
}

// lastSentenceEnd returns the position just past the final sentence-ending
// punctuation plus its trailing whitespace run, or -1 if none exists
func lastSentenceEnd(runes []rune) int {
	end := -1
	for i := 0; i < len(runes)-1; i++ {
		if !isSentenceEnd(runes[i]) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		end = j
		i = j - 1
	}
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
