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

// Package normalizer applies the deterministic Turkmen output corrections:
// lexical substitution, greeting stripping, capitalization, sentence spacing,
// disclaimer removal, status markers and term annotation. The transform is
// one-way and intentionally order-sensitive.
package normalizer

import (
	"regexp"
	"strings"
	"unicode"
)

// Disclaimer is the boilerplate sentence removed from model output
const Disclaimer = "⚠️ Bu maglumat berlen maddalardan gürleşdirildi."

// DefaultMarker prefixes answers that carry no status marker yet
const DefaultMarker = "🟢 "

// StatusMarkers is the fixed alphabet of leading status symbols
var StatusMarkers = []string{"⚠️", "❌", "🟢", "📌", "🔎", "📖"}

// Correction is one ordered misspelling substitution. Substitutions are raw
// substring replacements applied in declared order, without word-boundary
// checks.
type Correction struct {
	From string
	To   string
}

// annotation is one whole-word term annotated with its trailing symbol
type annotation struct {
	term   string
	symbol string
}

var (
	greetingPattern       = regexp.MustCompile(`(?i)^S?lam\s*👋?\s*[,.]?\s*`)
	capitalizationPattern = regexp.MustCompile(`(^|\. )([a-zäöü])`)
	sentenceSpacePattern  = regexp.MustCompile(`([.!?])([A-ZÄÖÜa-zäöü])`)

	termAnnotations = []annotation{
		{"kanun", "📜"},
		{"madda", "📑"},
		{"salgyt", "💰"},
		{"maglumat", "📖"},
		{"mesele", "🤔"},
		{"dogry", "✅"},
		{"yalňyş", "❌"},
		{"karar", "🏛️"},
		{"hukuk", "⚖️"},
	}
)

// DefaultCorrections returns the built-in misspelling table
func DefaultCorrections() []Correction {
	return []Correction{
		{"maglumt", "maglumat"},
		{"magluat", "maglumat"},
		{"yalnys", "yalňyş"},
		{"hukok", "hukuk"},
		{"salgt", "salgyt"},
		{"kanunlr", "kanunlar"},
	}
}

// Normalizer applies the full correction pipeline
type Normalizer struct {
	corrections []Correction
}

// New creates a normalizer with the given correction table. A nil table uses
// the built-in one.
func New(corrections []Correction) *Normalizer {
	if corrections == nil {
		corrections = DefaultCorrections()
	}
	return &Normalizer{corrections: corrections}
}

// Normalize runs every correction step in order and returns the final text
func (n *Normalizer) Normalize(text string) string {
	corrected := text

	for _, c := range n.corrections {
		corrected = strings.ReplaceAll(corrected, c.From, c.To)
	}

	corrected = greetingPattern.ReplaceAllString(corrected, "")

	corrected = capitalizationPattern.ReplaceAllStringFunc(corrected, func(match string) string {
		runes := []rune(match)
		runes[len(runes)-1] = unicode.ToUpper(runes[len(runes)-1])
		return string(runes)
	})

	corrected = sentenceSpacePattern.ReplaceAllString(corrected, "$1 $2")

	corrected = strings.ReplaceAll(corrected, Disclaimer, "")

	if !hasStatusMarker(corrected) {
		corrected = DefaultMarker + corrected
	}

	for _, a := range termAnnotations {
		corrected = annotateWholeWord(corrected, a.term, a.symbol)
	}

	return strings.TrimSpace(corrected)
}

// hasStatusMarker reports whether the text already starts with one of the
// marker symbols
func hasStatusMarker(text string) bool {
	for _, marker := range StatusMarkers {
		if strings.HasPrefix(text, marker) {
			return true
		}
	}
	return false
}

// annotateWholeWord appends symbol after case-insensitive whole-word
// occurrences of term, preserving the matched text. Word boundaries are
// letter/digit transitions, so terms with Turkmen letters match correctly.
func annotateWholeWord(text, term, symbol string) string {
	lowerText := strings.ToLower(text)
	lowerTerm := strings.ToLower(term)

	var sb strings.Builder
	start := 0
	for {
		idx := strings.Index(lowerText[start:], lowerTerm)
		if idx < 0 {
			break
		}
		idx += start
		end := idx + len(lowerTerm)

		if isWordBoundary(lowerText, idx, end) {
			sb.WriteString(text[start:end])
			sb.WriteString(" ")
			sb.WriteString(symbol)
			start = end
		} else {
			sb.WriteString(text[start : idx+1])
			start = idx + 1
		}
	}
	sb.WriteString(text[start:])
	return sb.String()
}

// isWordBoundary checks that text[start:end] is not embedded in a longer word
func isWordBoundary(text string, start, end int) bool {
	if start > 0 {
		prev, _ := lastRune(text[:start])
		if isWordRune(prev) {
			return false
		}
	}
	if end < len(text) {
		next, _ := firstRune(text[end:])
		if isWordRune(next) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func firstRune(s string) (rune, int) {
	for _, r := range s {
		return r, len(string(r))
	}
	return 0, 0
}

func lastRune(s string) (rune, int) {
	var last rune
	for _, r := range s {
		last = r
	}
	return last, len(string(last))
}
