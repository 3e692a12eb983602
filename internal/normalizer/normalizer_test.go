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

package normalizer

import (
	"strings"
	"testing"
)

func TestNormalize_DefaultMarkerPrepended(t *testing.T) {
	n := New(nil)

	got := n.Normalize("jogap taýýar.")
	if !strings.HasPrefix(got, DefaultMarker) {
		t.Errorf("expected default marker prefix, got %q", got)
	}
}

func TestNormalize_ExistingMarkerKept(t *testing.T) {
	n := New(nil)

	got := n.Normalize("❌ Hiç zat tapylmady.")
	if strings.HasPrefix(got, DefaultMarker) {
		t.Errorf("expected no default marker on a marked answer, got %q", got)
	}
	if strings.Count(got, "❌") != 1 {
		t.Errorf("expected the original marker untouched, got %q", got)
	}
}

func TestNormalize_GreetingStripped(t *testing.T) {
	n := New(nil)

	tests := []struct {
		name  string
		input string
	}{
		{"full greeting", "Slam 👋, jogap taýýar."},
		{"without emoji", "Slam, jogap taýýar."},
		{"lam variant", "lam jogap taýýar."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.input)
			if strings.Contains(got, "lam") {
				t.Errorf("expected greeting removed, got %q", got)
			}
			if !strings.Contains(got, "Jogap taýýar.") {
				t.Errorf("expected remainder capitalized, got %q", got)
			}
		})
	}
}

func TestNormalize_Corrections(t *testing.T) {
	n := New(nil)

	got := n.Normalize("bu maglumt we hukok barada")
	if !strings.Contains(got, "maglumat") {
		t.Errorf("expected maglumt corrected, got %q", got)
	}
	if !strings.Contains(got, "hukuk") {
		t.Errorf("expected hukok corrected, got %q", got)
	}
}

func TestNormalize_CustomCorrections(t *testing.T) {
	n := New([]Correction{{"abc", "def"}})

	got := n.Normalize("bu abc we maglumt")
	if !strings.Contains(got, "def") {
		t.Errorf("expected custom correction applied, got %q", got)
	}
	// The built-in table must not run when a custom one is given
	if strings.Contains(got, "maglumat") {
		t.Errorf("expected built-in corrections skipped, got %q", got)
	}
}

func TestNormalize_SentenceCapitalization(t *testing.T) {
	n := New(nil)

	got := n.Normalize("birinji. ikinji jümle.")
	if !strings.Contains(got, "Birinji. Ikinji jümle.") {
		t.Errorf("expected sentence starts capitalized, got %q", got)
	}
}

func TestNormalize_SentenceSpacing(t *testing.T) {
	n := New(nil)

	got := n.Normalize("Birinji.Ikinji jümle.")
	if !strings.Contains(got, "Birinji. Ikinji") {
		t.Errorf("expected a space inserted after the period, got %q", got)
	}
}

func TestNormalize_DisclaimerRemoved(t *testing.T) {
	n := New(nil)

	got := n.Normalize("Jogap taýýar. " + Disclaimer)
	if strings.Contains(got, Disclaimer) {
		t.Errorf("expected disclaimer removed, got %q", got)
	}
}

func TestNormalize_TermAnnotation(t *testing.T) {
	n := New(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"kanun", "bu kanun barada", "kanun 📜"},
		{"salgyt", "salgyt tölegi", "salgyt 💰"},
		{"hukuk", "hukuk goraglydyr", "hukuk ⚖️"},
		{"capitalized term keeps case", "Maglumat tapyldy", "Maglumat 📖"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.input)
			if !strings.Contains(got, tt.want) {
				t.Errorf("expected %q in output, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalize_NoAnnotationInsideLongerWords(t *testing.T) {
	n := New(nil)

	got := n.Normalize("kanunlar we maddalardan")
	if strings.Contains(got, "📜") {
		t.Errorf("expected no annotation inside kanunlar, got %q", got)
	}
	if strings.Contains(got, "📑") {
		t.Errorf("expected no annotation inside maddalardan, got %q", got)
	}
}

func TestNormalize_TurkmenLetterBoundary(t *testing.T) {
	n := New(nil)

	// The term ends in a non-ASCII letter; the following punctuation must
	// still count as a boundary
	got := n.Normalize("bu jogap yalňyş.")
	if !strings.Contains(got, "yalňyş ❌") {
		t.Errorf("expected yalňyş annotated before punctuation, got %q", got)
	}
}

func TestNormalize_StableOnSecondPass(t *testing.T) {
	n := New(nil)

	once := n.Normalize("Jogap taýýar.")
	twice := n.Normalize(once)
	if strings.Count(twice, DefaultMarker) > 1 {
		t.Errorf("expected no second marker, got %q", twice)
	}
}
