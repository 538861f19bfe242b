package classifier

import (
	"testing"

	"github.com/semcache-ai/semcache/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		query      string
		category   models.Category
		confidence Confidence
	}{
		// Temporal signals.
		{"What's the weather today?", models.CategoryFresh, ConfidenceHigh},
		{"What's the latest stock price for Apple?", models.CategoryFresh, ConfidenceHigh},
		{"What are the breaking news headlines?", models.CategoryFresh, ConfidenceHigh},
		{"price of Bitcoin now", models.CategoryFresh, ConfidenceHigh},
		{"current Bitcoin price", models.CategoryFresh, ConfidenceHigh},
		{"What's the current exchange rate for USD to EUR?", models.CategoryFresh, ConfidenceHigh},
		{"the game tonight", models.CategoryFresh, ConfidenceHigh},

		// Evergreen signals.
		{"What is the definition of photosynthesis?", models.CategoryEvergreen, ConfidenceHigh},
		{"How does a computer work?", models.CategoryEvergreen, ConfidenceHigh},
		{"What is the history of the Roman Empire?", models.CategoryEvergreen, ConfidenceHigh},
		{"How to bake a chocolate cake?", models.CategoryEvergreen, ConfidenceHigh},
		{"Why do birds migrate?", models.CategoryEvergreen, ConfidenceHigh},
		{"What causes rain to form?", models.CategoryEvergreen, ConfidenceHigh},
		{"What is the difference between DNA and RNA?", models.CategoryEvergreen, ConfidenceHigh},

		// Structural shape: situation questions are fresh even without
		// an explicit temporal word.
		{"What's happening in the city?", models.CategoryFresh, ConfidenceHigh},
		{"what is going on with the markets", models.CategoryFresh, ConfidenceHigh},

		// Domain keyword fallback.
		{"Tell me about stocks", models.CategoryFresh, ConfidenceMedium},
		{"flight delays to Denver", models.CategoryFresh, ConfidenceMedium},
		{"a question about science", models.CategoryEvergreen, ConfidenceMedium},

		// No signal at all.
		{"Tell me something interesting", models.CategoryEvergreen, ConfidenceLow},
		{"random gibberish", models.CategoryEvergreen, ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Classify(tt.query)
			if got.Category != tt.category {
				t.Errorf("category = %s, want %s (reasoning: %s)", got.Category, tt.category, got.Reasoning)
			}
			if got.Confidence != tt.confidence {
				t.Errorf("confidence = %s, want %s (reasoning: %s)", got.Confidence, tt.confidence, got.Reasoning)
			}
			if got.Reasoning == "" {
				t.Error("reasoning must not be empty")
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		a := Classify("What's the weather today?")
		b := Classify("What's the weather today?")
		if a != b {
			t.Fatalf("classification not deterministic: %+v vs %+v", a, b)
		}
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	upper := Classify("WEATHER today")
	lower := Classify("weather today")
	if upper.Category != lower.Category || upper.Confidence != lower.Confidence {
		t.Errorf("case changed the result: %+v vs %+v", upper, lower)
	}
}

func TestWordBoundaries(t *testing.T) {
	// "now" inside "know" must not fire the high-confidence temporal tier.
	got := Classify("I want to know how plants grow")
	if got.Confidence == ConfidenceHigh && got.Category == models.CategoryFresh {
		t.Errorf("substring match leaked into temporal tier: %+v", got)
	}
}

func TestTierOrder(t *testing.T) {
	// Temporal signals win over definitional phrasing.
	got := Classify("What is the weather today?")
	if got.Category != models.CategoryFresh {
		t.Errorf("temporal tier should win: %+v", got)
	}
}
