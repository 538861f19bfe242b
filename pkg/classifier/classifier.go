// Package classifier assigns a volatility category to query text.
//
// Classification is a pure function of the normalized text: an ordered
// cascade of rule tiers where the first tier with any match decides the
// category. Later tiers are only consulted when earlier ones stay silent.
package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/semcache-ai/semcache/pkg/models"
)

// Confidence grades how strong the classification signal was.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Result is the outcome of classifying one query.
type Result struct {
	Category   models.Category
	Confidence Confidence
	Reasoning  string
}

// Temporal words and phrases that mark a query as time-sensitive,
// including domain terms whose answers decay quickly on their own.
var temporalTerms = []string{
	"today", "tonight", "tomorrow", "yesterday", "now", "right now",
	"currently", "current", "latest", "live", "breaking", "update",
	"this week", "this month", "this morning", "at the moment",
	"weather", "stock price", "exchange rate", "breaking news",
}

// Phrasings that mark definitional or explanatory intent.
var evergreenTerms = []string{
	"what is", "what are", "how does", "how do", "how to",
	"history of", "definition of", "meaning of", "difference between",
	"why do", "why does", "what causes", "explain",
}

// Domain nouns that default a query to one category when no stronger
// signal fired.
var domainDefaults = map[string]models.Category{
	"weather":  models.CategoryFresh,
	"news":     models.CategoryFresh,
	"stock":    models.CategoryFresh,
	"stocks":   models.CategoryFresh,
	"price":    models.CategoryFresh,
	"prices":   models.CategoryFresh,
	"traffic":  models.CategoryFresh,
	"score":    models.CategoryFresh,
	"flight":   models.CategoryFresh,
	"flights":  models.CategoryFresh,
	"currency": models.CategoryFresh,
	"schedule": models.CategoryFresh,
	"deadline": models.CategoryFresh,

	"history":    models.CategoryEvergreen,
	"definition": models.CategoryEvergreen,
	"theory":     models.CategoryEvergreen,
	"recipe":     models.CategoryEvergreen,
	"education":  models.CategoryEvergreen,
	"science":    models.CategoryEvergreen,
	"math":       models.CategoryEvergreen,
}

var (
	happeningShape = regexp.MustCompile(`what('s| is) (happening|going on)`)
	mechanismShape = regexp.MustCompile(`how (do|does) .* work`)
)

// Classify maps query text to a volatility category.
//
// It is deterministic, case-insensitive, has no side effects, and always
// returns a result.
func Classify(query string) Result {
	q := normalize(query)
	words := tokenize(q)

	// Tier 1: explicit temporal signals.
	if matched := matchTerms(q, words, temporalTerms); len(matched) > 0 {
		return Result{
			Category:   models.CategoryFresh,
			Confidence: ConfidenceHigh,
			Reasoning:  fmt.Sprintf("temporal signal: %s", evidence(matched)),
		}
	}

	// Tier 2: definitional/explanatory signals. "What is happening"
	// is a situation question, not a definition; leave it to tier 3.
	if matched := matchTerms(q, words, evergreenTerms); len(matched) > 0 && !happeningShape.MatchString(q) {
		return Result{
			Category:   models.CategoryEvergreen,
			Confidence: ConfidenceHigh,
			Reasoning:  fmt.Sprintf("evergreen signal: %s", evidence(matched)),
		}
	}

	// Tier 3: structural question shape.
	if happeningShape.MatchString(q) {
		return Result{
			Category:   models.CategoryFresh,
			Confidence: ConfidenceHigh,
			Reasoning:  "question asks about an ongoing situation",
		}
	}
	if mechanismShape.MatchString(q) {
		return Result{
			Category:   models.CategoryEvergreen,
			Confidence: ConfidenceHigh,
			Reasoning:  "question asks how something works",
		}
	}

	// Tier 4: domain keyword defaults.
	for _, w := range words {
		if cat, ok := domainDefaults[w]; ok {
			return Result{
				Category:   cat,
				Confidence: ConfidenceMedium,
				Reasoning:  fmt.Sprintf("domain keyword %q defaults to %s", w, cat),
			}
		}
	}

	// Tier 5: loose temporal containment anywhere in the text.
	for _, term := range temporalTerms {
		if strings.Contains(q, term) {
			return Result{
				Category:   models.CategoryFresh,
				Confidence: ConfidenceLow,
				Reasoning:  fmt.Sprintf("loose temporal keyword %q present", term),
			}
		}
	}

	// Tier 6: no signal at all.
	return Result{
		Category:   models.CategoryEvergreen,
		Confidence: ConfidenceLow,
		Reasoning:  "insufficient signal, assuming durable content",
	}
}

// normalize lower-cases, trims, and strips apostrophe contractions so
// "What's" matches "what is" phrasings.
func normalize(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.ReplaceAll(q, "what's", "what is")
	q = strings.ReplaceAll(q, "how's", "how is")
	return q
}

// tokenize splits normalized text into alphanumeric words.
func tokenize(q string) []string {
	return strings.FieldsFunc(q, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}

// matchTerms returns the terms found in the query. Multi-word terms
// match as substrings of the normalized text; single words match whole
// tokens only, so "now" never fires inside "know".
func matchTerms(q string, words []string, terms []string) []string {
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}

	var matched []string
	for _, term := range terms {
		if strings.Contains(term, " ") {
			if strings.Contains(q, term) {
				matched = append(matched, term)
			}
		} else if wordSet[term] {
			matched = append(matched, term)
		}
	}
	return matched
}

// evidence renders matched terms for the reasoning message. Multiple
// matches within a tier never change the category, only the report.
func evidence(matched []string) string {
	if len(matched) == 1 {
		return fmt.Sprintf("%q", matched[0])
	}
	return fmt.Sprintf("%d terms (%s)", len(matched), strings.Join(matched, ", "))
}
