package services

import (
	"sort"
	"strings"
	"unicode"
)

// TextAnalyzer provides text analysis capabilities for the domain
type TextAnalyzer interface {
	// Tokenize splits text into lowercase words in order of appearance.
	Tokenize(text string) []string

	// Keywords returns the set of significant words in text.
	Keywords(text string) map[string]bool
}

// DefaultTextAnalyzer tokenizes on non-alphanumerics and drops stop words and
// words shorter than minWordLength.
type DefaultTextAnalyzer struct {
	stopWords     map[string]bool
	minWordLength int
}

// NewDefaultTextAnalyzer creates a new text analyzer with common English stop words
func NewDefaultTextAnalyzer(minWordLength int) *DefaultTextAnalyzer {
	if minWordLength < 1 {
		minWordLength = 3
	}
	return &DefaultTextAnalyzer{
		stopWords:     defaultStopWords(),
		minWordLength: minWordLength,
	}
}

// Tokenize splits text into lowercase words, skipping single characters.
func (ta *DefaultTextAnalyzer) Tokenize(text string) []string {
	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 1 {
			words = append(words, current.String())
		}
		current.Reset()
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return words
}

// Keywords returns the significant words of text as a set.
func (ta *DefaultTextAnalyzer) Keywords(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range ta.Tokenize(text) {
		if len(w) >= ta.minWordLength && !ta.stopWords[w] {
			set[w] = true
		}
	}
	return set
}

// TopTerms counts how many of the given keyword sets contain each word and
// returns up to n words that occur at least minCount times, most frequent
// first and alphabetical within a count.
func TopTerms(sets []map[string]bool, n, minCount int) []string {
	counts := make(map[string]int)
	for _, set := range sets {
		for w := range set {
			counts[w]++
		}
	}

	terms := make([]string, 0, len(counts))
	for w, c := range counts {
		if c >= minCount {
			terms = append(terms, w)
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

// Jaccard returns |A ∩ B| / |A ∪ B|, or 0 when both sets are empty.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if b[w] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

func defaultStopWords() map[string]bool {
	words := []string{
		"the", "be", "to", "of", "and", "a", "in", "that", "have", "i",
		"it", "for", "not", "on", "with", "he", "as", "you", "do", "at",
		"this", "but", "his", "by", "from", "they", "we", "say", "her", "she",
		"or", "an", "will", "my", "one", "all", "would", "there", "their", "what",
		"so", "up", "out", "if", "about", "who", "get", "which", "go", "me",
		"when", "make", "can", "like", "time", "no", "just", "him", "know", "take",
		"into", "your", "good", "some", "could", "them", "see", "other", "than", "then",
		"now", "look", "only", "come", "its", "over", "think", "also", "back", "after",
		"use", "two", "how", "our", "work", "first", "well", "way", "even", "new",
		"want", "because", "any", "these", "give", "most", "us", "is", "was", "are",
		"been", "has", "had", "were", "said", "did", "having", "may", "am", "should",
		"too", "very", "using", "guide", "introduction", "notes",
	}
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
