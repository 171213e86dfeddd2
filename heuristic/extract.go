package heuristic

import (
	"maps"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	wordPattern   = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	numberPattern = regexp.MustCompile(`\p{Nd}+`)
)

// TermPattern is one class of technical terms, e.g. HTTP status codes or exception names
type TermPattern struct {
	Name    string
	Pattern *regexp.Regexp
	// WordBounded keeps only matches not touching a letter, digit or underscore on either side.
	// Unlike RE2's ASCII-only \b it treats every Unicode letter and digit as a word character.
	WordBounded bool
}

// ExtractionConfig controls how keywords and technical terms are pulled out of free text
type ExtractionConfig struct {
	// StopWords are lowercase words never counted as keywords
	StopWords map[string]struct{}
	// MinKeywordLength drops keywords whose rune count is less than or equal to it
	MinKeywordLength int
	// TechnicalPatterns are matched independently; their matches are unioned
	TechnicalPatterns []TermPattern
	// SequenceAutoJunk enables the diff matcher's popular-element heuristic in SequenceSimilarity.
	// It reproduces scores of tools using the default Python difflib matcher but breaks identity
	// on texts of 200 runes or more.
	SequenceAutoJunk bool
}

// DefaultStopWords returns a fresh copy of the default stop word set:
// articles, prepositions, common auxiliary verbs and "all".
func DefaultStopWords() map[string]struct{} {
	words := []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
		"of", "with", "by", "from", "as", "is", "was", "are", "were", "be",
		"been", "being", "have", "has", "had", "do", "does", "did", "will",
		"would", "should", "could", "may", "might", "must", "can", "all",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// DefaultTechnicalPatterns returns freshly compiled default term classes.
func DefaultTechnicalPatterns() []TermPattern {
	return []TermPattern{
		{Name: "status_code", Pattern: regexp.MustCompile(`\p{Nd}{3}`), WordBounded: true},
		{Name: "error_class", Pattern: regexp.MustCompile(`[A-Z][a-zA-Z]*Error`), WordBounded: true},
		{Name: "exception_class", Pattern: regexp.MustCompile(`[A-Z][a-zA-Z]*Exception`), WordBounded: true},
		{Name: "http_method", Pattern: regexp.MustCompile(`(?:GET|POST|PUT|DELETE|PATCH)`), WordBounded: true},
		{Name: "api_endpoint", Pattern: regexp.MustCompile(`/api/[\p{L}\p{N}_/-]+`)},
	}
}

// DefaultExtractionConfig returns the reference extraction settings
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		StopWords:         DefaultStopWords(),
		MinKeywordLength:  2,
		TechnicalPatterns: DefaultTechnicalPatterns(),
	}
}

// Keywords returns the set of meaningful lowercase words in text
func Keywords(cfg ExtractionConfig, text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, stop := cfg.StopWords[w]; stop {
			continue
		}
		if utf8.RuneCountInString(w) <= cfg.MinKeywordLength {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// Numbers returns the set of maximal digit runs in text, e.g. "404" and "30"
func Numbers(text string) map[string]struct{} {
	return toSet(numberPattern.FindAllString(text, -1))
}

// TechnicalTerms returns the union of all technical pattern matches in text
func TechnicalTerms(cfg ExtractionConfig, text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, p := range cfg.TechnicalPatterns {
		if p.Pattern == nil {
			continue
		}
		for _, loc := range p.Pattern.FindAllStringIndex(text, -1) {
			if p.WordBounded && !wordBounded(text, loc[0], loc[1]) {
				continue
			}
			set[text[loc[0]:loc[1]]] = struct{}{}
		}
	}
	return set
}

// wordBounded reports whether text[start:end] has no word rune directly before or after it
func wordBounded(text string, start, end int) bool {
	if r, _ := utf8.DecodeLastRuneInString(text[:start]); start > 0 && isWordRune(r) {
		return false
	}
	if r, _ := utf8.DecodeRuneInString(text[end:]); end < len(text) && isWordRune(r) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func sortedKeys(set map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(set))
}
