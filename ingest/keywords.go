package ingest

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultKeywordLimit is how many keywords are kept per article.
const DefaultKeywordLimit = 5

// KeywordExtractor picks the most frequent Hangul words of an article body.
type KeywordExtractor struct {
	stopwords map[string]struct{}
	excluded  []string
	limit     int
}

func NewKeywordExtractor(stopwords, excludedParts []string, limit int) *KeywordExtractor {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}
	e := &KeywordExtractor{
		stopwords: make(map[string]struct{}, len(stopwords)),
		limit:     limit,
	}
	for _, w := range stopwords {
		e.stopwords[w] = struct{}{}
	}
	for _, p := range excludedParts {
		if p != "" {
			e.excluded = append(e.excluded, p)
		}
	}
	return e
}

// Extract returns up to limit keywords joined by ", ". Non-Hangul text is
// ignored. Words equal in frequency keep the order they first appear in.
func (e *KeywordExtractor) Extract(text string) string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.Is(unicode.Hangul, r)
	})

	type count struct {
		word string
		n    int
	}
	index := make(map[string]int)
	var counts []count
	for _, w := range words {
		if !e.keep(w) {
			continue
		}
		i, seen := index[w]
		if !seen {
			i = len(counts)
			index[w] = i
			counts = append(counts, count{word: w})
		}
		counts[i].n++
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].n > counts[j].n })
	if len(counts) > e.limit {
		counts = counts[:e.limit]
	}

	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.word
	}
	return strings.Join(out, ", ")
}

func (e *KeywordExtractor) keep(word string) bool {
	if utf8.RuneCountInString(word) < 2 {
		return false
	}
	if _, stop := e.stopwords[word]; stop {
		return false
	}
	for _, part := range e.excluded {
		if strings.Contains(word, part) {
			return false
		}
	}
	return true
}
