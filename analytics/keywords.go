package analytics

import "strings"

var delimiterReplacer = strings.NewReplacer(
	"|", ",",
	"/", ",",
	";", ",",
	"\r\n", ",",
	"\n", ",",
)

// Tokenize splits a free-text keyword field into tokens. Comma, pipe,
// slash, semicolon and newline are all treated as one delimiter; tokens
// that still contain whitespace are split again. Order and duplicates are
// preserved.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var tokens []string
	for _, part := range strings.Split(delimiterReplacer.Replace(text), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tokens = append(tokens, strings.Fields(part)...)
	}
	return tokens
}

// KeywordClassifier recognises domain (economic) keywords by substring so
// that compound terms such as "부동산시장" still match "부동산".
type KeywordClassifier struct {
	terms []string
}

func NewKeywordClassifier(terms []string) *KeywordClassifier {
	c := &KeywordClassifier{}
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			c.terms = append(c.terms, t)
		}
	}
	return c
}

// IsDomainKeyword reports whether token contains any configured term.
func (c *KeywordClassifier) IsDomainKeyword(token string) bool {
	if token == "" {
		return false
	}
	for _, term := range c.terms {
		if strings.Contains(token, term) {
			return true
		}
	}
	return false
}

// DomainKeywords returns up to limit domain tokens of text in input order.
// A limit <= 0 returns all of them.
func (c *KeywordClassifier) DomainKeywords(text string, limit int) []string {
	var out []string
	for _, token := range Tokenize(text) {
		if !c.IsDomainKeyword(token) {
			continue
		}
		out = append(out, token)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
