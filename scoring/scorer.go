package scoring

import (
	"context"
	"strings"
	"unicode"

	"regional-pulse/analytics"
)

// Scorer assigns a sentiment score in [-1, 1] to an article body.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// LexiconScorer scores text by weighted positive and negative stems. A
// word matches a stem it contains, so inflected forms such as "상승세" or
// "하락했다" still count.
type LexiconScorer struct {
	positive map[string]float64
	negative map[string]float64
}

func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{
		positive: positiveStems(),
		negative: negativeStems(),
	}
}

// Score returns (pos - neg) / (pos + neg), or 0 when no stem is found.
func (l *LexiconScorer) Score(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var pos, neg float64
	for _, word := range words(text) {
		pos += bestWeight(word, l.positive)
		neg += bestWeight(word, l.negative)
	}
	if pos+neg == 0 {
		return 0, nil
	}
	return analytics.SignedScale.Clamp((pos - neg) / (pos + neg)), nil
}

func bestWeight(word string, stems map[string]float64) float64 {
	var best float64
	for stem, w := range stems {
		if w > best && strings.Contains(word, stem) {
			best = w
		}
	}
	return best
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func positiveStems() map[string]float64 {
	return map[string]float64{
		"상승":    1.0,
		"급등":    1.0,
		"호황":    1.0,
		"흑자":    0.9,
		"최고":    0.8,
		"성장":    0.8,
		"증가":    0.6,
		"개선":    0.7,
		"회복":    0.7,
		"호조":    0.8,
		"확대":    0.4,
		"유치":    0.6,
		"활성화":   0.7,
		"지원":    0.4,
		"투자":    0.4,
		"수혜":    0.7,
		"기대":    0.5,
		"선정":    0.5,
		"강세":    0.8,
		"반등":    0.8,
		"rally": 0.9,
		"surge": 1.0,
		"gain":  0.6,
	}
}

func negativeStems() map[string]float64 {
	return map[string]float64{
		"하락":     1.0,
		"급락":     1.0,
		"폭락":     1.0,
		"적자":     0.9,
		"침체":     0.9,
		"위기":     0.9,
		"감소":     0.6,
		"악화":     0.8,
		"부진":     0.8,
		"우려":     0.6,
		"불안":     0.6,
		"손실":     0.8,
		"파산":     1.0,
		"폐업":     0.9,
		"사고":     0.7,
		"피해":     0.7,
		"약세":     0.8,
		"둔화":     0.6,
		"실업":     0.7,
		"논란":     0.5,
		"crash":  1.0,
		"plunge": 1.0,
		"loss":   0.6,
	}
}
