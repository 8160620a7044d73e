package analytics

import (
	"sort"
	"unicode/utf8"

	"regional-pulse/models"
)

// DefaultTopIssues is the length of the issue list when none is requested.
const DefaultTopIssues = 10

// IssueEntry is one ranked keyword.
type IssueEntry struct {
	Token            string   `json:"token"`
	MentionCount     int      `json:"mention_count"`
	AverageSentiment float64  `json:"average_sentiment"`
	Rank             int      `json:"rank"`
	Label            Polarity `json:"label"`
}

// IssueRanker turns keyword fields into a ranked issue list.
type IssueRanker struct {
	scale     Scale
	minTokLen int
}

// NewIssueRanker builds a ranker. Tokens shorter than minTokenLen runes are
// ignored; scores are read on scale.
func NewIssueRanker(scale Scale, minTokenLen int) *IssueRanker {
	return &IssueRanker{scale: scale, minTokLen: minTokenLen}
}

type issueAcc struct {
	token string
	count int
	sum   float64
}

// Rank accumulates mentions and sentiment per token and returns the topN
// most mentioned. Equal counts keep the order in which tokens were first
// seen. Records without a score contribute the scale midpoint.
func (r *IssueRanker) Rank(records []models.NewsRecord, topN int) []IssueEntry {
	if topN <= 0 {
		topN = DefaultTopIssues
	}

	index := make(map[string]int)
	var accs []issueAcc

	for _, rec := range records {
		text := rec.KeywordText()
		if text == "" {
			continue
		}
		score, ok := rec.Score()
		if !ok {
			score = r.scale.Midpoint()
		}

		for _, token := range Tokenize(text) {
			if utf8.RuneCountInString(token) < r.minTokLen {
				continue
			}
			i, seen := index[token]
			if !seen {
				i = len(accs)
				index[token] = i
				accs = append(accs, issueAcc{token: token})
			}
			accs[i].count++
			accs[i].sum += score
		}
	}

	if len(accs) == 0 {
		return nil
	}

	sort.SliceStable(accs, func(i, j int) bool {
		return accs[i].count > accs[j].count
	})
	if len(accs) > topN {
		accs = accs[:topN]
	}

	entries := make([]IssueEntry, len(accs))
	for i, acc := range accs {
		avg := acc.sum / float64(acc.count)
		entries[i] = IssueEntry{
			Token:            acc.token,
			MentionCount:     acc.count,
			AverageSentiment: avg,
			Rank:             i + 1,
			Label:            r.scale.PolarityOf(avg),
		}
	}
	return entries
}
