package analytics

// SentimentGroup buckets a daily sentiment mean for return statistics.
type SentimentGroup string

const (
	HighSentiment SentimentGroup = "high"
	MidSentiment  SentimentGroup = "mid"
	LowSentiment  SentimentGroup = "low"
)

var groupOrder = []SentimentGroup{HighSentiment, MidSentiment, LowSentiment}

// GroupOf is High above the midpoint plus a tenth of the span, Low below the
// midpoint and Mid otherwise. On the unit scale that is > 0.6 and < 0.5.
func (s Scale) GroupOf(v float64) SentimentGroup {
	switch {
	case v > s.Midpoint()+s.Span()*0.1:
		return HighSentiment
	case v < s.Midpoint():
		return LowSentiment
	default:
		return MidSentiment
	}
}

// GroupReturn is the mean daily return of every asset over the days of one
// sentiment group.
type GroupReturn struct {
	Group SentimentGroup `json:"group"`
	Days  int            `json:"days"`
	Means []float64      `json:"means"`
}

// GroupReturns averages each returns column over the days of each sentiment
// group. sentiment and the columns are aligned by index. Groups come in
// high, mid, low order and groups without days are left out.
func GroupReturns(scale Scale, sentiment []float64, returns [][]float64) []GroupReturn {
	sums := make(map[SentimentGroup][]float64)
	days := make(map[SentimentGroup]int)
	for k, v := range sentiment {
		g := scale.GroupOf(v)
		if sums[g] == nil {
			sums[g] = make([]float64, len(returns))
		}
		for c, col := range returns {
			sums[g][c] += col[k]
		}
		days[g]++
	}

	out := []GroupReturn{}
	for _, g := range groupOrder {
		n := days[g]
		if n == 0 {
			continue
		}
		means := make([]float64, len(returns))
		for c := range means {
			means[c] = sums[g][c] / float64(n)
		}
		out = append(out, GroupReturn{Group: g, Days: n, Means: means})
	}
	return out
}
