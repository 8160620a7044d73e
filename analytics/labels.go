package analytics

// Marker appearance of a single article, on the signed scale.

// SentimentColor is the marker color of an article score.
func SentimentColor(score *float64) string {
	if score == nil || *score == 0 {
		return "gray"
	}
	s := *score
	switch {
	case s > 0.5:
		return "blue"
	case s > 0:
		return "lightblue"
	case s < -0.5:
		return "red"
	default:
		return "lightred"
	}
}

// SentimentIcon is the marker icon name of an article score.
func SentimentIcon(score *float64) string {
	switch {
	case score == nil || *score == 0:
		return "info-sign"
	case *score > 0:
		return "arrow-up"
	default:
		return "arrow-down"
	}
}

// SentimentLabel is the Korean label of an article score.
func SentimentLabel(score *float64) string {
	if score == nil {
		return "분석 안 됨"
	}
	s := *score
	switch {
	case s == 0:
		return "중립"
	case s > 0.8:
		return "매우 긍정적"
	case s > 0.2:
		return "긍정적"
	case s > 0:
		return "약간 긍정적"
	case s < -0.5:
		return "매우 부정적"
	case s < -0.2:
		return "부정적"
	default:
		return "약간 부정적"
	}
}

// SentimentHex is the popup badge color of an article score.
func SentimentHex(score *float64) string {
	var s float64
	if score != nil {
		s = *score
	}
	switch {
	case s > 0.5:
		return "#0D47A1"
	case s > 0:
		return "#81C784"
	case s < -0.5:
		return "#B71C1C"
	case s < 0:
		return "#f44336"
	default:
		return "#9E9E9E"
	}
}
