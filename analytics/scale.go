package analytics

// Scale is the closed range a sentiment score lives in.
type Scale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

var (
	// SignedScale is the canonical scale of stored scores.
	SignedScale = Scale{Min: -1, Max: 1}
	// UnitScale is the probability scale some scorers produce.
	UnitScale = Scale{Min: 0, Max: 1}
)

// Midpoint is the neutral score of the scale.
func (s Scale) Midpoint() float64 {
	return (s.Min + s.Max) / 2
}

// Span returns Max - Min.
func (s Scale) Span() float64 {
	return s.Max - s.Min
}

// Clamp limits v to the scale.
func (s Scale) Clamp(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Convert maps v from scale s onto scale to linearly.
func (s Scale) Convert(v float64, to Scale) float64 {
	if s.Span() == 0 {
		return to.Midpoint()
	}
	return to.Min + (s.Clamp(v)-s.Min)/s.Span()*to.Span()
}

// Polarity labels a score relative to the midpoint of a scale.
type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
	Neutral  Polarity = "neutral"
)

// PolarityOf returns Positive when v >= midpoint, else Negative.
func (s Scale) PolarityOf(v float64) Polarity {
	if v >= s.Midpoint() {
		return Positive
	}
	return Negative
}

// DayStatus classifies a daily mean with a neutral band of 5% of the span
// on each side of the midpoint.
func (s Scale) DayStatus(v float64) Polarity {
	margin := s.Span() * 0.05
	switch {
	case v > s.Midpoint()+margin:
		return Positive
	case v < s.Midpoint()-margin:
		return Negative
	default:
		return Neutral
	}
}
