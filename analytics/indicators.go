package analytics

import "math"

// TradingDaysPerYear annualises daily volatility.
const TradingDaysPerYear = 252

// Mean returns the arithmetic mean, false for an empty slice.
func Mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs)), true
}

// SampleStdDev is the n-1 standard deviation, false with fewer than two values.
func SampleStdDev(xs []float64) (float64, bool) {
	if len(xs) < 2 {
		return 0, false
	}
	mean, _ := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1)), true
}

// Pearson returns the correlation of x and y. ok is false when the inputs
// differ in length, have fewer than two points, or either is constant.
func Pearson(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	mx, _ := Mean(x)
	my, _ := Mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}

// PercentChange is (last/first - 1) * 100 over a price series.
func PercentChange(prices []DailyValue) (float64, bool) {
	if len(prices) == 0 || prices[0].Value == 0 {
		return 0, false
	}
	return (prices[len(prices)-1].Value/prices[0].Value - 1) * 100, true
}

// Returns are the day-over-day percentage changes; the first day has none.
func Returns(prices []DailyValue) []DailyValue {
	if len(prices) < 2 {
		return nil
	}
	out := make([]DailyValue, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1].Value
		if prev == 0 {
			continue
		}
		out = append(out, DailyValue{Date: prices[i].Date, Value: (prices[i].Value/prev - 1) * 100})
	}
	return out
}

// BollingerPoint is one day of a close series with its rolling statistics.
// Window fields are nil until the window is full.
type BollingerPoint struct {
	Date   string   `json:"date"`
	Close  float64  `json:"close"`
	MA     *float64 `json:"ma"`
	StdDev *float64 `json:"std_dev"`
	Upper  *float64 `json:"upper_band"`
	Lower  *float64 `json:"lower_band"`
}

// Bollinger computes a rolling mean and sample standard deviation over
// window days with bands at k standard deviations.
func Bollinger(prices []DailyValue, window int, k float64) []BollingerPoint {
	out := make([]BollingerPoint, len(prices))
	for i, p := range prices {
		out[i] = BollingerPoint{Date: p.Date, Close: p.Value}
		if window <= 1 || i+1 < window {
			continue
		}
		vals := make([]float64, window)
		for w := 0; w < window; w++ {
			vals[w] = prices[i-window+1+w].Value
		}
		ma, _ := Mean(vals)
		sd, _ := SampleStdDev(vals)
		upper, lower := ma+k*sd, ma-k*sd
		out[i].MA, out[i].StdDev, out[i].Upper, out[i].Lower = &ma, &sd, &upper, &lower
	}
	return out
}

// AnnualizedVolatility returns stdev(daily returns) * sqrt(252) * 100.
func AnnualizedVolatility(prices []DailyValue) (float64, bool) {
	rets := Returns(prices)
	vals := make([]float64, len(rets))
	for i, r := range rets {
		vals[i] = r.Value / 100
	}
	sd, ok := SampleStdDev(vals)
	if !ok {
		return 0, false
	}
	return sd * math.Sqrt(TradingDaysPerYear) * 100, true
}
