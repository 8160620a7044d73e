package analytics

import (
	"sort"

	"regional-pulse/models"
)

// DailyValue is one point of a day-keyed series. Date is YYYY-MM-DD, so
// string order is chronological order.
type DailyValue struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// ChartPoint is one day of the sentiment/price combo chart.
type ChartPoint struct {
	Date           string   `json:"date"`
	SentimentIndex float64  `json:"sentiment_index"`
	AssetPrice     *float64 `json:"asset_price"`
}

// DailyMean averages scored records per publication day. Days without any
// scored record are omitted.
func DailyMean(records []models.NewsRecord) []DailyValue {
	type acc struct {
		sum float64
		n   int
	}
	days := make(map[string]*acc)
	for _, rec := range records {
		score, ok := rec.Score()
		if !ok {
			continue
		}
		day := rec.Day()
		a := days[day]
		if a == nil {
			a = &acc{}
			days[day] = a
		}
		a.sum += score
		a.n++
	}

	series := make([]DailyValue, 0, len(days))
	for day, a := range days {
		series = append(series, DailyValue{Date: day, Value: a.sum / float64(a.n)})
	}
	sortSeries(series)
	return series
}

// Merge left-joins prices onto the sentiment series. A sentiment date with
// no price takes the last price on or before it (forward fill); dates
// before the first price take the next available price (backward fill).
// With no prices every point has a nil AssetPrice.
func Merge(sentiment, prices []DailyValue) []ChartPoint {
	if len(sentiment) == 0 {
		return nil
	}

	left := append([]DailyValue(nil), sentiment...)
	sortSeries(left)
	right := append([]DailyValue(nil), prices...)
	sortSeries(right)

	points := make([]ChartPoint, len(left))
	j := -1
	for i, s := range left {
		points[i] = ChartPoint{Date: s.Date, SentimentIndex: s.Value}
		for j+1 < len(right) && right[j+1].Date <= s.Date {
			j++
		}
		if j >= 0 {
			price := right[j].Value
			points[i].AssetPrice = &price
		}
	}

	// Residual leading gap: everything before the first price.
	if len(right) > 0 {
		for i := range points {
			if points[i].AssetPrice != nil {
				break
			}
			price := right[0].Value
			points[i].AssetPrice = &price
		}
	}

	return points
}

// InnerJoin keeps only dates present in every series and returns the
// aligned values column by column.
func InnerJoin(series ...[]DailyValue) (dates []string, columns [][]float64) {
	if len(series) == 0 {
		return nil, nil
	}
	lookups := make([]map[string]float64, len(series))
	for i, s := range series {
		lookups[i] = make(map[string]float64, len(s))
		for _, v := range s {
			lookups[i][v.Date] = v.Value
		}
	}

	base := append([]DailyValue(nil), series[0]...)
	sortSeries(base)
	columns = make([][]float64, len(series))

	for _, v := range base {
		row := make([]float64, len(series))
		complete := true
		for i, lookup := range lookups {
			val, ok := lookup[v.Date]
			if !ok {
				complete = false
				break
			}
			row[i] = val
		}
		if !complete {
			continue
		}
		dates = append(dates, v.Date)
		for i := range columns {
			columns[i] = append(columns[i], row[i])
		}
	}
	return dates, columns
}

func sortSeries(s []DailyValue) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Date < s[j].Date })
}
