package dashboard

import (
	"context"
	"sort"
	"time"

	"regional-pulse/analytics"
	"regional-pulse/apperrors"
	"regional-pulse/models"
)

// CalendarCell is one day of the sentiment heatmap. Weekday counts from
// Monday = 0.
type CalendarCell struct {
	Date           string             `json:"date"`
	Day            int                `json:"day"`
	ISOWeek        int                `json:"iso_week"`
	Weekday        int                `json:"weekday"`
	SentimentIndex float64            `json:"sentiment_index"`
	Status         analytics.Polarity `json:"status"`
}

// Calendar lists every day of the filter that has at least one scored
// record.
func (s *Service) Calendar(ctx context.Context, f Filter) ([]CalendarCell, error) {
	records, err := s.records(ctx, f, models.NewsQuery{OnlyScored: true})
	if err != nil {
		return nil, err
	}

	series := analytics.DailyMean(records)
	cells := make([]CalendarCell, 0, len(series))
	for _, v := range series {
		day, err := time.Parse(models.DateLayout, v.Date)
		if err != nil {
			continue
		}
		_, week := day.ISOWeek()
		cells = append(cells, CalendarCell{
			Date:           v.Date,
			Day:            day.Day(),
			ISOWeek:        week,
			Weekday:        (int(day.Weekday()) + 6) % 7,
			SentimentIndex: v.Value,
			Status:         s.scale.DayStatus(v.Value),
		})
	}
	return cells, nil
}

// DayDetail is the drill-down of one calendar day.
type DayDetail struct {
	Date           string             `json:"date"`
	SentimentIndex *float64           `json:"sentiment_index"`
	Status         analytics.Polarity `json:"status,omitempty"`
	Count          int                `json:"count"`
	Articles       []ArticleView      `json:"articles"`
}

// DayDetail returns the best scored articles of date within the filter's
// region. Unscored articles rank last.
func (s *Service) DayDetail(ctx context.Context, f Filter, date string) (*DayDetail, error) {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, apperrors.NewValidationError("date must be YYYY-MM-DD")
	}
	f.From, f.To = day, day

	records, err := s.records(ctx, f, models.NewsQuery{})
	if err != nil {
		return nil, err
	}

	detail := &DayDetail{Date: date, Count: len(records), Articles: []ArticleView{}}
	if series := analytics.DailyMean(records); len(series) > 0 {
		mean := series[0].Value
		detail.SentimentIndex = &mean
		detail.Status = s.scale.DayStatus(mean)
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, aok := records[i].Score()
		b, bok := records[j].Score()
		if aok != bok {
			return aok
		}
		return a > b
	})
	for i := range min(len(records), s.opts.DaySize) {
		detail.Articles = append(detail.Articles, articleView(records[i]))
	}
	return detail, nil
}
