package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"regional-pulse/analytics"
	"regional-pulse/apperrors"
	"regional-pulse/config"
	"regional-pulse/models"
)

// Technical indicator parameters.
const (
	TechnicalLookbackDays = 60
	BollingerWindow       = 20
	BollingerWidth        = 2.0

	// ReturnLookbackDays of extra closes give the window's first day a
	// previous close to compute its return from.
	ReturnLookbackDays = 10
)

// ChartResult is the sentiment/price combo chart. Points is empty when the
// scope has no scored record.
type ChartResult struct {
	Region      string                 `json:"region"`
	Asset       config.Asset           `json:"asset"`
	Points      []analytics.ChartPoint `json:"points"`
	PriceStatus PriceStatus            `json:"price_status"`
}

// Chart merges the daily sentiment mean with the asset's closes.
func (s *Service) Chart(ctx context.Context, f Filter) (*ChartResult, error) {
	asset, err := s.asset(f.Asset)
	if err != nil {
		return nil, err
	}
	records, err := s.records(ctx, f, models.NewsQuery{OnlyScored: true})
	if err != nil {
		return nil, err
	}

	res := &ChartResult{Region: regionName(f), Asset: asset, Points: []analytics.ChartPoint{}, PriceStatus: PriceNoData}
	sentiment := analytics.DailyMean(records)
	if len(sentiment) == 0 {
		return res, nil
	}

	var prices []analytics.DailyValue
	if from, to, ok := priceRange(f, sentiment); ok {
		prices, res.PriceStatus = s.closes(ctx, asset, from, to)
	}
	res.Points = analytics.Merge(sentiment, prices)
	return res, nil
}

func regionName(f Filter) string {
	if f.Region == "" {
		return AllRegions
	}
	return f.Region
}

// AssetChange is the percentage move of an index over the filter window.
type AssetChange struct {
	config.Asset
	ChangePercent float64     `json:"change_percent"`
	PriceStatus   PriceStatus `json:"price_status"`
}

// Metrics is the headline card row.
type Metrics struct {
	Region       string        `json:"region"`
	SentimentAvg float64       `json:"sentiment_avg"`
	HasSentiment bool          `json:"has_sentiment"`
	Count        int           `json:"count"`
	Volatility   float64       `json:"volatility"`
	Assets       []AssetChange `json:"assets"`
}

// Metrics summarises the filtered scope. Without scored records the
// average is the scale midpoint.
func (s *Service) Metrics(ctx context.Context, f Filter) (*Metrics, error) {
	records, err := s.records(ctx, f, models.NewsQuery{})
	if err != nil {
		return nil, err
	}

	var scores []float64
	for _, rec := range records {
		if score, ok := rec.Score(); ok {
			scores = append(scores, score)
		}
	}
	m := &Metrics{
		Region:       regionName(f),
		SentimentAvg: s.scale.Midpoint(),
		Count:        len(records),
		Volatility:   float64(len(records)) / 10.0,
	}
	if avg, ok := analytics.Mean(scores); ok {
		m.SentimentAvg, m.HasSentiment = avg, true
	}

	series := analytics.DailyMean(records)
	from, to, ok := priceRange(f, series)
	assets := s.taxonomy.Assets
	m.Assets = make([]AssetChange, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	for i, asset := range assets {
		m.Assets[i] = AssetChange{Asset: asset, PriceStatus: PriceNoData}
		if !ok {
			continue
		}
		g.Go(func() error {
			closes, status := s.closes(gctx, asset, from, to)
			m.Assets[i].PriceStatus = status
			if change, ok := analytics.PercentChange(closes); ok {
				m.Assets[i].ChangePercent = change
			}
			return nil
		})
	}
	_ = g.Wait()
	return m, nil
}

// Correlation is the Pearson matrix of daily sentiment and every asset's
// closes over the dates all of them share. Cells that cannot be computed
// are null. Returns and GroupReturns relate sentiment to daily percentage
// returns instead, over the dates with a sentiment mean and a return for
// every asset.
type Correlation struct {
	Labels       []string                `json:"labels"`
	Matrix       [][]*float64            `json:"matrix"`
	Dates        []string                `json:"dates"`
	Scatter      []ScatterPoint          `json:"scatter"`
	Asset        config.Asset            `json:"asset"`
	Returns      []ReturnCorrelation     `json:"returns"`
	ReturnDays   int                     `json:"return_days"`
	GroupReturns []analytics.GroupReturn `json:"group_returns"`
	PriceStatus  PriceStatus             `json:"price_status"`
}

// ReturnCorrelation is the Pearson coefficient of daily sentiment against
// one asset's daily returns, null when it cannot be computed.
type ReturnCorrelation struct {
	Asset       string   `json:"asset"`
	Coefficient *float64 `json:"coefficient"`
}

// ScatterPoint pairs a day's sentiment with the selected asset's close.
type ScatterPoint struct {
	Date      string  `json:"date"`
	Sentiment float64 `json:"sentiment"`
	Price     float64 `json:"price"`
}

func (s *Service) Correlation(ctx context.Context, f Filter) (*Correlation, error) {
	selected, err := s.asset(f.Asset)
	if err != nil {
		return nil, err
	}
	records, err := s.records(ctx, f, models.NewsQuery{OnlyScored: true})
	if err != nil {
		return nil, err
	}

	assets := s.taxonomy.Assets
	res := &Correlation{
		Labels:       []string{"감성"},
		Dates:        []string{},
		Scatter:      []ScatterPoint{},
		Asset:        selected,
		Returns:      make([]ReturnCorrelation, len(assets)),
		GroupReturns: []analytics.GroupReturn{},
		PriceStatus:  PriceNoData,
	}
	for i, a := range assets {
		res.Labels = append(res.Labels, a.Name)
		res.Returns[i] = ReturnCorrelation{Asset: a.Name}
	}
	res.Matrix = nullMatrix(len(res.Labels))

	sentiment := analytics.DailyMean(records)
	from, to, ok := priceRange(f, sentiment)
	if len(sentiment) == 0 || !ok {
		return res, nil
	}

	series := make([][]analytics.DailyValue, len(assets))
	statuses := make([]PriceStatus, len(assets))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range assets {
		g.Go(func() error {
			series[i], statuses[i] = s.closes(gctx, a, from.AddDate(0, 0, -ReturnLookbackDays), to)
			return nil
		})
	}
	_ = g.Wait()

	res.PriceStatus = PriceOK
	for _, st := range statuses {
		if st != PriceOK {
			res.PriceStatus = st
			break
		}
	}
	if res.PriceStatus != PriceOK {
		return res, nil
	}

	dates, columns := analytics.InnerJoin(append([][]analytics.DailyValue{sentiment}, series...)...)
	if len(dates) == 0 {
		res.PriceStatus = PriceNoData
		return res, nil
	}
	res.Dates = dates
	for i := range columns {
		for j := range columns {
			if r, ok := analytics.Pearson(columns[i], columns[j]); ok {
				res.Matrix[i][j] = &r
			}
		}
	}

	col := 1
	for i, a := range assets {
		if a.Name == selected.Name {
			col = i + 1
		}
	}
	for k, d := range dates {
		res.Scatter = append(res.Scatter, ScatterPoint{Date: d, Sentiment: columns[0][k], Price: columns[col][k]})
	}

	returns := make([][]analytics.DailyValue, len(series))
	for i := range series {
		returns[i] = analytics.Returns(series[i])
	}
	rdates, rcols := analytics.InnerJoin(append([][]analytics.DailyValue{sentiment}, returns...)...)
	res.ReturnDays = len(rdates)
	if len(rdates) > 0 {
		for i := range assets {
			if r, ok := analytics.Pearson(rcols[0], rcols[i+1]); ok {
				res.Returns[i].Coefficient = &r
			}
		}
		res.GroupReturns = analytics.GroupReturns(s.scale, rcols[0], rcols[1:])
	}
	return res, nil
}

func nullMatrix(n int) [][]*float64 {
	m := make([][]*float64, n)
	for i := range m {
		m[i] = make([]*float64, n)
	}
	return m
}

// Technical holds Bollinger bands and volatility of the selected asset.
type Technical struct {
	Asset       config.Asset               `json:"asset"`
	Points      []analytics.BollingerPoint `json:"points"`
	Volatility  *float64                   `json:"volatility"`
	Sentiment   []analytics.DailyValue     `json:"sentiment"`
	PriceStatus PriceStatus                `json:"price_status"`
}

// Technical computes the indicators over the filter window. Prices are read
// from TechnicalLookbackDays before the window so the rolling statistics
// are already warm on its first day.
func (s *Service) Technical(ctx context.Context, f Filter) (*Technical, error) {
	asset, err := s.asset(f.Asset)
	if err != nil {
		return nil, err
	}
	if f.From.IsZero() || f.To.IsZero() {
		return nil, apperrors.NewValidationError("technical indicators need a start and an end date")
	}
	records, err := s.records(ctx, f, models.NewsQuery{OnlyScored: true})
	if err != nil {
		return nil, err
	}

	res := &Technical{
		Asset:     asset,
		Points:    []analytics.BollingerPoint{},
		Sentiment: analytics.DailyMean(records),
	}
	if res.Sentiment == nil {
		res.Sentiment = []analytics.DailyValue{}
	}

	from, to := startOfDay(f.From), startOfDay(f.To)
	closes, status := s.closes(ctx, asset, from.AddDate(0, 0, -TechnicalLookbackDays), to)
	res.PriceStatus = status
	if status != PriceOK {
		return res, nil
	}

	first, last := from.Format(models.DateLayout), to.Format(models.DateLayout)
	var window []analytics.DailyValue
	for _, p := range analytics.Bollinger(closes, BollingerWindow, BollingerWidth) {
		if p.Date >= first && p.Date <= last {
			res.Points = append(res.Points, p)
			window = append(window, analytics.DailyValue{Date: p.Date, Value: p.Close})
		}
	}
	if v, ok := analytics.AnnualizedVolatility(window); ok {
		res.Volatility = &v
	}
	if len(res.Points) == 0 {
		res.PriceStatus = PriceNoData
	}
	return res, nil
}
