package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"regional-pulse/analytics"
	"regional-pulse/apperrors"
	"regional-pulse/config"
	"regional-pulse/database"
	"regional-pulse/market"
	"regional-pulse/models"
)

// AllRegions selects every record regardless of region.
const AllRegions = "전국"

// PriceStatus tells the renderer whether a price overlay is present.
type PriceStatus string

const (
	PriceOK          PriceStatus = "ok"
	PriceUnavailable PriceStatus = "unavailable"
	PriceNoData      PriceStatus = "no-data"
)

// Filter scopes a dashboard query. From and To are inclusive calendar
// days; a zero value leaves that side open.
type Filter struct {
	From   time.Time
	To     time.Time
	Region string
	Asset  string
}

// Options size the lists of the dashboard.
type Options struct {
	CountUnscored bool
	PopupSize     int
	PanelSize     int
	LatestSize    int
	DaySize       int
	TopIssues     int
}

func (o *Options) setDefaults() {
	if o.PopupSize <= 0 {
		o.PopupSize = 10
	}
	if o.PanelSize <= 0 {
		o.PanelSize = 5
	}
	if o.LatestSize <= 0 {
		o.LatestSize = 5
	}
	if o.DaySize <= 0 {
		o.DaySize = 5
	}
	if o.TopIssues <= 0 {
		o.TopIssues = analytics.DefaultTopIssues
	}
}

// Service computes every dashboard data product from a fresh snapshot of
// the record store per call.
type Service struct {
	reader     database.Reader
	prices     market.PriceSource
	taxonomy   *config.Taxonomy
	normalizer *analytics.RegionNormalizer
	aggregator *analytics.Aggregator
	ranker     *analytics.IssueRanker
	classifier *analytics.KeywordClassifier
	scale      analytics.Scale
	opts       Options
	logger     zerolog.Logger
}

// NewService wires the analytics pipeline. prices may be nil, in which case
// every price overlay reports PriceUnavailable.
func NewService(reader database.Reader, prices market.PriceSource, taxonomy *config.Taxonomy, opts Options, logger zerolog.Logger) (*Service, error) {
	normalizer, err := taxonomy.Normalizer()
	if err != nil {
		return nil, err
	}
	opts.setDefaults()

	return &Service{
		reader:     reader,
		prices:     prices,
		taxonomy:   taxonomy,
		normalizer: normalizer,
		aggregator: analytics.NewAggregator(normalizer, analytics.AggregatorOptions{CountUnscored: opts.CountUnscored}, logger),
		ranker:     analytics.NewIssueRanker(analytics.SignedScale, taxonomy.MinTokenLength),
		classifier: analytics.NewKeywordClassifier(taxonomy.EconomicKeywords),
		scale:      analytics.SignedScale,
		opts:       opts,
		logger:     logger,
	}, nil
}

// Regions lists the selectable regions, AllRegions first.
func (s *Service) Regions() []string {
	return append([]string{AllRegions}, s.normalizer.Regions()...)
}

// Assets lists the configured price overlays.
func (s *Service) Assets() []config.Asset {
	return append([]config.Asset(nil), s.taxonomy.Assets...)
}

// Scale is the scale stored scores live on.
func (s *Service) Scale() analytics.Scale {
	return s.scale
}

// Validate checks a filter before it is run.
func (s *Service) Validate(f Filter) error {
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return apperrors.NewValidationError("end date is before start date")
	}
	if f.Asset != "" {
		if _, err := s.asset(f.Asset); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) asset(key string) (config.Asset, error) {
	a, ok := s.taxonomy.Asset(key)
	if !ok {
		if key == "" {
			return config.Asset{}, apperrors.NewNotFoundError("no assets configured")
		}
		return config.Asset{}, apperrors.NewValidationError(fmt.Sprintf("unknown asset %s, expected one of %s", key, strings.Join(s.taxonomy.AssetNames(), ", ")))
	}
	return a, nil
}

func applyDates(q *models.NewsQuery, f Filter) {
	if !f.From.IsZero() {
		q.From = startOfDay(f.From)
	}
	if !f.To.IsZero() {
		q.To = startOfDay(f.To).AddDate(0, 0, 1)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// records reads the filtered snapshot. A canonical region is matched through
// the normalizer, AllRegions or "" matches everything, and any other value
// is a raw substring match against the stored label.
func (s *Service) records(ctx context.Context, f Filter, q models.NewsQuery) ([]models.NewsRecord, error) {
	if err := s.Validate(f); err != nil {
		return nil, err
	}
	applyDates(&q, f)

	region := strings.TrimSpace(f.Region)
	switch {
	case region == "" || region == AllRegions:
		return s.reader.Find(ctx, q)
	case s.normalizer.IsCanonical(region):
		limit := q.Limit
		q.Limit = 0
		all, err := s.reader.Find(ctx, q)
		if err != nil {
			return nil, err
		}
		out := all[:0]
		for _, rec := range all {
			if s.inRegion(rec, region) {
				out = append(out, rec)
				if limit > 0 && len(out) == limit {
					break
				}
			}
		}
		return out, nil
	default:
		q.RegionContains = region
		return s.reader.Find(ctx, q)
	}
}

func (s *Service) inRegion(rec models.NewsRecord, canonical string) bool {
	label, ok := rec.RegionLabel()
	if !ok {
		return false
	}
	got, ok := s.normalizer.Normalize(label)
	return ok && got == canonical
}

// closes fetches a price series and classifies the outcome. Failures are
// logged and reported through the status, never returned.
func (s *Service) closes(ctx context.Context, asset config.Asset, from, to time.Time) ([]analytics.DailyValue, PriceStatus) {
	if s.prices == nil {
		return nil, PriceUnavailable
	}
	series, err := s.prices.DailyCloses(ctx, asset.Symbol, from, to)
	if err != nil {
		s.logger.Warn().Err(err).Str("asset", asset.Name).Msg("Price series unavailable")
		return nil, PriceUnavailable
	}
	if len(series) == 0 {
		return nil, PriceNoData
	}
	return series, PriceOK
}

// priceRange is the filter's window, falling back to the span of the
// given series for open sides.
func priceRange(f Filter, series []analytics.DailyValue) (time.Time, time.Time, bool) {
	from, to := f.From, f.To
	if len(series) > 0 {
		if from.IsZero() {
			from, _ = time.Parse(models.DateLayout, series[0].Date)
		}
		if to.IsZero() {
			to, _ = time.Parse(models.DateLayout, series[len(series)-1].Date)
		}
	}
	if from.IsZero() || to.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	return startOfDay(from), startOfDay(to), true
}

// ArticleView is one article as shown in lists and popups.
type ArticleView struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Region      string   `json:"region"`
	PublishedAt string   `json:"published_at"`
	Score       *float64 `json:"sentiment_score"`
	Label       string   `json:"label"`
	Color       string   `json:"color"`
	Icon        string   `json:"icon"`
	Badge       string   `json:"badge"`
}

func articleView(rec models.NewsRecord) ArticleView {
	title := rec.Title
	if title == "" {
		title = "제목 없음"
	}
	region, _ := rec.RegionLabel()
	return ArticleView{
		ID:          rec.ID,
		Title:       title,
		URL:         rec.URL,
		Region:      region,
		PublishedAt: rec.PublishedTime.Format("2006-01-02 15:04"),
		Score:       rec.SentimentScore,
		Label:       analytics.SentimentLabel(rec.SentimentScore),
		Color:       analytics.SentimentColor(rec.SentimentScore),
		Icon:        analytics.SentimentIcon(rec.SentimentScore),
		Badge:       analytics.SentimentHex(rec.SentimentScore),
	}
}

func newestFirst(records []models.NewsRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PublishedTime.After(records[j].PublishedTime)
	})
}

// LatestNews returns the newest articles of the filter's region.
func (s *Service) LatestNews(ctx context.Context, f Filter) ([]ArticleView, error) {
	records, err := s.records(ctx, f, models.NewsQuery{NewestFirst: true, Limit: s.opts.LatestSize})
	if err != nil {
		return nil, err
	}
	out := make([]ArticleView, len(records))
	for i, rec := range records {
		out[i] = articleView(rec)
	}
	return out, nil
}

// Issues ranks keyword tokens of the filtered records.
func (s *Service) Issues(ctx context.Context, f Filter, topN int) ([]analytics.IssueEntry, error) {
	if topN <= 0 {
		topN = s.opts.TopIssues
	}
	records, err := s.records(ctx, f, models.NewsQuery{RequireKeyword: true})
	if err != nil {
		return nil, err
	}
	issues := s.ranker.Rank(records, topN)
	if issues == nil {
		issues = []analytics.IssueEntry{}
	}
	return issues, nil
}
