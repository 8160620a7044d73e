package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"regional-pulse/analytics"
	"regional-pulse/apperrors"
	"regional-pulse/models"
)

const (
	// DefaultBaseURL is the Yahoo Finance chart API host.
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit is requests per second.
	DefaultRateLimit = 5

	serviceName = "price source"
)

// PriceSource returns daily closing prices for a symbol over [from, to].
type PriceSource interface {
	DailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]analytics.DailyValue, error)
}

// Yahoo is a PriceSource backed by the Yahoo Finance v8 chart API.
type Yahoo struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// Option configures Yahoo.
type Option func(*Yahoo)

func WithBaseURL(baseURL string) Option {
	return func(y *Yahoo) {
		y.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(y *Yahoo) {
		y.httpClient.Timeout = timeout
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(perSecond float64) Option {
	return func(y *Yahoo) {
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		y.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(y *Yahoo) {
		y.logger = logger
	}
}

func NewYahoo(opts ...Option) *Yahoo {
	y := &Yahoo{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// TickerFor maps an index code such as "KS11" to its Yahoo ticker "^KS11".
// Codes that already carry an exchange suffix or caret are kept.
func TickerFor(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" || strings.HasPrefix(symbol, "^") || strings.Contains(symbol, ".") {
		return symbol
	}
	return "^" + symbol
}

// DailyCloses fetches one close per trading day, ordered by date. Days the
// exchange reports without a close are skipped. Any transport or API failure
// is returned as an UnavailableError.
func (y *Yahoo) DailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]analytics.DailyValue, error) {
	ticker := TickerFor(symbol)
	if ticker == "" {
		return nil, apperrors.NewValidationError("symbol is required")
	}
	if to.Before(from) {
		return nil, apperrors.NewValidationError("price range end is before start")
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewUnavailableError(serviceName, err)
	}

	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", from.Unix()))
	// period2 is exclusive on Yahoo's side
	params.Set("period2", fmt.Sprintf("%d", to.AddDate(0, 0, 1).Unix()))
	params.Set("interval", "1d")
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(ticker), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	y.logger.Debug().Str("ticker", ticker).Str("from", from.Format(models.DateLayout)).Str("to", to.Format(models.DateLayout)).Msg("Fetching daily closes")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUnavailableError(serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewUnavailableError(serviceName,
			fmt.Errorf("chart %s: status %d: %s", ticker, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewUnavailableError(serviceName, fmt.Errorf("decode chart %s: %w", ticker, err))
	}
	if parsed.Chart.Error != nil {
		return nil, apperrors.NewUnavailableError(serviceName,
			fmt.Errorf("chart %s: %s", ticker, parsed.Chart.Error.Description))
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, nil
	}

	return closesOf(parsed.Chart.Result[0], from, to), nil
}

// closesOf converts exchange timestamps to local trading dates and keeps
// the last close reported for each date within [from, to].
func closesOf(r chartResult, from, to time.Time) []analytics.DailyValue {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	closes := r.Indicators.Quote[0].Close
	zone := time.FixedZone("exchange", int(r.Meta.GMTOffset))
	first, last := from.Format(models.DateLayout), to.Format(models.DateLayout)

	var out []analytics.DailyValue
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		day := time.Unix(ts, 0).In(zone).Format(models.DateLayout)
		if day < first || day > last {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Date == day {
			out[n-1].Value = *closes[i]
			continue
		}
		out = append(out, analytics.DailyValue{Date: day, Value: *closes[i]})
	}
	return out
}
