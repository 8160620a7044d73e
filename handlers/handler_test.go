package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regional-pulse/analytics"
	"regional-pulse/config"
	"regional-pulse/dashboard"
	"regional-pulse/database"
	"regional-pulse/models"
	"regional-pulse/templates"
)

type stubPrices struct{}

func (stubPrices) DailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]analytics.DailyValue, error) {
	if symbol != "KS11" {
		return nil, errors.New("not listed")
	}
	return []analytics.DailyValue{{Date: "2025-01-06", Value: 2500}, {Date: "2025-01-07", Value: 2550}}, nil
}

func record(url, region string, published time.Time, score *float64, keyword string) models.NewsRecord {
	r := models.NewsRecord{Title: "기사 " + url, URL: url, PublishedTime: published, SentimentScore: score, IsProcessed: score != nil}
	if region != "" {
		r.Region = models.StrPtr(region)
	}
	if keyword != "" {
		r.Keyword = models.StrPtr(keyword)
	}
	return r
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "news.db")
	db, err := database.Open(path, zerolog.Nop())
	require.NoError(t, err)
	store := database.NewStore(db, path)
	t.Cleanup(func() { _ = store.Close() })

	at := func(d string) time.Time {
		ts, _ := time.Parse(models.DateLayout, d)
		return ts.Add(9 * time.Hour)
	}
	_, err = store.InsertIgnore(context.Background(), []models.NewsRecord{
		record("a", "서울", at("2025-01-06"), models.FloatPtr(0.5), "금리, 경제"),
		record("b", "부산", at("2025-01-07"), models.FloatPtr(-0.5), "수출"),
		record("c", "대구", at("2025-01-07"), nil, "수출"),
	})
	require.NoError(t, err)

	taxonomy, err := config.LoadTaxonomy("")
	require.NoError(t, err)
	svc, err := dashboard.NewService(store, stubPrices{}, taxonomy, dashboard.Options{}, zerolog.Nop())
	require.NoError(t, err)

	h := New(svc, zerolog.Nop())
	h.now = func() time.Time { return time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC) }

	tmpl, err := templates.Load()
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.SetHTMLTemplate(tmpl)
	h.Register(r)
	return r
}

func get(r *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDIsKept(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/options", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	w = get(r, "/api/options")
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
}

func TestRootRedirects(t *testing.T) {
	r := setupRouter(t)
	w := get(r, "/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestDashboardPage(t *testing.T) {
	r := setupRouter(t)

	w := get(r, "/dashboard?region=경상도")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "지역 뉴스 감성 대시보드")
	assert.Contains(t, body, "기사 b")
	assert.Contains(t, body, "수출")
	assert.NotContains(t, body, "기사 a")

	w = get(r, "/dashboard?start_date=2025-13-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestGetOptions(t *testing.T) {
	r := setupRouter(t)

	w := get(r, "/api/options")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Regions []string       `json:"regions"`
		Assets  []config.Asset `json:"assets"`
		Scale   struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"scale"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, dashboard.AllRegions, body.Regions[0])
	assert.Equal(t, "KOSPI", body.Assets[0].Name)
	assert.Equal(t, -1.0, body.Scale.Min)
}

func TestGetRegionMapUsesDefaultWindow(t *testing.T) {
	r := setupRouter(t)

	w := get(r, "/api/regions")
	require.Equal(t, http.StatusOK, w.Code)

	var payload dashboard.MapPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Len(t, payload.Regions, 6)
	assert.Equal(t, 2, payload.Stats["경상도"].TotalCount+payload.Stats["서울"].TotalCount)

	w = get(r, "/api/regions?start_date=2024-01-01&end_date=2024-01-31")
	require.Equal(t, http.StatusOK, w.Code)
	payload = dashboard.MapPayload{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Empty(t, payload.Regions)
}

func TestGetChart(t *testing.T) {
	r := setupRouter(t)

	w := get(r, "/api/chart?start_date=2025-01-06&end_date=2025-01-07")
	require.Equal(t, http.StatusOK, w.Code)
	var chart dashboard.ChartResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chart))
	assert.Equal(t, dashboard.PriceOK, chart.PriceStatus)
	require.Len(t, chart.Points, 2)
	require.NotNil(t, chart.Points[1].AssetPrice)
	assert.Equal(t, 2550.0, *chart.Points[1].AssetPrice)

	w = get(r, "/api/chart?asset=KOSDAQ")
	require.Equal(t, http.StatusOK, w.Code)
	chart = dashboard.ChartResult{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chart))
	assert.Equal(t, dashboard.PriceUnavailable, chart.PriceStatus)
}

func TestBadRequests(t *testing.T) {
	r := setupRouter(t)

	for _, url := range []string{
		"/api/chart?asset=NIKKEI",
		"/api/metrics?start_date=2025-01-09&end_date=2025-01-01",
		"/api/issues?limit=abc",
		"/api/issues?limit=500",
		"/api/calendar/yesterday",
	} {
		w := get(r, url)
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
		assert.Contains(t, w.Body.String(), "error", url)
	}
}

func TestGetIssuesAndNews(t *testing.T) {
	r := setupRouter(t)

	w := get(r, "/api/issues?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	var issues []analytics.IssueEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issues))
	require.Len(t, issues, 1)
	assert.Equal(t, "수출", issues[0].Token)

	w = get(r, "/api/news?region=서울")
	require.Equal(t, http.StatusOK, w.Code)
	var news []dashboard.ArticleView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &news))
	require.Len(t, news, 1)
	assert.Equal(t, "a", news[0].URL)
}

func TestGetCalendarAndDay(t *testing.T) {
	r := setupRouter(t)

	w := get(r, "/api/calendar")
	require.Equal(t, http.StatusOK, w.Code)
	var cells []dashboard.CalendarCell
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cells))
	assert.Len(t, cells, 2)

	w = get(r, "/api/calendar/2025-01-07?region=경상도")
	require.Equal(t, http.StatusOK, w.Code)
	var detail dashboard.DayDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, 2, detail.Count)
	require.Len(t, detail.Articles, 2)
	assert.Equal(t, "b", detail.Articles[0].URL)
}

func TestGetMetricsAndTechnical(t *testing.T) {
	r := setupRouter(t)

	w := get(r, "/api/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	var m dashboard.Metrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, 3, m.Count)
	assert.True(t, m.HasSentiment)

	w = get(r, "/api/technical?start_date=2025-01-06&end_date=2025-01-07")
	require.Equal(t, http.StatusOK, w.Code)
	var tech dashboard.Technical
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tech))
	assert.Equal(t, dashboard.PriceOK, tech.PriceStatus)
	assert.Len(t, tech.Points, 2)

	w = get(r, "/api/correlation")
	assert.Equal(t, http.StatusOK, w.Code)
}
