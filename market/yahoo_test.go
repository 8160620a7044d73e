package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regional-pulse/analytics"
	"regional-pulse/apperrors"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// openingBell is 09:00 KST of the given date, which is midnight UTC.
func openingBell(s string) int64 {
	return day(s).Unix()
}

func TestTickerFor(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"KS11", "^KS11"},
		{" KQ11 ", "^KQ11"},
		{"^KS11", "^KS11"},
		{"005930.KS", "005930.KS"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TickerFor(tt.in), tt.in)
	}
}

func TestDailyCloses(t *testing.T) {
	var gotPath, gotInterval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"chart":{"result":[{
			"meta":{"symbol":"^KS11","gmtoffset":32400},
			"timestamp":[%d,%d,%d,%d],
			"indicators":{"quote":[{"close":[2500.5,null,2520,2530]}]}
		}],"error":null}}`,
			openingBell("2025-01-06"), openingBell("2025-01-07"), openingBell("2025-01-08"), openingBell("2025-01-09"))
	}))
	defer srv.Close()

	y := NewYahoo(WithBaseURL(srv.URL+"/"), WithRateLimit(100))
	closes, err := y.DailyCloses(context.Background(), "KS11", day("2025-01-06"), day("2025-01-08"))
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/^KS11", gotPath)
	assert.Equal(t, "1d", gotInterval)
	assert.Equal(t, []analytics.DailyValue{
		{Date: "2025-01-06", Value: 2500.5},
		{Date: "2025-01-08", Value: 2520},
	}, closes)
}

func TestDailyClosesEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer srv.Close()

	closes, err := NewYahoo(WithBaseURL(srv.URL)).DailyCloses(context.Background(), "KQ11", day("2025-01-06"), day("2025-01-08"))
	require.NoError(t, err)
	assert.Empty(t, closes)
}

func TestDailyClosesFailuresAreUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "api error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"chart":`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewYahoo(WithBaseURL(srv.URL)).DailyCloses(context.Background(), "KS11", day("2025-01-06"), day("2025-01-08"))
			require.Error(t, err)
			assert.True(t, apperrors.IsUnavailableError(err))
		})
	}
}

func TestDailyClosesValidation(t *testing.T) {
	y := NewYahoo()

	_, err := y.DailyCloses(context.Background(), "", day("2025-01-06"), day("2025-01-08"))
	assert.True(t, apperrors.IsValidationError(err))

	_, err = y.DailyCloses(context.Background(), "KS11", day("2025-01-08"), day("2025-01-06"))
	assert.True(t, apperrors.IsValidationError(err))
}

func TestDailyClosesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewYahoo(WithRateLimit(0.001)).DailyCloses(ctx, "KS11", day("2025-01-06"), day("2025-01-08"))
	assert.True(t, apperrors.IsUnavailableError(err))
}
