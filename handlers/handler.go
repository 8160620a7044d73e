package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"regional-pulse/apperrors"
	"regional-pulse/dashboard"
)

// DefaultWindowDays is the date window used when a request names none.
const DefaultWindowDays = 30

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Handler serves the dashboard page and its JSON API.
type Handler struct {
	svc    *dashboard.Service
	mapper *apperrors.Mapper
	logger zerolog.Logger
	now    func() time.Time
}

func New(svc *dashboard.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		mapper: apperrors.NewMapper(),
		logger: logger,
		now:    time.Now,
	}
}

// Register mounts every route on r. Templates must already be set.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})
	r.GET("/dashboard", h.Dashboard)

	api := r.Group("/api")
	{
		api.GET("/options", h.GetOptions)
		api.GET("/regions", h.GetRegionMap)
		api.GET("/issues", h.GetIssues)
		api.GET("/chart", h.GetChart)
		api.GET("/metrics", h.GetMetrics)
		api.GET("/correlation", h.GetCorrelation)
		api.GET("/calendar", h.GetCalendar)
		api.GET("/calendar/:date", h.GetDayDetail)
		api.GET("/technical", h.GetTechnical)
		api.GET("/news", h.GetLatestNews)
	}
}

// RequestLogger tags the request with an id, reusing the caller's when
// present, and logs one line per request at a level following the status.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}

// fail maps err onto a JSON error response.
func (h *Handler) fail(c *gin.Context, err error) {
	status, msg := h.mapper.MapErrorToHttp(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("request_id", c.GetString("request_id")).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.JSON(status, gin.H{"error": msg})
}
