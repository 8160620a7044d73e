package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"regional-pulse/analytics"
	"regional-pulse/config"
	"regional-pulse/dashboard"
)

// DashboardData is what dashboard.html renders server side. Charts and
// the map are fetched by the page from the JSON API.
type DashboardData struct {
	Filters FilterParams
	Regions []string
	Assets  []config.Asset
	Legend  []dashboard.LegendEntry
	Metrics *dashboard.Metrics
	Latest  []dashboard.ArticleView
	Issues  []analytics.IssueEntry
}

func (h *Handler) Dashboard(c *gin.Context) {
	f, params, err := h.parseFilter(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	ctx := c.Request.Context()

	metrics, err := h.svc.Metrics(ctx, f)
	if err != nil {
		h.renderError(c, err)
		return
	}
	latest, err := h.svc.LatestNews(ctx, dashboard.Filter{Region: f.Region})
	if err != nil {
		h.renderError(c, err)
		return
	}
	issues, err := h.svc.Issues(ctx, f, 0)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", DashboardData{
		Filters: params,
		Regions: h.svc.Regions(),
		Assets:  h.svc.Assets(),
		Legend:  dashboard.Legend(),
		Metrics: metrics,
		Latest:  latest,
		Issues:  issues,
	})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	status, msg := h.mapper.MapErrorToHttp(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("Dashboard render failed")
	}
	c.HTML(status, "error.html", gin.H{"error": msg})
}
