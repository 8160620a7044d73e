package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"regional-pulse/dashboard"
)

// GetOptions lists what the filter bar can select.
func (h *Handler) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"regions": h.svc.Regions(),
		"assets":  h.svc.Assets(),
		"scale":   h.svc.Scale(),
		"legend":  dashboard.Legend(),
	})
}

func (h *Handler) GetRegionMap(c *gin.Context) {
	f, _, err := h.parseFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	payload, err := h.svc.RegionMap(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) GetIssues(c *gin.Context) {
	f, _, err := h.parseFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	limit, err := parseLimit(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	issues, err := h.svc.Issues(c.Request.Context(), f, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

func (h *Handler) GetChart(c *gin.Context) {
	f, _, err := h.parseFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	chart, err := h.svc.Chart(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

func (h *Handler) GetMetrics(c *gin.Context) {
	f, _, err := h.parseFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	metrics, err := h.svc.Metrics(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (h *Handler) GetCorrelation(c *gin.Context) {
	f, _, err := h.parseFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	corr, err := h.svc.Correlation(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, corr)
}

func (h *Handler) GetCalendar(c *gin.Context) {
	f, _, err := h.parseFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	cells, err := h.svc.Calendar(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cells)
}

// GetDayDetail uses only the region of the filter; the day comes from the
// path.
func (h *Handler) GetDayDetail(c *gin.Context) {
	f, _, err := h.parseFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	detail, err := h.svc.DayDetail(c.Request.Context(), f, c.Param("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) GetTechnical(c *gin.Context) {
	f, _, err := h.parseFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	tech, err := h.svc.Technical(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tech)
}

// GetLatestNews ignores the date window so the list always shows the
// newest stored articles of the region.
func (h *Handler) GetLatestNews(c *gin.Context) {
	f, _, err := h.parseFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	news, err := h.svc.LatestNews(c.Request.Context(), dashboard.Filter{Region: f.Region})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, news)
}
