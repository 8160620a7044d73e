package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"regional-pulse/apperrors"
	"regional-pulse/dashboard"
	"regional-pulse/models"
)

// FilterParams echoes the request filter back to the page.
type FilterParams struct {
	From   string
	To     string
	Region string
	Asset  string
}

type filterQuery struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Region    string `form:"region"`
	Asset     string `form:"asset"`
}

type issuesQuery struct {
	Limit int `form:"limit" binding:"min=0,max=100"`
}

// parseFilter reads start_date, end_date, region and asset. Missing dates
// default to the last DefaultWindowDays days ending today.
func (h *Handler) parseFilter(c *gin.Context) (dashboard.Filter, FilterParams, error) {
	var q filterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return dashboard.Filter{}, FilterParams{}, apperrors.NewValidationError("start_date and end_date must be YYYY-MM-DD")
	}

	now := h.now()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if q.EndDate != "" {
		to, _ = time.Parse(models.DateLayout, q.EndDate)
	}
	from := to.AddDate(0, 0, -DefaultWindowDays)
	if q.StartDate != "" {
		from, _ = time.Parse(models.DateLayout, q.StartDate)
	}

	region := strings.TrimSpace(q.Region)
	if region == "" {
		region = dashboard.AllRegions
	}
	f := dashboard.Filter{
		From:   from,
		To:     to,
		Region: region,
		Asset:  strings.TrimSpace(q.Asset),
	}
	if err := h.svc.Validate(f); err != nil {
		return dashboard.Filter{}, FilterParams{}, err
	}

	params := FilterParams{
		From:   from.Format(models.DateLayout),
		To:     to.Format(models.DateLayout),
		Region: region,
		Asset:  f.Asset,
	}
	return f, params, nil
}

func parseLimit(c *gin.Context) (int, error) {
	var q issuesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return 0, apperrors.NewValidationError("limit must be an integer between 0 and 100")
	}
	return q.Limit, nil
}
