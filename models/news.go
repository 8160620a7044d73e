package models

import "time"

// NewsRecord is a stored article. Optional columns are pointers so that a
// NULL in the store stays distinguishable from an empty or zero value.
// Time columns go through the sqltime serializer so databases written by the
// crawler scripts, which keep timestamps as TEXT, read the same way.
type NewsRecord struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Title          string     `json:"title" gorm:"not null"`
	Content        string     `json:"content"`
	Region         *string    `json:"region"`
	SentimentScore *float64   `json:"sentiment_score"`
	IsProcessed    bool       `json:"is_processed" gorm:"default:false"`
	PublishedTime  time.Time  `json:"published_time" gorm:"index;type:time;serializer:sqltime"`
	URL            string     `json:"url" gorm:"uniqueIndex"`
	Keyword        *string    `json:"keyword"`
	CollectedAt    *time.Time `json:"collected_at" gorm:"type:time;serializer:sqltime"`
	CreatedAt      time.Time  `json:"created_at" gorm:"type:time;serializer:sqltime"`
}

func (NewsRecord) TableName() string {
	return "news"
}

// RegionLabel returns the raw region label and whether one is present.
func (r NewsRecord) RegionLabel() (string, bool) {
	if r.Region == nil || *r.Region == "" {
		return "", false
	}
	return *r.Region, true
}

// Score returns the sentiment score and whether the record has been scored.
func (r NewsRecord) Score() (float64, bool) {
	if r.SentimentScore == nil {
		return 0, false
	}
	return *r.SentimentScore, true
}

// KeywordText returns the raw keyword field, or "" when absent.
func (r NewsRecord) KeywordText() string {
	if r.Keyword == nil {
		return ""
	}
	return *r.Keyword
}

// Day returns the calendar date of publication as YYYY-MM-DD.
func (r NewsRecord) Day() string {
	return r.PublishedTime.Format(DateLayout)
}

// DateLayout is the date format used for every day-keyed series.
const DateLayout = "2006-01-02"

// StrPtr and FloatPtr build optional fields.
func StrPtr(s string) *string { return &s }

func FloatPtr(f float64) *float64 { return &f }
