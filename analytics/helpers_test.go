package analytics

import (
	"testing"
	"time"

	"regional-pulse/models"
)

func record(region string, score *float64) models.NewsRecord {
	r := models.NewsRecord{Title: "t", PublishedTime: time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)}
	if region != "" {
		r.Region = models.StrPtr(region)
	}
	r.SentimentScore = score
	return r
}

func keywordRecord(keyword string, score *float64) models.NewsRecord {
	r := record("", score)
	r.Keyword = models.StrPtr(keyword)
	return r
}

func dayRecord(t *testing.T, day string, score float64) models.NewsRecord {
	t.Helper()
	ts, err := time.Parse(models.DateLayout, day)
	if err != nil {
		t.Fatalf("failed to parse day %q: %v", day, err)
	}
	r := record("서울", models.FloatPtr(score))
	r.PublishedTime = ts.Add(10 * time.Hour)
	return r
}

func testTaxonomy() []CanonicalRegion {
	return []CanonicalRegion{
		{Name: "서울", Aliases: []string{"서울", "Seoul"}},
		{Name: "경기도", Aliases: []string{"경기", "인천"}},
		{Name: "경상도", Aliases: []string{"경상", "경남", "경북", "부산"}},
		{Name: "전라도", Aliases: []string{"전라", "전남", "전북"}},
	}
}
