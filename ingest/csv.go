package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"regional-pulse/apperrors"
)

const utf8BOM = "\ufeff"

// Row is one article line of a crawler export.
type Row struct {
	Line    int
	Title   string
	Content string
	Region  string
	Date    string
	URL     string
}

// ReadRows parses a crawler CSV export. The header must contain a "date"
// column; the url is read from "article_url" when present, else "url".
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewValidationError("csv file is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, utf8BOM)))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	if _, ok := cols["date"]; !ok {
		return nil, apperrors.NewValidationError("csv has no 'date' column")
	}
	urlCol := "url"
	if _, ok := cols["article_url"]; ok {
		urlCol = "article_url"
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		rows = append(rows, Row{
			Line:    line,
			Title:   field(rec, "title"),
			Content: field(rec, "content"),
			Region:  field(rec, "region"),
			Date:    field(rec, "date"),
			URL:     field(rec, urlCol),
		})
	}
	return rows, nil
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006.01.02 15:04",
	"2006-01-02",
	"2006.01.02",
	"2006/01/02",
}

// ParseDate reads a crawler date. The result is a naive wall-clock time
// carried in UTC; zone offsets in the input are dropped, not applied.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperrors.NewValidationError("empty date")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return wallClock(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.NewValidationError(fmt.Sprintf("unparsable date %q", s))
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
