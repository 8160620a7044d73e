package models

import "time"

// NewsQuery selects records from a store. Zero values disable a filter.
type NewsQuery struct {
	From           time.Time
	To             time.Time // exclusive
	RegionContains string
	RequireKeyword bool
	OnlyScored     bool
	Limit          int
	NewestFirst    bool
}

// DayRange returns a query covering whole calendar days from..to inclusive.
func DayRange(from, to time.Time) NewsQuery {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)
	return NewsQuery{From: start, To: end}
}
