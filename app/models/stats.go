package models

// DailyStats represents a per-day count used by admin dashboard charts.
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
