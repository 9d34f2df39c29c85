package models

import "time"

// DashboardSummary aggregates status counts across the lifecycle and workflow domains.
type DashboardSummary struct {
	Applicants  map[string]int `json:"applicants"`
	Students    map[string]int `json:"students"`
	ResultBatch map[string]int `json:"resultBatches"`
	Payments    map[string]int `json:"payments"`
	GeneratedAt time.Time      `json:"generatedAt"`
	FromCache   bool           `json:"fromCache"`
}

// StatusCount is a single grouped row returned by status aggregation queries.
type StatusCount struct {
	Status string `db:"status"`
	Total  int    `db:"total"`
}
