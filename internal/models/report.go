package models

// MonthlyAggregate is a reporting rollup of enrollments and amounts grouped
// by the calendar month of the joining date. Never persisted; recomputed on
// every read of the student set.
type MonthlyAggregate struct {
	Month       string `json:"month"`
	NewStudents int    `json:"new_students"`
	Collected   int64  `json:"collected"`
	Pending     int64  `json:"pending"`

	// SortKey is year*12 + month, so aggregates order chronologically rather
	// than by the formatted label.
	SortKey int `json:"-"`
}

// FloorOccupancy counts enrolled students per zone.
type FloorOccupancy struct {
	Floor    Floor `json:"floor"`
	Students int   `json:"students"`
}

// DashboardSummary holds the headline numbers for the admin dashboard.
type DashboardSummary struct {
	TotalStudents int              `json:"total_students"`
	TotalPayments int64            `json:"total_payments"`
	TotalPending  int64            `json:"total_pending"`
	Floors        []FloorOccupancy `json:"floors"`
}
