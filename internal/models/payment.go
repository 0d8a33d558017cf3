package models

import "time"

// Payment represents one payment event tied to a student. Rows are
// append-only: created alongside an enrollment that carries an initial
// payment, never updated or deleted.
type Payment struct {
	ID          string     `db:"id" json:"id"`
	StudentID   string     `db:"student_id" json:"student_id"`
	Amount      int64      `db:"amount" json:"amount"`
	Method      string     `db:"method" json:"method,omitempty"`
	PaidAt      time.Time  `db:"paid_at" json:"paid_at"`
	NextDueDate *time.Time `db:"next_due_date" json:"next_due_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// PaymentFilter restricts payment listings.
type PaymentFilter struct {
	StudentID string
	Page      int
	PageSize  int
}
