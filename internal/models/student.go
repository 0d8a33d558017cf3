package models

import "time"

// Floor identifies one of the fixed seating zones.
type Floor string

const (
	FloorFirst  Floor = "1st Floor"
	FloorSecond Floor = "2nd Floor"
	FloorCabin  Floor = "Cabin"
)

// ValidFloor reports whether the value is one of the recognised zones.
func ValidFloor(f Floor) bool {
	switch f {
	case FloorFirst, FloorSecond, FloorCabin:
		return true
	}
	return false
}

// Student represents one enrolled occupant. All money amounts are stored in
// paise so repeated additions never accumulate float drift.
type Student struct {
	ID              string     `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Phone           string     `db:"phone" json:"phone,omitempty"`
	Floor           Floor      `db:"floor" json:"floor"`
	SeatNo          string     `db:"seat_no" json:"seat_no"`
	PackageMonths   int        `db:"package_months" json:"package_months"`
	Fees            int64      `db:"fees" json:"fees"`
	Paid            int64      `db:"paid" json:"paid"`
	PendingAmount   int64      `db:"pending_amount" json:"pending_amount"`
	CreditBalance   int64      `db:"credit_balance" json:"credit_balance"`
	ReceiptNo       string     `db:"receipt_no" json:"receipt_no,omitempty"`
	Remarks         string     `db:"remarks" json:"remarks,omitempty"`
	PaymentMethod   string     `db:"payment_method" json:"payment_method,omitempty"`
	JoiningDate     *time.Time `db:"joining_date" json:"joining_date,omitempty"`
	AllottedDate    *time.Time `db:"allotted_date" json:"allotted_date,omitempty"`
	NextPaymentDate *time.Time `db:"next_payment_date" json:"next_payment_date,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Floor     Floor
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
