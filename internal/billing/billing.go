// Package billing holds the fee computation rules: pending balance, credit
// on overpayment, and calendar-month due-date arithmetic. Everything here is
// pure and reentrant; callers persist the results.
package billing

import (
	"fmt"
	"time"
)

// Result carries the derived billing fields for a student record.
type Result struct {
	// PendingAmount is max(fees-paid, 0), in paise. Never negative.
	PendingAmount int64
	// CreditBalance is max(paid-fees, 0), in paise. Overpayment is kept as
	// credit instead of a negative pending balance.
	CreditBalance int64
	// NextDueDate is the anchor advanced by the package length.
	NextDueDate time.Time
}

// Compute derives the pending balance, credit balance and next due date from
// the charged fees, the amount paid so far, the package length in months and
// the anchor date (normally the allotted date).
func Compute(fees, paid int64, packageMonths int, anchor time.Time) Result {
	res := Result{NextDueDate: AddCalendarMonths(anchor, packageMonths)}
	switch diff := fees - paid; {
	case diff > 0:
		res.PendingAmount = diff
	case diff < 0:
		res.CreditBalance = -diff
	}
	return res
}

// Anchor resolves the billing anchor date: the allotted date when present,
// else the joining date, else now.
func Anchor(allotted, joining *time.Time, now time.Time) time.Time {
	if allotted != nil && !allotted.IsZero() {
		return *allotted
	}
	if joining != nil && !joining.IsZero() {
		return *joining
	}
	return now
}

// Renew advances a due date after a payment covering monthsPaid cycles. The
// new date is anchored on the previous due date, not on the day the payment
// was recorded, so early or late payments never drift the schedule.
func Renew(previousDue time.Time, monthsPaid int) time.Time {
	return AddCalendarMonths(previousDue, monthsPaid)
}

// AddCalendarMonths adds n calendar months to t, clamping the day to the last
// valid day of the target month (Jan 31 + 1 month = Feb 28/29). time.AddDate
// would roll the overflow into the following month instead, which is not how
// billing cycles are communicated. Clamping means addition is associative only
// for days 1-28; month-end anchors fold onto the clamped day.
func AddCalendarMonths(t time.Time, n int) time.Time {
	year, month := t.Year(), int(t.Month())-1+n
	year += month / 12
	month = month % 12
	if month < 0 {
		month += 12
		year--
	}
	targetMonth := time.Month(month + 1)

	day := t.Day()
	if last := daysIn(year, targetMonth); day > last {
		day = last
	}

	return time.Date(year, targetMonth, day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// MonthKey converts a date to a chronologically ordered month index
// (year*12 + month). Labels like "Jan 2025" do not sort as strings; this key
// does.
func MonthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// MonthLabel formats the month the way the report table shows it.
func MonthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}

// FormatAmount renders a paise amount as a rupee string with two decimals,
// e.g. 600000 -> "6000.00".
func FormatAmount(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%s%d.%02d", sign, paise/100, paise%100)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
