package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputePendingAndDueDate(t *testing.T) {
	// fees 10000.00, paid 4000.00, 3 month package anchored 15 Jan 2025
	res := Compute(1000000, 400000, 3, date(2025, time.January, 15))

	assert.Equal(t, int64(600000), res.PendingAmount)
	assert.Equal(t, int64(0), res.CreditBalance)
	assert.Equal(t, date(2025, time.April, 15), res.NextDueDate)
}

func TestComputeClampsPendingAtZero(t *testing.T) {
	tests := []struct {
		name    string
		fees    int64
		paid    int64
		pending int64
		credit  int64
	}{
		{"exact payment", 500000, 500000, 0, 0},
		{"underpaid", 500000, 200000, 300000, 0},
		{"overpaid keeps credit", 500000, 750000, 0, 250000},
		{"nothing paid", 500000, 0, 500000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(tt.fees, tt.paid, 1, date(2025, time.March, 1))
			assert.Equal(t, tt.pending, res.PendingAmount)
			assert.Equal(t, tt.credit, res.CreditBalance)
		})
	}
}

func TestAddCalendarMonths(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"plain month", date(2025, time.January, 15), 3, date(2025, time.April, 15)},
		{"year rollover", date(2025, time.November, 10), 3, date(2026, time.February, 10)},
		{"multi year", date(2025, time.January, 1), 24, date(2027, time.January, 1)},
		{"clamp to february", date(2025, time.January, 31), 1, date(2025, time.February, 28)},
		{"clamp to leap february", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"clamp to april", date(2025, time.March, 31), 1, date(2025, time.April, 30)},
		{"zero months", date(2025, time.June, 30), 0, date(2025, time.June, 30)},
		{"negative month", date(2025, time.March, 15), -1, date(2025, time.February, 15)},
		{"negative year rollover", date(2025, time.January, 15), -2, date(2024, time.November, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddCalendarMonths(tt.start, tt.months))
		})
	}
}

func TestAddCalendarMonthsAdditivity(t *testing.T) {
	// Additivity holds for anchor days that never clamp (1-28).
	for day := 1; day <= 28; day++ {
		start := date(2025, time.January, day)
		for m1 := 0; m1 <= 6; m1++ {
			for m2 := 0; m2 <= 6; m2++ {
				chained := AddCalendarMonths(AddCalendarMonths(start, m1), m2)
				direct := AddCalendarMonths(start, m1+m2)
				require.Equal(t, direct, chained,
					"day %d: +%d then +%d differs from +%d", day, m1, m2, m1+m2)
			}
		}
	}
}

func TestAddCalendarMonthsPreservesClock(t *testing.T) {
	start := time.Date(2025, time.May, 12, 9, 30, 15, 0, time.UTC)
	got := AddCalendarMonths(start, 2)
	assert.Equal(t, time.Date(2025, time.July, 12, 9, 30, 15, 0, time.UTC), got)
}

func TestRenewAnchorsOnPreviousDue(t *testing.T) {
	previousDue := date(2025, time.April, 15)

	// Result depends only on the stored due date, never on "today".
	assert.Equal(t, date(2025, time.June, 15), Renew(previousDue, 2))
	assert.Equal(t, date(2025, time.May, 15), Renew(previousDue, 1))
	assert.Equal(t, date(2026, time.April, 15), Renew(previousDue, 12))
}

func TestAnchorFallbackChain(t *testing.T) {
	now := date(2025, time.August, 1)
	allotted := date(2025, time.February, 3)
	joining := date(2025, time.January, 20)

	assert.Equal(t, allotted, Anchor(&allotted, &joining, now))
	assert.Equal(t, joining, Anchor(nil, &joining, now))
	assert.Equal(t, now, Anchor(nil, nil, now))

	zero := time.Time{}
	assert.Equal(t, joining, Anchor(&zero, &joining, now), "zero allotted date falls through")
}

func TestMonthKeyOrdersAcrossYears(t *testing.T) {
	dec24 := MonthKey(date(2024, time.December, 31))
	jan25 := MonthKey(date(2025, time.January, 1))
	feb25 := MonthKey(date(2025, time.February, 14))

	assert.Less(t, dec24, jan25)
	assert.Less(t, jan25, feb25)

	// The formatted labels would sort the other way round as strings.
	assert.Equal(t, "Dec 2024", MonthLabel(date(2024, time.December, 31)))
	assert.Equal(t, "Feb 2025", MonthLabel(date(2025, time.February, 14)))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "6000.00", FormatAmount(600000))
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "12.05", FormatAmount(1205))
	assert.Equal(t, "-99.99", FormatAmount(-9999))
}
