package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarydesk/librarydesk-api/internal/models"
	appErrors "github.com/librarydesk/librarydesk-api/pkg/errors"
)

type studentSetMock struct {
	students []models.Student
	err      error
}

func (m *studentSetMock) ListAll(_ context.Context) ([]models.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.students, nil
}

func enrolled(month time.Month, year int, paid, pending int64) models.Student {
	joined := time.Date(year, month, 10, 0, 0, 0, 0, time.UTC)
	return models.Student{JoiningDate: &joined, Paid: paid, PendingAmount: pending}
}

func TestAggregateGroupsByJoiningMonth(t *testing.T) {
	students := []models.Student{
		enrolled(time.January, 2025, 100000, 50000),
		enrolled(time.January, 2025, 200000, 0),
		enrolled(time.February, 2025, 50000, 25000),
	}

	aggregates := Aggregate(students)
	require.Len(t, aggregates, 2)

	assert.Equal(t, "Feb 2025", aggregates[0].Month)
	assert.Equal(t, 1, aggregates[0].NewStudents)
	assert.Equal(t, int64(50000), aggregates[0].Collected)
	assert.Equal(t, int64(25000), aggregates[0].Pending)

	assert.Equal(t, "Jan 2025", aggregates[1].Month)
	assert.Equal(t, 2, aggregates[1].NewStudents)
	assert.Equal(t, int64(300000), aggregates[1].Collected)
	assert.Equal(t, int64(50000), aggregates[1].Pending)
}

func TestAggregateOrdersByCalendarNotLabel(t *testing.T) {
	// "Dec 2024" sorts after "Apr 2025" as a string; the rollup must not.
	students := []models.Student{
		enrolled(time.December, 2024, 1, 0),
		enrolled(time.April, 2025, 1, 0),
		enrolled(time.January, 2025, 1, 0),
	}

	aggregates := Aggregate(students)
	require.Len(t, aggregates, 3)
	assert.Equal(t, "Apr 2025", aggregates[0].Month)
	assert.Equal(t, "Jan 2025", aggregates[1].Month)
	assert.Equal(t, "Dec 2024", aggregates[2].Month)
}

func TestAggregateSkipsMissingJoiningDate(t *testing.T) {
	students := []models.Student{
		{Paid: 100000},
		enrolled(time.March, 2025, 50000, 0),
	}

	aggregates := Aggregate(students)
	require.Len(t, aggregates, 1)
	assert.Equal(t, "Mar 2025", aggregates[0].Month)
	assert.Equal(t, int64(50000), aggregates[0].Collected)
}

func TestAggregatePreservesTotals(t *testing.T) {
	students := []models.Student{
		enrolled(time.January, 2025, 10000, 5000),
		enrolled(time.February, 2025, 20000, 0),
		enrolled(time.February, 2025, 30000, 15000),
		enrolled(time.May, 2024, 40000, 2500),
	}

	var wantCollected, wantPending int64
	wantCount := 0
	for _, s := range students {
		wantCollected += s.Paid
		wantPending += s.PendingAmount
		wantCount++
	}

	var gotCollected, gotPending int64
	gotCount := 0
	for _, agg := range Aggregate(students) {
		gotCollected += agg.Collected
		gotPending += agg.Pending
		gotCount += agg.NewStudents
	}

	assert.Equal(t, wantCollected, gotCollected)
	assert.Equal(t, wantPending, gotPending)
	assert.Equal(t, wantCount, gotCount)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}

func TestMonthlyLoadFailure(t *testing.T) {
	svc := NewReportService(ReportServiceParams{
		Repo: &studentSetMock{err: errors.New("connection refused")},
	})

	_, _, err := svc.Monthly(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLoadFailed.Code, appErrors.FromError(err).Code)
}

func TestExportCSV(t *testing.T) {
	svc := NewReportService(ReportServiceParams{
		Repo: &studentSetMock{students: []models.Student{
			enrolled(time.January, 2025, 600000, 400000),
		}},
	})

	result, err := svc.Export(context.Background(), ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "monthly_report.csv", result.Filename)

	lines := strings.Split(strings.TrimSpace(string(result.Content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Month,New Students,Fees Collected,Pending", strings.TrimSpace(lines[0]))
	assert.Equal(t, "Jan 2025,1,6000.00,4000.00", strings.TrimSpace(lines[1]))
}

func TestExportPDF(t *testing.T) {
	svc := NewReportService(ReportServiceParams{
		Repo: &studentSetMock{students: []models.Student{
			enrolled(time.January, 2025, 600000, 0),
		}},
	})

	result, err := svc.Export(context.Background(), ExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := NewReportService(ReportServiceParams{Repo: &studentSetMock{}})

	_, err := svc.Export(context.Background(), ExportFormat("docx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
