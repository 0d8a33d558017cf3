package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/librarydesk/librarydesk-api/internal/billing"
	"github.com/librarydesk/librarydesk-api/internal/models"
	appErrors "github.com/librarydesk/librarydesk-api/pkg/errors"
	"github.com/librarydesk/librarydesk-api/pkg/export"
)

const monthlyReportCacheKey = "reports:monthly"

type studentSetLister interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

// ExportFormat selects the rendering for a report download.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportPDF  ExportFormat = "pdf"
	ExportXLSX ExportFormat = "xlsx"
)

// ExportResult carries rendered report bytes with response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ReportService builds the monthly enrollment/revenue rollup and its export
// renditions.
type ReportService struct {
	repo     studentSetLister
	cache    *CacheService
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	xlsx     *export.XLSXExporter
	logger   *zap.Logger
	cacheTTL time.Duration
	title    string
}

// ReportServiceParams groups constructor dependencies.
type ReportServiceParams struct {
	Repo     studentSetLister
	Cache    *CacheService
	Logger   *zap.Logger
	CacheTTL time.Duration
	Title    string
}

// NewReportService constructs the report service.
func NewReportService(params ReportServiceParams) *ReportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	title := params.Title
	if title == "" {
		title = "Monthly Performance Report"
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReportService{
		repo:     params.Repo,
		cache:    params.Cache,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		xlsx:     export.NewXLSXExporter(),
		logger:   logger,
		cacheTTL: ttl,
		title:    title,
	}
}

// Monthly returns the per-month aggregates, most recent month first. The
// second return value reports whether the payload came from cache.
func (s *ReportService) Monthly(ctx context.Context) ([]models.MonthlyAggregate, bool, error) {
	if s.cache != nil {
		var cached []models.MonthlyAggregate
		if hit, _ := s.cache.Get(ctx, monthlyReportCacheKey, &cached); hit {
			return cached, true, nil
		}
	}

	students, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, appErrors.ErrLoadFailed.Status, "failed to load students for report")
	}

	aggregates := Aggregate(students)

	if s.cache != nil {
		_ = s.cache.Set(ctx, monthlyReportCacheKey, aggregates, s.cacheTTL)
	}
	return aggregates, false, nil
}

// Export renders the monthly report in the requested format.
func (s *ReportService) Export(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	aggregates, _, err := s.Monthly(ctx)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Month", "New Students", "Fees Collected", "Pending"},
		Rows:    make([]map[string]string, 0, len(aggregates)),
	}
	for _, agg := range aggregates {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Month":          agg.Month,
			"New Students":   strconv.Itoa(agg.NewStudents),
			"Fees Collected": billing.FormatAmount(agg.Collected),
			"Pending":        billing.FormatAmount(agg.Pending),
		})
	}

	switch format {
	case ExportCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "monthly_report.csv"}, nil
	case ExportPDF:
		content, err := s.pdf.Render(dataset, s.title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "monthly_report.pdf"}, nil
	case ExportXLSX:
		content, err := s.xlsx.Render(dataset, "Monthly Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render xlsx report")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    "monthly_report.xlsx",
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

// Aggregate groups students by the calendar month of their joining date and
// sums enrollments, collected and pending amounts. Students without a joining
// date are excluded. Pending sums use each record's stored pending amount,
// not a recomputation. Ordering is by true calendar key, most recent first;
// formatted labels like "Jan 2025" do not sort chronologically as strings.
func Aggregate(students []models.Student) []models.MonthlyAggregate {
	byKey := make(map[int]*models.MonthlyAggregate)
	for _, student := range students {
		if student.JoiningDate == nil || student.JoiningDate.IsZero() {
			continue
		}
		key := billing.MonthKey(*student.JoiningDate)
		agg, ok := byKey[key]
		if !ok {
			agg = &models.MonthlyAggregate{
				Month:   billing.MonthLabel(*student.JoiningDate),
				SortKey: key,
			}
			byKey[key] = agg
		}
		agg.NewStudents++
		agg.Collected += student.Paid
		agg.Pending += student.PendingAmount
	}

	aggregates := make([]models.MonthlyAggregate, 0, len(byKey))
	for _, agg := range byKey {
		aggregates = append(aggregates, *agg)
	}
	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].SortKey > aggregates[j].SortKey
	})
	return aggregates
}
