package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/librarydesk/librarydesk-api/internal/models"
	appErrors "github.com/librarydesk/librarydesk-api/pkg/errors"
)

const dashboardSummaryCacheKey = "dashboard:summary"

type paymentTotaller interface {
	TotalAmount(ctx context.Context) (int64, error)
}

// DashboardService composes the headline dashboard figures.
type DashboardService struct {
	students studentSetLister
	payments paymentTotaller
	cache    *CacheService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(students studentSetLister, payments paymentTotaller, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		students: students,
		payments: payments,
		cache:    cache,
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

// Summary returns total students, payment volume, outstanding pending and
// per-floor occupancy. The boolean reports cache utilisation.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	if s.cache != nil {
		var cached models.DashboardSummary
		if hit, _ := s.cache.Get(ctx, dashboardSummaryCacheKey, &cached); hit {
			return &cached, true, nil
		}
	}

	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, appErrors.ErrLoadFailed.Status, "failed to load students for dashboard")
	}

	totalPayments, err := s.payments.TotalAmount(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, appErrors.ErrLoadFailed.Status, "failed to load payment totals")
	}

	summary := &models.DashboardSummary{
		TotalStudents: len(students),
		TotalPayments: totalPayments,
	}

	perFloor := map[models.Floor]int{}
	for _, student := range students {
		summary.TotalPending += student.PendingAmount
		perFloor[student.Floor]++
	}
	for _, floor := range []models.Floor{models.FloorFirst, models.FloorSecond, models.FloorCabin} {
		if count, ok := perFloor[floor]; ok {
			summary.Floors = append(summary.Floors, models.FloorOccupancy{Floor: floor, Students: count})
		}
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, dashboardSummaryCacheKey, summary, s.cacheTTL)
	}
	return summary, false, nil
}
