package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/librarydesk/librarydesk-api/internal/models"
	appErrors "github.com/librarydesk/librarydesk-api/pkg/errors"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
}

// PaymentService exposes the read side of the append-only payment ledger.
type PaymentService struct {
	repo   paymentRepository
	logger *zap.Logger
}

// NewPaymentService constructs the payment service.
func NewPaymentService(repo paymentRepository, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, logger: logger}
}

// List returns payments, optionally for a single student, newest first.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, appErrors.ErrLoadFailed.Status, "failed to load payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
