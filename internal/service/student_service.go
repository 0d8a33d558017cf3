package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/librarydesk/librarydesk-api/internal/billing"
	"github.com/librarydesk/librarydesk-api/internal/models"
	"github.com/librarydesk/librarydesk-api/internal/seating"
	appErrors "github.com/librarydesk/librarydesk-api/pkg/errors"
)

// cacheKeyPrefix patterns invalidated after any student/payment mutation.
const (
	dashboardCachePattern = "dashboard:*"
	reportsCachePattern   = "reports:*"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	ListAll(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	SeatTaken(ctx context.Context, seatNo string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type paymentWriter interface {
	Create(ctx context.Context, payment *models.Payment) error
}

// EnrollStudentRequest holds the payload for enrolling a student. Name,
// floor, seat, fees and package length are the required set; everything else
// is optional. Amounts are paise.
type EnrollStudentRequest struct {
	Name          string        `json:"name" validate:"required"`
	Phone         string        `json:"phone"`
	Floor         models.Floor  `json:"floor" validate:"required"`
	SeatNo        string        `json:"seat_no" validate:"required"`
	PackageMonths int           `json:"package_months" validate:"required,min=1"`
	Fees          *int64        `json:"fees" validate:"required,gte=0"`
	Paid          int64         `json:"paid" validate:"gte=0"`
	ReceiptNo     string        `json:"receipt_no"`
	Remarks       string        `json:"remarks"`
	PaymentMethod string        `json:"payment_method"`
	JoiningDate   *time.Time    `json:"joining_date"`
	AllottedDate  *time.Time    `json:"allotted_date"`
}

// UpdateStudentRequest holds the payload for editing a student.
type UpdateStudentRequest struct {
	Name          string       `json:"name" validate:"required"`
	Phone         string       `json:"phone"`
	Floor         models.Floor `json:"floor" validate:"required"`
	SeatNo        string       `json:"seat_no" validate:"required"`
	PackageMonths int          `json:"package_months" validate:"required,min=1"`
	Fees          *int64       `json:"fees" validate:"required,gte=0"`
	Paid          int64        `json:"paid" validate:"gte=0"`
	ReceiptNo     string       `json:"receipt_no"`
	Remarks       string       `json:"remarks"`
	PaymentMethod string       `json:"payment_method"`
	JoiningDate   *time.Time   `json:"joining_date"`
	AllottedDate  *time.Time   `json:"allotted_date"`
}

// MarkPaidRequest records that the current due payment was satisfied.
type MarkPaidRequest struct {
	Months int `json:"months" validate:"required,min=1"`
}

// StudentService handles enrollment, editing and billing use-cases.
type StudentService struct {
	repo      studentRepository
	payments  paymentWriter
	universe  seating.Universe
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, payments paymentWriter, universe seating.Universe, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:      repo,
		payments:  payments,
		universe:  universe,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns students and pagination metadata. A failed read surfaces as a
// load failure, never as an empty page.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, appErrors.ErrLoadFailed.Status, "failed to load students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrLoadFailed.Code, appErrors.ErrLoadFailed.Status, "failed to load student")
	}
	return student, nil
}

// Enroll validates the payload, derives the billing fields and persists the
// new student, recording the initial payment when one was made.
func (s *StudentService) Enroll(ctx context.Context, req EnrollStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if !models.ValidFloor(req.Floor) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown floor")
	}

	seatNo, err := s.claimSeat(ctx, req.SeatNo, "")
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	joining := req.JoiningDate
	if joining == nil || joining.IsZero() {
		joining = &now
	}
	anchor := billing.Anchor(req.AllottedDate, joining, now)
	bill := billing.Compute(*req.Fees, req.Paid, req.PackageMonths, anchor)

	student := &models.Student{
		Name:            req.Name,
		Phone:           req.Phone,
		Floor:           req.Floor,
		SeatNo:          seatNo,
		PackageMonths:   req.PackageMonths,
		Fees:            *req.Fees,
		Paid:            req.Paid,
		PendingAmount:   bill.PendingAmount,
		CreditBalance:   bill.CreditBalance,
		ReceiptNo:       req.ReceiptNo,
		Remarks:         req.Remarks,
		PaymentMethod:   req.PaymentMethod,
		JoiningDate:     joining,
		AllottedDate:    &anchor,
		NextPaymentDate: &bill.NextDueDate,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
	}

	if req.Paid > 0 && s.payments != nil {
		payment := &models.Payment{
			StudentID:   student.ID,
			Amount:      req.Paid,
			Method:      req.PaymentMethod,
			PaidAt:      now,
			NextDueDate: &bill.NextDueDate,
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			// The student row is already in; a missing ledger row is
			// recoverable, losing the enrollment is not.
			s.logger.Warn("failed to record initial payment",
				zap.String("student_id", student.ID), zap.Error(err))
		}
	}

	s.invalidateProjections(ctx)
	return student, nil
}

// Update edits a student and recomputes every derived billing field from the
// updated inputs, so stored pending/credit/next-due never drift.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if !models.ValidFloor(req.Floor) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown floor")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	seatNo, err := s.claimSeat(ctx, req.SeatNo, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	joining := req.JoiningDate
	if joining == nil || joining.IsZero() {
		joining = existing.JoiningDate
	}
	if joining == nil || joining.IsZero() {
		joining = &now
	}
	anchor := billing.Anchor(req.AllottedDate, joining, now)
	bill := billing.Compute(*req.Fees, req.Paid, req.PackageMonths, anchor)

	student := *existing
	student.Name = req.Name
	student.Phone = req.Phone
	student.Floor = req.Floor
	student.SeatNo = seatNo
	student.PackageMonths = req.PackageMonths
	student.Fees = *req.Fees
	student.Paid = req.Paid
	student.PendingAmount = bill.PendingAmount
	student.CreditBalance = bill.CreditBalance
	student.ReceiptNo = req.ReceiptNo
	student.Remarks = req.Remarks
	student.PaymentMethod = req.PaymentMethod
	student.JoiningDate = joining
	student.AllottedDate = &anchor
	student.NextPaymentDate = &bill.NextDueDate

	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.invalidateProjections(ctx)
	return &student, nil
}

// MarkPaid records that the student's due payment was satisfied for the
// given number of months. The new due date is anchored on the previous due
// date, never on today, so early or late payments do not drift the schedule.
func (s *StudentService) MarkPaid(ctx context.Context, id string, req MarkPaidRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark-paid payload")
	}

	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	previousDue := billing.Anchor(student.NextPaymentDate, student.AllottedDate, now)
	nextDue := billing.Renew(previousDue, req.Months)

	updated := *student
	updated.Paid += student.PendingAmount
	updated.PendingAmount = 0
	updated.NextPaymentDate = &nextDue

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark student paid")
	}

	s.logger.Info("student marked paid",
		zap.String("student_id", id),
		zap.Int("months", req.Months),
		zap.Time("next_due", nextDue))

	s.invalidateProjections(ctx)
	return &updated, nil
}

// Delete removes a student permanently.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.invalidateProjections(ctx)
	return nil
}

// claimSeat normalises the seat identifier and ensures it is free.
func (s *StudentService) claimSeat(ctx context.Context, raw string, excludeID string) (string, error) {
	seatNo, ok := s.universe.Normalize(raw)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrUnknownSeat, "")
	}
	taken, err := s.repo.SeatTaken(ctx, seatNo, excludeID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check seat availability")
	}
	if taken {
		return "", appErrors.Clone(appErrors.ErrSeatTaken, "")
	}
	return seatNo, nil
}

func (s *StudentService) invalidateProjections(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, dashboardCachePattern)
	_ = s.cache.Invalidate(ctx, reportsCachePattern)
}
