package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/librarydesk/librarydesk-api/internal/models"
)

// PaymentRepository manages the append-only payment ledger.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create appends a payment row. Payments are immutable once created; there is
// no update or delete path.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = payment.CreatedAt
	}
	const query = `INSERT INTO payments (id, student_id, amount, method, paid_at, next_due_date, created_at)
        VALUES (:id, :student_id, :amount, :method, :paid_at, :next_due_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// List returns payments, optionally restricted to one student, newest first.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	base := "FROM payments"
	args := []interface{}{}
	if filter.StudentID != "" {
		base += " WHERE student_id = $1"
		args = append(args, filter.StudentID)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, student_id, amount, method, paid_at, next_due_date, created_at
        %s ORDER BY paid_at DESC LIMIT %d OFFSET %d`, base, size, offset)

	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// TotalAmount sums the whole ledger for the dashboard headline figure.
func (r *PaymentRepository) TotalAmount(ctx context.Context) (int64, error) {
	var total int64
	const query = `SELECT COALESCE(SUM(amount), 0) FROM payments`
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("total payments: %w", err)
	}
	return total, nil
}
