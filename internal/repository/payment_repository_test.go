package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarydesk/librarydesk-api/internal/models"
)

func TestPaymentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec("INSERT INTO payments").
		WillReturnResult(sqlmock.NewResult(1, 1))

	payment := &models.Payment{StudentID: "s1", Amount: 400000, Method: "cash"}
	err := repo.Create(context.Background(), payment)
	require.NoError(t, err)
	assert.NotEmpty(t, payment.ID)
	assert.False(t, payment.PaidAt.IsZero(), "paid_at defaults to creation time")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "amount", "method", "paid_at", "next_due_date", "created_at"}).
		AddRow("p1", "s1", int64(400000), "cash", now, now, now)

	mock.ExpectQuery(`FROM payments WHERE student_id = \$1 ORDER BY paid_at DESC LIMIT 20 OFFSET 0`).
		WithArgs("s1").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM payments WHERE student_id = \$1`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	payments, total, err := repo.List(context.Background(), models.PaymentFilter{StudentID: "s1"})
	require.NoError(t, err)
	assert.Len(t, payments, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, int64(400000), payments[0].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryTotalAmount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM payments`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(750000)))

	total, err := repo.TotalAmount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(750000), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
