package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarydesk/librarydesk-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "phone", "floor", "seat_no", "package_months", "fees", "paid",
		"pending_amount", "credit_balance", "receipt_no", "remarks", "payment_method",
		"joining_date", "allotted_date", "next_payment_date", "created_at", "updated_at",
	}).AddRow("1", "Asha", "9999900000", "1st Floor", "F3", 3, int64(1000000), int64(400000),
		int64(600000), int64(0), "R-101", "", "cash", now, now, now, now, now)
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT id, name, phone, floor, seat_no(?s:.*)FROM students WHERE 1=1 ORDER BY next_payment_date ASC NULLS LAST LIMIT 20 OFFSET 0`).
		WillReturnRows(studentRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM students WHERE 1=1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "F3", students[0].SeatNo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListFloorFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`FROM students WHERE 1=1 AND floor = \$1`).
		WithArgs(models.FloorFirst).
		WillReturnRows(studentRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM students WHERE 1=1 AND floor = \$1`).
		WithArgs(models.FloorFirst).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, total, err := repo.List(context.Background(), models.StudentFilter{Floor: models.FloorFirst})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySeatTaken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT 1 FROM students WHERE UPPER\(seat_no\) = UPPER\(\$1\) LIMIT 1`).
		WithArgs("F3").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	taken, err := repo.SeatTaken(context.Background(), "F3", "")
	require.NoError(t, err)
	assert.True(t, taken)

	mock.ExpectQuery(`SELECT 1 FROM students WHERE UPPER\(seat_no\) = UPPER\(\$1\) AND id <> \$2 LIMIT 1`).
		WithArgs("F3", "self").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	taken, err = repo.SeatTaken(context.Background(), "F3", "self")
	require.NoError(t, err)
	assert.False(t, taken, "no rows means the seat is free")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(1, 1))

	now := time.Now().UTC()
	student := &models.Student{
		Name: "Asha", Floor: models.FloorFirst, SeatNo: "F3",
		PackageMonths: 3, Fees: 1000000, Paid: 400000, PendingAmount: 600000,
		JoiningDate: &now,
	}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID, "id is assigned on create")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(`DELETE FROM students WHERE id = \$1`).
		WithArgs("id1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "id1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryOccupiedSeats(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT seat_no FROM students WHERE seat_no <> ''`).
		WillReturnRows(sqlmock.NewRows([]string{"seat_no"}).AddRow("F1").AddRow("S10"))

	seats, err := repo.OccupiedSeats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"F1", "S10"}, seats)
	assert.NoError(t, mock.ExpectationsWereMet())
}
