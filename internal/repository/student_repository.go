package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/librarydesk/librarydesk-api/internal/models"
)

const studentColumns = `id, name, phone, floor, seat_no, package_months, fees, paid,
        pending_amount, credit_balance, receipt_no, remarks, payment_method,
        joining_date, allotted_date, next_payment_date, created_at, updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Floor != "" {
		conditions = append(conditions, fmt.Sprintf("floor = $%d", len(args)+1))
		args = append(args, filter.Floor)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR phone LIKE $%d OR LOWER(seat_no) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"name":              "name",
		"joining_date":      "joining_date",
		"next_payment_date": "next_payment_date",
		"pending_amount":    "pending_amount",
		"created_at":        "created_at",
	}
	if sortBy == "" {
		// The students table is read soonest-due-first.
		sortBy = "next_payment_date"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "next_payment_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf(`SELECT %s %s ORDER BY %s %s NULLS LAST LIMIT %d OFFSET %d`,
		studentColumns, base, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListAll returns the full student set. The seat grid and the monthly report
// are projections over the entire record set, not a page of it.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	return students, nil
}

// OccupiedSeats returns every non-empty seat assignment.
func (r *StudentRepository) OccupiedSeats(ctx context.Context) ([]string, error) {
	var seats []string
	const query = `SELECT seat_no FROM students WHERE seat_no <> ''`
	if err := r.db.SelectContext(ctx, &seats, query); err != nil {
		return nil, fmt.Errorf("occupied seats: %w", err)
	}
	return seats, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// SeatTaken checks whether a seat is already assigned, optionally excluding a
// record (for updates). The comparison is case-insensitive.
func (r *StudentRepository) SeatTaken(ctx context.Context, seatNo string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE UPPER(seat_no) = UPPER($1)"
	args := []interface{}{seatNo}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check seat: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, name, phone, floor, seat_no, package_months, fees, paid,
        pending_amount, credit_balance, receipt_no, remarks, payment_method,
        joining_date, allotted_date, next_payment_date, created_at, updated_at)
        VALUES (:id, :name, :phone, :floor, :seat_no, :package_months, :fees, :paid,
        :pending_amount, :credit_balance, :receipt_no, :remarks, :payment_method,
        :joining_date, :allotted_date, :next_payment_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, phone = :phone, floor = :floor,
        seat_no = :seat_no, package_months = :package_months, fees = :fees, paid = :paid,
        pending_amount = :pending_amount, credit_balance = :credit_balance,
        receipt_no = :receipt_no, remarks = :remarks, payment_method = :payment_method,
        joining_date = :joining_date, allotted_date = :allotted_date,
        next_payment_date = :next_payment_date, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student record permanently. There is no archival path.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM students WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
