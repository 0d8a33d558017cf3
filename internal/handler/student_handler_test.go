package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarydesk/librarydesk-api/internal/models"
	"github.com/librarydesk/librarydesk-api/internal/seating"
	"github.com/librarydesk/librarydesk-api/internal/service"
)

type fakeStudentRepo struct {
	students map[string]*models.Student
	seq      int
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[string]*models.Student)}
}

func (f *fakeStudentRepo) List(_ context.Context, _ models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeStudentRepo) ListAll(_ context.Context) ([]models.Student, error) {
	out := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (f *fakeStudentRepo) SeatTaken(_ context.Context, seatNo string, excludeID string) (bool, error) {
	for id, s := range f.students {
		if id != excludeID && strings.EqualFold(s.SeatNo, seatNo) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	f.seq++
	student.ID = "stu-" + strconv.Itoa(f.seq)
	clone := *student
	f.students[student.ID] = &clone
	return nil
}

func (f *fakeStudentRepo) Update(_ context.Context, student *models.Student) error {
	clone := *student
	f.students[student.ID] = &clone
	return nil
}

func (f *fakeStudentRepo) Delete(_ context.Context, id string) error {
	delete(f.students, id)
	return nil
}

func (f *fakeStudentRepo) OccupiedSeats(_ context.Context) ([]string, error) {
	seats := make([]string, 0, len(f.students))
	for _, s := range f.students {
		if s.SeatNo != "" {
			seats = append(seats, s.SeatNo)
		}
	}
	return seats, nil
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

type fakePaymentWriter struct{}

func (fakePaymentWriter) Create(_ context.Context, _ *models.Payment) error { return nil }

func newStudentTestRouter(repo *fakeStudentRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewStudentService(repo, fakePaymentWriter{}, seating.NewUniverse(15, 42, 4), nil, nil, nil)
	h := NewStudentHandler(svc)

	r := gin.New()
	r.GET("/students", h.List)
	r.GET("/students/:id", h.Get)
	r.POST("/students", h.Create)
	r.PUT("/students/:id", h.Update)
	r.DELETE("/students/:id", h.Delete)
	r.POST("/students/:id/mark-paid", h.MarkPaid)
	return r
}

func TestStudentCreateEndpoint(t *testing.T) {
	router := newStudentTestRouter(newFakeStudentRepo())

	body := `{"name":"Asha Verma","floor":"1st Floor","seat_no":"f7","package_months":3,"fees":1000000,"paid":400000}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/students", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Data models.Student `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "F7", envelope.Data.SeatNo)
	assert.Equal(t, int64(600000), envelope.Data.PendingAmount)
	require.NotNil(t, envelope.Data.NextPaymentDate)
}

func TestStudentCreateInvalidJSON(t *testing.T) {
	router := newStudentTestRouter(newFakeStudentRepo())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/students", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentCreateSeatConflict(t *testing.T) {
	repo := newFakeStudentRepo()
	repo.students["stu-0"] = &models.Student{ID: "stu-0", Name: "First", SeatNo: "F7"}
	router := newStudentTestRouter(repo)

	body := `{"name":"Second","floor":"1st Floor","seat_no":"F7","package_months":1,"fees":100000}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/students", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "SEAT_TAKEN", envelope.Error.Code)
}

func TestStudentGetNotFound(t *testing.T) {
	router := newStudentTestRouter(newFakeStudentRepo())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/missing", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentMarkPaidDefaultsToOneMonth(t *testing.T) {
	repo := newFakeStudentRepo()
	due := mustTime(t, "2025-01-15")
	repo.students["stu-1"] = &models.Student{
		ID: "stu-1", Name: "Asha", Floor: models.FloorFirst, SeatNo: "F1",
		Fees: 100000, PendingAmount: 100000, NextPaymentDate: &due,
	}
	router := newStudentTestRouter(repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/students/stu-1/mark-paid", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data models.Student `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, int64(0), envelope.Data.PendingAmount)
	require.NotNil(t, envelope.Data.NextPaymentDate)
	assert.Equal(t, "2025-02-15", envelope.Data.NextPaymentDate.Format("2006-01-02"))
}

func TestStudentDeleteEndpoint(t *testing.T) {
	repo := newFakeStudentRepo()
	repo.students["stu-1"] = &models.Student{ID: "stu-1", Name: "Asha", SeatNo: "F1"}
	router := newStudentTestRouter(repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/students/stu-1", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.students)
}
