package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotkala/EduConnectSystem-sub009/internal/models"
	"github.com/kotkala/EduConnectSystem-sub009/internal/service"
	appErrors "github.com/kotkala/EduConnectSystem-sub009/pkg/errors"
)

type semesterServiceMock struct {
	filter models.SemesterFilter
	active *models.Semester
}

func (m *semesterServiceMock) List(ctx context.Context, filter models.SemesterFilter) ([]models.Semester, *models.Pagination, error) {
	m.filter = filter
	return []models.Semester{}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (m *semesterServiceMock) Get(ctx context.Context, id string) (*models.Semester, error) {
	return &models.Semester{ID: id}, nil
}

func (m *semesterServiceMock) GetActive(ctx context.Context) (*models.Semester, error) {
	if m.active == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active semester")
	}
	return m.active, nil
}

func (m *semesterServiceMock) Create(ctx context.Context, req service.SemesterRequest) (*models.Semester, error) {
	return &models.Semester{ID: "S1", Name: req.Name}, nil
}

func (m *semesterServiceMock) Update(ctx context.Context, id string, req service.SemesterRequest) (*models.Semester, error) {
	return &models.Semester{ID: id, Name: req.Name}, nil
}

func (m *semesterServiceMock) SetActive(ctx context.Context, id string) (*models.Semester, error) {
	return &models.Semester{ID: id, IsActive: true}, nil
}

func (m *semesterServiceMock) Delete(ctx context.Context, id string) error {
	return nil
}

func TestSemesterHandlerListParsesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &semesterServiceMock{}
	h := NewSemesterHandler(mockSvc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/semesters?academic_year=2024-2025&active=true&page=2&limit=5", nil)

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-2025", mockSvc.filter.AcademicYear)
	require.NotNil(t, mockSvc.filter.IsActive)
	assert.True(t, *mockSvc.filter.IsActive)
	assert.Equal(t, 2, mockSvc.filter.Page)
	assert.Equal(t, 5, mockSvc.filter.PageSize)
}

func TestSemesterHandlerActiveNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSemesterHandler(&semesterServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/semesters/active", nil)

	h.Active(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
