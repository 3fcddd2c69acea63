package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotkala/EduConnectSystem-sub009/internal/models"
	appErrors "github.com/kotkala/EduConnectSystem-sub009/pkg/errors"
)

type mockSemesterRepo struct {
	items  map[string]*models.Semester
	events map[string]int
}

func newMockSemesterRepo() *mockSemesterRepo {
	return &mockSemesterRepo{items: map[string]*models.Semester{}, events: map[string]int{}}
}

func (m *mockSemesterRepo) List(ctx context.Context, filter models.SemesterFilter) ([]models.Semester, int, error) {
	var out []models.Semester
	for _, s := range m.items {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockSemesterRepo) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSemesterRepo) FindActive(ctx context.Context) (*models.Semester, error) {
	for _, s := range m.items {
		if s.IsActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSemesterRepo) ExistsByNameAndYear(ctx context.Context, name, academicYear, excludeID string) (bool, error) {
	for id, s := range m.items {
		if id != excludeID && s.Name == name && s.AcademicYear == academicYear {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSemesterRepo) Create(ctx context.Context, semester *models.Semester) error {
	semester.ID = uuid.NewString()
	semester.IsActive = false
	cp := *semester
	m.items[semester.ID] = &cp
	return nil
}

func (m *mockSemesterRepo) Update(ctx context.Context, semester *models.Semester) error {
	cp := *semester
	cp.IsActive = m.items[semester.ID].IsActive
	m.items[semester.ID] = &cp
	return nil
}

func (m *mockSemesterRepo) SetActive(ctx context.Context, id string) error {
	for key, s := range m.items {
		s.IsActive = key == id
	}
	return nil
}

func (m *mockSemesterRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func (m *mockSemesterRepo) CountEvents(ctx context.Context, id string) (int, error) {
	return m.events[id], nil
}

func semesterRequest(name string, active bool) SemesterRequest {
	return SemesterRequest{Name: name, AcademicYear: "2024-2025", StartDate: "2024-09-05", EndDate: "2025-01-15", IsActive: active}
}

func TestSemesterServiceSingleActive(t *testing.T) {
	repo := newMockSemesterRepo()
	svc := NewSemesterService(repo, nil, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, semesterRequest("Học kỳ 1", true))
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	second, err := svc.Create(ctx, semesterRequest("Học kỳ 2", false))
	require.NoError(t, err)

	_, err = svc.SetActive(ctx, second.ID)
	require.NoError(t, err)

	active, err := svc.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.False(t, repo.items[first.ID].IsActive)
}

func TestSemesterServiceValidation(t *testing.T) {
	svc := NewSemesterService(newMockSemesterRepo(), nil, nil)
	ctx := context.Background()

	req := semesterRequest("Học kỳ 1", false)
	req.EndDate = "2024-09-01"
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req = semesterRequest("Học kỳ 1", false)
	req.StartDate = "05/09/2024"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, semesterRequest("Học kỳ 1", false))
	require.NoError(t, err)
	_, err = svc.Create(ctx, semesterRequest("Học kỳ 1", false))
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestSemesterServiceDeleteGuarded(t *testing.T) {
	repo := newMockSemesterRepo()
	svc := NewSemesterService(repo, nil, nil)
	ctx := context.Background()

	semester, err := svc.Create(ctx, semesterRequest("Học kỳ 1", false))
	require.NoError(t, err)
	repo.events[semester.ID] = 3

	assert.ErrorIs(t, svc.Delete(ctx, semester.ID), appErrors.ErrConflict)

	repo.events[semester.ID] = 0
	require.NoError(t, svc.Delete(ctx, semester.ID))
	assert.ErrorIs(t, svc.Delete(ctx, semester.ID), appErrors.ErrNotFound)
}

func TestSemesterServiceNoActive(t *testing.T) {
	svc := NewSemesterService(newMockSemesterRepo(), nil, nil)
	_, err := svc.GetActive(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSemesterServiceMalformedIDIsNotFound(t *testing.T) {
	svc := NewSemesterService(newMockSemesterRepo(), nil, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, "S1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.SetActive(ctx, "S1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "S1"), appErrors.ErrNotFound)
}
