package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kotkala/EduConnectSystem-sub009/internal/models"
	appErrors "github.com/kotkala/EduConnectSystem-sub009/pkg/errors"
)

const dateLayout = "2006-01-02"

type semesterRepository interface {
	List(ctx context.Context, filter models.SemesterFilter) ([]models.Semester, int, error)
	FindByID(ctx context.Context, id string) (*models.Semester, error)
	FindActive(ctx context.Context) (*models.Semester, error)
	ExistsByNameAndYear(ctx context.Context, name, academicYear, excludeID string) (bool, error)
	Create(ctx context.Context, semester *models.Semester) error
	Update(ctx context.Context, semester *models.Semester) error
	SetActive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountEvents(ctx context.Context, id string) (int, error)
}

// SemesterRequest is the payload for creating or replacing a semester.
type SemesterRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	AcademicYear string `json:"academic_year" validate:"required,len=9"`
	StartDate    string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"end_date" validate:"required,datetime=2006-01-02"`
	IsActive     bool   `json:"is_active"`
}

// SemesterService manages semesters.
type SemesterService struct {
	repo      semesterRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSemesterService creates a new semester service instance.
func NewSemesterService(repo semesterRepository, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterService{repo: repo, validator: validate, logger: logger}
}

// List returns semesters with pagination.
func (s *SemesterService) List(ctx context.Context, filter models.SemesterFilter) ([]models.Semester, *models.Pagination, error) {
	semesters, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "failed to list semesters")
	}
	if semesters == nil {
		semesters = []models.Semester{}
	}
	return semesters, paginate(filter.Page, filter.PageSize, total), nil
}

// Get returns a semester by id.
func (s *SemesterService) Get(ctx context.Context, id string) (*models.Semester, error) {
	if err := requireID(id, "semester not found"); err != nil {
		return nil, err
	}
	semester, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, storeError(err, "failed to load semester")
	}
	return semester, nil
}

// GetActive returns the active semester used as the default in timetable screens.
func (s *SemesterService) GetActive(ctx context.Context) (*models.Semester, error) {
	semester, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active semester")
		}
		return nil, storeError(err, "failed to load active semester")
	}
	return semester, nil
}

// Create registers a semester, activating it when requested.
func (s *SemesterService) Create(ctx context.Context, req SemesterRequest) (*models.Semester, error) {
	semester, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, semester.Name, semester.AcademicYear, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, semester); err != nil {
		return nil, storeError(err, "failed to create semester")
	}
	if req.IsActive {
		if err := s.repo.SetActive(ctx, semester.ID); err != nil {
			return nil, storeError(err, "failed to activate semester")
		}
		semester.IsActive = true
	}
	s.logger.Info("semester created", zap.String("semester_id", semester.ID), zap.Bool("active", semester.IsActive))
	return semester, nil
}

// Update replaces descriptive fields of a semester.
func (s *SemesterService) Update(ctx context.Context, id string, req SemesterRequest) (*models.Semester, error) {
	parsed, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	semester, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, parsed.Name, parsed.AcademicYear, id); err != nil {
		return nil, err
	}

	semester.Name = parsed.Name
	semester.AcademicYear = parsed.AcademicYear
	semester.StartDate = parsed.StartDate
	semester.EndDate = parsed.EndDate
	if err := s.repo.Update(ctx, semester); err != nil {
		return nil, storeError(err, "failed to update semester")
	}
	if req.IsActive && !semester.IsActive {
		return s.SetActive(ctx, id)
	}
	return semester, nil
}

// SetActive makes the semester the only active one.
func (s *SemesterService) SetActive(ctx context.Context, id string) (*models.Semester, error) {
	semester, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, semester.ID); err != nil {
		return nil, storeError(err, "failed to activate semester")
	}
	semester.IsActive = true
	s.logger.Info("semester activated", zap.String("semester_id", semester.ID))
	return semester, nil
}

// Delete removes a semester that has no timetable events.
func (s *SemesterService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountEvents(ctx, id)
	if err != nil {
		return storeError(err, "failed to check semester dependencies")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "semester still has timetable events")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete semester")
	}
	return nil
}

func (s *SemesterService) parse(req SemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid semester payload")
	}
	start, _ := time.Parse(dateLayout, req.StartDate)
	end, _ := time.Parse(dateLayout, req.EndDate)
	if !start.Before(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be before end_date")
	}
	return &models.Semester{
		Name:         strings.TrimSpace(req.Name),
		AcademicYear: strings.TrimSpace(req.AcademicYear),
		StartDate:    start,
		EndDate:      end,
	}, nil
}

func (s *SemesterService) ensureUnique(ctx context.Context, name, academicYear, excludeID string) error {
	exists, err := s.repo.ExistsByNameAndYear(ctx, name, academicYear, excludeID)
	if err != nil {
		return storeError(err, "failed to check semester uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "semester already exists for academic year")
	}
	return nil
}
