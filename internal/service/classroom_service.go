package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kotkala/EduConnectSystem-sub009/internal/models"
	appErrors "github.com/kotkala/EduConnectSystem-sub009/pkg/errors"
)

type classroomRepository interface {
	List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, int, error)
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, room *models.Classroom) error
	Update(ctx context.Context, room *models.Classroom) error
	Delete(ctx context.Context, id string) error
	CountEvents(ctx context.Context, id string) (int, error)
}

// ClassroomRequest is the payload for creating or replacing a classroom.
type ClassroomRequest struct {
	Code     string  `json:"code" validate:"required,max=32"`
	Name     string  `json:"name" validate:"required,max=100"`
	Building *string `json:"building,omitempty" validate:"omitempty,max=100"`
	Capacity int     `json:"capacity" validate:"min=0,max=1000"`
}

// ClassroomService manages bookable rooms.
type ClassroomService struct {
	repo      classroomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassroomService constructs the service.
func NewClassroomService(repo classroomRepository, validate *validator.Validate, logger *zap.Logger) *ClassroomService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomService{repo: repo, validator: validate, logger: logger}
}

// List returns classrooms with pagination.
func (s *ClassroomService) List(ctx context.Context, filter models.ClassroomFilter) ([]models.Classroom, *models.Pagination, error) {
	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "failed to list classrooms")
	}
	if rooms == nil {
		rooms = []models.Classroom{}
	}
	return rooms, paginate(filter.Page, filter.PageSize, total), nil
}

// Get returns a classroom by id.
func (s *ClassroomService) Get(ctx context.Context, id string) (*models.Classroom, error) {
	if err := requireID(id, "classroom not found"); err != nil {
		return nil, err
	}
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, storeError(err, "failed to load classroom")
	}
	return room, nil
}

// Create registers a classroom with a unique code.
func (s *ClassroomService) Create(ctx context.Context, req ClassroomRequest) (*models.Classroom, error) {
	room, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueCode(ctx, room.Code, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, storeError(err, "failed to create classroom")
	}
	return room, nil
}

// Update replaces a classroom's fields.
func (s *ClassroomService) Update(ctx context.Context, id string, req ClassroomRequest) (*models.Classroom, error) {
	parsed, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueCode(ctx, parsed.Code, id); err != nil {
		return nil, err
	}
	room.Code = parsed.Code
	room.Name = parsed.Name
	room.Building = parsed.Building
	room.Capacity = parsed.Capacity
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, storeError(err, "failed to update classroom")
	}
	return room, nil
}

// Delete removes a classroom no event books.
func (s *ClassroomService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountEvents(ctx, id)
	if err != nil {
		return storeError(err, "failed to check classroom dependencies")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "classroom is still booked by timetable events")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete classroom")
	}
	s.logger.Info("classroom deleted", zap.String("classroom_id", id))
	return nil
}

func (s *ClassroomService) parse(req ClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid classroom payload")
	}
	room := &models.Classroom{
		Code:     strings.TrimSpace(req.Code),
		Name:     strings.TrimSpace(req.Name),
		Capacity: req.Capacity,
	}
	if req.Building != nil && strings.TrimSpace(*req.Building) != "" {
		building := strings.TrimSpace(*req.Building)
		room.Building = &building
	}
	return room, nil
}

func (s *ClassroomService) ensureUniqueCode(ctx context.Context, code, excludeID string) error {
	exists, err := s.repo.ExistsByCode(ctx, code, excludeID)
	if err != nil {
		return storeError(err, "failed to check classroom code")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "classroom code already exists")
	}
	return nil
}
