package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kotkala/EduConnectSystem-sub009/internal/models"
	appErrors "github.com/kotkala/EduConnectSystem-sub009/pkg/errors"
)

type timetableEventRepository interface {
	List(ctx context.Context, filter models.TimetableEventFilter) ([]models.TimetableEvent, int, error)
	FindByID(ctx context.Context, id string) (*models.TimetableEvent, error)
	FindBySlot(ctx context.Context, slot models.TimetableSlot, excludeID string) ([]models.TimetableEvent, error)
	Create(ctx context.Context, event *models.TimetableEvent) error
	BulkCreate(ctx context.Context, events []models.TimetableEvent) error
	Update(ctx context.Context, event *models.TimetableEvent) error
	Delete(ctx context.Context, id string) (bool, error)
}

// TimetableNotifier is told about every successful timetable write.
type TimetableNotifier interface {
	TimetableChanged(ctx context.Context, change models.TimetableChange)
}

// ConflictCheckRequest asks whether a classroom and teacher are free in a slot.
type ConflictCheckRequest struct {
	ClassroomID    string `json:"classroom_id" validate:"required,uuid"`
	TeacherID      string `json:"teacher_id" validate:"required"`
	DayOfWeek      *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime      string `json:"start_time" validate:"required,hhmm"`
	WeekNumber     int    `json:"week_number" validate:"required,min=1,max=52"`
	SemesterID     string `json:"semester_id" validate:"required,uuid"`
	ExcludeEventID string `json:"exclude_event_id,omitempty" validate:"omitempty,uuid"`
}

// CreateTimetableEventRequest describes the payload for scheduling an event.
type CreateTimetableEventRequest struct {
	ClassID     string  `json:"class_id" validate:"required"`
	SubjectID   string  `json:"subject_id" validate:"required"`
	TeacherID   string  `json:"teacher_id" validate:"required"`
	ClassroomID string  `json:"classroom_id" validate:"required,uuid"`
	SemesterID  string  `json:"semester_id" validate:"required,uuid"`
	DayOfWeek   *int    `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime   string  `json:"start_time" validate:"required,hhmm"`
	EndTime     string  `json:"end_time" validate:"required,hhmm"`
	WeekNumber  int     `json:"week_number" validate:"required,min=1,max=52"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=500"`
	ActorID     string  `json:"-"`
}

// UpdateTimetableEventRequest carries the fields to change; nil fields keep their stored value.
type UpdateTimetableEventRequest struct {
	ClassID     *string `json:"class_id,omitempty"`
	SubjectID   *string `json:"subject_id,omitempty"`
	TeacherID   *string `json:"teacher_id,omitempty"`
	ClassroomID *string `json:"classroom_id,omitempty"`
	SemesterID  *string `json:"semester_id,omitempty"`
	DayOfWeek   *int    `json:"day_of_week,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	WeekNumber  *int    `json:"week_number,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	ActorID     string  `json:"-"`
}

// BulkCreateTimetableEventsRequest holds many events for one import.
type BulkCreateTimetableEventsRequest struct {
	Items          []CreateTimetableEventRequest `json:"items" validate:"required,min=1,max=500,dive"`
	PartialOnError bool                          `json:"partial_on_error"`
	ActorID        string                        `json:"-"`
}

// BulkConflict reports a rejected batch item.
type BulkConflict struct {
	Index int `json:"index"`
	models.ConflictCheckResult
}

// BulkCreateTimetableEventsResult summarises a bulk import.
type BulkCreateTimetableEventsResult struct {
	Created   []models.TimetableEvent `json:"created"`
	Conflicts []BulkConflict          `json:"conflicts,omitempty"`
}

// TimetableService checks slot conflicts and writes timetable events.
type TimetableService struct {
	repo      timetableEventRepository
	validator *validator.Validate
	metrics   *MetricsService
	notifiers []TimetableNotifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewTimetableService wires the event writer. validate must have the hhmm tag registered; nil builds one.
func NewTimetableService(repo timetableEventRepository, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, notifiers ...TimetableNotifier) *TimetableService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		repo:      repo,
		validator: validate,
		metrics:   metrics,
		notifiers: notifiers,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterNotifier adds a notifier invoked after successful writes.
func (s *TimetableService) RegisterNotifier(n TimetableNotifier) {
	if n != nil {
		s.notifiers = append(s.notifiers, n)
	}
}

// CheckConflicts reports whether the classroom or teacher is already taken in the slot.
func (s *TimetableService) CheckConflicts(ctx context.Context, req ConflictCheckRequest) (*models.ConflictCheckResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid conflict check payload")
	}
	start, err := NormalizeClock(req.StartTime)
	if err != nil {
		return nil, validationError(err, "invalid conflict check payload")
	}
	claim := models.SlotClaim{
		TimetableSlot: models.TimetableSlot{
			SemesterID: req.SemesterID,
			DayOfWeek:  *req.DayOfWeek,
			StartTime:  start,
			WeekNumber: req.WeekNumber,
		},
		ClassroomID: req.ClassroomID,
		TeacherID:   req.TeacherID,
	}
	result, err := s.check(ctx, claim, req.ExcludeEventID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns one event.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.TimetableEvent, error) {
	if err := requireID(id, "timetable event not found"); err != nil {
		return nil, err
	}
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable event not found")
		}
		return nil, storeError(err, "failed to load timetable event")
	}
	return event, nil
}

// List returns events with pagination metadata.
func (s *TimetableService) List(ctx context.Context, filter models.TimetableEventFilter) ([]models.TimetableEvent, *models.Pagination, error) {
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "failed to list timetable events")
	}
	if events == nil {
		events = []models.TimetableEvent{}
	}
	return events, paginate(filter.Page, filter.PageSize, total), nil
}

// Create validates and schedules a new event.
func (s *TimetableService) Create(ctx context.Context, req CreateTimetableEventRequest) (*models.TimetableEvent, error) {
	event, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}

	result, err := s.check(ctx, slotClaimOf(event), "")
	if err != nil {
		return nil, err
	}
	if result.HasConflict {
		return nil, conflictError(result)
	}

	if err := s.repo.Create(ctx, &event); err != nil {
		return nil, s.translateWriteError(ctx, err, event, "failed to create timetable event")
	}

	s.logger.Info("timetable event created",
		zap.String("event_id", event.ID),
		zap.String("semester_id", event.SemesterID),
		zap.String("actor_id", req.ActorID))
	s.emit(ctx, models.TimetableChangeCreated, req.ActorID, []string{event.ID}, event.SemesterID)
	return &event, nil
}

// Update merges the provided fields into the stored event. The slot is re-checked only when
// the classroom, teacher, day, start time, week or semester changes.
func (s *TimetableService) Update(ctx context.Context, id string, req UpdateTimetableEventRequest) (*models.TimetableEvent, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged, err := s.buildEvent(mergeUpdate(*existing, req))
	if err != nil {
		return nil, err
	}
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt

	if slotClaimOf(merged) != slotClaimOf(*existing) {
		result, err := s.check(ctx, slotClaimOf(merged), existing.ID)
		if err != nil {
			return nil, err
		}
		if result.HasConflict {
			return nil, conflictError(result)
		}
	}

	if err := s.repo.Update(ctx, &merged); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable event not found")
		}
		return nil, s.translateWriteError(ctx, err, merged, "failed to update timetable event")
	}

	s.logger.Info("timetable event updated", zap.String("event_id", merged.ID), zap.String("actor_id", req.ActorID))
	s.emit(ctx, models.TimetableChangeUpdated, req.ActorID, []string{merged.ID}, existing.SemesterID, merged.SemesterID)
	return &merged, nil
}

// Delete removes an event. Missing ids report not found.
func (s *TimetableService) Delete(ctx context.Context, id, actorID string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return storeError(err, "failed to delete timetable event")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "timetable event not found")
	}

	s.logger.Info("timetable event deleted", zap.String("event_id", id), zap.String("actor_id", actorID))
	s.emit(ctx, models.TimetableChangeDeleted, actorID, []string{id}, existing.SemesterID)
	return nil
}

// BulkCreate imports many events. Items are checked against stored events and against earlier
// items of the same batch. Without PartialOnError the first conflict aborts the import.
func (s *TimetableService) BulkCreate(ctx context.Context, req BulkCreateTimetableEventsRequest) (*BulkCreateTimetableEventsResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid bulk timetable payload")
	}

	accepted := make([]models.TimetableEvent, 0, len(req.Items))
	var conflicts []BulkConflict

	for i, item := range req.Items {
		event, err := s.buildEvent(item)
		if err != nil {
			return nil, appErrors.Clone(appErrors.FromError(err), fmt.Sprintf("invalid timetable event at index %d", i))
		}

		claim := slotClaimOf(event)
		result, err := s.check(ctx, claim, "")
		if err != nil {
			return nil, err
		}
		if !result.HasConflict {
			result = DetectConflict(claim, accepted, "")
			if result.HasConflict {
				s.metrics.RecordConflict(result.Dimension, "batch")
			}
		}
		if result.HasConflict {
			conflicts = append(conflicts, BulkConflict{Index: i, ConflictCheckResult: result})
			if !req.PartialOnError {
				return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrTimetableConflict, result.ConflictType), conflicts)
			}
			continue
		}
		accepted = append(accepted, event)
	}

	if len(accepted) > 0 {
		if err := s.repo.BulkCreate(ctx, accepted); err != nil {
			var taken *models.SlotTakenError
			if errors.As(err, &taken) {
				s.metrics.RecordConflict(taken.Dimension, "constraint")
				return nil, appErrors.Wrap(err, appErrors.ErrTimetableConflict.Code, appErrors.ErrTimetableConflict.Status, taken.ConflictType())
			}
			var ref *models.UnknownReferenceError
			if errors.As(err, &ref) {
				return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unknown semester or classroom")
			}
			return nil, storeError(err, "failed to bulk create timetable events")
		}

		ids := make([]string, 0, len(accepted))
		semesters := make([]string, 0, 1)
		for _, event := range accepted {
			ids = append(ids, event.ID)
			semesters = append(semesters, event.SemesterID)
		}
		s.logger.Info("timetable events imported", zap.Int("created", len(accepted)), zap.Int("conflicts", len(conflicts)), zap.String("actor_id", req.ActorID))
		s.emit(ctx, models.TimetableChangeBulkCreated, req.ActorID, ids, semesters...)
	}

	return &BulkCreateTimetableEventsResult{Created: accepted, Conflicts: conflicts}, nil
}

func (s *TimetableService) check(ctx context.Context, claim models.SlotClaim, excludeID string) (models.ConflictCheckResult, error) {
	candidates, err := s.repo.FindBySlot(ctx, claim.TimetableSlot, excludeID)
	if err != nil {
		return models.ConflictCheckResult{}, storeError(err, "failed to check timetable conflicts")
	}
	result := DetectConflict(claim, candidates, excludeID)
	if result.HasConflict {
		s.metrics.RecordConflict(result.Dimension, "precheck")
	}
	return result, nil
}

// buildEvent validates a create payload and returns the normalised event.
func (s *TimetableService) buildEvent(req CreateTimetableEventRequest) (models.TimetableEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.TimetableEvent{}, validationError(err, "invalid timetable event payload")
	}
	start, err := NormalizeClock(req.StartTime)
	if err != nil {
		return models.TimetableEvent{}, validationError(err, "invalid timetable event payload")
	}
	end, err := NormalizeClock(req.EndTime)
	if err != nil {
		return models.TimetableEvent{}, validationError(err, "invalid timetable event payload")
	}
	if end <= start {
		return models.TimetableEvent{}, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}

	var notes *string
	if req.Notes != nil && strings.TrimSpace(*req.Notes) != "" {
		trimmed := strings.TrimSpace(*req.Notes)
		notes = &trimmed
	}

	return models.TimetableEvent{
		ClassID:     strings.TrimSpace(req.ClassID),
		SubjectID:   strings.TrimSpace(req.SubjectID),
		TeacherID:   strings.TrimSpace(req.TeacherID),
		ClassroomID: strings.TrimSpace(req.ClassroomID),
		SemesterID:  strings.TrimSpace(req.SemesterID),
		DayOfWeek:   *req.DayOfWeek,
		StartTime:   start,
		EndTime:     end,
		WeekNumber:  req.WeekNumber,
		Notes:       notes,
	}, nil
}

// translateWriteError maps store constraint violations to conflict or validation errors.
func (s *TimetableService) translateWriteError(ctx context.Context, err error, event models.TimetableEvent, message string) error {
	var taken *models.SlotTakenError
	if errors.As(err, &taken) {
		s.metrics.RecordConflict(taken.Dimension, "constraint")
		result := models.ConflictCheckResult{HasConflict: true, ConflictType: taken.ConflictType(), Dimension: taken.Dimension}
		if candidates, lookupErr := s.repo.FindBySlot(ctx, event.Slot(), event.ID); lookupErr == nil {
			if found := DetectConflict(slotClaimOf(event), candidates, event.ID); found.Dimension == taken.Dimension {
				result.Conflict = found.Conflict
			}
		}
		s.logger.Warn("timetable slot constraint rejected write", zap.String("constraint", taken.Constraint))
		return appErrors.WithDetails(appErrors.Wrap(err, appErrors.ErrTimetableConflict.Code, appErrors.ErrTimetableConflict.Status, result.ConflictType), result)
	}
	var ref *models.UnknownReferenceError
	if errors.As(err, &ref) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unknown semester or classroom")
	}
	return storeError(err, message)
}

func (s *TimetableService) emit(ctx context.Context, kind models.TimetableChangeKind, actorID string, eventIDs []string, semesterIDs ...string) {
	s.metrics.RecordWrite(string(kind))
	if len(s.notifiers) == 0 {
		return
	}
	change := models.TimetableChange{
		Kind:        kind,
		EventIDs:    eventIDs,
		SemesterIDs: uniqueStrings(semesterIDs),
		ActorID:     actorID,
		OccurredAt:  s.now().UTC(),
	}
	for _, n := range s.notifiers {
		n.TimetableChanged(ctx, change)
	}
}

func mergeUpdate(existing models.TimetableEvent, req UpdateTimetableEventRequest) CreateTimetableEventRequest {
	day := existing.DayOfWeek
	merged := CreateTimetableEventRequest{
		ClassID:     existing.ClassID,
		SubjectID:   existing.SubjectID,
		TeacherID:   existing.TeacherID,
		ClassroomID: existing.ClassroomID,
		SemesterID:  existing.SemesterID,
		DayOfWeek:   &day,
		StartTime:   existing.StartTime,
		EndTime:     existing.EndTime,
		WeekNumber:  existing.WeekNumber,
		Notes:       existing.Notes,
		ActorID:     req.ActorID,
	}
	if req.ClassID != nil {
		merged.ClassID = *req.ClassID
	}
	if req.SubjectID != nil {
		merged.SubjectID = *req.SubjectID
	}
	if req.TeacherID != nil {
		merged.TeacherID = *req.TeacherID
	}
	if req.ClassroomID != nil {
		merged.ClassroomID = *req.ClassroomID
	}
	if req.SemesterID != nil {
		merged.SemesterID = *req.SemesterID
	}
	if req.DayOfWeek != nil {
		merged.DayOfWeek = req.DayOfWeek
	}
	if req.StartTime != nil {
		merged.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		merged.EndTime = *req.EndTime
	}
	if req.WeekNumber != nil {
		merged.WeekNumber = *req.WeekNumber
	}
	if req.Notes != nil {
		merged.Notes = req.Notes
	}
	return merged
}

func slotClaimOf(event models.TimetableEvent) models.SlotClaim {
	return models.SlotClaim{TimetableSlot: event.Slot(), ClassroomID: event.ClassroomID, TeacherID: event.TeacherID}
}

func conflictError(result models.ConflictCheckResult) error {
	return appErrors.WithDetails(appErrors.Clone(appErrors.ErrTimetableConflict, result.ConflictType), result)
}

func validationError(err error, message string) error {
	appErr := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Namespace()] = fe.Tag()
		}
		appErr.Details = details
	}
	return appErr
}

func paginate(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
