package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kotkala/EduConnectSystem-sub009/internal/middleware"
	"github.com/kotkala/EduConnectSystem-sub009/internal/models"
	"github.com/kotkala/EduConnectSystem-sub009/internal/service"
	appErrors "github.com/kotkala/EduConnectSystem-sub009/pkg/errors"
	"github.com/kotkala/EduConnectSystem-sub009/pkg/response"
)

type timetableService interface {
	CheckConflicts(ctx context.Context, req service.ConflictCheckRequest) (*models.ConflictCheckResult, error)
	Get(ctx context.Context, id string) (*models.TimetableEvent, error)
	List(ctx context.Context, filter models.TimetableEventFilter) ([]models.TimetableEvent, *models.Pagination, error)
	Create(ctx context.Context, req service.CreateTimetableEventRequest) (*models.TimetableEvent, error)
	Update(ctx context.Context, id string, req service.UpdateTimetableEventRequest) (*models.TimetableEvent, error)
	Delete(ctx context.Context, id, actorID string) error
	BulkCreate(ctx context.Context, req service.BulkCreateTimetableEventsRequest) (*service.BulkCreateTimetableEventsResult, error)
}

type timetableViewService interface {
	ClassWeek(ctx context.Context, classID, semesterID string, week int) (*models.TimetableWeek, bool, error)
	TeacherWeek(ctx context.Context, teacherID, semesterID string, week int) (*models.TimetableWeek, bool, error)
	ExportClassWeek(ctx context.Context, classID, semesterID string, week int, format string) (*service.ExportFile, error)
}

// TimetableHandler exposes timetable event endpoints.
type TimetableHandler struct {
	events timetableService
	views  timetableViewService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(events timetableService, views timetableViewService) *TimetableHandler {
	return &TimetableHandler{events: events, views: views}
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}

// CheckConflicts godoc
// @Summary Check a classroom and teacher against a slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.ConflictCheckRequest true "Slot to check"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable/conflicts/check [post]
func (h *TimetableHandler) CheckConflicts(c *gin.Context) {
	var req service.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.events.CheckConflicts(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List timetable events
// @Tags Timetable
// @Produce json
// @Param semester_id query string false "Semester"
// @Param class_id query string false "Class"
// @Param teacher_id query string false "Teacher"
// @Param classroom_id query string false "Classroom"
// @Param subject_id query string false "Subject"
// @Param day_of_week query int false "Day of week (0-6)"
// @Param week query int false "Week number"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "week_number, day_of_week, start_time or created_at"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /timetable/events [get]
func (h *TimetableHandler) List(c *gin.Context) {
	filter := models.TimetableEventFilter{
		SemesterID:  c.Query("semester_id"),
		ClassID:     c.Query("class_id"),
		TeacherID:   c.Query("teacher_id"),
		ClassroomID: c.Query("classroom_id"),
		SubjectID:   c.Query("subject_id"),
		DayOfWeek:   queryIntPtr(c, "day_of_week"),
		WeekNumber:  queryIntPtr(c, "week"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "limit", 20),
		SortBy:      c.Query("sort"),
		SortOrder:   c.Query("order"),
	}
	events, pagination, err := h.events.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// Get godoc
// @Summary Get a timetable event
// @Tags Timetable
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/events/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create godoc
// @Summary Schedule a timetable event
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.CreateTimetableEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/events [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req service.CreateTimetableEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	req.ActorID = actorID(c)
	event, err := h.events.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update fields of a timetable event
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body service.UpdateTimetableEventRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/events/{id} [patch]
func (h *TimetableHandler) Update(c *gin.Context) {
	var req service.UpdateTimetableEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	req.ActorID = actorID(c)
	event, err := h.events.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete a timetable event
// @Tags Timetable
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/events/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c)
}

// BulkCreate godoc
// @Summary Import many timetable events
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.BulkCreateTimetableEventsRequest true "Events"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/events/bulk [post]
func (h *TimetableHandler) BulkCreate(c *gin.Context) {
	var req service.BulkCreateTimetableEventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	req.ActorID = actorID(c)
	result, err := h.events.BulkCreate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ClassWeek godoc
// @Summary Weekly timetable of a class
// @Tags Timetable
// @Produce json
// @Param id path string true "Class ID"
// @Param semester_id query string true "Semester"
// @Param week query int true "Week number"
// @Success 200 {object} response.Envelope
// @Router /timetable/classes/{id} [get]
func (h *TimetableHandler) ClassWeek(c *gin.Context) {
	view, hit, err := h.views.ClassWeek(c.Request.Context(), c.Param("id"), c.Query("semester_id"), queryInt(c, "week", 0))
	h.respondWeek(c, view, hit, err)
}

// TeacherWeek godoc
// @Summary Weekly timetable of a teacher
// @Tags Timetable
// @Produce json
// @Param id path string true "Teacher ID"
// @Param semester_id query string true "Semester"
// @Param week query int true "Week number"
// @Success 200 {object} response.Envelope
// @Router /timetable/teachers/{id} [get]
func (h *TimetableHandler) TeacherWeek(c *gin.Context) {
	view, hit, err := h.views.TeacherWeek(c.Request.Context(), c.Param("id"), c.Query("semester_id"), queryInt(c, "week", 0))
	h.respondWeek(c, view, hit, err)
}

func (h *TimetableHandler) respondWeek(c *gin.Context, view *models.TimetableWeek, hit bool, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// ExportClassWeek godoc
// @Summary Download a class week as CSV or PDF
// @Tags Timetable
// @Produce octet-stream
// @Param id path string true "Class ID"
// @Param semester_id query string true "Semester"
// @Param week query int true "Week number"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /timetable/classes/{id}/export [get]
func (h *TimetableHandler) ExportClassWeek(c *gin.Context) {
	file, err := h.views.ExportClassWeek(c.Request.Context(), c.Param("id"), c.Query("semester_id"), queryInt(c, "week", 0), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("X-Export-Size", strconv.Itoa(len(file.Payload)))
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
