package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kotkala/EduConnectSystem-sub009/internal/models"
	"github.com/kotkala/EduConnectSystem-sub009/pkg/database"
)

const (
	timetableEventColumns = "id, class_id, subject_id, teacher_id, classroom_id, semester_id, day_of_week, start_time, end_time, week_number, notes, created_at, updated_at"

	classroomSlotConstraint = "timetable_events_classroom_slot_key"
	teacherSlotConstraint   = "timetable_events_teacher_slot_key"
)

// QueryObserver receives query timings, typically the metrics service.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// TimetableEventRepository provides persistence for timetable events.
type TimetableEventRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewTimetableEventRepository creates a new timetable event repository. observer may be nil.
func NewTimetableEventRepository(db *sqlx.DB, observer QueryObserver) *TimetableEventRepository {
	return &TimetableEventRepository{db: db, observer: observer}
}

func (r *TimetableEventRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

// List returns events with optional filtering and pagination.
func (r *TimetableEventRepository) List(ctx context.Context, filter models.TimetableEventFilter) ([]models.TimetableEvent, int, error) {
	defer r.observe("timetable_events.list", time.Now())

	base := "FROM timetable_events WHERE 1=1"
	var conditions []string
	var args []interface{}

	addEq := func(column string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}
	if filter.SemesterID != "" {
		addEq("semester_id", filter.SemesterID)
	}
	if filter.ClassID != "" {
		addEq("class_id", filter.ClassID)
	}
	if filter.TeacherID != "" {
		addEq("teacher_id", filter.TeacherID)
	}
	if filter.ClassroomID != "" {
		addEq("classroom_id", filter.ClassroomID)
	}
	if filter.SubjectID != "" {
		addEq("subject_id", filter.SubjectID)
	}
	if filter.DayOfWeek != nil {
		addEq("day_of_week", *filter.DayOfWeek)
	}
	if filter.WeekNumber != nil {
		addEq("week_number", *filter.WeekNumber)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"week_number": true,
		"day_of_week": true,
		"start_time":  true,
		"created_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "week_number"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, day_of_week ASC, start_time ASC LIMIT %d OFFSET %d", timetableEventColumns, base, sortBy, order, size, offset)
	var events []models.TimetableEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list timetable events: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count timetable events: %w", err)
	}

	return events, total, nil
}

// FindByID loads an event by id. It returns sql.ErrNoRows when absent.
func (r *TimetableEventRepository) FindByID(ctx context.Context, id string) (*models.TimetableEvent, error) {
	defer r.observe("timetable_events.find_by_id", time.Now())

	query := "SELECT " + timetableEventColumns + " FROM timetable_events WHERE id = $1"
	var event models.TimetableEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// FindBySlot returns events sharing the (day, start time, week, semester) slot, skipping excludeID.
func (r *TimetableEventRepository) FindBySlot(ctx context.Context, slot models.TimetableSlot, excludeID string) ([]models.TimetableEvent, error) {
	defer r.observe("timetable_events.find_by_slot", time.Now())

	query := "SELECT " + timetableEventColumns + " FROM timetable_events WHERE day_of_week = $1 AND start_time = $2 AND week_number = $3 AND semester_id = $4"
	args := []interface{}{slot.DayOfWeek, slot.StartTime, slot.WeekNumber, slot.SemesterID}
	if excludeID != "" {
		query += " AND id <> $5"
		args = append(args, excludeID)
	}

	var events []models.TimetableEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("find timetable events by slot: %w", err)
	}
	return events, nil
}

// ListWeekByClass returns a class's events of one semester week ordered by day and start time.
func (r *TimetableEventRepository) ListWeekByClass(ctx context.Context, classID, semesterID string, week int) ([]models.TimetableEvent, error) {
	return r.listWeek(ctx, "class_id", classID, semesterID, week)
}

// ListWeekByTeacher returns a teacher's events of one semester week ordered by day and start time.
func (r *TimetableEventRepository) ListWeekByTeacher(ctx context.Context, teacherID, semesterID string, week int) ([]models.TimetableEvent, error) {
	return r.listWeek(ctx, "teacher_id", teacherID, semesterID, week)
}

func (r *TimetableEventRepository) listWeek(ctx context.Context, column, ownerID, semesterID string, week int) ([]models.TimetableEvent, error) {
	defer r.observe("timetable_events.list_week_by_"+strings.TrimSuffix(column, "_id"), time.Now())

	query := fmt.Sprintf("SELECT %s FROM timetable_events WHERE %s = $1 AND semester_id = $2 AND week_number = $3 ORDER BY day_of_week ASC, start_time ASC", timetableEventColumns, column)
	events := []models.TimetableEvent{}
	if err := r.db.SelectContext(ctx, &events, query, ownerID, semesterID, week); err != nil {
		return nil, fmt.Errorf("list week by %s: %w", column, err)
	}
	return events, nil
}

// Create stores a new event. Slot constraint violations surface as *models.SlotTakenError.
func (r *TimetableEventRepository) Create(ctx context.Context, event *models.TimetableEvent) error {
	defer r.observe("timetable_events.create", time.Now())
	if err := insertTimetableEvent(ctx, r.db, event); err != nil {
		return fmt.Errorf("create timetable event: %w", err)
	}
	return nil
}

// BulkCreate inserts many events within a single transaction.
func (r *TimetableEventRepository) BulkCreate(ctx context.Context, events []models.TimetableEvent) error {
	defer r.observe("timetable_events.bulk_create", time.Now())

	return database.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		for i := range events {
			if err := insertTimetableEvent(ctx, tx, &events[i]); err != nil {
				return fmt.Errorf("bulk insert timetable event %d: %w", i, err)
			}
		}
		return nil
	})
}

// Update modifies an event. Slot constraint violations surface as *models.SlotTakenError.
func (r *TimetableEventRepository) Update(ctx context.Context, event *models.TimetableEvent) error {
	defer r.observe("timetable_events.update", time.Now())

	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE timetable_events SET class_id = :class_id, subject_id = :subject_id, teacher_id = :teacher_id, classroom_id = :classroom_id, semester_id = :semester_id, day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, week_number = :week_number, notes = :notes, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update timetable event: %w", translateWriteError(err))
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an event by id and reports whether a row was removed.
func (r *TimetableEventRepository) Delete(ctx context.Context, id string) (bool, error) {
	defer r.observe("timetable_events.delete", time.Now())

	res, err := r.db.ExecContext(ctx, `DELETE FROM timetable_events WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete timetable event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete timetable event rows: %w", err)
	}
	return affected > 0, nil
}

func insertTimetableEvent(ctx context.Context, exec sqlx.ExtContext, event *models.TimetableEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	const query = `INSERT INTO timetable_events (id, class_id, subject_id, teacher_id, classroom_id, semester_id, day_of_week, start_time, end_time, week_number, notes, created_at, updated_at) VALUES (:id, :class_id, :subject_id, :teacher_id, :classroom_id, :semester_id, :day_of_week, :start_time, :end_time, :week_number, :notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, event); err != nil {
		return translateWriteError(err)
	}
	return nil
}

// translateWriteError turns slot and reference constraint violations into domain errors.
func translateWriteError(err error) error {
	if constraint, ok := database.IsUniqueViolation(err); ok {
		switch constraint {
		case classroomSlotConstraint:
			return &models.SlotTakenError{Dimension: models.ConflictDimensionClassroom, Constraint: constraint}
		case teacherSlotConstraint:
			return &models.SlotTakenError{Dimension: models.ConflictDimensionTeacher, Constraint: constraint}
		}
	}
	if constraint, ok := database.IsForeignKeyViolation(err); ok {
		return &models.UnknownReferenceError{Constraint: constraint}
	}
	return err
}
