package models

import "time"

// Conflict types reported when a slot is already taken. The strings are shown to admins verbatim.
const (
	ConflictTypeClassroom = "classroom already booked"
	ConflictTypeTeacher   = "teacher already assigned"
)

// Slot dimensions used in metrics and conflict payloads.
const (
	ConflictDimensionClassroom = "CLASSROOM"
	ConflictDimensionTeacher   = "TEACHER"
)

// TimetableEvent is one scheduled class session within a semester week.
type TimetableEvent struct {
	ID          string    `db:"id" json:"id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	SemesterID  string    `db:"semester_id" json:"semester_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	WeekNumber  int       `db:"week_number" json:"week_number"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Slot returns the (day, start, week, semester) tuple that scopes conflict checks.
func (e TimetableEvent) Slot() TimetableSlot {
	return TimetableSlot{
		SemesterID: e.SemesterID,
		DayOfWeek:  e.DayOfWeek,
		StartTime:  e.StartTime,
		WeekNumber: e.WeekNumber,
	}
}

// TimetableSlot identifies a start time on a given day of a semester week.
type TimetableSlot struct {
	SemesterID string `json:"semester_id"`
	DayOfWeek  int    `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	WeekNumber int    `json:"week_number"`
}

// SlotClaim is what a proposed event asks of a slot: its classroom and its teacher.
type SlotClaim struct {
	TimetableSlot
	ClassroomID string `json:"classroom_id"`
	TeacherID   string `json:"teacher_id"`
}

// TimetableEventFilter describes query params for listing events.
type TimetableEventFilter struct {
	SemesterID  string
	ClassID     string
	TeacherID   string
	ClassroomID string
	SubjectID   string
	DayOfWeek   *int
	WeekNumber  *int
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// ConflictCheckResult is the outcome of checking a slot claim against stored events.
type ConflictCheckResult struct {
	HasConflict  bool            `json:"has_conflict"`
	ConflictType string          `json:"conflict_type,omitempty"`
	Dimension    string          `json:"dimension,omitempty"`
	Conflict     *TimetableEvent `json:"conflict,omitempty"`
}

// TimetableChangeKind enumerates write operations that invalidate timetable views.
type TimetableChangeKind string

const (
	TimetableChangeCreated     TimetableChangeKind = "created"
	TimetableChangeUpdated     TimetableChangeKind = "updated"
	TimetableChangeDeleted     TimetableChangeKind = "deleted"
	TimetableChangeBulkCreated TimetableChangeKind = "bulk_created"
)

// TimetableChange is emitted after a successful timetable write.
type TimetableChange struct {
	Kind        TimetableChangeKind `json:"kind"`
	EventIDs    []string            `json:"event_ids"`
	SemesterIDs []string            `json:"semester_ids"`
	ActorID     string              `json:"actor_id,omitempty"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

// TimetableWeek is a cached weekly view for a class or a teacher.
type TimetableWeek struct {
	Scope      string           `json:"scope"`
	OwnerID    string           `json:"owner_id"`
	SemesterID string           `json:"semester_id"`
	WeekNumber int              `json:"week_number"`
	Events     []TimetableEvent `json:"events"`
}

// SlotTakenError is returned by the store when a unique slot constraint rejects a write.
type SlotTakenError struct {
	Dimension  string
	Constraint string
}

// Error implements the error interface.
func (e *SlotTakenError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "slot taken: " + e.Constraint
}

// ConflictType maps the violated dimension to the message shown to admins.
func (e *SlotTakenError) ConflictType() string {
	if e != nil && e.Dimension == ConflictDimensionTeacher {
		return ConflictTypeTeacher
	}
	return ConflictTypeClassroom
}

// UnknownReferenceError is returned when an event points at a missing semester or classroom.
type UnknownReferenceError struct {
	Constraint string
}

// Error implements the error interface.
func (e *UnknownReferenceError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "unknown reference: " + e.Constraint
}
