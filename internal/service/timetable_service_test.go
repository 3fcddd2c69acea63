package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotkala/EduConnectSystem-sub009/internal/models"
	appErrors "github.com/kotkala/EduConnectSystem-sub009/pkg/errors"
)

const (
	semesterS1 = "5b7f3c2e-0d4a-4c1e-9a61-2f0e8d3b1a01"
	room101    = "8e2d6a10-3c4b-4f7a-b1d2-000000000101"
	room102    = "8e2d6a10-3c4b-4f7a-b1d2-000000000102"
	room103    = "8e2d6a10-3c4b-4f7a-b1d2-000000000103"
)

// memTimetableRepo mimics the store, including both unique slot indexes.
type memTimetableRepo struct {
	mu          sync.Mutex
	events      map[string]models.TimetableEvent
	slotQueries int
	hideSlots   bool
	slotErr     error
}

func newMemTimetableRepo() *memTimetableRepo {
	return &memTimetableRepo{events: map[string]models.TimetableEvent{}}
}

func (m *memTimetableRepo) List(ctx context.Context, filter models.TimetableEventFilter) ([]models.TimetableEvent, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TimetableEvent
	for _, e := range m.events {
		if filter.SemesterID != "" && e.SemesterID != filter.SemesterID {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func (m *memTimetableRepo) FindByID(ctx context.Context, id string) (*models.TimetableEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (m *memTimetableRepo) FindBySlot(ctx context.Context, slot models.TimetableSlot, excludeID string) ([]models.TimetableEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slotQueries++
	if m.slotErr != nil {
		return nil, m.slotErr
	}
	if m.hideSlots {
		return nil, nil
	}
	var out []models.TimetableEvent
	for _, e := range m.events {
		if e.Slot() == slot && e.ID != excludeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memTimetableRepo) violation(event models.TimetableEvent) error {
	for _, e := range m.events {
		if e.ID == event.ID || e.Slot() != event.Slot() {
			continue
		}
		if e.ClassroomID == event.ClassroomID {
			return &models.SlotTakenError{Dimension: models.ConflictDimensionClassroom, Constraint: "timetable_events_classroom_slot_key"}
		}
		if e.TeacherID == event.TeacherID {
			return &models.SlotTakenError{Dimension: models.ConflictDimensionTeacher, Constraint: "timetable_events_teacher_slot_key"}
		}
	}
	return nil
}

func (m *memTimetableRepo) insert(event *models.TimetableEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if err := m.violation(*event); err != nil {
		return err
	}
	m.events[event.ID] = *event
	return nil
}

func (m *memTimetableRepo) Create(ctx context.Context, event *models.TimetableEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(event)
}

func (m *memTimetableRepo) BulkCreate(ctx context.Context, events []models.TimetableEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make(map[string]models.TimetableEvent, len(m.events))
	for k, v := range m.events {
		snapshot[k] = v
	}
	for i := range events {
		if err := m.insert(&events[i]); err != nil {
			m.events = snapshot
			return err
		}
	}
	return nil
}

func (m *memTimetableRepo) Update(ctx context.Context, event *models.TimetableEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.ID]; !ok {
		return sql.ErrNoRows
	}
	if err := m.violation(*event); err != nil {
		return err
	}
	m.events[event.ID] = *event
	return nil
}

func (m *memTimetableRepo) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return false, nil
	}
	delete(m.events, id)
	return true, nil
}

type recordingNotifier struct {
	changes []models.TimetableChange
}

func (r *recordingNotifier) TimetableChanged(ctx context.Context, change models.TimetableChange) {
	r.changes = append(r.changes, change)
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func eventRequest(classroom, teacher string, day int, start string) CreateTimetableEventRequest {
	return CreateTimetableEventRequest{
		ClassID:     "10A1",
		SubjectID:   "math",
		TeacherID:   teacher,
		ClassroomID: classroom,
		SemesterID:  semesterS1,
		DayOfWeek:   intPtr(day),
		StartTime:   start,
		EndTime:     "10:30",
		WeekNumber:  5,
		ActorID:     "admin-1",
	}
}

func newTimetableServiceForTest() (*TimetableService, *memTimetableRepo, *recordingNotifier) {
	repo := newMemTimetableRepo()
	notifier := &recordingNotifier{}
	svc := NewTimetableService(repo, nil, NewMetricsService(), nil, notifier)
	return svc, repo, notifier
}

func requireConflict(t *testing.T, err error, conflictType string) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrTimetableConflict.Code, appErr.Code)
	assert.Equal(t, conflictType, appErr.Message)
	return appErr
}

func TestTimetableServiceScenario(t *testing.T) {
	svc, _, notifier := newTimetableServiceForTest()
	ctx := context.Background()

	a, err := svc.Create(ctx, eventRequest(room101, "T1", 1, "08:00"))
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)

	_, err = svc.Create(ctx, eventRequest(room101, "T2", 1, "08:00"))
	appErr := requireConflict(t, err, models.ConflictTypeClassroom)
	details, ok := appErr.Details.(models.ConflictCheckResult)
	require.True(t, ok)
	assert.Equal(t, a.ID, details.Conflict.ID)

	_, err = svc.Create(ctx, eventRequest(room102, "T1", 1, "08:00"))
	requireConflict(t, err, models.ConflictTypeTeacher)

	_, err = svc.Create(ctx, eventRequest(room102, "T2", 1, "09:00"))
	require.NoError(t, err)

	require.Len(t, notifier.changes, 2)
	assert.Equal(t, models.TimetableChangeCreated, notifier.changes[0].Kind)
	assert.Equal(t, []string{semesterS1}, notifier.changes[0].SemesterIDs)
	assert.Equal(t, "admin-1", notifier.changes[0].ActorID)
}

func TestTimetableServiceCheckConflicts(t *testing.T) {
	svc, _, _ := newTimetableServiceForTest()
	ctx := context.Background()
	a, err := svc.Create(ctx, eventRequest(room101, "T1", 1, "08:00"))
	require.NoError(t, err)

	req := ConflictCheckRequest{ClassroomID: room101, TeacherID: "T9", DayOfWeek: intPtr(1), StartTime: "8:00", WeekNumber: 5, SemesterID: semesterS1}
	result, err := svc.CheckConflicts(ctx, req)
	require.NoError(t, err)
	assert.True(t, result.HasConflict)
	assert.Equal(t, models.ConflictTypeClassroom, result.ConflictType)

	req.ExcludeEventID = a.ID
	result, err = svc.CheckConflicts(ctx, req)
	require.NoError(t, err)
	assert.False(t, result.HasConflict)
	assert.Empty(t, result.ConflictType)
}

func TestTimetableServiceValidationRunsBeforeStore(t *testing.T) {
	svc, repo, _ := newTimetableServiceForTest()
	ctx := context.Background()

	bad := []CreateTimetableEventRequest{
		func() CreateTimetableEventRequest { r := eventRequest(room101, "T1", 1, "24:00"); return r }(),
		func() CreateTimetableEventRequest { r := eventRequest(room101, "T1", 7, "08:00"); return r }(),
		func() CreateTimetableEventRequest { r := eventRequest(room101, "T1", 1, "08:00"); r.WeekNumber = 53; return r }(),
		func() CreateTimetableEventRequest { r := eventRequest(room101, "T1", 1, "08:00"); r.EndTime = "07:00"; return r }(),
		func() CreateTimetableEventRequest { r := eventRequest(room101, "T1", 1, "08:00"); r.DayOfWeek = nil; return r }(),
		func() CreateTimetableEventRequest { r := eventRequest("", "T1", 1, "08:00"); return r }(),
	}
	for i, req := range bad {
		_, err := svc.Create(ctx, req)
		require.Error(t, err, i)
		assert.ErrorIs(t, err, appErrors.ErrValidation, i)
	}
	assert.Zero(t, repo.slotQueries)

	_, err := svc.CheckConflicts(ctx, ConflictCheckRequest{ClassroomID: room101, TeacherID: "T1", DayOfWeek: intPtr(1), StartTime: "8:0", WeekNumber: 5, SemesterID: semesterS1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, repo.slotQueries)
}

func TestTimetableServiceNormalisesOneDigitHour(t *testing.T) {
	svc, _, _ := newTimetableServiceForTest()
	ctx := context.Background()

	event, err := svc.Create(ctx, eventRequest(room101, "T1", 0, "8:00"))
	require.NoError(t, err)
	assert.Equal(t, "08:00", event.StartTime)
	assert.Equal(t, 0, event.DayOfWeek)

	_, err = svc.Create(ctx, eventRequest(room101, "T2", 0, "08:00"))
	requireConflict(t, err, models.ConflictTypeClassroom)
}

func TestTimetableServiceUpdateNotesSkipsCheck(t *testing.T) {
	svc, repo, notifier := newTimetableServiceForTest()
	ctx := context.Background()
	event, err := svc.Create(ctx, eventRequest(room101, "T1", 1, "08:00"))
	require.NoError(t, err)
	queries := repo.slotQueries

	updated, err := svc.Update(ctx, event.ID, UpdateTimetableEventRequest{Notes: strPtr("bring lab coats"), ActorID: "admin-2"})
	require.NoError(t, err)
	assert.Equal(t, queries, repo.slotQueries)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "bring lab coats", *updated.Notes)
	assert.Equal(t, event.CreatedAt, updated.CreatedAt)

	last := notifier.changes[len(notifier.changes)-1]
	assert.Equal(t, models.TimetableChangeUpdated, last.Kind)
	assert.Equal(t, "admin-2", last.ActorID)
}

func TestTimetableServiceUpdateSameStartDoesNotConflictWithItself(t *testing.T) {
	svc, _, _ := newTimetableServiceForTest()
	ctx := context.Background()
	event, err := svc.Create(ctx, eventRequest(room101, "T1", 1, "08:00"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, event.ID, UpdateTimetableEventRequest{StartTime: strPtr("8:00")})
	require.NoError(t, err)

	_, err = svc.Update(ctx, event.ID, UpdateTimetableEventRequest{ClassroomID: strPtr(room103)})
	require.NoError(t, err)
}

func TestTimetableServiceUpdateDetectsConflictWithOthers(t *testing.T) {
	svc, _, notifier := newTimetableServiceForTest()
	ctx := context.Background()
	_, err := svc.Create(ctx, eventRequest(room101, "T1", 1, "08:00"))
	require.NoError(t, err)
	other, err := svc.Create(ctx, eventRequest(room102, "T2", 1, "09:00"))
	require.NoError(t, err)
	before := len(notifier.changes)

	_, err = svc.Update(ctx, other.ID, UpdateTimetableEventRequest{StartTime: strPtr("08:00"), TeacherID: strPtr("T1")})
	requireConflict(t, err, models.ConflictTypeTeacher)
	assert.Len(t, notifier.changes, before)
}

func TestTimetableServiceUpdateMissing(t *testing.T) {
	svc, _, _ := newTimetableServiceForTest()
	_, err := svc.Update(context.Background(), uuid.NewString(), UpdateTimetableEventRequest{Notes: strPtr("x")})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTimetableServiceRejectsMalformedIDsBeforeStore(t *testing.T) {
	svc, repo, _ := newTimetableServiceForTest()
	ctx := context.Background()
	repo.slotErr = &pq.Error{Code: "22P02"}

	_, err := svc.CheckConflicts(ctx, ConflictCheckRequest{ClassroomID: "101", TeacherID: "T1", DayOfWeek: intPtr(1), StartTime: "08:00", WeekNumber: 5, SemesterID: "S1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "uuid", details["ConflictCheckRequest.SemesterID"])
	assert.Equal(t, "uuid", details["ConflictCheckRequest.ClassroomID"])

	_, err = svc.CheckConflicts(ctx, ConflictCheckRequest{ClassroomID: room101, TeacherID: "T1", DayOfWeek: intPtr(1), StartTime: "08:00", WeekNumber: 5, SemesterID: semesterS1, ExcludeEventID: "e1"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req := eventRequest(room101, "T1", 1, "08:00")
	req.SemesterID = "S1"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, repo.slotQueries)

	_, err = svc.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.Update(ctx, "not-a-uuid", UpdateTimetableEventRequest{Notes: strPtr("x")})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "not-a-uuid", "admin-1"), appErrors.ErrNotFound)
}

func TestTimetableServiceMalformedLiteralFromStoreIsValidation(t *testing.T) {
	svc, repo, _ := newTimetableServiceForTest()
	repo.slotErr = fmt.Errorf("find timetable events by slot: %w", &pq.Error{Code: "22P02"})

	_, err := svc.Create(context.Background(), eventRequest(room101, "T1", 1, "08:00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, 1, repo.slotQueries)
}

func TestTimetableServiceDeleteThenReuseSlot(t *testing.T) {
	svc, _, notifier := newTimetableServiceForTest()
	ctx := context.Background()
	first, err := svc.Create(ctx, eventRequest(room101, "T1", 1, "08:00"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, first.ID, "admin-1"))
	assert.Equal(t, models.TimetableChangeDeleted, notifier.changes[len(notifier.changes)-1].Kind)

	_, err = svc.Create(ctx, eventRequest(room101, "T1", 1, "08:00"))
	require.NoError(t, err)

	err = svc.Delete(ctx, first.ID, "admin-1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTimetableServiceConstraintViolationIsConflict(t *testing.T) {
	svc, repo, notifier := newTimetableServiceForTest()
	ctx := context.Background()
	_, err := svc.Create(ctx, eventRequest(room101, "T1", 1, "08:00"))
	require.NoError(t, err)

	// Simulates a concurrent writer that committed after the pre-check ran.
	repo.hideSlots = true
	_, err = svc.Create(ctx, eventRequest(room102, "T1", 1, "08:00"))
	appErr := requireConflict(t, err, models.ConflictTypeTeacher)
	details, ok := appErr.Details.(models.ConflictCheckResult)
	require.True(t, ok)
	assert.Equal(t, models.ConflictDimensionTeacher, details.Dimension)
	assert.Len(t, notifier.changes, 1)
}

func TestTimetableServiceStoreErrorOnCheck(t *testing.T) {
	svc, repo, _ := newTimetableServiceForTest()
	repo.slotErr = errors.New("connection reset")

	_, err := svc.Create(context.Background(), eventRequest(room101, "T1", 1, "08:00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	assert.Empty(t, repo.events)
}

func TestTimetableServiceBulkCreateDetectsInBatchConflicts(t *testing.T) {
	svc, repo, notifier := newTimetableServiceForTest()
	ctx := context.Background()

	items := []CreateTimetableEventRequest{
		eventRequest(room101, "T1", 1, "08:00"),
		eventRequest(room101, "T2", 1, "08:00"),
		eventRequest(room102, "T1", 1, "08:00"),
		eventRequest(room102, "T2", 1, "09:00"),
	}

	_, err := svc.BulkCreate(ctx, BulkCreateTimetableEventsRequest{Items: items})
	requireConflict(t, err, models.ConflictTypeClassroom)
	assert.Empty(t, repo.events)

	result, err := svc.BulkCreate(ctx, BulkCreateTimetableEventsRequest{Items: items, PartialOnError: true, ActorID: "admin-1"})
	require.NoError(t, err)
	assert.Len(t, result.Created, 2)
	require.Len(t, result.Conflicts, 2)
	assert.Equal(t, 1, result.Conflicts[0].Index)
	assert.Equal(t, models.ConflictTypeClassroom, result.Conflicts[0].ConflictType)
	assert.Equal(t, 2, result.Conflicts[1].Index)
	assert.Equal(t, models.ConflictTypeTeacher, result.Conflicts[1].ConflictType)
	assert.Len(t, repo.events, 2)

	last := notifier.changes[len(notifier.changes)-1]
	assert.Equal(t, models.TimetableChangeBulkCreated, last.Kind)
	assert.Len(t, last.EventIDs, 2)
	assert.Equal(t, []string{semesterS1}, last.SemesterIDs)
}

func TestTimetableServiceBulkCreateRejectsInvalidItem(t *testing.T) {
	svc, repo, _ := newTimetableServiceForTest()
	items := []CreateTimetableEventRequest{eventRequest(room101, "T1", 1, "08:00"), eventRequest(room101, "T1", 9, "08:00")}

	_, err := svc.BulkCreate(context.Background(), BulkCreateTimetableEventsRequest{Items: items, PartialOnError: true})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, repo.events)
}
