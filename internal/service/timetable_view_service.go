package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kotkala/EduConnectSystem-sub009/internal/models"
	"github.com/kotkala/EduConnectSystem-sub009/pkg/cache"
	appErrors "github.com/kotkala/EduConnectSystem-sub009/pkg/errors"
	"github.com/kotkala/EduConnectSystem-sub009/pkg/export"
)

// View scopes used in cache keys and responses.
const (
	ViewScopeClass   = "class"
	ViewScopeTeacher = "teacher"
)

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var exportHeaders = []string{"Day", "Start", "End", "Subject", "Teacher", "Classroom", "Notes"}

type timetableWeekRepository interface {
	ListWeekByClass(ctx context.Context, classID, semesterID string, week int) ([]models.TimetableEvent, error)
	ListWeekByTeacher(ctx context.Context, teacherID, semesterID string, week int) ([]models.TimetableEvent, error)
}

// Renderer turns a dataset into a downloadable document.
type Renderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
	Extension() string
}

// TimetableViewConfig tunes caching and export.
type TimetableViewConfig struct {
	CacheTTL      time.Duration
	ExportEnabled bool
	TitlePrefix   string
}

// ExportFile is a rendered timetable ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// TimetableViewService serves weekly timetables for classes and teachers.
type TimetableViewService struct {
	repo      timetableWeekRepository
	cache     *CacheService
	renderers map[string]Renderer
	cfg       TimetableViewConfig
	logger    *zap.Logger
}

// NewTimetableViewService constructs the view service. renderers are keyed by their extension.
func NewTimetableViewService(repo timetableWeekRepository, cacheSvc *CacheService, cfg TimetableViewConfig, logger *zap.Logger, renderers ...Renderer) *TimetableViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(renderers) == 0 {
		renderers = []Renderer{export.NewCSVExporter(), export.NewPDFExporter()}
	}
	byFormat := make(map[string]Renderer, len(renderers))
	for _, r := range renderers {
		byFormat[r.Extension()] = r
	}
	if cfg.TitlePrefix == "" {
		cfg.TitlePrefix = "Timetable"
	}
	return &TimetableViewService{repo: repo, cache: cacheSvc, renderers: byFormat, cfg: cfg, logger: logger}
}

// ClassWeek returns a class's events for one week. The bool reports a cache hit.
func (s *TimetableViewService) ClassWeek(ctx context.Context, classID, semesterID string, week int) (*models.TimetableWeek, bool, error) {
	return s.week(ctx, ViewScopeClass, classID, semesterID, week)
}

// TeacherWeek returns a teacher's events for one week. The bool reports a cache hit.
func (s *TimetableViewService) TeacherWeek(ctx context.Context, teacherID, semesterID string, week int) (*models.TimetableWeek, bool, error) {
	return s.week(ctx, ViewScopeTeacher, teacherID, semesterID, week)
}

// ExportClassWeek renders a class week as csv or pdf.
func (s *TimetableViewService) ExportClassWeek(ctx context.Context, classID, semesterID string, week int, format string) (*ExportFile, error) {
	if !s.cfg.ExportEnabled {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "timetable export is disabled")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	view, _, err := s.ClassWeek(ctx, classID, semesterID, week)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s %s - week %d", s.cfg.TitlePrefix, classID, week)
	payload, err := renderer.Render(weekDataset(view.Events), title)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render timetable export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("timetable_%s_w%02d.%s", sanitizeFilename(classID), week, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}

func (s *TimetableViewService) week(ctx context.Context, scope, ownerID, semesterID string, week int) (*models.TimetableWeek, bool, error) {
	ownerID = strings.TrimSpace(ownerID)
	semesterID = strings.TrimSpace(semesterID)
	if ownerID == "" || semesterID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "owner id and semester_id are required")
	}
	if _, err := uuid.Parse(semesterID); err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "semester_id must be a UUID")
	}
	if week < 1 || week > 52 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "week must be between 1 and 52")
	}

	key := cache.TimetableViewKey(semesterID, scope, ownerID, week)
	var cached models.TimetableWeek
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	var (
		events []models.TimetableEvent
		err    error
	)
	if scope == ViewScopeTeacher {
		events, err = s.repo.ListWeekByTeacher(ctx, ownerID, semesterID, week)
	} else {
		events, err = s.repo.ListWeekByClass(ctx, ownerID, semesterID, week)
	}
	if err != nil {
		return nil, false, storeError(err, "failed to load timetable week")
	}
	if events == nil {
		events = []models.TimetableEvent{}
	}

	view := &models.TimetableWeek{Scope: scope, OwnerID: ownerID, SemesterID: semesterID, WeekNumber: week, Events: events}
	s.cache.Set(ctx, key, view, s.cfg.CacheTTL)
	return view, false, nil
}

func weekDataset(events []models.TimetableEvent) export.Dataset {
	rows := make([]map[string]string, 0, len(events))
	for _, e := range events {
		notes := ""
		if e.Notes != nil {
			notes = *e.Notes
		}
		day := ""
		if e.DayOfWeek >= 0 && e.DayOfWeek < len(dayNames) {
			day = dayNames[e.DayOfWeek]
		}
		rows = append(rows, map[string]string{
			"Day":       day,
			"Start":     e.StartTime,
			"End":       e.EndTime,
			"Subject":   e.SubjectID,
			"Teacher":   e.TeacherID,
			"Classroom": e.ClassroomID,
			"Notes":     notes,
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func sanitizeFilename(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, value)
}
