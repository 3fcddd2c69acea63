package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kotkala/EduConnectSystem-sub009/internal/middleware"
	"github.com/kotkala/EduConnectSystem-sub009/internal/models"
)

// Handlers bundles everything RegisterRoutes mounts.
type Handlers struct {
	Timetable *TimetableHandler
	Semester  *SemesterHandler
	Classroom *ClassroomHandler
	Metrics   *MetricsHandler
	Verifier  middleware.TokenVerifier
	Logger    *zap.Logger
}

// RegisterRoutes mounts ops endpoints at the root and the API under prefix.
// Reads need any valid token; writes need the admin role.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix, middleware.JWT(h.Verifier), middleware.WithResponseMeta())
	admin := middleware.RequireRoles(models.RoleAdmin)
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(h.Logger, action, resource)
	}

	timetable := api.Group("/timetable")
	{
		timetable.GET("/events", h.Timetable.List)
		timetable.GET("/events/:id", h.Timetable.Get)
		timetable.GET("/classes/:id", h.Timetable.ClassWeek)
		timetable.GET("/teachers/:id", h.Timetable.TeacherWeek)
		timetable.GET("/classes/:id/export", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), h.Timetable.ExportClassWeek)

		timetable.POST("/conflicts/check", admin, h.Timetable.CheckConflicts)
		timetable.POST("/events", admin, audit("create", "timetable_event"), h.Timetable.Create)
		timetable.POST("/events/bulk", admin, audit("bulk_create", "timetable_event"), h.Timetable.BulkCreate)
		timetable.PATCH("/events/:id", admin, audit("update", "timetable_event"), h.Timetable.Update)
		timetable.DELETE("/events/:id", admin, audit("delete", "timetable_event"), h.Timetable.Delete)
	}

	semesters := api.Group("/semesters")
	{
		semesters.GET("", h.Semester.List)
		semesters.GET("/active", h.Semester.Active)
		semesters.GET("/:id", h.Semester.Get)
		semesters.POST("", admin, audit("create", "semester"), h.Semester.Create)
		semesters.PUT("/:id", admin, audit("update", "semester"), h.Semester.Update)
		semesters.POST("/:id/activate", admin, audit("activate", "semester"), h.Semester.Activate)
		semesters.DELETE("/:id", admin, audit("delete", "semester"), h.Semester.Delete)
	}

	classrooms := api.Group("/classrooms")
	{
		classrooms.GET("", h.Classroom.List)
		classrooms.GET("/:id", h.Classroom.Get)
		classrooms.POST("", admin, audit("create", "classroom"), h.Classroom.Create)
		classrooms.PUT("/:id", admin, audit("update", "classroom"), h.Classroom.Update)
		classrooms.DELETE("/:id", admin, audit("delete", "classroom"), h.Classroom.Delete)
	}
}
