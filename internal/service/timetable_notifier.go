package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kotkala/EduConnectSystem-sub009/internal/models"
	"github.com/kotkala/EduConnectSystem-sub009/pkg/cache"
	"github.com/kotkala/EduConnectSystem-sub009/pkg/jobs"
)

const invalidateJobType = "timetable.invalidate"

type viewInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// TimetableCacheNotifier drops cached week views of every semester touched by a write.
// Work runs on a background queue; while the queue is stopped it runs inline.
type TimetableCacheNotifier struct {
	cache   viewInvalidator
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
	timeout time.Duration
}

// NewTimetableCacheNotifier builds the notifier and its queue. Call Start to process in the background.
func NewTimetableCacheNotifier(invalidator viewInvalidator, metrics *MetricsService, logger *zap.Logger, cfg jobs.QueueConfig) *TimetableCacheNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &TimetableCacheNotifier{cache: invalidator, metrics: metrics, logger: logger, timeout: 5 * time.Second}
	cfg.Logger = logger
	n.queue = jobs.NewQueue("timetable-notifier", n.handle, cfg)
	return n
}

// Start launches the queue workers.
func (n *TimetableCacheNotifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Stop drains the workers.
func (n *TimetableCacheNotifier) Stop() {
	n.queue.Stop()
}

// TimetableChanged schedules invalidation for the change. It never fails the caller.
func (n *TimetableCacheNotifier) TimetableChanged(ctx context.Context, change models.TimetableChange) {
	if len(change.SemesterIDs) == 0 {
		return
	}
	if n.queue.Running() {
		err := n.queue.Enqueue(jobs.Job{Type: invalidateJobType, Payload: change})
		if err == nil {
			n.metrics.RecordNotification("queued")
			return
		}
		n.logger.Warn("enqueue timetable invalidation failed, running inline", zap.Error(err))
	}

	syncCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()
	if err := n.invalidate(syncCtx, change); err != nil {
		n.metrics.RecordNotification("failed")
		n.logger.Error("timetable invalidation failed", zap.String("kind", string(change.Kind)), zap.Error(err))
		return
	}
	n.metrics.RecordNotification("inline")
}

func (n *TimetableCacheNotifier) handle(ctx context.Context, job jobs.Job) error {
	change, ok := job.Payload.(models.TimetableChange)
	if !ok {
		n.logger.Error("unexpected job payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	if err := n.invalidate(ctx, change); err != nil {
		n.metrics.RecordNotification("retry")
		return err
	}
	n.metrics.RecordNotification("done")
	return nil
}

func (n *TimetableCacheNotifier) invalidate(ctx context.Context, change models.TimetableChange) error {
	if n.cache == nil {
		return nil
	}
	for _, semesterID := range change.SemesterIDs {
		if err := n.cache.Invalidate(ctx, cache.SemesterPattern(semesterID)); err != nil {
			return fmt.Errorf("invalidate semester %s: %w", semesterID, err)
		}
	}
	n.logger.Debug("timetable views invalidated",
		zap.String("kind", string(change.Kind)),
		zap.Strings("semester_ids", change.SemesterIDs),
		zap.String("actor_id", change.ActorID))
	return nil
}
