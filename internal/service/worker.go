package service

import (
	"context"
	"errors"
	"learnhub/internal/metrics"
	"learnhub/internal/model"
	"learnhub/internal/repository"
	"time"

	"go.uber.org/zap"
)

type WorkerConfig struct {
	PollInterval          time.Duration
	BatchSize             int
	InactiveAfter         time.Duration
	ActivityCheckInterval time.Duration
}

type NotificationWorker interface {
	Run(ctx context.Context) error
	RunOnce(ctx context.Context, now time.Time) (int, error)
	SweepInactiveUsers(ctx context.Context, now time.Time) (int64, error)
}

type notificationWorkerImpl struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	dispatcher       NotificationDispatcher
	cfg              WorkerConfig
	log              *zap.Logger
	now              func() time.Time
}

func NewNotificationWorker(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	dispatcher NotificationDispatcher,
	cfg WorkerConfig,
	log *zap.Logger,
) NotificationWorker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	return &notificationWorkerImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		dispatcher:       dispatcher,
		cfg:              cfg,
		log:              log.Named("worker"),
		now:              time.Now,
	}
}

// Run polls for due jobs until ctx is cancelled. The inactive-user sweep runs on its
// own ticker when an activity check interval is configured.
func (w *notificationWorkerImpl) Run(ctx context.Context) error {
	poll := time.NewTicker(w.cfg.PollInterval)
	defer poll.Stop()

	var sweep <-chan time.Time
	if w.cfg.ActivityCheckInterval > 0 && w.cfg.InactiveAfter > 0 {
		t := time.NewTicker(w.cfg.ActivityCheckInterval)
		defer t.Stop()
		sweep = t.C
	}

	w.log.Info("notification worker started",
		zap.Duration("poll_interval", w.cfg.PollInterval),
		zap.Int("batch_size", w.cfg.BatchSize),
	)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("notification worker stopped")
			return nil
		case <-poll.C:
			if _, err := w.RunOnce(ctx, w.now()); err != nil && !errors.Is(err, context.Canceled) {
				w.log.Error("poll due notifications failed", zap.Error(err))
			}
		case <-sweep:
			if _, err := w.SweepInactiveUsers(ctx, w.now()); err != nil && !errors.Is(err, context.Canceled) {
				w.log.Error("inactive user sweep failed", zap.Error(err))
			}
		}
	}
}

// RunOnce fires every job due at now and returns how many were dispatched.
func (w *notificationWorkerImpl) RunOnce(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()

	jobs, err := w.notificationRepo.Due(ctx, now, w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return dispatched, err
		}

		claimed, err := w.notificationRepo.Claim(ctx, job)
		if err != nil {
			w.log.Error("claim notification failed", zap.Uint("course_id", job.CourseID), zap.Error(err))
			continue
		}
		if !claimed {
			// rescheduled by a newer edit after we read it
			metrics.NotificationJobs.WithLabelValues("rescheduled").Inc()
			continue
		}

		if job.ExpiresAt.Before(now) {
			metrics.NotificationJobs.WithLabelValues("expired").Inc()
			w.log.Warn("course notification expired",
				zap.Uint("course_id", job.CourseID),
				zap.Time("fire_at", job.FireAt),
				zap.Time("expires_at", job.ExpiresAt),
			)
			continue
		}

		if _, err := w.dispatcher.Dispatch(ctx, job.CourseID); err != nil {
			metrics.NotificationJobs.WithLabelValues("failed").Inc()
			w.log.Error("dispatch course notification failed", zap.Uint("course_id", job.CourseID), zap.Error(err))
			if !errors.Is(err, ErrCourseNotFound) {
				w.requeue(ctx, job, now)
			}
			continue
		}

		metrics.NotificationJobs.WithLabelValues("dispatched").Inc()
		dispatched++
	}

	return dispatched, nil
}

// requeue retries a job whose dispatch failed on the next poll, keeping its grace window.
func (w *notificationWorkerImpl) requeue(ctx context.Context, job *model.ScheduledNotification, now time.Time) {
	fireAt := now.Add(w.cfg.PollInterval)
	expiresAt := fireAt.Add(job.ExpiresAt.Sub(job.FireAt))

	if err := w.notificationRepo.Requeue(ctx, job.CourseID, fireAt, expiresAt); err != nil {
		w.log.Error("requeue course notification failed", zap.Uint("course_id", job.CourseID), zap.Error(err))
		return
	}

	metrics.NotificationJobs.WithLabelValues("requeued").Inc()
	w.log.Info("course notification requeued", zap.Uint("course_id", job.CourseID), zap.Time("fire_at", fireAt))
}

func (w *notificationWorkerImpl) SweepInactiveUsers(ctx context.Context, now time.Time) (int64, error) {
	n, err := w.userRepo.DeactivateInactive(ctx, now.UTC().Add(-w.cfg.InactiveAfter))
	if err != nil {
		return 0, err
	}

	metrics.UsersDeactivated.Add(float64(n))
	if n > 0 {
		w.log.Info("inactive users deactivated", zap.Int64("count", n))
	}

	return n, nil
}
