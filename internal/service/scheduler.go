package service

import (
	"context"
	"fmt"
	"learnhub/internal/metrics"
	"learnhub/internal/model"
	"learnhub/internal/repository"
	"time"

	"go.uber.org/zap"
)

type NotificationScheduler interface {
	// Schedule arranges the course's update notification for offset after editedAt,
	// replacing any job that has not fired yet.
	Schedule(ctx context.Context, courseID uint, editedAt time.Time) (*model.ScheduledNotification, error)
}

type notificationSchedulerImpl struct {
	notificationRepo repository.NotificationRepository
	offset           time.Duration
	grace            time.Duration
	log              *zap.Logger
}

func NewNotificationScheduler(
	notificationRepo repository.NotificationRepository,
	offset time.Duration,
	grace time.Duration,
	log *zap.Logger,
) NotificationScheduler {
	return &notificationSchedulerImpl{
		notificationRepo: notificationRepo,
		offset:           offset,
		grace:            grace,
		log:              log.Named("scheduler"),
	}
}

func (s *notificationSchedulerImpl) Schedule(ctx context.Context, courseID uint, editedAt time.Time) (*model.ScheduledNotification, error) {
	fireAt := editedAt.UTC().Add(s.offset)
	expiresAt := fireAt.Add(s.grace)

	job, err := s.notificationRepo.Upsert(ctx, courseID, fireAt, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("schedule notification for course %d: %w", courseID, err)
	}

	metrics.NotificationsScheduled.Inc()
	s.log.Debug("course notification scheduled",
		zap.Uint("course_id", courseID),
		zap.Time("fire_at", job.FireAt),
		zap.Uint("version", job.Version),
	)

	return job, nil
}
