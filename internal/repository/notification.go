package repository

import (
	"context"
	"learnhub/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository interface {
	// Upsert creates the course's job or moves the existing one to the new fire time
	Upsert(ctx context.Context, courseID uint, fireAt, expiresAt time.Time) (*model.ScheduledNotification, error)
	FindByCourse(ctx context.Context, courseID uint) (*model.ScheduledNotification, error)
	Due(ctx context.Context, now time.Time, limit int) ([]*model.ScheduledNotification, error)
	// Claim deletes the job only if it was not rescheduled since it was read
	Claim(ctx context.Context, job *model.ScheduledNotification) (bool, error)
	// Requeue puts a claimed job back unless a newer edit already scheduled one
	Requeue(ctx context.Context, courseID uint, fireAt, expiresAt time.Time) error
}

type notificationRepoImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepoImpl{
		db: db,
	}
}

func (r *notificationRepoImpl) Upsert(ctx context.Context, courseID uint, fireAt, expiresAt time.Time) (*model.ScheduledNotification, error) {
	job := &model.ScheduledNotification{
		CourseID:  courseID,
		FireAt:    fireAt,
		ExpiresAt: expiresAt,
		Version:   1,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "course_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"fire_at":    fireAt,
			"expires_at": expiresAt,
			"version":    gorm.Expr("scheduled_notifications.version + 1"),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(job).Error
	if err != nil {
		return nil, err
	}

	return r.FindByCourse(ctx, courseID)
}

func (r *notificationRepoImpl) FindByCourse(ctx context.Context, courseID uint) (*model.ScheduledNotification, error) {
	var job model.ScheduledNotification
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		First(&job).Error

	if err != nil {
		return nil, err
	}

	return &job, nil
}

func (r *notificationRepoImpl) Due(ctx context.Context, now time.Time, limit int) ([]*model.ScheduledNotification, error) {
	var jobs []*model.ScheduledNotification
	err := r.db.WithContext(ctx).
		Where("fire_at <= ?", now).
		Order("fire_at").
		Limit(limit).
		Find(&jobs).Error

	if err != nil {
		return nil, err
	}

	return jobs, nil
}

func (r *notificationRepoImpl) Claim(ctx context.Context, job *model.ScheduledNotification) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND version = ?", job.ID, job.Version).
		Delete(&model.ScheduledNotification{})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *notificationRepoImpl) Requeue(ctx context.Context, courseID uint, fireAt, expiresAt time.Time) error {
	job := &model.ScheduledNotification{
		CourseID:  courseID,
		FireAt:    fireAt,
		ExpiresAt: expiresAt,
		Version:   1,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}},
		DoNothing: true,
	}).Create(job).Error
}
