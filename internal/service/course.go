package service

import (
	"context"
	"errors"
	"fmt"
	"learnhub/internal/model"
	"learnhub/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CourseChanges struct {
	Title       *string
	Description *string
	Price       *int64
}

type CourseService interface {
	Get(ctx context.Context, courseID uint) (*model.Course, error)
	Update(ctx context.Context, courseID uint, changes CourseChanges) (*model.Course, error)
}

type courseServiceImpl struct {
	courseRepo repository.CourseRepository
	scheduler  NotificationScheduler
	log        *zap.Logger
}

func NewCourseService(
	courseRepo repository.CourseRepository,
	scheduler NotificationScheduler,
	log *zap.Logger,
) CourseService {
	return &courseServiceImpl{
		courseRepo: courseRepo,
		scheduler:  scheduler,
		log:        log.Named("courses"),
	}
}

func (s *courseServiceImpl) Get(ctx context.Context, courseID uint) (*model.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	return course, nil
}

// Update saves the course and schedules the subscriber notification for the new
// modification time. A failed schedule is logged; the saved course is still returned.
func (s *courseServiceImpl) Update(ctx context.Context, courseID uint, changes CourseChanges) (*model.Course, error) {
	verr := &ValidationError{}
	fields := map[string]interface{}{}
	if changes.Title != nil {
		if *changes.Title == "" {
			verr.add("title", "This field may not be blank.")
		}
		fields["title"] = *changes.Title
	}
	if changes.Description != nil {
		fields["description"] = *changes.Description
	}
	if changes.Price != nil {
		if *changes.Price < 0 {
			verr.add("price", "Ensure this value is greater than or equal to 0.")
		}
		fields["price"] = *changes.Price
	}
	if !verr.empty() {
		return nil, verr
	}

	course, err := s.courseRepo.Update(ctx, courseID, fields)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}

	if _, err := s.scheduler.Schedule(ctx, course.ID, course.UpdatedAt); err != nil {
		s.log.Error("schedule course notification failed", zap.Uint("course_id", course.ID), zap.Error(err))
	}

	return course, nil
}
