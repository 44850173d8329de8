package service

import (
	"context"
	"errors"
	"fmt"
	"learnhub/internal/model"
	"learnhub/internal/repository"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LessonChanges struct {
	Title       *string
	Description *string
	VideoURL    *string
	Price       *int64
}

type LessonService interface {
	// Get returns the lesson if the user owns it or paid for it or its course
	Get(ctx context.Context, userID, lessonID uint) (*model.Lesson, error)
	Update(ctx context.Context, userID, lessonID uint, changes LessonChanges) (*model.Lesson, error)
}

type lessonServiceImpl struct {
	lessonRepo  repository.LessonRepository
	courseRepo  repository.CourseRepository
	paymentRepo repository.PaymentRepository
	scheduler   NotificationScheduler
	log         *zap.Logger
	now         func() time.Time
}

func NewLessonService(
	lessonRepo repository.LessonRepository,
	courseRepo repository.CourseRepository,
	paymentRepo repository.PaymentRepository,
	scheduler NotificationScheduler,
	log *zap.Logger,
) LessonService {
	return &lessonServiceImpl{
		lessonRepo:  lessonRepo,
		courseRepo:  courseRepo,
		paymentRepo: paymentRepo,
		scheduler:   scheduler,
		log:         log.Named("lessons"),
		now:         time.Now,
	}
}

func (s *lessonServiceImpl) find(ctx context.Context, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.lessonRepo.FindByID(ctx, lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLessonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lesson: %w", err)
	}
	return lesson, nil
}

func (s *lessonServiceImpl) Get(ctx context.Context, userID, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.find(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	if lesson.OwnerID != nil && *lesson.OwnerID == userID {
		return lesson, nil
	}

	paid, err := s.paymentRepo.Exists(ctx, userID, model.ProductKindLesson, lesson.ID)
	if err != nil {
		return nil, fmt.Errorf("check lesson payment: %w", err)
	}
	if !paid && lesson.CourseID != nil {
		paid, err = s.paymentRepo.Exists(ctx, userID, model.ProductKindCourse, *lesson.CourseID)
		if err != nil {
			return nil, fmt.Errorf("check course payment: %w", err)
		}
	}
	if !paid {
		return nil, ErrForbidden
	}

	return lesson, nil
}

// Update is limited to the lesson owner. Saving a lesson counts as a change to its
// course, so the course's modification time moves and a notification is scheduled.
func (s *lessonServiceImpl) Update(ctx context.Context, userID, lessonID uint, changes LessonChanges) (*model.Lesson, error) {
	lesson, err := s.find(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.OwnerID != nil && *lesson.OwnerID != userID {
		return nil, ErrForbidden
	}

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
	if changes.VideoURL != nil {
		if *changes.VideoURL != "" {
			var urlErr *ValidationError
			if errors.As(ValidateVideoURL(*changes.VideoURL), &urlErr) {
				for _, msg := range urlErr.Fields["video_url"] {
					verr.add("video_url", msg)
				}
			}
		}
		fields["video_url"] = *changes.VideoURL
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

	updated, err := s.lessonRepo.Update(ctx, lessonID, fields)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLessonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update lesson: %w", err)
	}

	if updated.CourseID != nil {
		s.touchCourse(ctx, *updated.CourseID)
	}

	return updated, nil
}

func (s *lessonServiceImpl) touchCourse(ctx context.Context, courseID uint) {
	at := s.now().UTC()
	if err := s.courseRepo.Touch(ctx, courseID, at); err != nil {
		s.log.Error("touch course failed", zap.Uint("course_id", courseID), zap.Error(err))
		return
	}
	if _, err := s.scheduler.Schedule(ctx, courseID, at); err != nil {
		s.log.Error("schedule course notification failed", zap.Uint("course_id", courseID), zap.Error(err))
	}
}
