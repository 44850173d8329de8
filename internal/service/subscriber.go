package service

import (
	"context"
	"errors"
	"fmt"
	"learnhub/internal/model"
	"learnhub/internal/repository"

	"gorm.io/gorm"
)

type SubscriberService interface {
	// Toggle subscribes the user to the course, or unsubscribes if already subscribed.
	// It reports whether the user is subscribed afterwards.
	Toggle(ctx context.Context, userID, courseID uint) (bool, error)
}

type subscriberServiceImpl struct {
	courseRepo     repository.CourseRepository
	subscriberRepo repository.SubscriberRepository
}

func NewSubscriberService(
	courseRepo repository.CourseRepository,
	subscriberRepo repository.SubscriberRepository,
) SubscriberService {
	return &subscriberServiceImpl{
		courseRepo:     courseRepo,
		subscriberRepo: subscriberRepo,
	}
}

func (s *subscriberServiceImpl) Toggle(ctx context.Context, userID, courseID uint) (bool, error) {
	sub, err := s.subscriberRepo.Find(ctx, userID, courseID)
	if err == nil {
		if err := s.subscriberRepo.Delete(ctx, sub.ID); err != nil {
			return true, fmt.Errorf("delete subscription: %w", err)
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("find subscription: %w", err)
	}

	if _, err := s.courseRepo.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCourseNotFound
		}
		return false, fmt.Errorf("find course: %w", err)
	}

	err = s.subscriberRepo.Create(ctx, &model.Subscriber{UserID: userID, CourseID: courseID})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent toggle subscribed first
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("create subscription: %w", err)
	}

	return true, nil
}
