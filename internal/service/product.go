package service

import (
	"context"
	"errors"
	"fmt"
	"learnhub/internal/model"
	"learnhub/internal/repository"

	"gorm.io/gorm"
)

type ProductLocator interface {
	Locate(ctx context.Context, kind string, productID uint) (model.Purchasable, error)
}

type productLocatorImpl struct {
	courseRepo repository.CourseRepository
	lessonRepo repository.LessonRepository
}

func NewProductLocator(
	courseRepo repository.CourseRepository,
	lessonRepo repository.LessonRepository,
) ProductLocator {
	return &productLocatorImpl{
		courseRepo: courseRepo,
		lessonRepo: lessonRepo,
	}
}

func (l *productLocatorImpl) Locate(ctx context.Context, kind string, productID uint) (model.Purchasable, error) {
	productKind, ok := model.ParseProductKind(kind)
	if !ok {
		return nil, ErrUnknownProductKind
	}

	var (
		product model.Purchasable
		err     error
	)
	switch productKind {
	case model.ProductKindCourse:
		product, err = l.findCourse(ctx, productID)
	case model.ProductKindLesson:
		product, err = l.findLesson(ctx, productID)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %d: %w", productKind, productID, err)
	}

	return product, nil
}

// typed helpers so a nil row never becomes a non-nil interface
func (l *productLocatorImpl) findCourse(ctx context.Context, id uint) (model.Purchasable, error) {
	course, err := l.courseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (l *productLocatorImpl) findLesson(ctx context.Context, id uint) (model.Purchasable, error) {
	lesson, err := l.lessonRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return lesson, nil
}
