package repository

import (
	"context"
	"learnhub/internal/model"

	"gorm.io/gorm"
)

type LessonRepository interface {
	FindByID(ctx context.Context, lessonID uint) (*model.Lesson, error)
	Update(ctx context.Context, lessonID uint, fields map[string]interface{}) (*model.Lesson, error)
}

type lessonRepoImpl struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepoImpl{
		db: db,
	}
}

func (r *lessonRepoImpl) FindByID(ctx context.Context, lessonID uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.db.WithContext(ctx).
		Where("id = ?", lessonID).
		First(&lesson).Error

	if err != nil {
		return nil, err
	}

	return &lesson, nil
}

func (r *lessonRepoImpl) Update(ctx context.Context, lessonID uint, fields map[string]interface{}) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Lesson{}).
			Where("id = ?", lessonID).
			Updates(fields)

		if err := checkUpdated(tx, result, &model.Lesson{}, lessonID); err != nil {
			return err
		}

		return tx.Where("id = ?", lessonID).First(&lesson).Error
	})
	if err != nil {
		return nil, err
	}

	return &lesson, nil
}
