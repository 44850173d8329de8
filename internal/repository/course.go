package repository

import (
	"context"
	"learnhub/internal/model"
	"time"

	"gorm.io/gorm"
)

type CourseRepository interface {
	FindByID(ctx context.Context, courseID uint) (*model.Course, error)
	Update(ctx context.Context, courseID uint, fields map[string]interface{}) (*model.Course, error)
	Touch(ctx context.Context, courseID uint, at time.Time) error
}

type courseRepoImpl struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepoImpl{
		db: db,
	}
}

func (r *courseRepoImpl) FindByID(ctx context.Context, courseID uint) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("id = ?", courseID).
		First(&course).Error

	if err != nil {
		return nil, err
	}

	return &course, nil
}

// Update applies fields and stamps updated_at, returning the row as stored.
func (r *courseRepoImpl) Update(ctx context.Context, courseID uint, fields map[string]interface{}) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Course{}).
			Where("id = ?", courseID).
			Updates(fields)

		if err := checkUpdated(tx, result, &model.Course{}, courseID); err != nil {
			return err
		}

		return tx.Where("id = ?", courseID).First(&course).Error
	})
	if err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *courseRepoImpl) Touch(ctx context.Context, courseID uint, at time.Time) error {
	db := r.db.WithContext(ctx)
	result := db.
		Model(&model.Course{}).
		Where("id = ?", courseID).
		Update("updated_at", at)

	return checkUpdated(db, result, &model.Course{}, courseID)
}
