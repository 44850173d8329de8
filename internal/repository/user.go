package repository

import (
	"context"
	"learnhub/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(ctx context.Context, userID uint) (*model.User, error)
	RecordLogin(ctx context.Context, userID uint, at time.Time) error
	DeactivateInactive(ctx context.Context, lastLoginBefore time.Time) (int64, error)
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) FindByID(ctx context.Context, userID uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&user).Error

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) RecordLogin(ctx context.Context, userID uint, at time.Time) error {
	db := r.db.WithContext(ctx)
	result := db.
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": at,
			"is_active":     true,
		})

	return checkUpdated(db, result, &model.User{}, userID)
}

// DeactivateInactive switches off active users whose last login is older than the cutoff.
// Users that never logged in are left alone.
func (r *userRepoImpl) DeactivateInactive(ctx context.Context, lastLoginBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("is_active = ?", true).
		Where("last_login_at <= ?", lastLoginBefore).
		Update("is_active", false)

	return result.RowsAffected, result.Error
}
