package repository

import (
	"context"
	"learnhub/internal/model"

	"gorm.io/gorm"
)

type SubscriberRepository interface {
	Find(ctx context.Context, userID, courseID uint) (*model.Subscriber, error)
	Create(ctx context.Context, sub *model.Subscriber) error
	Delete(ctx context.Context, subscriberID uint) error
	ListEmails(ctx context.Context, courseID uint) ([]string, error)
}

type subscriberRepoImpl struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &subscriberRepoImpl{
		db: db,
	}
}

func (r *subscriberRepoImpl) Find(ctx context.Context, userID, courseID uint) (*model.Subscriber, error) {
	var sub model.Subscriber
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&sub).
		Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriberRepoImpl) Create(ctx context.Context, sub *model.Subscriber) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriberRepoImpl) Delete(ctx context.Context, subscriberID uint) error {
	return r.db.WithContext(ctx).
		Where("id = ?", subscriberID).
		Delete(&model.Subscriber{}).
		Error
}

// ListEmails returns the addresses of everyone currently subscribed to the course.
func (r *subscriberRepoImpl) ListEmails(ctx context.Context, courseID uint) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).
		Model(&model.Subscriber{}).
		Joins("JOIN users ON users.id = subscribers.user_id").
		Where("subscribers.course_id = ?", courseID).
		Order("subscribers.id").
		Pluck("users.email", &emails).
		Error

	if err != nil {
		return nil, err
	}

	return emails, nil
}
