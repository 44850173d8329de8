package repository

import (
	"context"
	"learnhub/internal/model"

	"gorm.io/gorm"
)

type PaymentFilter struct {
	UserID        uint
	CourseID      *uint
	LessonID      *uint
	PaymentMethod string
	OldestFirst   bool
}

type PaymentRepository interface {
	// Create inserts a payment; a second payment for the same (user, product) fails with gorm.ErrDuplicatedKey
	Create(ctx context.Context, payment *model.Payment) error
	Exists(ctx context.Context, userID uint, kind model.ProductKind, productID uint) (bool, error)
	List(ctx context.Context, filter PaymentFilter) ([]*model.Payment, error)
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) Exists(ctx context.Context, userID uint, kind model.ProductKind, productID uint) (bool, error) {
	column := "course_id"
	if kind == model.ProductKindLesson {
		column = "lesson_id"
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("user_id = ?", userID).
		Where(column+" = ?", productID).
		Count(&count).Error

	return count > 0, err
}

func (r *paymentRepoImpl) List(ctx context.Context, filter PaymentFilter) ([]*model.Payment, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", filter.UserID)

	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}
	if filter.LessonID != nil {
		query = query.Where("lesson_id = ?", *filter.LessonID)
	}
	if filter.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filter.PaymentMethod)
	}

	if filter.OldestFirst {
		query = query.Order("created_at ASC").Order("id ASC")
	} else {
		query = query.Order("created_at DESC").Order("id DESC")
	}

	var payments []*model.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}

	return payments, nil
}
