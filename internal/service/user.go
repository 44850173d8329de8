package service

import (
	"context"
	"errors"
	"fmt"
	"learnhub/internal/model"
	"learnhub/internal/repository"
	"time"

	"gorm.io/gorm"
)

type UserService interface {
	Get(ctx context.Context, userID uint) (*model.User, error)
	RecordLogin(ctx context.Context, userID uint, at time.Time) error
}

type userServiceImpl struct {
	userRepo repository.UserRepository
}

func NewUserService(
	userRepo repository.UserRepository,
) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
	}
}

func (s *userServiceImpl) Get(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *userServiceImpl) RecordLogin(ctx context.Context, userID uint, at time.Time) error {
	err := s.userRepo.RecordLogin(ctx, userID, at.UTC())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}
