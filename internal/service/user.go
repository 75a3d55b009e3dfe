package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

type UserService struct {
	db     *gorm.DB
	images ImageStore
}

var _ IUserService = (*UserService)(nil)

func NewUserService(db *gorm.DB, images ImageStore) *UserService {
	return &UserService{db: db, images: images}
}

func (s *UserService) List(ctx context.Context, page PageRequest) ([]models.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Order("username").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetAvatar stores the uploaded image and replaces the previous one.
func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, dataURI string) (string, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	previous := user.Avatar
	url, err := s.images.Save(ctx, "avatars", dataURI)
	if err != nil {
		return "", imageFieldError("avatar", err)
	}

	if err := s.db.WithContext(ctx).Model(user).Update("avatar", url).Error; err != nil {
		removeQuietly(ctx, s.images, url)
		return "", fmt.Errorf("set avatar: %w", err)
	}
	removeQuietly(ctx, s.images, previous)
	return url, nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	previous := user.Avatar
	if previous == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", "").Error; err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	removeQuietly(ctx, s.images, previous)
	return nil
}
