package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
)

// Subscription is a followed author with a preview of their recipes.
type Subscription struct {
	User         models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

type FollowService struct {
	db *gorm.DB
}

var _ IFollowService = (*FollowService)(nil)

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

func (s *FollowService) Follow(ctx context.Context, followerID, targetID uuid.UUID, recipesLimit int) (*Subscription, error) {
	if followerID == targetID {
		return nil, ErrSelfFollow
	}

	var target models.User
	if err := s.db.WithContext(ctx).First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	follow := models.Follow{UserID: followerID, FollowingID: targetID}
	if err := s.db.WithContext(ctx).Omit("User", "Following").Create(&follow).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyFollowing
		}
		return nil, fmt.Errorf("follow user: %w", err)
	}

	subs, err := s.withRecipes(ctx, []models.User{target}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID uuid.UUID) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", targetID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND following_id = ?", followerID, targetID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return fmt.Errorf("unfollow user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFollowing
	}
	return nil
}

// ListFollowing pages through the users userID follows, ordered by username.
func (s *FollowService) ListFollowing(ctx context.Context, userID uuid.UUID, page PageRequest, recipesLimit int) ([]Subscription, int64, error) {
	followed := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.User{}).
			Joins("JOIN follows ON follows.following_id = users.id").
			Where("follows.user_id = ?", userID)
	}

	var total int64
	if err := followed().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count subscriptions: %w", err)
	}

	var users []models.User
	err := followed().
		Select("users.*").
		Order("users.username").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list subscriptions: %w", err)
	}

	subs, err := s.withRecipes(ctx, users, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// FollowingSet reports which of ids the viewer follows. Anonymous viewers
// follow nobody.
func (s *FollowService) FollowingSet(ctx context.Context, viewer *uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool)
	if viewer == nil || len(ids) == 0 {
		return set, nil
	}

	var following []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND following_id IN ?", *viewer, ids).
		Pluck("following_id", &following).Error
	if err != nil {
		return nil, err
	}
	for _, id := range following {
		set[id] = true
	}
	return set, nil
}

type authorCount struct {
	AuthorID uuid.UUID
	Total    int64
}

func (s *FollowService) withRecipes(ctx context.Context, users []models.User, recipesLimit int) ([]Subscription, error) {
	subs := make([]Subscription, 0, len(users))
	if len(users) == 0 {
		return subs, nil
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	var counts []authorCount
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count recipes: %w", err)
	}
	totals := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		totals[c.AuthorID] = c.Total
	}

	for _, u := range users {
		q := s.db.WithContext(ctx).
			Select("id", "name", "image", "cooking_time", "created_at").
			Where("author_id = ?", u.ID).
			Order("created_at DESC").
			Order("id")
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if err := q.Find(&recipes).Error; err != nil {
			return nil, fmt.Errorf("load recipes: %w", err)
		}
		subs = append(subs, Subscription{User: u, Recipes: recipes, RecipesCount: totals[u.ID]})
	}
	return subs, nil
}
