// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"trainhub/internal/cache"
	"trainhub/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	ListPending(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, err
}

func (r *userRepository) ListPending(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("is_active = ?", false).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes the user together with everything they authored:
// their ratings and comments, the dependents of their posts, and the
// posts themselves, all in one transaction. Every post the cascade
// touches is collected first: the user's own posts leave the cache
// entirely, and posts they commented on or rated keep stale aggregates
// otherwise.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	var authoredIDs, commentedIDs, ratedIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("user_id = ?", id).Pluck("id", &authoredIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Distinct().Where("user_id = ?", id).Pluck("post_id", &commentedIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Rating{}).Distinct().Where("user_id = ?", id).Pluck("post_id", &ratedIDs).Error; err != nil {
			return err
		}

		if err := tx.Where("post_id IN ?", authoredIDs).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN ?", authoredIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return err
	}

	cache.InvalidateSections(ctx)
	seen := make(map[uint]struct{})
	for _, ids := range [][]uint{authoredIDs, commentedIDs, ratedIDs} {
		for _, postID := range ids {
			if _, dup := seen[postID]; dup {
				continue
			}
			seen[postID] = struct{}{}
			cache.InvalidatePost(ctx, postID)
		}
	}
	return nil
}
