package repository

import (
	"context"
	"errors"

	"trainhub/internal/cache"
	"trainhub/internal/models"

	"gorm.io/gorm"
)

// RatingRepository defines the interface for rating data operations
type RatingRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Rating, error)
	GetByPostAndUser(ctx context.Context, postID, userID uint) (*models.Rating, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Rating, error)
	// Upsert writes the rating and reports whether a new row was created
	// (as opposed to an existing one updated in place).
	Upsert(ctx context.Context, postID, userID uint, value int) (bool, error)
	Update(ctx context.Context, rating *models.Rating) error
	Delete(ctx context.Context, id uint) error
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) GetByID(ctx context.Context, id uint) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&rating, id).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) GetByPostAndUser(ctx context.Context, postID, userID uint) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Rating, error) {
	var ratings []*models.Rating
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&ratings).Error
	return ratings, err
}

// Upsert writes the user's rating for the post. The unique index makes
// this atomic: a concurrent duplicate collapses into an in-place update,
// so the row keeps its id and created_at. xmax is zero only on a freshly
// inserted row, which settles created-vs-updated even when two first
// ratings race.
func (r *ratingRepository) Upsert(ctx context.Context, postID, userID uint, value int) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO ratings (post_id, user_id, rating, created_at)
		 VALUES (?, ?, ?, NOW())
		 ON CONFLICT (post_id, user_id) DO UPDATE SET rating = EXCLUDED.rating
		 RETURNING (xmax = 0) AS created`,
		postID, userID, value,
	).Scan(&created).Error
	if err == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return created, err
}

func (r *ratingRepository) Update(ctx context.Context, rating *models.Rating) error {
	if err := r.db.WithContext(ctx).Save(rating).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, rating.PostID)
	return nil
}

func (r *ratingRepository) Delete(ctx context.Context, id uint) error {
	var rating models.Rating
	if err := r.db.WithContext(ctx).First(&rating, id).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Rating{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, rating.PostID)
	return nil
}
