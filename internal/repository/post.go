package repository

import (
	"context"

	"trainhub/internal/cache"
	"trainhub/internal/models"

	"gorm.io/gorm"
)

// Scope narrows a post query to the rows a caller may see.
type Scope = func(*gorm.DB) *gorm.DB

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetByID loads one post with its computed aggregates. Guest reads
	// are served through the cache since they all see the same view.
	GetByID(ctx context.Context, id uint, guest bool) (*models.Post, error)
	List(ctx context.Context, scope Scope, limit, offset int) ([]*models.Post, error)
	ListBySection(ctx context.Context, sectionID uint, scope Scope, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostDetails adds subqueries to fetch the comment count and the
// average rating in a single query. AVG over an empty set is NULL, which
// scans into a nil AverageRating.
func (r *postRepository) applyPostDetails(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count, " +
		"(SELECT AVG(ratings.rating) FROM ratings WHERE ratings.post_id = posts.id) AS average_rating")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidateSections(ctx)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint, guest bool) (*models.Post, error) {
	var post models.Post

	fetch := func() error {
		return r.applyPostDetails(r.db.WithContext(ctx)).
			Preload("User").
			First(&post, id).Error
	}

	var err error
	if guest {
		err = cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, scope Scope, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx)).
		Scopes(scope).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListBySection(ctx context.Context, sectionID uint, scope Scope, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx)).
		Scopes(scope).
		Preload("User").
		Where("posts.section_id = ?", sectionID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Delete removes the post and its comments and ratings in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err == nil {
		cache.InvalidatePost(ctx, id)
		cache.InvalidateSections(ctx)
	}
	return err
}
