package repository

import (
	"context"

	"trainhub/internal/cache"
	"trainhub/internal/models"

	"gorm.io/gorm"
)

// SectionRepository defines the interface for section data operations
type SectionRepository interface {
	Create(ctx context.Context, section *models.Section) error
	GetByID(ctx context.Context, id uint) (*models.Section, error)
	List(ctx context.Context) ([]*models.Section, error)
	Update(ctx context.Context, section *models.Section) error
	Delete(ctx context.Context, id uint) error
}

type sectionRepository struct {
	db *gorm.DB
}

// NewSectionRepository creates a new section repository
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db}
}

// applySectionDetails adds the post count subquery. The count is raw:
// it includes private and unapproved posts.
func (r *sectionRepository) applySectionDetails(db *gorm.DB) *gorm.DB {
	return db.Select("sections.*, " +
		"(SELECT COUNT(*) FROM posts WHERE posts.section_id = sections.id) AS post_count")
}

func (r *sectionRepository) Create(ctx context.Context, section *models.Section) error {
	err := r.db.WithContext(ctx).Create(section).Error
	if err == nil {
		cache.InvalidateSections(ctx)
	}
	return err
}

func (r *sectionRepository) GetByID(ctx context.Context, id uint) (*models.Section, error) {
	var section models.Section
	err := r.applySectionDetails(r.db.WithContext(ctx)).First(&section, id).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepository) List(ctx context.Context) ([]*models.Section, error) {
	var sections []*models.Section
	err := cache.Aside(ctx, cache.SectionsKey, &sections, cache.SectionsTTL, func() error {
		return r.applySectionDetails(r.db.WithContext(ctx)).
			Order("name ASC").
			Find(&sections).Error
	})
	if err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *sectionRepository) Update(ctx context.Context, section *models.Section) error {
	if err := r.db.WithContext(ctx).Save(section).Error; err != nil {
		return err
	}
	cache.InvalidateSections(ctx)
	return nil
}

// Delete removes the section and cascades to its posts and their
// comments and ratings in one transaction. The affected post IDs are
// collected up front so their cached guest views can be dropped too.
func (r *sectionRepository) Delete(ctx context.Context, id uint) error {
	var postIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("section_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}

		if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("section_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Section{}, id).Error
	})
	if err == nil {
		cache.InvalidateSections(ctx)
		for _, postID := range postIDs {
			cache.InvalidatePost(ctx, postID)
		}
	}
	return err
}
