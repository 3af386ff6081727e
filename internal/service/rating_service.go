package service

import (
	"context"

	"trainhub/internal/middleware"
	"trainhub/internal/models"
	"trainhub/internal/policy"
	"trainhub/internal/repository"
)

const (
	minRating = 1
	maxRating = 5
)

type RatingService struct {
	ratingRepo repository.RatingRepository
	postRepo   repository.PostRepository
}

func NewRatingService(ratingRepo repository.RatingRepository, postRepo repository.PostRepository) *RatingService {
	return &RatingService{
		ratingRepo: ratingRepo,
		postRepo:   postRepo,
	}
}

func validateRatingValue(value int) error {
	if value < minRating || value > maxRating {
		return models.NewValidationError("Rating must be between 1 and 5")
	}
	return nil
}

func (s *RatingService) visiblePost(ctx context.Context, actor policy.Actor, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, actor.IsGuest())
	if err != nil {
		return asNotFound(err, "post")
	}
	if !policy.CanViewPost(actor, post) {
		return models.NewNotFoundError("post")
	}
	return nil
}

func (s *RatingService) ListByPost(ctx context.Context, actor policy.Actor, postID uint) ([]*models.Rating, error) {
	if err := s.visiblePost(ctx, actor, postID); err != nil {
		return nil, err
	}
	return s.ratingRepo.ListByPost(ctx, postID)
}

// RatePost records the actor's rating for the post. The first rating
// creates a row; a repeat rating updates the stored value in place,
// preserving the row's identity and creation time. The returned flag
// reports which of the two happened.
func (s *RatingService) RatePost(ctx context.Context, actor policy.Actor, postID uint, value int) (*models.Rating, bool, error) {
	if d := policy.CanMutate(actor, actor.ID, policy.OpCreate); !d.Allowed {
		return nil, false, denialError(actor, d)
	}

	// Validate before touching the store; an out-of-range value must not
	// disturb an existing rating.
	if err := validateRatingValue(value); err != nil {
		return nil, false, err
	}

	if err := s.visiblePost(ctx, actor, postID); err != nil {
		return nil, false, err
	}

	// The store decides created-vs-updated atomically; a pre-read could
	// misreport under two racing first ratings.
	created, err := s.ratingRepo.Upsert(ctx, postID, actor.ID, value)
	if err != nil {
		return nil, false, err
	}

	rating, err := s.ratingRepo.GetByPostAndUser(ctx, postID, actor.ID)
	if err != nil {
		return nil, false, err
	}
	if rating == nil {
		return nil, false, models.NewInternalError(nil)
	}

	if created {
		middleware.RatingsRecorded.WithLabelValues("created").Inc()
	} else {
		middleware.RatingsRecorded.WithLabelValues("updated").Inc()
	}

	return rating, created, nil
}

func (s *RatingService) GetRating(ctx context.Context, id uint) (*models.Rating, error) {
	rating, err := s.ratingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "rating")
	}
	return rating, nil
}

// UpdateRating applies a partial update. A nil value leaves the rating
// unchanged.
func (s *RatingService) UpdateRating(ctx context.Context, actor policy.Actor, id uint, value *int) (*models.Rating, error) {
	rating, err := s.GetRating(ctx, id)
	if err != nil {
		return nil, err
	}

	if d := policy.CanMutate(actor, rating.UserID, policy.OpUpdate); !d.Allowed {
		return nil, denialError(actor, d)
	}

	if value == nil {
		return rating, nil
	}

	if err := validateRatingValue(*value); err != nil {
		return nil, err
	}

	rating.Rating = *value
	if err := s.ratingRepo.Update(ctx, rating); err != nil {
		return nil, err
	}
	return rating, nil
}

// ReplaceRating applies a full replacement; the rating value is required.
func (s *RatingService) ReplaceRating(ctx context.Context, actor policy.Actor, id uint, value *int) (*models.Rating, error) {
	rating, err := s.GetRating(ctx, id)
	if err != nil {
		return nil, err
	}

	if d := policy.CanMutate(actor, rating.UserID, policy.OpReplace); !d.Allowed {
		return nil, denialError(actor, d)
	}

	if value == nil {
		return nil, models.NewIncompleteReplacementError([]string{"rating"})
	}

	if err := validateRatingValue(*value); err != nil {
		return nil, err
	}

	rating.Rating = *value
	if err := s.ratingRepo.Update(ctx, rating); err != nil {
		return nil, err
	}
	return rating, nil
}

func (s *RatingService) DeleteRating(ctx context.Context, actor policy.Actor, id uint) error {
	rating, err := s.GetRating(ctx, id)
	if err != nil {
		return err
	}

	if d := policy.CanMutate(actor, rating.UserID, policy.OpDelete); !d.Allowed {
		return denialError(actor, d)
	}

	return s.ratingRepo.Delete(ctx, id)
}
