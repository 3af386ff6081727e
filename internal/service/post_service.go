package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"trainhub/internal/middleware"
	"trainhub/internal/models"
	"trainhub/internal/policy"
	"trainhub/internal/repository"
)

const (
	minTitleLen       = 3
	minDescriptionLen = 10
	maxCalories       = 10000
)

type PostService struct {
	postRepo    repository.PostRepository
	sectionRepo repository.SectionRepository
}

func NewPostService(postRepo repository.PostRepository, sectionRepo repository.SectionRepository) *PostService {
	return &PostService{
		postRepo:    postRepo,
		sectionRepo: sectionRepo,
	}
}

type CreatePostInput struct {
	Actor           policy.Actor
	SectionID       *uint
	Title           string
	Type            string
	Description     string
	Calories        *int
	Recommendations string
	IsPublic        bool
}

// UpdatePostInput carries a partial update. Nil fields are left untouched.
type UpdatePostInput struct {
	Actor           policy.Actor
	PostID          uint
	SectionID       *uint
	Title           *string
	Type            *string
	Description     *string
	Calories        *int
	Recommendations *string
}

// ReplacePostInput carries a full replacement. Required fields must be
// present; absent optional fields are reset to their defaults.
type ReplacePostInput struct {
	Actor           policy.Actor
	PostID          uint
	SectionID       *uint
	Title           *string
	Type            *string
	Description     *string
	Calories        *int
	Recommendations *string
}

type ListPostsInput struct {
	Actor  policy.Actor
	Limit  int
	Offset int
}

func validatePostFields(title, postType, description string, calories *int) error {
	// Limits count characters, not bytes; multibyte text must not slip
	// under a minimum or trip a maximum.
	if utf8.RuneCountInString(strings.TrimSpace(title)) < minTitleLen {
		return models.NewValidationError("Title must be at least 3 characters")
	}
	if postType != models.PostTypeMeal && postType != models.PostTypeWorkout {
		return models.NewValidationError("Type must be either 'meal' or 'workout'")
	}
	if utf8.RuneCountInString(strings.TrimSpace(description)) < minDescriptionLen {
		return models.NewValidationError("Description must be at least 10 characters")
	}
	if calories != nil && (*calories < 0 || *calories > maxCalories) {
		return models.NewValidationError("Calories must be between 0 and 10000")
	}
	return nil
}

// resolveSection verifies the target section exists when one is given.
func (s *PostService) resolveSection(ctx context.Context, sectionID *uint) error {
	if sectionID == nil {
		return nil
	}
	if _, err := s.sectionRepo.GetByID(ctx, *sectionID); err != nil {
		return asNotFound(err, "section")
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if d := policy.CanMutate(in.Actor, in.Actor.ID, policy.OpCreate); !d.Allowed {
		return nil, denialError(in.Actor, d)
	}

	if err := validatePostFields(in.Title, in.Type, in.Description, in.Calories); err != nil {
		return nil, err
	}
	if err := s.resolveSection(ctx, in.SectionID); err != nil {
		return nil, err
	}

	post := &models.Post{
		SectionID:       in.SectionID,
		UserID:          in.Actor.ID,
		Title:           in.Title,
		Type:            in.Type,
		Description:     in.Description,
		Calories:        in.Calories,
		Recommendations: in.Recommendations,
		IsPublic:        in.IsPublic,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// Re-fetch for the user preload and computed aggregates
	return s.postRepo.GetByID(ctx, post.ID, false)
}

// GetPost loads a post the actor may see. A post that exists but is
// hidden from the actor is indistinguishable from a missing one.
func (s *PostService) GetPost(ctx context.Context, actor policy.Actor, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, actor.IsGuest())
	if err != nil {
		return nil, asNotFound(err, "post")
	}
	if !policy.CanViewPost(actor, post) {
		return nil, models.NewNotFoundError("post")
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	return s.postRepo.List(ctx, policy.PostScope(in.Actor), in.Limit, in.Offset)
}

// ListPublicPosts lists fully published posts regardless of the caller.
func (s *PostService) ListPublicPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.List(ctx, policy.PublishedScope, limit, offset)
}

// ListPendingPosts lists posts awaiting approval. Staff only.
func (s *PostService) ListPendingPosts(ctx context.Context, actor policy.Actor, limit, offset int) ([]*models.Post, error) {
	if d := policy.CanMutate(actor, 0, policy.OpApprove); !d.Allowed {
		return nil, denialError(actor, d)
	}
	return s.postRepo.List(ctx, policy.PendingScope, limit, offset)
}

func (s *PostService) ListSectionPosts(ctx context.Context, actor policy.Actor, sectionID uint, limit, offset int) ([]*models.Post, error) {
	if _, err := s.sectionRepo.GetByID(ctx, sectionID); err != nil {
		return nil, asNotFound(err, "section")
	}
	return s.postRepo.ListBySection(ctx, sectionID, policy.PostScope(actor), limit, offset)
}

// ListUserPosts lists one profile's posts. Owners and staff see the full
// profile; everyone else only the published subset.
func (s *PostService) ListUserPosts(ctx context.Context, actor policy.Actor, profileID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.List(ctx, policy.UserPostsScope(actor, profileID), limit, offset)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.GetPost(ctx, in.Actor, in.PostID)
	if err != nil {
		return nil, err
	}

	if d := policy.CanMutate(in.Actor, post.UserID, policy.OpUpdate); !d.Allowed {
		return nil, denialError(in.Actor, d)
	}

	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Type != nil {
		post.Type = *in.Type
	}
	if in.Description != nil {
		post.Description = *in.Description
	}
	if in.Calories != nil {
		post.Calories = in.Calories
	}
	if in.Recommendations != nil {
		post.Recommendations = *in.Recommendations
	}
	if in.SectionID != nil {
		if err := s.resolveSection(ctx, in.SectionID); err != nil {
			return nil, err
		}
		post.SectionID = in.SectionID
	}

	if err := validatePostFields(post.Title, post.Type, post.Description, post.Calories); err != nil {
		return nil, err
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, false)
}

func (s *PostService) ReplacePost(ctx context.Context, in ReplacePostInput) (*models.Post, error) {
	post, err := s.GetPost(ctx, in.Actor, in.PostID)
	if err != nil {
		return nil, err
	}

	if d := policy.CanMutate(in.Actor, post.UserID, policy.OpReplace); !d.Allowed {
		return nil, denialError(in.Actor, d)
	}

	var missing []string
	if in.Title == nil {
		missing = append(missing, "title")
	}
	if in.Type == nil {
		missing = append(missing, "type")
	}
	if in.Description == nil {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, models.NewIncompleteReplacementError(missing)
	}

	if err := validatePostFields(*in.Title, *in.Type, *in.Description, in.Calories); err != nil {
		return nil, err
	}
	if err := s.resolveSection(ctx, in.SectionID); err != nil {
		return nil, err
	}

	// Full replacement: absent optional fields reset. Owner, flags, and
	// creation time survive.
	post.Title = *in.Title
	post.Type = *in.Type
	post.Description = *in.Description
	post.Calories = in.Calories
	post.SectionID = in.SectionID
	post.Recommendations = ""
	if in.Recommendations != nil {
		post.Recommendations = *in.Recommendations
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, false)
}

func (s *PostService) DeletePost(ctx context.Context, actor policy.Actor, id uint) error {
	post, err := s.GetPost(ctx, actor, id)
	if err != nil {
		return err
	}

	if d := policy.CanMutate(actor, post.UserID, policy.OpDelete); !d.Allowed {
		return denialError(actor, d)
	}

	return s.postRepo.Delete(ctx, id)
}

// PublishPost marks the post public. Owner only, idempotent; a second
// publish returns the unchanged post.
func (s *PostService) PublishPost(ctx context.Context, actor policy.Actor, id uint) (*models.Post, error) {
	return s.transition(ctx, actor, id, policy.OpPublish, policy.TransitionPublish, "publish")
}

// ApprovePost marks the post approved. Staff only, idempotent. There is
// no reverse operation; approval is never withdrawn.
func (s *PostService) ApprovePost(ctx context.Context, actor policy.Actor, id uint) (*models.Post, error) {
	return s.transition(ctx, actor, id, policy.OpApprove, policy.TransitionApprove, "approve")
}

func (s *PostService) transition(ctx context.Context, actor policy.Actor, id uint, op policy.Operation, t policy.Transition, action string) (*models.Post, error) {
	post, err := s.GetPost(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if d := policy.CanMutate(actor, post.UserID, op); !d.Allowed {
		return nil, denialError(actor, d)
	}

	state := policy.StateOf(post.IsPublic, post.IsApproved)
	next := policy.Apply(state, t)
	if next == state {
		return post, nil
	}

	post.IsPublic, post.IsApproved = next.Flags()
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	middleware.ModerationEvents.WithLabelValues(action).Inc()

	return s.postRepo.GetByID(ctx, id, false)
}
