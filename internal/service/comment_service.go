package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"trainhub/internal/models"
	"trainhub/internal/policy"
	"trainhub/internal/repository"
)

const (
	minCommentLen = 5
	maxCommentLen = 1000
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// validateCommentText trims and bounds-checks comment text, returning
// the trimmed value that gets stored. Bounds count characters, not bytes.
func validateCommentText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	length := utf8.RuneCountInString(trimmed)
	if length < minCommentLen {
		return "", models.NewValidationError("Comment must be at least 5 characters")
	}
	if length > maxCommentLen {
		return "", models.NewValidationError("Comment must not exceed 1000 characters")
	}
	return trimmed, nil
}

// visiblePost loads the parent post and hides it from actors who may not
// see it, so comments never reveal a hidden post's existence.
func (s *CommentService) visiblePost(ctx context.Context, actor policy.Actor, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, actor.IsGuest())
	if err != nil {
		return nil, asNotFound(err, "post")
	}
	if !policy.CanViewPost(actor, post) {
		return nil, models.NewNotFoundError("post")
	}
	return post, nil
}

func (s *CommentService) ListByPost(ctx context.Context, actor policy.Actor, postID uint) ([]*models.Comment, error) {
	if _, err := s.visiblePost(ctx, actor, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *CommentService) CreateComment(ctx context.Context, actor policy.Actor, postID uint, text string) (*models.Comment, error) {
	if d := policy.CanMutate(actor, actor.ID, policy.OpCreate); !d.Allowed {
		return nil, denialError(actor, d)
	}
	if _, err := s.visiblePost(ctx, actor, postID); err != nil {
		return nil, err
	}

	trimmed, err := validateCommentText(text)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID: postID,
		UserID: actor.ID,
		Text:   trimmed,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Re-fetch for the user preload
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "comment")
	}
	return comment, nil
}

// UpdateComment applies a partial update. A nil text leaves the comment
// unchanged.
func (s *CommentService) UpdateComment(ctx context.Context, actor policy.Actor, id uint, text *string) (*models.Comment, error) {
	comment, err := s.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}

	if d := policy.CanMutate(actor, comment.UserID, policy.OpUpdate); !d.Allowed {
		return nil, denialError(actor, d)
	}

	if text == nil {
		return comment, nil
	}

	trimmed, err := validateCommentText(*text)
	if err != nil {
		return nil, err
	}

	comment.Text = trimmed
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ReplaceComment applies a full replacement; text is required.
func (s *CommentService) ReplaceComment(ctx context.Context, actor policy.Actor, id uint, text *string) (*models.Comment, error) {
	comment, err := s.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}

	if d := policy.CanMutate(actor, comment.UserID, policy.OpReplace); !d.Allowed {
		return nil, denialError(actor, d)
	}

	if text == nil {
		return nil, models.NewIncompleteReplacementError([]string{"text"})
	}

	trimmed, err := validateCommentText(*text)
	if err != nil {
		return nil, err
	}

	comment.Text = trimmed
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, actor policy.Actor, id uint) error {
	comment, err := s.GetComment(ctx, id)
	if err != nil {
		return err
	}

	if d := policy.CanMutate(actor, comment.UserID, policy.OpDelete); !d.Allowed {
		return denialError(actor, d)
	}

	return s.commentRepo.Delete(ctx, id)
}
