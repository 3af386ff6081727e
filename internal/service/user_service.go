package service

import (
	"context"

	"trainhub/internal/models"
	"trainhub/internal/policy"
	"trainhub/internal/repository"
	"trainhub/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "user")
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// ListPendingUsers lists accounts awaiting activation. Staff only.
func (s *UserService) ListPendingUsers(ctx context.Context, actor policy.Actor) ([]*models.User, error) {
	if err := staffOnly(actor); err != nil {
		return nil, err
	}
	return s.userRepo.ListPending(ctx)
}

// ApproveUser activates a pending account. Staff only, idempotent.
func (s *UserService) ApproveUser(ctx context.Context, actor policy.Actor, id uint) (*models.User, error) {
	if err := staffOnly(actor); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.IsActive {
		return user, nil
	}

	user.IsActive = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfileInput carries the fields a user may change on their own
// account. Username is fixed at registration.
type UpdateProfileInput struct {
	Actor     policy.Actor
	Email     *string
	FirstName *string
	LastName  *string
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.Actor.IsGuest() {
		return nil, models.NewUnauthorizedError("authentication required")
	}

	user, err := s.GetUser(ctx, in.Actor.ID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		if err := validation.ValidateEmail(*in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if *in.Email != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, *in.Email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, models.NewConflictError("email is already in use")
			}
		}
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account and everything it authored. Staff only.
func (s *UserService) DeleteUser(ctx context.Context, actor policy.Actor, id uint) error {
	if err := staffOnly(actor); err != nil {
		return err
	}

	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}

	return s.userRepo.Delete(ctx, id)
}
