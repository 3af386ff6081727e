package service

import (
	"context"
	"testing"

	"trainhub/internal/models"
	"trainhub/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	listFn          func(context.Context, int, int) ([]*models.User, error)
	listPendingFn   func(context.Context) ([]*models.User, error)
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) ListPending(ctx context.Context) ([]*models.User, error) {
	return s.listPendingFn(ctx)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		listFn:          func(_ context.Context, _, _ int) ([]*models.User, error) { return nil, nil },
		listPendingFn:   func(_ context.Context) ([]*models.User, error) { return nil, nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

func TestUserService_ApproveUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	staff := policy.Actor{ID: 3, IsStaff: true}

	t.Run("staff activate a pending account", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, IsActive: false}, nil
		}
		var saved *models.User
		repo.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		svc := NewUserService(repo)
		user, err := svc.ApproveUser(ctx, staff, 5)
		require.NoError(t, err)
		assert.True(t, user.IsActive)
		require.NotNil(t, saved)
		assert.True(t, saved.IsActive)
	})

	t.Run("approving an active account is a no-op", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, IsActive: true}, nil
		}
		repo.updateFn = func(_ context.Context, _ *models.User) error {
			t.Fatal("update must not run for an already active account")
			return nil
		}
		svc := NewUserService(repo)
		user, err := svc.ApproveUser(ctx, staff, 5)
		require.NoError(t, err)
		assert.True(t, user.IsActive)
	})

	t.Run("regular user gets forbidden", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.ApproveUser(ctx, policy.Actor{ID: 1}, 5)
		assertForbiddenError(t, err)
	})

	t.Run("unknown account", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.User, error) {
			return nil, errRecordNotFound()
		}
		svc := NewUserService(repo)
		_, err := svc.ApproveUser(ctx, staff, 99)
		assertNotFoundError(t, err)
	})
}

func TestUserService_ListPendingUsers_StaffOnly(t *testing.T) {
	t.Parallel()

	svc := NewUserService(noopUserRepo())
	ctx := context.Background()

	_, err := svc.ListPendingUsers(ctx, policy.Actor{ID: 1})
	assertForbiddenError(t, err)

	_, err = svc.ListPendingUsers(ctx, policy.Actor{ID: 3, IsStaff: true})
	assert.NoError(t, err)
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	newRepo := func() *userRepoStub {
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "coach_dana", Email: "dana@example.com"}, nil
		}
		return repo
	}

	t.Run("guest denied", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(newRepo())
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{})
		assertUnauthorizedError(t, err)
	})

	t.Run("names update", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(newRepo())
		user, err := svc.UpdateProfile(ctx, UpdateProfileInput{
			Actor:     policy.Actor{ID: 1},
			FirstName: strPtr("Dana"),
			LastName:  strPtr("Reyes"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Dana", user.FirstName)
		assert.Equal(t, "Reyes", user.LastName)
		assert.Equal(t, "coach_dana", user.Username)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(newRepo())
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{
			Actor: policy.Actor{ID: 1},
			Email: strPtr("not-an-email"),
		})
		assertValidationError(t, err)
	})

	t.Run("email already in use", func(t *testing.T) {
		t.Parallel()
		repo := newRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 2}, nil
		}
		svc := NewUserService(repo)
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{
			Actor: policy.Actor{ID: 1},
			Email: strPtr("taken@example.com"),
		})
		assertAppErrorCode(t, err, "CONFLICT")
	})

	t.Run("unchanged email skips the uniqueness lookup", func(t *testing.T) {
		t.Parallel()
		repo := newRepo()
		repo.getByEmailFn = func(_ context.Context, _ string) (*models.User, error) {
			t.Fatal("lookup must not run for an unchanged email")
			return nil, nil
		}
		svc := NewUserService(repo)
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{
			Actor: policy.Actor{ID: 1},
			Email: strPtr("dana@example.com"),
		})
		assert.NoError(t, err)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("staff delete an account", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		deleted := false
		repo.deleteFn = func(_ context.Context, _ uint) error {
			deleted = true
			return nil
		}
		svc := NewUserService(repo)
		require.NoError(t, svc.DeleteUser(ctx, policy.Actor{ID: 3, IsStaff: true}, 5))
		assert.True(t, deleted)
	})

	t.Run("regular user gets forbidden", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		assertForbiddenError(t, svc.DeleteUser(ctx, policy.Actor{ID: 1}, 5))
	})
}
