package service

import (
	"context"
	"errors"
	"testing"

	"trainhub/internal/models"
	"trainhub/internal/policy"
	"trainhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint, bool) (*models.Post, error)
	listFn          func(context.Context, repository.Scope, int, int) ([]*models.Post, error)
	listBySectionFn func(context.Context, uint, repository.Scope, int, int) ([]*models.Post, error)
	updateFn        func(context.Context, *models.Post) error
	deleteFn        func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint, guest bool) (*models.Post, error) {
	return s.getByIDFn(ctx, id, guest)
}
func (s *postRepoStub) List(ctx context.Context, scope repository.Scope, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, scope, limit, offset)
}
func (s *postRepoStub) ListBySection(ctx context.Context, sectionID uint, scope repository.Scope, limit, offset int) ([]*models.Post, error) {
	return s.listBySectionFn(ctx, sectionID, scope, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint, _ bool) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn: func(_ context.Context, _ repository.Scope, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		listBySectionFn: func(_ context.Context, _ uint, _ repository.Scope, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		updateFn: func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// storedPostRepo wraps a single post behind the stub so updates and
// re-fetches observe the same record.
func storedPostRepo(post *models.Post) *postRepoStub {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint, _ bool) (*models.Post, error) {
		copied := *post
		return &copied, nil
	}
	repo.updateFn = func(_ context.Context, p *models.Post) error {
		*post = *p
		return nil
	}
	return repo
}

// sectionRepoStub is a stub for repository.SectionRepository.
type sectionRepoStub struct {
	createFn  func(context.Context, *models.Section) error
	getByIDFn func(context.Context, uint) (*models.Section, error)
	listFn    func(context.Context) ([]*models.Section, error)
	updateFn  func(context.Context, *models.Section) error
	deleteFn  func(context.Context, uint) error
}

func (s *sectionRepoStub) Create(ctx context.Context, section *models.Section) error {
	return s.createFn(ctx, section)
}
func (s *sectionRepoStub) GetByID(ctx context.Context, id uint) (*models.Section, error) {
	return s.getByIDFn(ctx, id)
}
func (s *sectionRepoStub) List(ctx context.Context) ([]*models.Section, error) {
	return s.listFn(ctx)
}
func (s *sectionRepoStub) Update(ctx context.Context, section *models.Section) error {
	return s.updateFn(ctx, section)
}
func (s *sectionRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopSectionRepo() *sectionRepoStub {
	return &sectionRepoStub{
		createFn:  func(_ context.Context, _ *models.Section) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Section, error) { return &models.Section{ID: id}, nil },
		listFn:    func(_ context.Context) ([]*models.Section, error) { return nil, nil },
		updateFn:  func(_ context.Context, _ *models.Section) error { return nil },
		deleteFn:  func(_ context.Context, _ uint) error { return nil },
	}
}

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "UNAUTHORIZED")
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "NOT_FOUND")
}

// assertIncompleteReplacement asserts the 422 error class and the exact
// missing field list.
func assertIncompleteReplacement(t *testing.T, err error, missing ...string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "INCOMPLETE_REPLACEMENT", appErr.Code)
	assert.Equal(t, missing, appErr.Fields)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func uintPtr(u uint) *uint    { return &u }

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo(), noopSectionRepo())
	ctx := context.Background()
	actor := policy.Actor{ID: 1}

	tests := []struct {
		name  string
		input CreatePostInput
	}{
		{
			name:  "title too short",
			input: CreatePostInput{Actor: actor, Title: "ab", Type: models.PostTypeMeal, Description: "a long enough description"},
		},
		{
			name:  "title only whitespace",
			input: CreatePostInput{Actor: actor, Title: "   ", Type: models.PostTypeMeal, Description: "a long enough description"},
		},
		{
			name:  "unknown type",
			input: CreatePostInput{Actor: actor, Title: "Leg day", Type: "cardio", Description: "a long enough description"},
		},
		{
			name:  "description too short",
			input: CreatePostInput{Actor: actor, Title: "Leg day", Type: models.PostTypeWorkout, Description: "short"},
		},
		{
			name:  "negative calories",
			input: CreatePostInput{Actor: actor, Title: "Bulk plan", Type: models.PostTypeMeal, Description: "a long enough description", Calories: intPtr(-1)},
		},
		{
			// 2 characters, 4 bytes; the minimum counts characters.
			name:  "multibyte title under minimum",
			input: CreatePostInput{Actor: actor, Title: "ąč", Type: models.PostTypeMeal, Description: "a long enough description"},
		},
		{
			// 9 characters, 17 bytes.
			name:  "multibyte description under minimum",
			input: CreatePostInput{Actor: actor, Title: "Leg day", Type: models.PostTypeWorkout, Description: "ąčęėįšųūž"},
		},
		{
			name:  "calories above limit",
			input: CreatePostInput{Actor: actor, Title: "Bulk plan", Type: models.PostTypeMeal, Description: "a long enough description", Calories: intPtr(10001)},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreatePost(ctx, tt.input)
			assertValidationError(t, err)
		})
	}
}

func TestPostService_CreatePost_MultibyteAtMinimums(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo(), noopSectionRepo())
	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		Actor:       policy.Actor{ID: 1},
		Title:       "ąčė", // exactly 3 characters
		Type:        models.PostTypeMeal,
		Description: "ąčęėįšųūž0", // exactly 10 characters
	})
	assert.NoError(t, err)
}

func TestPostService_CreatePost_GuestDenied(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo(), noopSectionRepo())
	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		Title: "Leg day", Type: models.PostTypeWorkout, Description: "a long enough description",
	})
	assertUnauthorizedError(t, err)
}

func TestPostService_CreatePost_Success(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 42
		return nil
	}
	var fetchedGuest *bool
	postRepo.getByIDFn = func(_ context.Context, id uint, guest bool) (*models.Post, error) {
		fetchedGuest = &guest
		return &models.Post{ID: id, Title: "Leg day", UserID: 1}, nil
	}

	svc := NewPostService(postRepo, noopSectionRepo())
	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		Actor:       policy.Actor{ID: 1},
		Title:       "Leg day",
		Type:        models.PostTypeWorkout,
		Description: "a long enough description",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(42), post.ID)
	// The re-fetch after create bypasses the guest cache.
	require.NotNil(t, fetchedGuest)
	assert.False(t, *fetchedGuest)
}

func TestPostService_CreatePost_UnknownSection(t *testing.T) {
	t.Parallel()

	sectionRepo := noopSectionRepo()
	sectionRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Section, error) {
		return nil, errRecordNotFound()
	}

	svc := NewPostService(noopPostRepo(), sectionRepo)
	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		Actor:       policy.Actor{ID: 1},
		SectionID:   uintPtr(99),
		Title:       "Leg day",
		Type:        models.PostTypeWorkout,
		Description: "a long enough description",
	})
	assertNotFoundError(t, err)
}

func TestPostService_GetPost_Visibility(t *testing.T) {
	t.Parallel()

	hidden := &models.Post{ID: 1, UserID: 7, IsPublic: false, IsApproved: false}

	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, _ uint, _ bool) (*models.Post, error) {
		copied := *hidden
		return &copied, nil
	}
	svc := NewPostService(postRepo, noopSectionRepo())
	ctx := context.Background()

	t.Run("hidden post is not found for guests", func(t *testing.T) {
		t.Parallel()
		_, err := svc.GetPost(ctx, policy.Actor{}, 1)
		assertNotFoundError(t, err)
	})

	t.Run("hidden post is not found for other users", func(t *testing.T) {
		t.Parallel()
		_, err := svc.GetPost(ctx, policy.Actor{ID: 2}, 1)
		assertNotFoundError(t, err)
	})

	t.Run("owner sees own draft", func(t *testing.T) {
		t.Parallel()
		post, err := svc.GetPost(ctx, policy.Actor{ID: 7}, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(1), post.ID)
	})

	t.Run("staff see everything", func(t *testing.T) {
		t.Parallel()
		post, err := svc.GetPost(ctx, policy.Actor{ID: 3, IsStaff: true}, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(1), post.ID)
	})
}

func TestPostService_GetPost_MissingRecord(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, _ uint, _ bool) (*models.Post, error) {
		return nil, errRecordNotFound()
	}
	svc := NewPostService(postRepo, noopSectionRepo())

	_, err := svc.GetPost(context.Background(), policy.Actor{ID: 1}, 99)
	assertNotFoundError(t, err)
}

func TestPostService_ListPendingPosts_StaffOnly(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo(), noopSectionRepo())
	ctx := context.Background()

	t.Run("guest", func(t *testing.T) {
		t.Parallel()
		_, err := svc.ListPendingPosts(ctx, policy.Actor{}, 20, 0)
		assertUnauthorizedError(t, err)
	})

	t.Run("regular user", func(t *testing.T) {
		t.Parallel()
		_, err := svc.ListPendingPosts(ctx, policy.Actor{ID: 1}, 20, 0)
		assertForbiddenError(t, err)
	})

	t.Run("staff", func(t *testing.T) {
		t.Parallel()
		_, err := svc.ListPendingPosts(ctx, policy.Actor{ID: 1, IsStaff: true}, 20, 0)
		assert.NoError(t, err)
	})
}

func TestPostService_ListSectionPosts_UnknownSection(t *testing.T) {
	t.Parallel()

	sectionRepo := noopSectionRepo()
	sectionRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Section, error) {
		return nil, errRecordNotFound()
	}
	svc := NewPostService(noopPostRepo(), sectionRepo)

	_, err := svc.ListSectionPosts(context.Background(), policy.Actor{}, 99, 20, 0)
	assertNotFoundError(t, err)
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()

	base := models.Post{
		ID: 1, UserID: 7, Title: "Old title", Type: models.PostTypeWorkout,
		Description: "the original description", IsPublic: true,
	}
	ctx := context.Background()

	t.Run("owner applies partial update", func(t *testing.T) {
		t.Parallel()
		stored := base
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		post, err := svc.UpdatePost(ctx, UpdatePostInput{
			Actor:  policy.Actor{ID: 7},
			PostID: 1,
			Title:  strPtr("New title"),
		})
		require.NoError(t, err)
		assert.Equal(t, "New title", post.Title)
		// Untouched fields survive.
		assert.Equal(t, "the original description", post.Description)
		assert.True(t, post.IsPublic)
	})

	t.Run("update cannot make the post invalid", func(t *testing.T) {
		t.Parallel()
		stored := base
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		_, err := svc.UpdatePost(ctx, UpdatePostInput{
			Actor:  policy.Actor{ID: 7},
			PostID: 1,
			Title:  strPtr("x"),
		})
		assertValidationError(t, err)
		assert.Equal(t, "Old title", stored.Title)
	})

	t.Run("non-owner gets forbidden", func(t *testing.T) {
		t.Parallel()
		stored := base
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		_, err := svc.UpdatePost(ctx, UpdatePostInput{
			Actor:  policy.Actor{ID: 2},
			PostID: 1,
			Title:  strPtr("New title"),
		})
		assertForbiddenError(t, err)
	})

	t.Run("staff cannot edit another user's content", func(t *testing.T) {
		t.Parallel()
		stored := base
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		_, err := svc.UpdatePost(ctx, UpdatePostInput{
			Actor:  policy.Actor{ID: 3, IsStaff: true},
			PostID: 1,
			Title:  strPtr("New title"),
		})
		assertForbiddenError(t, err)
	})
}

func TestPostService_ReplacePost(t *testing.T) {
	t.Parallel()

	base := models.Post{
		ID: 1, UserID: 7, Title: "Old title", Type: models.PostTypeWorkout,
		Description: "the original description", Calories: intPtr(500),
		Recommendations: "old advice", IsPublic: true, IsApproved: true,
	}
	ctx := context.Background()

	t.Run("missing required fields are reported together", func(t *testing.T) {
		t.Parallel()
		stored := base
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		_, err := svc.ReplacePost(ctx, ReplacePostInput{
			Actor:  policy.Actor{ID: 7},
			PostID: 1,
		})
		assertIncompleteReplacement(t, err, "title", "type", "description")
	})

	t.Run("single missing field", func(t *testing.T) {
		t.Parallel()
		stored := base
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		_, err := svc.ReplacePost(ctx, ReplacePostInput{
			Actor:       policy.Actor{ID: 7},
			PostID:      1,
			Title:       strPtr("New title"),
			Description: strPtr("a replacement description"),
		})
		assertIncompleteReplacement(t, err, "type")
	})

	t.Run("absent optional fields reset, flags survive", func(t *testing.T) {
		t.Parallel()
		stored := base
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		post, err := svc.ReplacePost(ctx, ReplacePostInput{
			Actor:       policy.Actor{ID: 7},
			PostID:      1,
			Title:       strPtr("New title"),
			Type:        strPtr(models.PostTypeMeal),
			Description: strPtr("a replacement description"),
		})
		require.NoError(t, err)
		assert.Equal(t, "New title", post.Title)
		assert.Nil(t, post.Calories)
		assert.Empty(t, post.Recommendations)
		assert.True(t, post.IsPublic)
		assert.True(t, post.IsApproved)
		assert.Equal(t, uint(7), post.UserID)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	base := models.Post{ID: 1, UserID: 7, IsPublic: true, IsApproved: true}
	ctx := context.Background()

	t.Run("owner can delete", func(t *testing.T) {
		t.Parallel()
		stored := base
		repo := storedPostRepo(&stored)
		deleted := false
		repo.deleteFn = func(_ context.Context, _ uint) error {
			deleted = true
			return nil
		}
		svc := NewPostService(repo, noopSectionRepo())
		require.NoError(t, svc.DeletePost(ctx, policy.Actor{ID: 7}, 1))
		assert.True(t, deleted)
	})

	t.Run("staff can delete another user's post", func(t *testing.T) {
		t.Parallel()
		stored := base
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		assert.NoError(t, svc.DeletePost(ctx, policy.Actor{ID: 3, IsStaff: true}, 1))
	})

	t.Run("non-owner gets forbidden", func(t *testing.T) {
		t.Parallel()
		stored := base
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		assertForbiddenError(t, svc.DeletePost(ctx, policy.Actor{ID: 2}, 1))
	})
}

func TestPostService_PublishPost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("owner publishes a draft", func(t *testing.T) {
		t.Parallel()
		stored := models.Post{ID: 1, UserID: 7}
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		post, err := svc.PublishPost(ctx, policy.Actor{ID: 7}, 1)
		require.NoError(t, err)
		assert.True(t, post.IsPublic)
		assert.False(t, post.IsApproved)
	})

	t.Run("second publish is a no-op", func(t *testing.T) {
		t.Parallel()
		stored := models.Post{ID: 1, UserID: 7, IsPublic: true}
		repo := storedPostRepo(&stored)
		repo.updateFn = func(_ context.Context, _ *models.Post) error {
			t.Fatal("update must not run for an idempotent transition")
			return nil
		}
		svc := NewPostService(repo, noopSectionRepo())
		post, err := svc.PublishPost(ctx, policy.Actor{ID: 7}, 1)
		require.NoError(t, err)
		assert.True(t, post.IsPublic)
	})

	t.Run("publish never clears an approval", func(t *testing.T) {
		t.Parallel()
		stored := models.Post{ID: 1, UserID: 7, IsApproved: true}
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		post, err := svc.PublishPost(ctx, policy.Actor{ID: 7}, 1)
		require.NoError(t, err)
		assert.True(t, post.IsPublic)
		assert.True(t, post.IsApproved)
	})

	t.Run("staff cannot publish for the owner", func(t *testing.T) {
		t.Parallel()
		stored := models.Post{ID: 1, UserID: 7}
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		_, err := svc.PublishPost(ctx, policy.Actor{ID: 3, IsStaff: true}, 1)
		assertForbiddenError(t, err)
	})
}

func TestPostService_ApprovePost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	staff := policy.Actor{ID: 3, IsStaff: true}

	t.Run("staff approve a pending post", func(t *testing.T) {
		t.Parallel()
		stored := models.Post{ID: 1, UserID: 7, IsPublic: true}
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		post, err := svc.ApprovePost(ctx, staff, 1)
		require.NoError(t, err)
		assert.True(t, post.IsPublic)
		assert.True(t, post.IsApproved)
	})

	t.Run("approval of a private draft is recorded", func(t *testing.T) {
		t.Parallel()
		stored := models.Post{ID: 1, UserID: 7}
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		post, err := svc.ApprovePost(ctx, staff, 1)
		require.NoError(t, err)
		assert.False(t, post.IsPublic)
		assert.True(t, post.IsApproved)
	})

	t.Run("second approval is a no-op", func(t *testing.T) {
		t.Parallel()
		stored := models.Post{ID: 1, UserID: 7, IsPublic: true, IsApproved: true}
		repo := storedPostRepo(&stored)
		repo.updateFn = func(_ context.Context, _ *models.Post) error {
			t.Fatal("update must not run for an idempotent transition")
			return nil
		}
		svc := NewPostService(repo, noopSectionRepo())
		_, err := svc.ApprovePost(ctx, staff, 1)
		assert.NoError(t, err)
	})

	t.Run("owner cannot approve their own post", func(t *testing.T) {
		t.Parallel()
		stored := models.Post{ID: 1, UserID: 7, IsPublic: true}
		svc := NewPostService(storedPostRepo(&stored), noopSectionRepo())
		_, err := svc.ApprovePost(ctx, policy.Actor{ID: 7}, 1)
		assertForbiddenError(t, err)
	})
}
