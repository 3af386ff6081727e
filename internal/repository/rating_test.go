package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestRatingRepository_GetByPostAndUser(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRatingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "post_id", "user_id", "rating"}).
			AddRow(42, 1, 2, 4)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ratings" WHERE post_id = $1 AND user_id = $2 ORDER BY "ratings"."id" LIMIT $3`)).
			WithArgs(1, 2, 1).
			WillReturnRows(rows)

		rating, err := repo.GetByPostAndUser(ctx, 1, 2)
		assert.NoError(t, err)
		if assert.NotNil(t, rating) {
			assert.Equal(t, uint(42), rating.ID)
			assert.Equal(t, 4, rating.Rating)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ratings" WHERE post_id = $1 AND user_id = $2`)).
			WithArgs(1, 2, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		rating, err := repo.GetByPostAndUser(ctx, 1, 2)
		assert.NoError(t, err) // nil, nil for an absent row
		assert.Nil(t, rating)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// The upsert leans on the (post_id, user_id) unique index: a conflicting
// insert becomes an in-place value update, so the row keeps its id and
// created_at. The RETURNING clause reports which of the two happened
// straight from the store.
func TestRatingRepository_Upsert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRatingRepository(db)
	ctx := context.Background()

	t.Run("Insert", func(t *testing.T) {
		mock.ExpectQuery(`(?s)INSERT INTO ratings.+ON CONFLICT \(post_id, user_id\) DO UPDATE SET rating = EXCLUDED\.rating.+RETURNING \(xmax = 0\)`).
			WithArgs(1, 2, 4).
			WillReturnRows(sqlmock.NewRows([]string{"created"}).AddRow(true))

		created, err := repo.Upsert(ctx, 1, 2, 4)
		assert.NoError(t, err)
		assert.True(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Conflict Updates", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO ratings`).
			WithArgs(1, 2, 5).
			WillReturnRows(sqlmock.NewRows([]string{"created"}).AddRow(false))

		created, err := repo.Upsert(ctx, 1, 2, 5)
		assert.NoError(t, err)
		assert.False(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRatingRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRatingRepository(db)
	ctx := context.Background()

	// The row is loaded first so the post invalidation knows its post_id.
	rows := sqlmock.NewRows([]string{"id", "post_id", "user_id", "rating"}).
		AddRow(42, 1, 2, 4)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ratings" WHERE "ratings"."id" = $1`)).
		WithArgs(42, 1).
		WillReturnRows(rows)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "ratings" WHERE "ratings"."id" = $1`)).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(ctx, 42)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
