package persistence

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dfryer1193/newsroom/article/domain"
	"github.com/dfryer1193/newsroom/shared/db/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB opens a migrated SQLite database in a temp directory
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	if err := database.Connect(); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database.DB()
}

func seedImages(t *testing.T, repo *SQLiteImageRepository, images ...*domain.ImageRecord) {
	t.Helper()
	for _, img := range images {
		if err := repo.SaveImage(context.Background(), img); err != nil {
			t.Fatalf("SaveImage(%s) error = %v", img.ID, err)
		}
	}
}

func TestImageRepository_SaveAndGetImage(t *testing.T) {
	repo := NewImageRepository(setupTestDB(t))
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedImages(t, repo, &domain.ImageRecord{
		ID:               "img-1",
		URL:              "https://cdn.example.edu/a.jpg",
		StoragePath:      "images/a.jpg",
		FileName:         "a.jpg",
		Caption:          "Caption",
		Credit:           "Jo",
		AltText:          "Alt",
		LinkedArticleIDs: []string{"art-2", "art-1"},
		UploadedBy:       "u1",
		UploadedByName:   "Uploader",
		CreatedAt:        created,
	})

	img, err := repo.GetImage(ctx, "img-1")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.edu/a.jpg", img.URL)
	assert.Equal(t, "images/a.jpg", img.StoragePath)
	assert.Equal(t, "Caption", img.Caption)
	assert.Equal(t, "Jo", img.Credit)
	assert.Equal(t, "Alt", img.AltText)
	assert.Equal(t, "Uploader", img.UploadedByName)
	assert.Equal(t, []string{"art-2", "art-1"}, img.LinkedArticleIDs)
	assert.True(t, img.CreatedAt.Equal(created), "CreatedAt = %v, want %v", img.CreatedAt, created)
	assert.True(t, img.LastUsedAt.IsZero())
}

func TestImageRepository_SaveImageReplacesLinks(t *testing.T) {
	repo := NewImageRepository(setupTestDB(t))
	ctx := context.Background()

	seedImages(t, repo,
		&domain.ImageRecord{ID: "img-1", URL: "u1", Caption: "old", LinkedArticleIDs: []string{"art-1"}},
		&domain.ImageRecord{ID: "img-1", URL: "u1", Caption: "new", LinkedArticleIDs: []string{"art-2"}},
	)

	img, err := repo.GetImage(ctx, "img-1")
	require.NoError(t, err)
	assert.Equal(t, "new", img.Caption)
	assert.Equal(t, []string{"art-2"}, img.LinkedArticleIDs)

	_, err = repo.FindImageLinkedToArticle(ctx, "art-1")
	assert.ErrorIs(t, err, domain.ErrImageNotFound)
}

func TestImageRepository_GetImageNotFound(t *testing.T) {
	repo := NewImageRepository(setupTestDB(t))

	img, err := repo.GetImage(context.Background(), "missing")
	assert.Nil(t, img)
	assert.ErrorIs(t, err, domain.ErrImageNotFound)

	_, err = repo.GetImage(context.Background(), "")
	assert.Error(t, err)
}

func TestImageRepository_FindImageByURL(t *testing.T) {
	repo := NewImageRepository(setupTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedImages(t, repo,
		&domain.ImageRecord{ID: "later", URL: "https://x/dup.png", CreatedAt: base.Add(time.Hour)},
		&domain.ImageRecord{ID: "earlier", URL: "https://x/dup.png", CreatedAt: base},
	)

	img, err := repo.FindImageByURL(ctx, "https://x/dup.png")
	require.NoError(t, err)
	assert.Equal(t, "earlier", img.ID)

	_, err = repo.FindImageByURL(ctx, "https://x/none.png")
	assert.ErrorIs(t, err, domain.ErrImageNotFound)

	_, err = repo.FindImageByURL(ctx, "")
	assert.ErrorIs(t, err, domain.ErrImageNotFound)
}

func TestImageRepository_LinkedToArticle(t *testing.T) {
	repo := NewImageRepository(setupTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedImages(t, repo,
		&domain.ImageRecord{ID: "b", URL: "https://x/b.png", LinkedArticleIDs: []string{"art"}, CreatedAt: base.Add(time.Minute)},
		&domain.ImageRecord{ID: "a", URL: "https://x/a.png", LinkedArticleIDs: []string{"art", "other"}, CreatedAt: base},
		&domain.ImageRecord{ID: "c", URL: "https://x/c.png", LinkedArticleIDs: []string{"other"}, CreatedAt: base},
	)

	first, err := repo.FindImageLinkedToArticle(ctx, "art")
	require.NoError(t, err)
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, []string{"art", "other"}, first.LinkedArticleIDs)

	linked, err := repo.ListImagesLinkedToArticle(ctx, "art")
	require.NoError(t, err)
	require.Len(t, linked, 2)
	assert.Equal(t, "a", linked[0].ID)
	assert.Equal(t, "b", linked[1].ID)

	none, err := repo.ListImagesLinkedToArticle(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = repo.FindImageLinkedToArticle(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrImageNotFound)
}

func TestImageRepository_SaveImageValidation(t *testing.T) {
	repo := NewImageRepository(setupTestDB(t))

	assert.Error(t, repo.SaveImage(context.Background(), nil))
	assert.Error(t, repo.SaveImage(context.Background(), &domain.ImageRecord{URL: "u"}))
}

func TestImageRepository_StoreFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectQuery("FROM images i").
		WithArgs("img-1").
		WillReturnError(errors.New("disk I/O error"))

	repo := NewImageRepository(sqlDB)
	img, err := repo.GetImage(context.Background(), "img-1")

	assert.Nil(t, img)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrImageNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImageRepository_SaveImageRollsBackOnLinkFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO images").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM image_article_links").WithArgs("img-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO image_article_links").
		WithArgs("img-1", "art-1", 0).
		WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	repo := NewImageRepository(sqlDB)
	err = repo.SaveImage(context.Background(), &domain.ImageRecord{ID: "img-1", URL: "u", LinkedArticleIDs: []string{"art-1"}})

	assert.ErrorContains(t, err, "failed to link image img-1 to article art-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}
