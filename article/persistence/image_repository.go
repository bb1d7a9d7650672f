package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/newsroom/article/domain"
	"github.com/dfryer1193/newsroom/shared/db"
)

var _ domain.ImageRepository = (*SQLiteImageRepository)(nil)

// SQLiteImageRepository implements domain.ImageRepository using SQL database (SQLite).
// Article links live in image_article_links, ordered by position.
type SQLiteImageRepository struct {
	db *sql.DB
}

// NewImageRepository creates a new SQLiteImageRepository from a standard sql.DB
func NewImageRepository(sqlDB *sql.DB) *SQLiteImageRepository {
	return &SQLiteImageRepository{
		db: sqlDB,
	}
}

const imageColumns = `
	i.id, i.url, i.storage_path, i.file_name, i.caption, i.credit, i.alt_text,
	i.uploaded_by, i.uploaded_by_name, i.created_at, i.last_used_at
`

const getImageQuery = `
	SELECT` + imageColumns + `
	FROM images i
	WHERE i.id = ?
`

const findImageByURLQuery = `
	SELECT` + imageColumns + `
	FROM images i
	WHERE i.url = ?
	ORDER BY i.created_at, i.id
	LIMIT 1
`

const findImageLinkedToArticleQuery = `
	SELECT` + imageColumns + `
	FROM images i
	JOIN image_article_links l ON l.image_id = i.id
	WHERE l.article_id = ?
	ORDER BY i.created_at, i.id
	LIMIT 1
`

const listImagesLinkedToArticleQuery = `
	SELECT` + imageColumns + `
	FROM images i
	JOIN image_article_links l ON l.image_id = i.id
	WHERE l.article_id = ?
	ORDER BY i.created_at, i.id
`

const listImageLinksQuery = `
	SELECT article_id FROM image_article_links
	WHERE image_id = ?
	ORDER BY position
`

// GetImage retrieves a single image and its article links by id
func (r *SQLiteImageRepository) GetImage(ctx context.Context, id string) (*domain.ImageRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("image ID cannot be empty")
	}
	return r.findOne(ctx, getImageQuery, id)
}

// FindImageByURL returns the earliest created image stored under url
func (r *SQLiteImageRepository) FindImageByURL(ctx context.Context, url string) (*domain.ImageRecord, error) {
	if url == "" {
		return nil, domain.ErrImageNotFound
	}
	return r.findOne(ctx, findImageByURLQuery, url)
}

// FindImageLinkedToArticle returns the earliest created image linked to the article
func (r *SQLiteImageRepository) FindImageLinkedToArticle(ctx context.Context, articleID string) (*domain.ImageRecord, error) {
	if articleID == "" {
		return nil, domain.ErrImageNotFound
	}
	return r.findOne(ctx, findImageLinkedToArticleQuery, articleID)
}

// ListImagesLinkedToArticle returns every image linked to the article
func (r *SQLiteImageRepository) ListImagesLinkedToArticle(ctx context.Context, articleID string) ([]*domain.ImageRecord, error) {
	executor := db.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, listImagesLinkedToArticleQuery, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images for article %s: %w", articleID, err)
	}
	defer rows.Close()

	images := make([]*domain.ImageRecord, 0)
	for rows.Next() {
		var row imageRow
		if err := row.scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}
		images = append(images, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating image rows: %w", err)
	}
	rows.Close()

	for _, img := range images {
		if img.LinkedArticleIDs, err = r.listLinks(ctx, img.ID); err != nil {
			return nil, err
		}
	}

	return images, nil
}

const upsertImageQuery = `
	INSERT INTO images (id, url, storage_path, file_name, caption, credit, alt_text,
		uploaded_by, uploaded_by_name, created_at, last_used_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		url = excluded.url,
		storage_path = excluded.storage_path,
		file_name = excluded.file_name,
		caption = excluded.caption,
		credit = excluded.credit,
		alt_text = excluded.alt_text,
		uploaded_by = excluded.uploaded_by,
		uploaded_by_name = excluded.uploaded_by_name,
		created_at = COALESCE(images.created_at, excluded.created_at),
		last_used_at = excluded.last_used_at
`

const deleteImageLinksQuery = `DELETE FROM image_article_links WHERE image_id = ?`

const insertImageLinkQuery = `
	INSERT INTO image_article_links (image_id, article_id, position)
	VALUES (?, ?, ?)
	ON CONFLICT(image_id, article_id) DO NOTHING
`

// SaveImage upserts an image and replaces its article links within a transaction
func (r *SQLiteImageRepository) SaveImage(ctx context.Context, img *domain.ImageRecord) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}

	if img.ID == "" {
		return fmt.Errorf("image ID cannot be empty")
	}

	createdAt := img.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var lastUsedAt any
	if !img.LastUsedAt.IsZero() {
		lastUsedAt = img.LastUsedAt
	}

	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)
		_, err := executor.ExecContext(txCtx, upsertImageQuery,
			img.ID,
			img.URL,
			img.StoragePath,
			img.FileName,
			img.Caption,
			img.Credit,
			img.AltText,
			img.UploadedBy,
			img.UploadedByName,
			createdAt,
			lastUsedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert image: %w", err)
		}

		if _, err := executor.ExecContext(txCtx, deleteImageLinksQuery, img.ID); err != nil {
			return fmt.Errorf("failed to clear image links: %w", err)
		}

		for i, articleID := range img.LinkedArticleIDs {
			if _, err := executor.ExecContext(txCtx, insertImageLinkQuery, img.ID, articleID, i); err != nil {
				return fmt.Errorf("failed to link image %s to article %s: %w", img.ID, articleID, err)
			}
		}

		return nil
	})
}

func (r *SQLiteImageRepository) findOne(ctx context.Context, query string, arg string) (*domain.ImageRecord, error) {
	executor := db.GetExecutor(ctx, r.db)

	var row imageRow
	err := row.scan(executor.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	img := row.toDomain()
	if img.LinkedArticleIDs, err = r.listLinks(ctx, img.ID); err != nil {
		return nil, err
	}

	return img, nil
}

func (r *SQLiteImageRepository) listLinks(ctx context.Context, imageID string) ([]string, error) {
	executor := db.GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, listImageLinksQuery, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links for image %s: %w", imageID, err)
	}
	defer rows.Close()

	links := make([]string, 0)
	for rows.Next() {
		var articleID string
		if err := rows.Scan(&articleID); err != nil {
			return nil, fmt.Errorf("failed to scan image link: %w", err)
		}
		links = append(links, articleID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating image links: %w", err)
	}

	return links, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// imageRow is a private struct used to scan database rows
type imageRow struct {
	ID             string       `db:"id"`
	URL            string       `db:"url"`
	StoragePath    string       `db:"storage_path"`
	FileName       string       `db:"file_name"`
	Caption        string       `db:"caption"`
	Credit         string       `db:"credit"`
	AltText        string       `db:"alt_text"`
	UploadedBy     string       `db:"uploaded_by"`
	UploadedByName string       `db:"uploaded_by_name"`
	CreatedAt      sql.NullTime `db:"created_at"`
	LastUsedAt     sql.NullTime `db:"last_used_at"`
}

func (ir *imageRow) scan(s rowScanner) error {
	return s.Scan(
		&ir.ID,
		&ir.URL,
		&ir.StoragePath,
		&ir.FileName,
		&ir.Caption,
		&ir.Credit,
		&ir.AltText,
		&ir.UploadedBy,
		&ir.UploadedByName,
		&ir.CreatedAt,
		&ir.LastUsedAt,
	)
}

// toDomain converts an imageRow to a domain.ImageRecord, handling nullable times
func (ir *imageRow) toDomain() *domain.ImageRecord {
	img := &domain.ImageRecord{
		ID:             ir.ID,
		URL:            ir.URL,
		StoragePath:    ir.StoragePath,
		FileName:       ir.FileName,
		Caption:        ir.Caption,
		Credit:         ir.Credit,
		AltText:        ir.AltText,
		UploadedBy:     ir.UploadedBy,
		UploadedByName: ir.UploadedByName,
	}

	if ir.CreatedAt.Valid {
		img.CreatedAt = ir.CreatedAt.Time
	}
	if ir.LastUsedAt.Valid {
		img.LastUsedAt = ir.LastUsedAt.Time
	}

	return img
}
