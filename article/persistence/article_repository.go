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

var _ domain.ArticleRepository = (*SQLiteArticleRepository)(nil)

// SQLiteArticleRepository implements domain.ArticleRepository using SQL database (SQLite)
type SQLiteArticleRepository struct {
	db *sql.DB
}

// NewArticleRepository creates a new SQLiteArticleRepository from a standard sql.DB
func NewArticleRepository(db *sql.DB) *SQLiteArticleRepository {
	return &SQLiteArticleRepository{
		db: db,
	}
}

const upsertArticleQuery = `
	INSERT INTO articles (id, title, markdown_path, featured_image_id, image_url, updated_at, published_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		markdown_path = excluded.markdown_path,
		featured_image_id = excluded.featured_image_id,
		image_url = excluded.image_url,
		updated_at = excluded.updated_at,
		published_at = excluded.published_at,
		created_at = COALESCE(articles.created_at, excluded.created_at)
`

// SaveArticle upserts article metadata
func (r *SQLiteArticleRepository) SaveArticle(ctx context.Context, a *domain.Article) error {
	if a == nil {
		return fmt.Errorf("article cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("article ID cannot be empty")
	}

	var updatedAt, publishedAt any
	if !a.UpdatedAt.IsZero() {
		updatedAt = a.UpdatedAt
	}
	if !a.PublishedAt.IsZero() {
		publishedAt = a.PublishedAt
	}

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	executor := db.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, upsertArticleQuery,
		a.ID,
		a.Title,
		a.MarkdownPath,
		a.FeaturedImageID,
		a.ImageURL,
		updatedAt,
		publishedAt,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert article: %w", err)
	}

	return nil
}

const getArticleQuery = `
	SELECT id, title, markdown_path, featured_image_id, image_url, updated_at, published_at, created_at
	FROM articles
	WHERE id = ?
`

// GetArticle retrieves a single article by ID
func (r *SQLiteArticleRepository) GetArticle(ctx context.Context, id string) (*domain.Article, error) {
	if id == "" {
		return nil, fmt.Errorf("article ID cannot be empty")
	}

	var row articleRow
	err := row.scan(db.GetExecutor(ctx, r.db).QueryRowContext(ctx, getArticleQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrArticleNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return row.toDomain(), nil
}

const listPublishedArticlesQuery = `
	SELECT id, title, markdown_path, featured_image_id, image_url, updated_at, published_at, created_at
	FROM articles
	WHERE published_at IS NOT NULL
	ORDER BY published_at DESC
	LIMIT ? OFFSET ?
`

// ListPublishedArticles retrieves published articles ordered by publish date descending
func (r *SQLiteArticleRepository) ListPublishedArticles(ctx context.Context, limit, offset int) ([]*domain.Article, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, listPublishedArticlesQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list published articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*domain.Article, 0)
	for rows.Next() {
		var row articleRow
		if err := row.scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, row.toDomain())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

// articleRow is a private struct used to scan database rows
// It uses sql.NullTime to handle nullable timestamp fields
type articleRow struct {
	ID              string       `db:"id"`
	Title           string       `db:"title"`
	MarkdownPath    string       `db:"markdown_path"`
	FeaturedImageID string       `db:"featured_image_id"`
	ImageURL        string       `db:"image_url"`
	UpdatedAt       sql.NullTime `db:"updated_at"`
	PublishedAt     sql.NullTime `db:"published_at"`
	CreatedAt       sql.NullTime `db:"created_at"`
}

func (ar *articleRow) scan(s rowScanner) error {
	return s.Scan(
		&ar.ID,
		&ar.Title,
		&ar.MarkdownPath,
		&ar.FeaturedImageID,
		&ar.ImageURL,
		&ar.UpdatedAt,
		&ar.PublishedAt,
		&ar.CreatedAt,
	)
}

// toDomain converts an articleRow to a domain.Article
func (ar *articleRow) toDomain() *domain.Article {
	article := &domain.Article{
		ID:              ar.ID,
		Title:           ar.Title,
		MarkdownPath:    ar.MarkdownPath,
		FeaturedImageID: ar.FeaturedImageID,
		ImageURL:        ar.ImageURL,
	}

	if ar.UpdatedAt.Valid {
		article.UpdatedAt = ar.UpdatedAt.Time
	}
	if ar.PublishedAt.Valid {
		article.PublishedAt = ar.PublishedAt.Time
	}
	if ar.CreatedAt.Valid {
		article.CreatedAt = ar.CreatedAt.Time
	}

	return article
}
