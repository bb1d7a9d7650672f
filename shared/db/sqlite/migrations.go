package sqlite

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	up      string
}

// migrations is the ordered list of all database migrations.
// Applied versions are recorded in schema_migrations and never rerun.
var migrations = []migration{
	{
		version: 1,
		name:    "create_articles_table",
		up: `
			CREATE TABLE IF NOT EXISTS articles (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				markdown_path TEXT NOT NULL DEFAULT '',
				featured_image_id TEXT NOT NULL DEFAULT '',
				image_url TEXT NOT NULL DEFAULT '',
				updated_at TIMESTAMP,
				published_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_articles_published_at
			ON articles(published_at DESC)
			WHERE published_at IS NOT NULL;
		`,
	},
	{
		version: 2,
		name:    "create_images_table",
		up: `
			CREATE TABLE IF NOT EXISTS images (
				id TEXT PRIMARY KEY,
				url TEXT NOT NULL DEFAULT '',
				storage_path TEXT NOT NULL DEFAULT '',
				file_name TEXT NOT NULL DEFAULT '',
				caption TEXT NOT NULL DEFAULT '',
				credit TEXT NOT NULL DEFAULT '',
				alt_text TEXT NOT NULL DEFAULT '',
				uploaded_by TEXT NOT NULL DEFAULT '',
				uploaded_by_name TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL,
				last_used_at TIMESTAMP
			);

			CREATE INDEX IF NOT EXISTS idx_images_url
			ON images(url);
		`,
	},
	{
		version: 3,
		name:    "create_image_article_links_table",
		up: `
			CREATE TABLE IF NOT EXISTS image_article_links (
				image_id TEXT NOT NULL REFERENCES images(id) ON DELETE CASCADE,
				article_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				PRIMARY KEY (image_id, article_id)
			);

			CREATE INDEX IF NOT EXISTS idx_image_article_links_article_id
			ON image_article_links(article_id);
		`,
	},
}

// runMigrations executes all pending migrations
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	currentVersion := 0
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		if err := applyMigration(db, m); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", m.version, err)
	}

	if _, err := tx.Exec(m.up); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
	}

	_, err = tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.version,
		m.name,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %d: %w", m.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
	}

	return nil
}
