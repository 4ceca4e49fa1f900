package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
)

var _ FeedRepository = (*PostgresFeedRepository)(nil)

// PostgresFeedRepository handles database operations for feeds.
type PostgresFeedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) *PostgresFeedRepository {
	return &PostgresFeedRepository{db: db}
}

const feedColumns = `id, feed_url, title, description, link, source_url,
	       published_at, feed_updated_at, author, language,
	       image_title, image_url, favicon, copyright, generator,
	       categories, last_modified, created_at, updated_at`

// GetFeedByURL retrieves the feed stored for a URL. The URL is the feed's
// unique key; observing more than one row for it indicates data corruption,
// which is logged and not repaired. The oldest row wins.
func (r *PostgresFeedRepository) GetFeedByURL(ctx context.Context, feedURL string) (*Feed, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+feedColumns+`
		FROM feeds
		WHERE feed_url = $1
		ORDER BY created_at ASC
	`, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by URL: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	if len(feeds) == 0 {
		return nil, nil
	}
	if len(feeds) > 1 {
		slog.Error("Multiple feeds stored for one URL, data corruption",
			"url", feedURL, "count", len(feeds))
	}

	return &feeds[0], nil
}

// ListFeedURLs returns the URL of every stored feed, the catalog one
// polling pass iterates over.
func (r *PostgresFeedRepository) ListFeedURLs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT feed_url FROM feeds ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed URLs: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan feed URL: %w", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed URLs: %w", err)
	}

	return urls, nil
}

func (r *PostgresFeedRepository) GetFeedCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

func (r *PostgresFeedRepository) CreateFeed(ctx context.Context, feed Feed) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feeds (
			id, feed_url, title, description, link, source_url,
			published_at, feed_updated_at, author, language,
			image_title, image_url, favicon, copyright, generator,
			categories, last_modified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, feed.ID, feed.FeedURL, feed.Title, feed.Description, feed.Link, feed.SourceURL,
		feed.PublishedAt, feed.FeedUpdatedAt, feed.Author, feed.Language,
		feed.ImageTitle, feed.ImageURL, feed.Favicon, feed.Copyright, feed.Generator,
		pq.Array(feed.Categories), feed.LastModified)

	if err != nil {
		return fmt.Errorf("failed to create feed: %w", err)
	}

	return nil
}

// UpdateFeed overwrites every mutable field of the feed row keyed by URL.
func (r *PostgresFeedRepository) UpdateFeed(ctx context.Context, feed Feed) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE feeds
		SET title = $2, description = $3, link = $4, source_url = $5,
		    published_at = $6, feed_updated_at = $7, author = $8, language = $9,
		    image_title = $10, image_url = $11, favicon = $12, copyright = $13,
		    generator = $14, categories = $15, last_modified = $16, updated_at = NOW()
		WHERE feed_url = $1
	`, feed.FeedURL, feed.Title, feed.Description, feed.Link, feed.SourceURL,
		feed.PublishedAt, feed.FeedUpdatedAt, feed.Author, feed.Language,
		feed.ImageTitle, feed.ImageURL, feed.Favicon, feed.Copyright,
		feed.Generator, pq.Array(feed.Categories), feed.LastModified)

	if err != nil {
		return fmt.Errorf("failed to update feed: %w", err)
	}

	return nil
}

// DeleteFeed removes the feed row for a URL and returns the number of rows
// deleted. Articles are not touched here; the caller cascades explicitly.
func (r *PostgresFeedRepository) DeleteFeed(ctx context.Context, feedURL string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM feeds WHERE feed_url = $1`, feedURL)
	if err != nil {
		return 0, fmt.Errorf("failed to delete feed: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted feed count: %w", err)
	}

	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFeed(row rowScanner) (Feed, error) {
	var feed Feed
	err := row.Scan(
		&feed.ID, &feed.FeedURL, &feed.Title, &feed.Description, &feed.Link, &feed.SourceURL,
		&feed.PublishedAt, &feed.FeedUpdatedAt, &feed.Author, &feed.Language,
		&feed.ImageTitle, &feed.ImageURL, &feed.Favicon, &feed.Copyright, &feed.Generator,
		pq.Array(&feed.Categories), &feed.LastModified, &feed.CreatedAt, &feed.UpdatedAt,
	)
	return feed, err
}
