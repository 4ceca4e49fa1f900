package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"
)

var _ ArticleRepository = (*PostgresArticleRepository)(nil)

// PostgresArticleRepository handles database operations for articles.
type PostgresArticleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) *PostgresArticleRepository {
	return &PostgresArticleRepository{db: db}
}

const articleColumns = `id, feed_url, guid, COALESCE(title, ''), COALESCE(description, ''),
	       COALESCE(link, ''), COALESCE(orig_link, ''),
	       published_at, article_updated_at, COALESCE(author, ''), COALESCE(comments, ''),
	       COALESCE(image_title, ''), COALESCE(image_url, ''), COALESCE(categories, '{}'),
	       COALESCE(source_title, ''), COALESCE(source_url, ''), enclosures, created_at`

// GetArticle retrieves an article by its approximate identity, the pair
// (guid, owning feed URL).
func (r *PostgresArticleRepository) GetArticle(ctx context.Context, feedURL, guid string) (*Article, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE feed_url = $1 AND guid = $2
		LIMIT 1
	`, feedURL, guid)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return &article, nil
}

func (r *PostgresArticleRepository) GetArticleCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

func (r *PostgresArticleRepository) CreateArticle(ctx context.Context, article Article) error {
	enclosures, err := json.Marshal(article.Enclosures)
	if err != nil {
		return fmt.Errorf("failed to encode enclosures: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO articles (
			id, feed_url, guid, title, description, link, orig_link,
			published_at, article_updated_at, author, comments,
			image_title, image_url, categories, source_title, source_url, enclosures
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, article.ID, article.FeedURL, article.GUID, article.Title, article.Description,
		article.Link, article.OrigLink, article.PublishedAt, article.ArticleUpdatedAt,
		article.Author, article.Comments, article.ImageTitle, article.ImageURL,
		pq.Array(article.Categories), article.SourceTitle, article.SourceURL, enclosures)

	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}

	return nil
}

// UpdateArticle overwrites an article's fields in place, keyed by
// (feed_url, guid). The created_at storage timestamp is never touched.
func (r *PostgresArticleRepository) UpdateArticle(ctx context.Context, article Article) error {
	enclosures, err := json.Marshal(article.Enclosures)
	if err != nil {
		return fmt.Errorf("failed to encode enclosures: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE articles
		SET title = $3, description = $4, link = $5, orig_link = $6,
		    published_at = $7, article_updated_at = $8, author = $9, comments = $10,
		    image_title = $11, image_url = $12, categories = $13,
		    source_title = $14, source_url = $15, enclosures = $16
		WHERE feed_url = $1 AND guid = $2
	`, article.FeedURL, article.GUID, article.Title, article.Description,
		article.Link, article.OrigLink, article.PublishedAt, article.ArticleUpdatedAt,
		article.Author, article.Comments, article.ImageTitle, article.ImageURL,
		pq.Array(article.Categories), article.SourceTitle, article.SourceURL, enclosures)

	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}

	return nil
}

func (r *PostgresArticleRepository) DeleteArticlesByFeed(ctx context.Context, feedURL string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE feed_url = $1`, feedURL)
	if err != nil {
		return 0, fmt.Errorf("failed to delete articles by feed: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted article count: %w", err)
	}

	return deleted, nil
}

// DeleteArticlesOlderThan removes articles whose storage timestamp is strictly
// earlier than the cutoff, and no others.
func (r *PostgresArticleRepository) DeleteArticlesOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old articles: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted article count: %w", err)
	}

	return deleted, nil
}

// Search finds articles whose title, description or author contains one of the
// keywords as a delimited word. Results are sorted by storage timestamp
// descending and carry the owning feed's title resolved via a read-only join.
func (r *PostgresArticleRepository) Search(ctx context.Context, keywords []string, opts SearchOptions) ([]SearchResult, error) {
	pattern := searchPattern(keywords)
	if pattern == "" {
		return nil, nil
	}

	query := `
		SELECT a.id, a.feed_url, a.guid, COALESCE(a.title, ''), COALESCE(a.description, ''),
		       COALESCE(a.link, ''), COALESCE(a.orig_link, ''),
		       a.published_at, a.article_updated_at, COALESCE(a.author, ''), COALESCE(a.comments, ''),
		       COALESCE(a.image_title, ''), COALESCE(a.image_url, ''), COALESCE(a.categories, '{}'),
		       COALESCE(a.source_title, ''), COALESCE(a.source_url, ''), a.enclosures, a.created_at,
		       COALESCE(f.title, '')
		FROM articles a
		LEFT JOIN feeds f ON f.feed_url = a.feed_url
		WHERE (a.title ~* $1 OR a.description ~* $1 OR a.author ~* $1)`
	args := []interface{}{pattern}

	if opts.From != nil {
		args = append(args, *opts.From)
		query += fmt.Sprintf(" AND a.created_at >= $%d", len(args))
	}
	if opts.To != nil {
		args = append(args, *opts.To)
		query += fmt.Sprintf(" AND a.created_at <= $%d", len(args))
	}

	query += " ORDER BY a.created_at DESC"

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search articles: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var result SearchResult
		var enclosures []byte
		err := rows.Scan(
			&result.ID, &result.FeedURL, &result.GUID, &result.Title, &result.Description,
			&result.Link, &result.OrigLink, &result.PublishedAt, &result.ArticleUpdatedAt,
			&result.Author, &result.Comments, &result.ImageTitle, &result.ImageURL,
			pq.Array(&result.Categories), &result.SourceTitle, &result.SourceURL,
			&enclosures, &result.CreatedAt, &result.FeedTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		if len(enclosures) > 0 {
			if err := json.Unmarshal(enclosures, &result.Enclosures); err != nil {
				return nil, fmt.Errorf("failed to decode enclosures: %w", err)
			}
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}

// searchPattern builds the case-insensitive regex applied with ~*. Each keyword
// must be bounded by a non-alphanumeric character or the string edge on both
// sides, so "Foo" matches "Read Foo Bar" but not "Foobartech". Multiple
// keywords are joined by alternation. Empty keywords are dropped; an empty
// result means there is nothing to search for.
func searchPattern(keywords []string) string {
	escaped := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		escaped = append(escaped, regexp.QuoteMeta(kw))
	}
	if len(escaped) == 0 {
		return ""
	}

	return "(^|[^[:alnum:]])(" + strings.Join(escaped, "|") + ")([^[:alnum:]]|$)"
}

func scanArticle(row rowScanner) (Article, error) {
	var article Article
	var enclosures []byte
	err := row.Scan(
		&article.ID, &article.FeedURL, &article.GUID, &article.Title, &article.Description,
		&article.Link, &article.OrigLink, &article.PublishedAt, &article.ArticleUpdatedAt,
		&article.Author, &article.Comments, &article.ImageTitle, &article.ImageURL,
		pq.Array(&article.Categories), &article.SourceTitle, &article.SourceURL,
		&enclosures, &article.CreatedAt,
	)
	if err != nil {
		return article, err
	}
	if len(enclosures) > 0 {
		if err := json.Unmarshal(enclosures, &article.Enclosures); err != nil {
			return article, fmt.Errorf("failed to decode enclosures: %w", err)
		}
	}
	return article, nil
}
