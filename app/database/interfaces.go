package database

import (
	"context"
	"time"
)

type FeedRepository interface {
	GetFeedByURL(ctx context.Context, feedURL string) (*Feed, error)
	ListFeedURLs(ctx context.Context) ([]string, error)
	GetFeedCount(ctx context.Context) (int, error)

	CreateFeed(ctx context.Context, feed Feed) error
	UpdateFeed(ctx context.Context, feed Feed) error
	DeleteFeed(ctx context.Context, feedURL string) (int64, error)
}

type ArticleRepository interface {
	GetArticle(ctx context.Context, feedURL, guid string) (*Article, error)
	GetArticleCount(ctx context.Context) (int, error)

	CreateArticle(ctx context.Context, article Article) error
	UpdateArticle(ctx context.Context, article Article) error

	DeleteArticlesByFeed(ctx context.Context, feedURL string) (int64, error)
	DeleteArticlesOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	Search(ctx context.Context, keywords []string, opts SearchOptions) ([]SearchResult, error)
}
