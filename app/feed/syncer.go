package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ogrodnik/feedsync/app/database"
)

// Syncer orchestrates the per-feed pipeline: fetch, normalize, parse, then
// reconcile the feed record and each article record against storage. It also
// carries the explicit maintenance operations (remove, purge) that never run
// as part of a normal sync.
type Syncer struct {
	fetcher     *Fetcher
	normalizer  *Normalizer
	parser      *Parser
	feedRepo    database.FeedRepository
	articleRepo database.ArticleRepository

	// Change-detection policy, swappable without touching call sites.
	FeedChanged    FeedPredicate
	ArticleChanged ArticlePredicate
}

func NewSyncer(fetcher *Fetcher, normalizer *Normalizer, parser *Parser,
	feedRepo database.FeedRepository, articleRepo database.ArticleRepository) *Syncer {
	return &Syncer{
		fetcher:        fetcher,
		normalizer:     normalizer,
		parser:         parser,
		feedRepo:       feedRepo,
		articleRepo:    articleRepo,
		FeedChanged:    FeedChanged,
		ArticleChanged: ArticleChanged,
	}
}

// AddFeed registers a new feed URL by running its pipeline once; the feed
// record is created on the first successful fetch and parse. Adding a URL
// that is already stored is a no-op.
func (s *Syncer) AddFeed(ctx context.Context, feedURL string) error {
	stored, err := s.feedRepo.GetFeedByURL(ctx, feedURL)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "url", feedURL, "error", err)
		return err
	}
	if stored != nil {
		slog.Warn("Feed already registered, skipping", "url", feedURL)
		return nil
	}

	return s.SyncFeed(ctx, feedURL)
}

// RemoveFeed deletes a stored feed and explicitly cascades to every article
// referencing its URL. Removing an unknown URL is a no-op.
func (s *Syncer) RemoveFeed(ctx context.Context, feedURL string) error {
	deletedFeeds, err := s.feedRepo.DeleteFeed(ctx, feedURL)
	if err != nil {
		slog.Error("Database error", "operation", "delete_feed", "url", feedURL, "error", err)
		return err
	}

	deletedArticles, err := s.articleRepo.DeleteArticlesByFeed(ctx, feedURL)
	if err != nil {
		slog.Error("Database error", "operation", "delete_articles", "url", feedURL, "error", err)
		return err
	}

	if deletedFeeds == 0 {
		slog.Warn("Feed not found, nothing removed", "url", feedURL)
		return nil
	}

	slog.Info("Feed removed", "url", feedURL, "articles_deleted", deletedArticles)
	return nil
}

// PurgeArticles deletes every article first seen more than the given number
// of days ago, across all feeds.
func (s *Syncer) PurgeArticles(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	deleted, err := s.articleRepo.DeleteArticlesOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("Database error", "operation", "purge_articles", "days", days, "error", err)
		return 0, err
	}

	slog.Info("Old articles purged", "days", days, "deleted", deleted)
	return deleted, nil
}

// SyncAll runs one full pass over every stored feed URL. Each feed's pipeline
// runs independently; one feed's failure never aborts the pass for the others.
func (s *Syncer) SyncAll(ctx context.Context) {
	start := time.Now()

	urls, err := s.feedRepo.ListFeedURLs(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "list_feeds", "error", err)
		return
	}

	failed := 0
	for _, url := range urls {
		if err := s.SyncFeed(ctx, url); err != nil {
			failed++
		}
	}

	slog.Info("Sync pass completed",
		"feeds", len(urls),
		"failed", failed,
		"duration", time.Since(start))
}

// SyncFeed runs the pipeline for one feed URL in strict stage order:
// fetch, normalize, parse, metadata reconcile, then per-article reconcile in
// stream-arrival order. Fetch and parse failures abandon the cycle with no
// further mutation; a metadata update that already committed stays committed.
func (s *Syncer) SyncFeed(ctx context.Context, feedURL string) error {
	stored, err := s.feedRepo.GetFeedByURL(ctx, feedURL)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "url", feedURL, "error", err)
		return err
	}

	token := ""
	if stored != nil {
		token = stored.LastModified
	}

	result, err := s.fetcher.Fetch(ctx, feedURL, token)
	if err != nil {
		slog.Error("Fetch failed, cycle abandoned", "url", feedURL, "error", err)
		return err
	}

	if result.Status == StatusNotModified {
		slog.Debug("Feed not modified, nothing to do", "url", feedURL)
		return nil
	}

	data, converted := s.normalizer.Run(result.Body)
	if converted {
		slog.Debug("Feed payload transcoded to UTF-8", "url", feedURL)
	}

	stream := s.parser.Run(data)

	articleCount := 0
	for {
		event := stream.Next()

		switch event.Type {
		case EventMetadata:
			s.reconcileFeed(ctx, stored, feedURL, event.Metadata, result.LastModified)

		case EventArticle:
			s.reconcileArticle(ctx, feedURL, event.Article)
			articleCount++

		case EventError:
			slog.Error("Parse failed, cycle abandoned", "url", feedURL, "error", event.Err)
			return event.Err

		case EventEnd:
			slog.Debug("Feed synced", "url", feedURL, "articles", articleCount)
			return nil
		}
	}
}

// reconcileFeed applies the create-vs-update-vs-skip decision for the feed
// record. Storage failures are logged and abandoned without aborting the
// article reconciliation that follows.
func (s *Syncer) reconcileFeed(ctx context.Context, stored *database.Feed,
	feedURL string, metadata *Metadata, token string) {
	incoming := database.Feed{
		FeedURL:       feedURL,
		Title:         metadata.Title,
		Description:   metadata.Description,
		Link:          metadata.Link,
		SourceURL:     metadata.FeedLink,
		PublishedAt:   metadata.PublishedAt,
		FeedUpdatedAt: metadata.UpdatedAt,
		Author:        metadata.Author,
		Language:      metadata.Language,
		ImageTitle:    metadata.ImageTitle,
		ImageURL:      metadata.ImageURL,
		Favicon:       metadata.Favicon,
		Copyright:     metadata.Copyright,
		Generator:     metadata.Generator,
		Categories:    metadata.Categories,
		LastModified:  token,
	}

	if stored == nil {
		incoming.ID = uuid.New().String()
		if err := s.feedRepo.CreateFeed(ctx, incoming); err != nil {
			slog.Error("Database error", "operation", "create_feed", "url", feedURL, "error", err)
			return
		}
		slog.Info("Feed created", "url", feedURL, "title", incoming.Title)
		return
	}

	if !s.FeedChanged(*stored, incoming) {
		return
	}

	if err := s.feedRepo.UpdateFeed(ctx, incoming); err != nil {
		slog.Error("Database error", "operation", "update_feed", "url", feedURL, "error", err)
		return
	}
	slog.Info("Feed updated", "url", feedURL, "title", incoming.Title)
}

// reconcileArticle applies the create-vs-update-vs-skip decision for one
// article, identified by the (guid, feed URL) pair. The storage timestamp is
// set once on create and never changes afterwards.
func (s *Syncer) reconcileArticle(ctx context.Context, feedURL string, article *Article) {
	incoming := database.Article{
		FeedURL:          feedURL,
		GUID:             article.GUID,
		Title:            article.Title,
		Description:      article.Description,
		Link:             article.Link,
		OrigLink:         article.OrigLink,
		PublishedAt:      article.PublishedAt,
		ArticleUpdatedAt: article.UpdatedAt,
		Author:           article.Author,
		Comments:         article.Comments,
		ImageTitle:       article.ImageTitle,
		ImageURL:         article.ImageURL,
		Categories:       article.Categories,
		SourceTitle:      article.SourceTitle,
		SourceURL:        article.SourceURL,
		Enclosures:       convertEnclosures(article.Enclosures),
	}

	existing, err := s.articleRepo.GetArticle(ctx, feedURL, article.GUID)
	if err != nil {
		slog.Error("Database error", "operation", "get_article",
			"url", feedURL, "guid", article.GUID, "error", err)
		return
	}

	if existing == nil {
		incoming.ID = uuid.New().String()
		if err := s.articleRepo.CreateArticle(ctx, incoming); err != nil {
			slog.Error("Database error", "operation", "create_article",
				"url", feedURL, "guid", article.GUID, "error", err)
		}
		return
	}

	if !s.ArticleChanged(*existing, incoming) {
		return
	}

	if err := s.articleRepo.UpdateArticle(ctx, incoming); err != nil {
		slog.Error("Database error", "operation", "update_article",
			"url", feedURL, "guid", article.GUID, "error", err)
	}
}

func convertEnclosures(enclosures []Enclosure) []database.Enclosure {
	if len(enclosures) == 0 {
		return nil
	}
	converted := make([]database.Enclosure, 0, len(enclosures))
	for _, e := range enclosures {
		converted = append(converted, database.Enclosure{
			URL:    e.URL,
			Type:   e.Type,
			Length: e.Length,
		})
	}
	return converted
}
