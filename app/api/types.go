package api

import (
	"context"
	"time"

	"github.com/ogrodnik/feedsync/app/database"
	"github.com/ogrodnik/feedsync/app/feed"
	"github.com/ogrodnik/feedsync/app/scheduler"
)

// SyncerInterface is the slice of the sync engine the HTTP surface needs.
type SyncerInterface interface {
	AddFeed(ctx context.Context, feedURL string) error
	RemoveFeed(ctx context.Context, feedURL string) error
	PurgeArticles(ctx context.Context, days int) (int64, error)
	SyncAll(ctx context.Context)
}

var _ SyncerInterface = (*feed.Syncer)(nil)

// SchedulerInterface controls the repeating update timer.
type SchedulerInterface interface {
	Start(interval time.Duration)
	Stop()
	Running() bool
}

var _ SchedulerInterface = (*scheduler.Scheduler)(nil)

type Handler struct {
	feedRepo    database.FeedRepository
	articleRepo database.ArticleRepository
	syncer      SyncerInterface
	scheduler   SchedulerInterface
}
