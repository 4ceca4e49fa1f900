package database

import (
	"time"
)

// Feed is a stored syndication source, one row per feed URL.
type Feed struct {
	ID            string // Database UUID
	FeedURL       string // Source feed URL, the unique key
	Title         string
	Description   string
	Link          string // Homepage URL from the feed's <link> element
	SourceURL     string // Feed URL as declared inside the document itself
	PublishedAt   *time.Time
	FeedUpdatedAt *time.Time
	Author        string
	Language      string
	ImageTitle    string
	ImageURL      string
	Favicon       string
	Copyright     string
	Generator     string
	Categories    []string
	LastModified  string // Opaque revalidation token from the last 200 response
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Article is one stored syndicated item. It references its owning feed
// by URL only; feed deletion cascades by an explicit delete, not by constraint.
type Article struct {
	ID               string
	FeedURL          string
	GUID             string
	Title            string
	Description      string
	Link             string
	OrigLink         string // Canonical link before an aggregator rewrote it
	PublishedAt      *time.Time
	ArticleUpdatedAt *time.Time
	Author           string
	Comments         string
	ImageTitle       string
	ImageURL         string
	Categories       []string
	SourceTitle      string
	SourceURL        string
	Enclosures       []Enclosure
	CreatedAt        time.Time // First-seen storage timestamp, immutable once set
}

// Enclosure is one media attachment on an article.
type Enclosure struct {
	URL    string `json:"url"`
	Type   string `json:"type"`
	Length int64  `json:"length"`
}

// SearchOptions narrows an article search.
type SearchOptions struct {
	From  *time.Time // Inclusive lower bound on storage timestamp
	To    *time.Time // Inclusive upper bound on storage timestamp
	Limit int        // 0 means no cap
}

// SearchResult is an article with its owning feed's title resolved at query time.
type SearchResult struct {
	Article
	FeedTitle string
}
