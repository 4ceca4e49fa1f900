package feed

import (
	"time"
)

// Metadata is the feed-level record emitted by the parser.
type Metadata struct {
	Title       string
	Description string
	Link        string // Homepage URL
	FeedLink    string // Source feed URL as declared inside the document
	PublishedAt *time.Time
	UpdatedAt   *time.Time
	Author      string
	Language    string
	ImageTitle  string
	ImageURL    string
	Favicon     string
	Copyright   string
	Generator   string
	Categories  []string
}

// Article is one normalized feed item emitted by the parser.
type Article struct {
	GUID        string
	Title       string
	Description string
	Link        string
	OrigLink    string // Canonical link before an aggregator rewrote it
	PublishedAt *time.Time
	UpdatedAt   *time.Time
	Author      string
	Comments    string
	ImageTitle  string
	ImageURL    string
	Categories  []string
	SourceTitle string
	SourceURL   string
	Enclosures  []Enclosure
}

// Enclosure is one media attachment carried by an article.
type Enclosure struct {
	URL    string
	Type   string
	Length int64
}
