package feed

import (
	"testing"

	"github.com/ogrodnik/feedsync/app/database"
)

func storedFeed() database.Feed {
	return database.Feed{
		FeedURL:      "https://example.com/rss",
		Title:        "Old Title",
		Description:  "Old Description",
		Link:         "https://example.com",
		SourceURL:    "https://example.com/rss",
		Author:       "old@example.com",
		Language:     "en-us",
		ImageTitle:   "Old Image",
		ImageURL:     "https://example.com/old.png",
		Favicon:      "https://example.com/favicon.ico",
		Copyright:    "Old Copyright",
		Generator:    "Old Generator",
		Categories:   []string{"tech"},
		LastModified: "Mon, 01 Jan 2024 00:00:00 GMT",
	}
}

func differingFeed() database.Feed {
	return database.Feed{
		FeedURL:      "https://example.com/rss",
		Title:        "New Title",
		Description:  "New Description",
		Link:         "https://example.org",
		SourceURL:    "https://example.org/rss",
		Author:       "new@example.com",
		Language:     "de-de",
		ImageTitle:   "New Image",
		ImageURL:     "https://example.com/new.png",
		Favicon:      "https://example.org/favicon.ico",
		Copyright:    "New Copyright",
		Generator:    "New Generator",
		Categories:   []string{"news"},
		LastModified: "Tue, 02 Jan 2024 00:00:00 GMT",
	}
}

func TestFeedChanged_AllFieldsDiffer(t *testing.T) {
	if !FeedChanged(storedFeed(), differingFeed()) {
		t.Error("Expected update when every compared field differs")
	}
}

func TestFeedChanged_OneFieldUnchanged(t *testing.T) {
	incoming := differingFeed()
	incoming.Title = "Old Title"

	if FeedChanged(storedFeed(), incoming) {
		t.Error("Expected no update when a single field still matches")
	}
}

func TestFeedChanged_Identical(t *testing.T) {
	if FeedChanged(storedFeed(), storedFeed()) {
		t.Error("Expected no update for an identical record")
	}
}

func TestFeedChanged_CategoriesOrderMatters(t *testing.T) {
	stored := storedFeed()
	stored.Categories = []string{"a", "b"}

	incoming := differingFeed()
	incoming.Categories = []string{"a", "b"}

	// Same serialized category set, so the conjunction fails.
	if FeedChanged(stored, incoming) {
		t.Error("Expected no update when categories serialize identically")
	}

	incoming.Categories = []string{"b", "a"}
	if !FeedChanged(stored, incoming) {
		t.Error("Expected update when category order differs")
	}
}

func TestAnyFeedFieldChanged_SingleField(t *testing.T) {
	incoming := storedFeed()
	incoming.Title = "New Title"

	if !AnyFeedFieldChanged(storedFeed(), incoming) {
		t.Error("Expected change for a single differing field")
	}
	if AnyFeedFieldChanged(storedFeed(), storedFeed()) {
		t.Error("Expected no change for identical records")
	}
}

func storedArticle() database.Article {
	return database.Article{
		FeedURL:     "https://example.com/rss",
		GUID:        "item-1",
		Title:       "Old Title",
		Description: "Old Description",
		Link:        "https://example.com/item1",
		Author:      "old@example.com",
		Comments:    "https://example.com/item1#comments",
		ImageTitle:  "Old Image",
		ImageURL:    "https://example.com/old.png",
		Categories:  []string{"tech"},
		SourceTitle: "Old Source",
		SourceURL:   "https://source.example.com/rss",
		Enclosures:  []database.Enclosure{{URL: "https://example.com/a.mp3", Type: "audio/mpeg", Length: 100}},
	}
}

func differingArticle() database.Article {
	return database.Article{
		FeedURL:     "https://example.com/rss",
		GUID:        "item-2",
		Title:       "New Title",
		Description: "New Description",
		Link:        "https://example.com/item2",
		Author:      "new@example.com",
		Comments:    "https://example.com/item2#comments",
		ImageTitle:  "New Image",
		ImageURL:    "https://example.com/new.png",
		Categories:  []string{"news"},
		SourceTitle: "New Source",
		SourceURL:   "https://source.example.org/rss",
		Enclosures:  []database.Enclosure{{URL: "https://example.com/b.mp3", Type: "audio/ogg", Length: 200}},
	}
}

func TestArticleChanged_AllFieldsDiffer(t *testing.T) {
	if !ArticleChanged(storedArticle(), differingArticle()) {
		t.Error("Expected update when every compared field differs")
	}
}

func TestArticleChanged_OneFieldUnchanged(t *testing.T) {
	incoming := differingArticle()
	incoming.Link = storedArticle().Link

	if ArticleChanged(storedArticle(), incoming) {
		t.Error("Expected no update when a single field still matches")
	}
}

func TestArticleChanged_EnclosureLengthOnly(t *testing.T) {
	incoming := storedArticle()
	incoming.Enclosures = []database.Enclosure{{URL: "https://example.com/a.mp3", Type: "audio/mpeg", Length: 999}}

	// Only the enclosure key differs; the conjunction fails on everything else.
	if ArticleChanged(storedArticle(), incoming) {
		t.Error("Expected no update for an enclosure-only difference")
	}
	if !AnyArticleFieldChanged(storedArticle(), incoming) {
		t.Error("Expected the disjunctive variant to see the enclosure difference")
	}
}

func TestAnyArticleFieldChanged_Identical(t *testing.T) {
	if AnyArticleFieldChanged(storedArticle(), storedArticle()) {
		t.Error("Expected no change for identical records")
	}
}
