package feed

import (
	"fmt"
	"strings"

	"github.com/ogrodnik/feedsync/app/database"
)

// FeedPredicate decides whether a stored feed should be overwritten with the
// incoming record. ArticlePredicate does the same for articles. Both are
// injectable fields on the Syncer so the policy can be swapped without
// touching call sites.
type FeedPredicate func(stored, incoming database.Feed) bool

type ArticlePredicate func(stored, incoming database.Article) bool

// FeedChanged is the default feed predicate. It is deliberately conjunctive:
// an update fires only when every compared field differs at once, so a
// single-field change leaves the stored record untouched. This mirrors the
// long-standing reconciliation behavior; AnyFeedFieldChanged is the corrected
// variant should the policy ever be revisited.
func FeedChanged(stored, incoming database.Feed) bool {
	return stored.Title != incoming.Title &&
		stored.Description != incoming.Description &&
		stored.Link != incoming.Link &&
		stored.SourceURL != incoming.SourceURL &&
		stored.Author != incoming.Author &&
		stored.Language != incoming.Language &&
		stored.ImageTitle != incoming.ImageTitle &&
		stored.ImageURL != incoming.ImageURL &&
		stored.Favicon != incoming.Favicon &&
		stored.Copyright != incoming.Copyright &&
		stored.Generator != incoming.Generator &&
		categoriesKey(stored.Categories) != categoriesKey(incoming.Categories) &&
		stored.LastModified != incoming.LastModified
}

// AnyFeedFieldChanged reports whether at least one compared field differs.
func AnyFeedFieldChanged(stored, incoming database.Feed) bool {
	return stored.Title != incoming.Title ||
		stored.Description != incoming.Description ||
		stored.Link != incoming.Link ||
		stored.SourceURL != incoming.SourceURL ||
		stored.Author != incoming.Author ||
		stored.Language != incoming.Language ||
		stored.ImageTitle != incoming.ImageTitle ||
		stored.ImageURL != incoming.ImageURL ||
		stored.Favicon != incoming.Favicon ||
		stored.Copyright != incoming.Copyright ||
		stored.Generator != incoming.Generator ||
		categoriesKey(stored.Categories) != categoriesKey(incoming.Categories) ||
		stored.LastModified != incoming.LastModified
}

// ArticleChanged is the default article predicate, conjunctive like
// FeedChanged: all compared fields must differ for the overwrite to happen.
func ArticleChanged(stored, incoming database.Article) bool {
	return stored.Title != incoming.Title &&
		stored.Description != incoming.Description &&
		stored.Link != incoming.Link &&
		stored.Author != incoming.Author &&
		stored.GUID != incoming.GUID &&
		stored.Comments != incoming.Comments &&
		stored.ImageTitle != incoming.ImageTitle &&
		stored.ImageURL != incoming.ImageURL &&
		categoriesKey(stored.Categories) != categoriesKey(incoming.Categories) &&
		stored.SourceTitle != incoming.SourceTitle &&
		stored.SourceURL != incoming.SourceURL &&
		enclosuresKey(stored.Enclosures) != enclosuresKey(incoming.Enclosures)
}

// AnyArticleFieldChanged reports whether at least one compared field differs.
func AnyArticleFieldChanged(stored, incoming database.Article) bool {
	return stored.Title != incoming.Title ||
		stored.Description != incoming.Description ||
		stored.Link != incoming.Link ||
		stored.Author != incoming.Author ||
		stored.GUID != incoming.GUID ||
		stored.Comments != incoming.Comments ||
		stored.ImageTitle != incoming.ImageTitle ||
		stored.ImageURL != incoming.ImageURL ||
		categoriesKey(stored.Categories) != categoriesKey(incoming.Categories) ||
		stored.SourceTitle != incoming.SourceTitle ||
		stored.SourceURL != incoming.SourceURL ||
		enclosuresKey(stored.Enclosures) != enclosuresKey(incoming.Enclosures)
}

// categoriesKey serializes a category set; comparison is over the serialized
// form, so order matters.
func categoriesKey(categories []string) string {
	return strings.Join(categories, ",")
}

func enclosuresKey(enclosures []database.Enclosure) string {
	parts := make([]string, 0, len(enclosures))
	for _, e := range enclosures {
		parts = append(parts, fmt.Sprintf("%s|%s|%d", e.URL, e.Type, e.Length))
	}
	return strings.Join(parts, ";")
}
