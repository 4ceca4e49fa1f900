package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
)

// EventType tags one event in a parse stream.
type EventType int

const (
	EventMetadata EventType = iota
	EventArticle
	EventEnd
	EventError
)

// Event is one typed item in the sequence a parsed document yields:
// one metadata event, zero or more article events in document order, then an
// end event, or a single error event when the document does not parse.
type Event struct {
	Type     EventType
	Metadata *Metadata
	Article  *Article
	Err      error
}

// Stream yields parse events one at a time. The consumer drives it with Next
// until EventEnd or EventError and may abandon it at any point.
type Stream struct {
	events []Event
	pos    int
}

func (s *Stream) Next() Event {
	if s.pos >= len(s.events) {
		return Event{Type: EventEnd}
	}
	ev := s.events[s.pos]
	s.pos++
	return ev
}

// Parser turns normalized feed payloads into event streams.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	gofeedParser := gofeed.NewParser()
	gofeedParser.RSSTranslator = newRSSTranslator()
	return &Parser{
		gofeedParser: gofeedParser,
	}
}

// rssTranslator wraps the default RSS translation to carry rss <comments> and
// <source> across; the universal model has no fields for them and the default
// translator drops them.
type rssTranslator struct {
	defaultTranslator *gofeed.DefaultRSSTranslator
}

func newRSSTranslator() *rssTranslator {
	return &rssTranslator{defaultTranslator: &gofeed.DefaultRSSTranslator{}}
}

func (t *rssTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	rssFeed, ok := feed.(*rss.Feed)
	if !ok {
		return nil, fmt.Errorf("feed did not match expected type of *rss.Feed")
	}

	translated, err := t.defaultTranslator.Translate(rssFeed)
	if err != nil {
		return nil, err
	}

	// Item translation is one-to-one and order-preserving.
	for i, rssItem := range rssFeed.Items {
		if i >= len(translated.Items) || rssItem == nil {
			break
		}
		item := translated.Items[i]
		if rssItem.Comments == "" && rssItem.Source == nil {
			continue
		}
		if item.Custom == nil {
			item.Custom = make(map[string]string)
		}
		if rssItem.Comments != "" {
			item.Custom["comments"] = rssItem.Comments
		}
		if rssItem.Source != nil {
			item.Custom["source"] = rssItem.Source.Title
			item.Custom["sourceUrl"] = rssItem.Source.URL
		}
	}

	return translated, nil
}

// Run hands the payload to the grammar parser as a one-shot byte stream and
// returns the resulting event sequence.
func (p *Parser) Run(data []byte) *Stream {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return &Stream{events: []Event{
			{Type: EventError, Err: fmt.Errorf("failed to parse feed: %w", err)},
		}}
	}

	events := make([]Event, 0, len(parsed.Items)+2)
	events = append(events, Event{Type: EventMetadata, Metadata: p.normalizeMetadata(parsed)})
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		article := p.normalizeItem(item)
		events = append(events, Event{Type: EventArticle, Article: &article})
	}
	events = append(events, Event{Type: EventEnd})

	return &Stream{events: events}
}

func (p *Parser) normalizeMetadata(parsed *gofeed.Feed) *Metadata {
	metadata := &Metadata{
		Title:       parsed.Title,
		Description: parsed.Description,
		Link:        parsed.Link,
		FeedLink:    parsed.FeedLink,
		Language:    parsed.Language,
		Copyright:   parsed.Copyright,
		Generator:   parsed.Generator,
		Favicon:     faviconURL(parsed.Link),
	}

	if parsed.PublishedParsed != nil {
		metadata.PublishedAt = parsed.PublishedParsed
	}
	if parsed.UpdatedParsed != nil {
		metadata.UpdatedAt = parsed.UpdatedParsed
	}
	if parsed.Image != nil {
		metadata.ImageTitle = parsed.Image.Title
		metadata.ImageURL = parsed.Image.URL
	}
	if parsed.Categories != nil {
		metadata.Categories = parsed.Categories
	}

	metadata.Author = firstAuthor(parsed.Authors, parsed.Author)

	return metadata
}

func (p *Parser) normalizeItem(item *gofeed.Item) Article {
	article := Article{
		GUID:        cmp.Or(item.GUID, item.Link),
		Title:       item.Title,
		Description: item.Description,
		Link:        item.Link,
	}

	if item.PublishedParsed != nil {
		article.PublishedAt = item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		article.UpdatedAt = item.UpdatedParsed
	}
	if item.Image != nil {
		article.ImageTitle = item.Image.Title
		article.ImageURL = item.Image.URL
	}
	if item.Categories != nil {
		article.Categories = item.Categories
	}

	article.Author = firstAuthor(item.Authors, item.Author)

	// Aggregators like FeedBurner keep the canonical link in an extension.
	if origs := item.Extensions["feedburner"]["origLink"]; len(origs) > 0 {
		article.OrigLink = origs[0].Value
	}

	// gofeed's universal model does not map rss <comments> and <source>;
	// rssTranslator surfaces them as custom elements.
	article.Comments = item.Custom["comments"]
	article.SourceTitle = item.Custom["source"]
	article.SourceURL = item.Custom["sourceUrl"]

	for _, enclosure := range item.Enclosures {
		if enclosure == nil || enclosure.URL == "" {
			continue
		}
		normalized := Enclosure{
			URL:  enclosure.URL,
			Type: enclosure.Type,
		}
		if enclosure.Length != "" {
			if length, err := strconv.ParseInt(enclosure.Length, 10, 64); err == nil {
				normalized.Length = length
			}
		}
		article.Enclosures = append(article.Enclosures, normalized)
	}

	return article
}

func firstAuthor(authors []*gofeed.Person, author *gofeed.Person) string {
	if author == nil && len(authors) > 0 {
		author = authors[0]
	}
	if author == nil {
		return ""
	}

	name := strings.TrimSpace(author.Name)
	email := strings.TrimSpace(author.Email)

	switch {
	case name != "" && email != "":
		return fmt.Sprintf("%s (%s)", email, name)
	case name != "":
		return name
	default:
		return email
	}
}

// faviconURL derives the conventional favicon location from the feed's
// homepage link. Empty when the link does not parse as an absolute URL.
func faviconURL(link string) string {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s://%s/favicon.ico", parsed.Scheme, parsed.Host)
}
