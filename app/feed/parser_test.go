package feed

import (
	"testing"
)

func collectEvents(t *testing.T, stream *Stream) (*Metadata, []*Article) {
	t.Helper()

	var metadata *Metadata
	var articles []*Article

	for {
		event := stream.Next()
		switch event.Type {
		case EventMetadata:
			if metadata != nil {
				t.Fatal("Expected a single metadata event")
			}
			metadata = event.Metadata
		case EventArticle:
			if metadata == nil {
				t.Fatal("Expected metadata before the first article")
			}
			articles = append(articles, event.Article)
		case EventError:
			t.Fatalf("Expected no error event, got: %v", event.Err)
		case EventEnd:
			return metadata, articles
		}
	}
}

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <atom:link href="https://example.com/rss" rel="self" type="application/rss+xml"/>
    <description>Test Description</description>
    <language>en-us</language>
    <copyright>Copyright 2024</copyright>
    <generator>TestGen</generator>
    <image>
      <url>https://example.com/icon.png</url>
      <title>Test Feed</title>
      <link>https://example.com</link>
    </image>
    <item>
      <title>Test Item 1</title>
      <link>https://example.com/item1</link>
      <description>Test Item 1 Description</description>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <author>test@example.com (Test Author)</author>
      <category>Technology</category>
      <category>Programming</category>
      <enclosure url="https://example.com/ep1.mp3" type="audio/mpeg" length="12345"/>
    </item>
    <item>
      <title>Test Item 2</title>
      <link>https://example.com/item2</link>
      <description>Test Item 2 Description</description>
      <guid>item-2</guid>
      <pubDate>Mon, 03 Jul 2023 11:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	metadata, articles := collectEvents(t, parser.Run([]byte(rssData)))

	if metadata.Title != "Test Feed" {
		t.Errorf("Expected title 'Test Feed', got: %s", metadata.Title)
	}
	if metadata.Link != "https://example.com" {
		t.Errorf("Expected link 'https://example.com', got: %s", metadata.Link)
	}
	if metadata.FeedLink != "https://example.com/rss" {
		t.Errorf("Expected feed link 'https://example.com/rss', got: %s", metadata.FeedLink)
	}
	if metadata.Language != "en-us" {
		t.Errorf("Expected language 'en-us', got: %s", metadata.Language)
	}
	if metadata.Copyright != "Copyright 2024" {
		t.Errorf("Expected copyright 'Copyright 2024', got: %s", metadata.Copyright)
	}
	if metadata.ImageURL != "https://example.com/icon.png" {
		t.Errorf("Expected image URL 'https://example.com/icon.png', got: %s", metadata.ImageURL)
	}
	if metadata.Favicon != "https://example.com/favicon.ico" {
		t.Errorf("Expected derived favicon, got: %s", metadata.Favicon)
	}

	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got: %d", len(articles))
	}

	article1 := articles[0]
	if article1.GUID != "item-1" {
		t.Errorf("Expected GUID 'item-1', got: %s", article1.GUID)
	}
	if article1.Title != "Test Item 1" {
		t.Errorf("Expected title 'Test Item 1', got: %s", article1.Title)
	}
	if len(article1.Categories) != 2 {
		t.Errorf("Expected 2 categories, got: %d", len(article1.Categories))
	}
	if article1.PublishedAt == nil {
		t.Error("Expected publication time to be parsed")
	}
	if len(article1.Enclosures) != 1 {
		t.Fatalf("Expected 1 enclosure, got: %d", len(article1.Enclosures))
	}
	if article1.Enclosures[0].URL != "https://example.com/ep1.mp3" {
		t.Errorf("Expected enclosure URL, got: %s", article1.Enclosures[0].URL)
	}
	if article1.Enclosures[0].Length != 12345 {
		t.Errorf("Expected enclosure length 12345, got: %d", article1.Enclosures[0].Length)
	}

	if articles[1].GUID != "item-2" {
		t.Errorf("Expected document order preserved, got second GUID: %s", articles[1].GUID)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <updated>2023-07-03T12:00:00Z</updated>
  <author>
    <name>Test Author</name>
  </author>
  <id>urn:uuid:1234567890</id>
  <entry>
    <title>Test Entry</title>
    <link href="https://example.com/entry1"/>
    <id>urn:uuid:entry-1</id>
    <updated>2023-07-03T10:00:00Z</updated>
    <content type="html">Test content</content>
  </entry>
</feed>`

	parser := NewParser()
	metadata, articles := collectEvents(t, parser.Run([]byte(atomData)))

	if metadata.Title != "Test Atom Feed" {
		t.Errorf("Expected title 'Test Atom Feed', got: %s", metadata.Title)
	}
	if metadata.Author != "Test Author" {
		t.Errorf("Expected author 'Test Author', got: %s", metadata.Author)
	}
	if metadata.UpdatedAt == nil {
		t.Error("Expected updated time to be parsed")
	}

	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got: %d", len(articles))
	}
	if articles[0].GUID != "urn:uuid:entry-1" {
		t.Errorf("Expected GUID 'urn:uuid:entry-1', got: %s", articles[0].GUID)
	}
	if articles[0].UpdatedAt == nil {
		t.Error("Expected entry updated time to be parsed")
	}
}

func TestParseGUIDFallsBackToLink(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test</description>
    <item>
      <title>No GUID Item</title>
      <link>https://example.com/no-guid</link>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	_, articles := collectEvents(t, parser.Run([]byte(rssData)))

	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got: %d", len(articles))
	}
	if articles[0].GUID != "https://example.com/no-guid" {
		t.Errorf("Expected GUID to fall back to link, got: %s", articles[0].GUID)
	}
}

func TestParseCommentsAndSource(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test</description>
    <item>
      <title>Attributed Item</title>
      <link>https://example.com/item1</link>
      <guid>item-1</guid>
      <comments>https://example.com/item1#comments</comments>
      <source url="https://source.example.com/rss">Source Title</source>
    </item>
    <item>
      <title>Plain Item</title>
      <link>https://example.com/item2</link>
      <guid>item-2</guid>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	_, articles := collectEvents(t, parser.Run([]byte(rssData)))

	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got: %d", len(articles))
	}

	article1 := articles[0]
	if article1.Comments != "https://example.com/item1#comments" {
		t.Errorf("Expected comments URL, got: %q", article1.Comments)
	}
	if article1.SourceTitle != "Source Title" {
		t.Errorf("Expected source title 'Source Title', got: %q", article1.SourceTitle)
	}
	if article1.SourceURL != "https://source.example.com/rss" {
		t.Errorf("Expected source URL, got: %q", article1.SourceURL)
	}

	article2 := articles[1]
	if article2.Comments != "" || article2.SourceTitle != "" || article2.SourceURL != "" {
		t.Errorf("Expected empty attribution on plain item, got: %q %q %q",
			article2.Comments, article2.SourceTitle, article2.SourceURL)
	}
}

func TestParseFeedburnerOrigLink(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:feedburner="http://rssnamespace.org/feedburner/ext/1.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test</description>
    <item>
      <title>Rewritten Item</title>
      <link>https://feedproxy.example.com/item1</link>
      <guid>item-1</guid>
      <feedburner:origLink>https://example.com/item1</feedburner:origLink>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	_, articles := collectEvents(t, parser.Run([]byte(rssData)))

	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got: %d", len(articles))
	}
	if articles[0].Link != "https://feedproxy.example.com/item1" {
		t.Errorf("Expected rewritten link to be kept, got: %s", articles[0].Link)
	}
	if articles[0].OrigLink != "https://example.com/item1" {
		t.Errorf("Expected canonical link from the extension, got: %q", articles[0].OrigLink)
	}
}

func TestParseMalformedDocument(t *testing.T) {
	parser := NewParser()
	stream := parser.Run([]byte("this is not a feed document"))

	event := stream.Next()
	if event.Type != EventError {
		t.Fatalf("Expected an error event, got type: %d", event.Type)
	}
	if event.Err == nil {
		t.Error("Expected error event to carry an error")
	}

	// An abandoned or exhausted stream keeps returning the end marker.
	if next := stream.Next(); next.Type != EventEnd {
		t.Errorf("Expected end event after the error, got type: %d", next.Type)
	}
}

func TestStreamEndIsSticky(t *testing.T) {
	parser := NewParser()
	stream := parser.Run([]byte(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title><link>https://example.com</link><description>D</description></channel></rss>`))

	for i := 0; i < 2; i++ {
		stream.Next()
	}
	for i := 0; i < 3; i++ {
		if event := stream.Next(); event.Type != EventEnd {
			t.Fatalf("Expected exhausted stream to return end events, got type: %d", event.Type)
		}
	}
}

func TestFaviconURL(t *testing.T) {
	cases := []struct {
		link     string
		expected string
	}{
		{"https://example.com/blog/", "https://example.com/favicon.ico"},
		{"http://example.org", "http://example.org/favicon.ico"},
		{"not a url", ""},
		{"", ""},
	}

	for _, c := range cases {
		if got := faviconURL(c.link); got != c.expected {
			t.Errorf("faviconURL(%q): expected %q, got %q", c.link, c.expected, got)
		}
	}
}
