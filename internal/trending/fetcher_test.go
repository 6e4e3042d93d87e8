package trending

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func feedItem(title, traffic, snippet string) string {
	block := "<item>\n<title>" + title + "</title>\n"
	if traffic != "" {
		block += "<ht:approx_traffic>" + traffic + "</ht:approx_traffic>\n"
	}
	if snippet != "" {
		block += "<ht:news_item_snippet>" + snippet + "</ht:news_item_snippet>\n"
	}
	return block + "</item>\n"
}

func TestParseFeedExtractsFields(t *testing.T) {
	feed := `<rss><channel><title>Daily Search Trends</title>
<item>
<title>Solar Eclipse &amp; Aurora</title>
<ht:approx_traffic>500K+</ht:approx_traffic>
<ht:picture>https://example.com/p.png</ht:picture>
<ht:picture_source>Example &quot;News&quot;</ht:picture_source>
<ht:news_item_title>Eclipse stuns viewers</ht:news_item_title>
<ht:news_item_snippet>Skywatchers saw a rare &lt;total&gt; eclipse.</ht:news_item_snippet>
<ht:news_item_url>https://example.com/a</ht:news_item_url>
</item>
</channel></rss>`

	topics := parseFeed(feed)
	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(topics))
	}
	topic := topics[0]
	if topic.Title != "Solar Eclipse & Aurora" {
		t.Fatalf("unexpected title: %q", topic.Title)
	}
	if topic.Traffic != "500K+" {
		t.Fatalf("unexpected traffic: %q", topic.Traffic)
	}
	if topic.Picture != "https://example.com/p.png" {
		t.Fatalf("unexpected picture: %q", topic.Picture)
	}
	if topic.PictureSource != `Example "News"` {
		t.Fatalf("unexpected picture source: %q", topic.PictureSource)
	}
	if topic.NewsTitle != "Eclipse stuns viewers" {
		t.Fatalf("unexpected news title: %q", topic.NewsTitle)
	}
	if topic.Description != "Skywatchers saw a rare <total> eclipse." {
		t.Fatalf("unexpected description: %q", topic.Description)
	}
	if topic.NewsURL != "https://example.com/a" {
		t.Fatalf("unexpected news url: %q", topic.NewsURL)
	}
}

func TestParseFeedCapsAtEightItems(t *testing.T) {
	var feed strings.Builder
	feed.WriteString("<rss><channel>")
	for i := 0; i < 12; i++ {
		feed.WriteString(feedItem(fmt.Sprintf("Topic %d", i), "10K+", ""))
	}
	feed.WriteString("</channel></rss>")

	topics := parseFeed(feed.String())
	if len(topics) != 8 {
		t.Fatalf("expected 8 topics, got %d", len(topics))
	}
	if topics[0].Title != "Topic 0" || topics[7].Title != "Topic 7" {
		t.Fatalf("unexpected ordering: first %q last %q", topics[0].Title, topics[7].Title)
	}
}

func TestParseFeedReturnsFewerThanEight(t *testing.T) {
	feed := "<rss>" + feedItem("One", "", "") + feedItem("Two", "", "") + "</rss>"
	topics := parseFeed(feed)
	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(topics))
	}
}

func TestParseFeedSkipsBlocksWithoutTitle(t *testing.T) {
	feed := "<rss>" +
		"<item>\n<ht:approx_traffic>20K+</ht:approx_traffic>\n</item>\n" +
		feedItem("Kept", "", "") +
		"</rss>"
	topics := parseFeed(feed)
	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(topics))
	}
	if topics[0].Title != "Kept" {
		t.Fatalf("unexpected topic: %q", topics[0].Title)
	}
}

func TestParseFeedMalformedFragmentsDegradeToEmpty(t *testing.T) {
	feed := "<rss><item>\n" +
		"<title>Broken</title>\n" +
		"<ht:approx_traffic>100K+\n" + // missing closing tag
		"<ht:news_item_snippet></ht:news_item_snippet>\n" + // empty snippet must not match
		"</item></rss>"

	topics := parseFeed(feed)
	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(topics))
	}
	if topics[0].Traffic != "" {
		t.Fatalf("expected empty traffic, got %q", topics[0].Traffic)
	}
	if topics[0].Description != "" {
		t.Fatalf("expected empty description, got %q", topics[0].Description)
	}
}

func TestParseFeedNewsTitleDefaultsToTopicTitle(t *testing.T) {
	feed := "<rss>" + feedItem("Fallback Title", "", "") + "</rss>"
	topics := parseFeed(feed)
	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(topics))
	}
	if topics[0].NewsTitle != "Fallback Title" {
		t.Fatalf("expected news title fallback, got %q", topics[0].NewsTitle)
	}
}

func TestTrendingAlwaysProducesDescriptions(t *testing.T) {
	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<rss>"+feedItem("Quiet Topic", "50K+", "")+"</rss>")
	}))
	defer feedServer.Close()

	fetcher, err := NewFetcher(FetcherConfig{FeedURL: feedServer.URL})
	if err != nil {
		t.Fatalf("unexpected fetcher error: %v", err)
	}

	topics, err := fetcher.Trending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(topics))
	}
	expected := "Quiet Topic is currently trending with 50K+ searches. Click to learn more and create content about this topic."
	if topics[0].Description != expected {
		t.Fatalf("unexpected fallback description: %q", topics[0].Description)
	}
}

func TestTrendingReportsEmptyFeedAsNoTopics(t *testing.T) {
	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<rss><channel><title>empty</title></channel></rss>")
	}))
	defer feedServer.Close()

	fetcher, err := NewFetcher(FetcherConfig{FeedURL: feedServer.URL})
	if err != nil {
		t.Fatalf("unexpected fetcher error: %v", err)
	}

	if _, err := fetcher.Trending(context.Background()); err != ErrNoTopics {
		t.Fatalf("expected ErrNoTopics, got %v", err)
	}
}

func TestTrendingReportsUpstreamFailure(t *testing.T) {
	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer feedServer.Close()

	fetcher, err := NewFetcher(FetcherConfig{FeedURL: feedServer.URL})
	if err != nil {
		t.Fatalf("unexpected fetcher error: %v", err)
	}

	_, err = fetcher.Trending(context.Background())
	if err == nil || !strings.Contains(err.Error(), "feed fetch failed") {
		t.Fatalf("expected feed failure, got %v", err)
	}
}

func TestTrendingCachesWithinRevalidationWindow(t *testing.T) {
	fetchCount := 0
	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetchCount++
		fmt.Fprint(w, "<rss>"+feedItem("Cached Topic", "10K+", "Snippet text.")+"</rss>")
	}))
	defer feedServer.Close()

	now := time.Unix(1700000000, 0)
	fetcher, err := NewFetcher(FetcherConfig{
		FeedURL:    feedServer.URL,
		Revalidate: 600 * time.Second,
		Clock:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("unexpected fetcher error: %v", err)
	}

	if _, err := fetcher.Trending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fetcher.Trending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetchCount != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", fetchCount)
	}

	now = now.Add(601 * time.Second)
	if _, err := fetcher.Trending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetchCount != 2 {
		t.Fatalf("expected refetch after window, got %d fetches", fetchCount)
	}
}
