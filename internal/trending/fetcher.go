package trending

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const maxTopics = 8

var (
	// ErrFeedUnavailable indicates the upstream feed fetch failed.
	ErrFeedUnavailable = errors.New("trending: feed fetch failed")
	// ErrNoTopics indicates the feed parsed to zero topics.
	ErrNoTopics = errors.New("trending: no topics found")

	errMissingFeedURL = errors.New("feed url is required")
	noOpLogger        = zap.NewNop()
)

// Topic is one trending subject extracted from the feed. Description is
// always non-empty after a successful fetch.
type Topic struct {
	Title         string `json:"title"`
	Traffic       string `json:"traffic"`
	Picture       string `json:"picture"`
	PictureSource string `json:"pictureSource"`
	NewsTitle     string `json:"newsTitle"`
	Description   string `json:"description"`
	NewsURL       string `json:"newsUrl"`
}

// FetcherConfig describes the dependencies of the trending topic fetcher.
type FetcherConfig struct {
	FeedURL    string
	Revalidate time.Duration
	HTTPClient *http.Client
	Backfiller *Backfiller
	Clock      func() time.Time
	Logger     *zap.Logger
}

// Fetcher retrieves the trending feed and produces up to 8 topics, caching a
// successful result for the revalidation window.
type Fetcher struct {
	feedURL    string
	revalidate time.Duration
	httpClient *http.Client
	backfiller *Backfiller
	clock      func() time.Time
	logger     *zap.Logger

	mu        sync.Mutex
	cached    []Topic
	fetchedAt time.Time
}

// NewFetcher constructs the fetcher.
func NewFetcher(cfg FetcherConfig) (*Fetcher, error) {
	if strings.TrimSpace(cfg.FeedURL) == "" {
		return nil, fmt.Errorf("trending: %w", errMissingFeedURL)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Fetcher{
		feedURL:    cfg.FeedURL,
		revalidate: cfg.Revalidate,
		httpClient: httpClient,
		backfiller: cfg.Backfiller,
		clock:      clock,
		logger:     logger,
	}, nil
}

// Trending returns the current trending topics, each with a non-empty description.
func (f *Fetcher) Trending(ctx context.Context) ([]Topic, error) {
	if cached := f.fromCache(); cached != nil {
		return cached, nil
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, f.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	response, err := f.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %s", ErrFeedUnavailable, response.Status)
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	topics := parseFeed(string(body))
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}

	if f.backfiller != nil {
		f.backfiller.FillDescriptions(ctx, topics)
	}
	applyFallbackDescriptions(topics)

	f.store(topics)
	return topics, nil
}

func (f *Fetcher) fromCache() []Topic {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cached == nil || f.revalidate <= 0 {
		return nil
	}
	if f.clock().Sub(f.fetchedAt) >= f.revalidate {
		return nil
	}
	out := make([]Topic, len(f.cached))
	copy(out, f.cached)
	return out
}

func (f *Fetcher) store(topics []Topic) {
	if f.revalidate <= 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cached = make([]Topic, len(topics))
	copy(f.cached, topics)
	f.fetchedAt = f.clock()
}

var (
	titlePattern         = regexp.MustCompile(`<title>([^<]*)</title>`)
	trafficPattern       = regexp.MustCompile(`<ht:approx_traffic>([^<]*)</ht:approx_traffic>`)
	picturePattern       = regexp.MustCompile(`<ht:picture>([^<]*)</ht:picture>`)
	pictureSourcePattern = regexp.MustCompile(`<ht:picture_source>([^<]*)</ht:picture_source>`)
	newsTitlePattern     = regexp.MustCompile(`<ht:news_item_title>([^<]*)</ht:news_item_title>`)
	newsSnippetPattern   = regexp.MustCompile(`<ht:news_item_snippet>([^<]+)</ht:news_item_snippet>`)
	newsURLPattern       = regexp.MustCompile(`<ht:news_item_url>([^<]*)</ht:news_item_url>`)
)

// parseFeed extracts topics from the raw feed text by locating <item> blocks
// and pattern-matching the sub-fields. Missing fields degrade to "" and a
// block without a title is skipped.
func parseFeed(feed string) []Topic {
	blocks := strings.Split(feed, "<item>")
	if len(blocks) < 2 {
		return nil
	}
	blocks = blocks[1:]
	if len(blocks) > maxTopics {
		blocks = blocks[:maxTopics]
	}

	topics := make([]Topic, 0, len(blocks))
	for _, block := range blocks {
		title := decodeEntities(firstMatch(titlePattern, block))
		if title == "" {
			continue
		}
		newsTitle := decodeEntities(firstMatch(newsTitlePattern, block))
		if newsTitle == "" {
			newsTitle = title
		}
		topics = append(topics, Topic{
			Title:         title,
			Traffic:       firstMatch(trafficPattern, block),
			Picture:       firstMatch(picturePattern, block),
			PictureSource: decodeEntities(firstMatch(pictureSourcePattern, block)),
			NewsTitle:     newsTitle,
			Description:   decodeEntities(firstMatch(newsSnippetPattern, block)),
			NewsURL:       firstMatch(newsURLPattern, block),
		})
	}
	return topics
}

func firstMatch(pattern *regexp.Regexp, block string) string {
	match := pattern.FindStringSubmatch(block)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// decodeEntities decodes the standard entity escapes, ampersand first.
func decodeEntities(value string) string {
	value = strings.ReplaceAll(value, "&amp;", "&")
	value = strings.ReplaceAll(value, "&lt;", "<")
	value = strings.ReplaceAll(value, "&gt;", ">")
	value = strings.ReplaceAll(value, "&apos;", "'")
	value = strings.ReplaceAll(value, "&quot;", `"`)
	return value
}

// applyFallbackDescriptions synthesizes a deterministic description for any
// topic still missing one, guaranteeing the non-empty description invariant.
func applyFallbackDescriptions(topics []Topic) {
	for i := range topics {
		if topics[i].Description != "" {
			continue
		}
		topics[i].Description = fmt.Sprintf(
			"%s is currently trending with %s searches. Click to learn more and create content about this topic.",
			topics[i].Title, topics[i].Traffic)
	}
}
