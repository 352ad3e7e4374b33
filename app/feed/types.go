package feed

import (
	"time"
)

// Article is the canonical normalized representation of a feed item. It is
// the payload cached per article and returned to callers, so both the fresh
// parse path and the cache-hit path produce the same shape.
type Article struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Date          string  `json:"date"` // Human-formatted publish date
	Description   string  `json:"description"`
	Content       string  `json:"content"`
	URL           string  `json:"url"`
	FeedID        string  `json:"feed_id"`
	FeedTitle     string  `json:"feed_title"`
	CategoryTitle string  `json:"category_title"`
	Image         *string `json:"image"`

	// PublishedAt is the cache ordering key; it is persisted in its own
	// column, not inside the JSON payload.
	PublishedAt time.Time `json:"-"`
}

// Source carries the owning feed fields denormalized into every article
// at fetch time.
type Source struct {
	FeedID        string
	FeedTitle     string
	CategoryTitle string
}

// Conditional holds the validators sent with a conditional fetch.
type Conditional struct {
	LastModified string
	ETag         string
}

// FetchResult is the outcome of a successful HTTP exchange: either the
// source confirmed the cached copy is current, or it returned new content
// with fresh validators.
type FetchResult struct {
	NotModified  bool
	Body         []byte
	LastModified string
	ETag         string
	ResolvedURL  string
}

// Seed declares a category and feed pair registered at startup.
type Seed struct {
	Category SeedCategory `yaml:"category"`
	Feed     SeedFeed     `yaml:"feed"`
	Settings SeedSettings `yaml:"settings"`
}

type SeedCategory struct {
	Title string `yaml:"title"`
	Image string `yaml:"image"`
}

type SeedFeed struct {
	URL   string `yaml:"url"`
	Name  string `yaml:"name"`
	Image string `yaml:"image"`
}

type SeedSettings struct {
	ExtractContent bool `yaml:"extract_content"`
}
