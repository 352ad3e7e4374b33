package database

import (
	"time"
)

type Category struct {
	ID        string
	Title     string
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Feed struct {
	ID             string // Database UUID
	CategoryID     string
	URL            string
	Name           string
	Image          string
	ExtractContent bool
	LastReadAt     *time.Time // Last successful fetch cycle, nil until the first one
	LastModified   string     // Last-Modified header from the most recent 200 response
	ETag           string     // ETag header from the most recent 200 response
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Article struct {
	ID          string
	FeedID      string
	CategoryID  string
	ArticleID   string // Stable identifier from the feed item (guid or link)
	Content     []byte // Normalized article payload, JSON
	ArticleDate time.Time
	ExtractedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Advertisement struct {
	ID            string
	Name          string
	Title         string
	Image         string
	URL           string
	CategoriesIDs string // Comma-separated category UUIDs, "0" means all categories
	FromDate      time.Time
	ToDate        *time.Time
	Priority      int
	DisplayOrder  int
	Views         int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type User struct {
	ID   string
	Paid bool
}

type FavoriteFeed struct {
	ID         string
	UserID     string
	FeedID     string
	FeedTitle  string
	CategoryID string
	CreatedAt  time.Time
}

type BookmarkedArticle struct {
	ID            string
	UserID        string
	FeedID        string
	ArticleID     string
	Title         string
	URL           string
	Description   string
	Content       string
	CategoryTitle string
	FeedTitle     string
	Image         string
	ArticleDate   time.Time
	CreatedAt     time.Time
}

// ArticleClicks is a row of the popularity ranking: an article identifier
// with its view count for the requested period.
type ArticleClicks struct {
	ArticleID string
	Clicks    int
}

type ArticleForExtraction struct {
	ID   string
	Link string
}
