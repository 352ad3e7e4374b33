package database

import (
	"time"
)

type FeedRepository interface {
	GetFeed(id string) (*Feed, error)
	GetFeedByURL(feedURL string) (*Feed, error)
	GetFeedsDueForRefresh(staleAfter time.Duration) ([]Feed, error)
	GetFeedCount() (int, error)

	UpsertFeed(categoryID, feedURL, feedName, image string, extractContent bool) (string, error)
	UpdateFetchState(id string, lastModified, etag string, lastReadAt time.Time) error
}

type CategoryRepository interface {
	GetCategory(id string) (*Category, error)
	GetCategoryByTitle(title string) (*Category, error)

	UpsertCategory(title, image string) (string, error)
}

type ArticleRepository interface {
	GetArticlesByFeed(feedID string, limit int) ([]Article, error)
	GetArticleByArticleID(articleID string) (*Article, error)
	GetArticleCount(feedID string) (int, error)

	UpsertArticle(feedID, categoryID, articleID string, content []byte, articleDate time.Time) error

	GetArticlesForExtraction(feedID string, limit int) ([]ArticleForExtraction, error)
	UpdateExtractedContent(id string, content string, extractedAt time.Time) error
}

type AdvertisementRepository interface {
	GetActiveAdvertisements(day time.Time) ([]Advertisement, error)
	GetAdvertisement(id string) (*Advertisement, error)

	IncrementViews(id string) error
}

type UserRepository interface {
	GetUser(id string) (*User, error)
}

type InteractionRepository interface {
	IsBookmarked(userID, articleID string) (bool, error)
	IsFollowed(userID, feedID string) (bool, error)
	IsViewed(userID, articleID string) (bool, error)

	AddFavoriteFeed(userID, feedID, feedTitle, categoryID string) error
	DeleteFavoriteFeeds(userID string, feedIDs []string) error
	DeleteFavoriteFeedsByCategory(userID string, categoryIDs []string) error
	GetFavoriteFeeds(userID string) ([]FavoriteFeed, error)

	AddBookmark(bookmark BookmarkedArticle) error
	GetBookmarks(userID string) ([]BookmarkedArticle, error)
	DeleteBookmark(userID, articleID string) error

	MarkViewed(userID string, articleIDs []string) error
	GetPopularArticles(since, until time.Time, offset, limit int) ([]ArticleClicks, error)
}
