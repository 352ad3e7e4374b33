package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// InteractionRepo handles per-user interaction state: favorite feeds,
// bookmarks, and article views.
type InteractionRepo struct {
	db *DB
}

var _ InteractionRepository = (*InteractionRepo)(nil)

func NewInteractionRepository(db *DB) *InteractionRepo {
	return &InteractionRepo{db: db}
}

func (r *InteractionRepo) exists(query string, args ...interface{}) (bool, error) {
	var found bool
	err := r.db.QueryRow(query, args...).Scan(&found)
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *InteractionRepo) IsBookmarked(userID, articleID string) (bool, error) {
	found, err := r.exists(`
		SELECT EXISTS (SELECT 1 FROM bookmarked_articles WHERE user_id = $1 AND article_id = $2)
	`, userID, articleID)
	if err != nil {
		return false, fmt.Errorf("failed to check bookmark: %w", err)
	}
	return found, nil
}

func (r *InteractionRepo) IsFollowed(userID, feedID string) (bool, error) {
	found, err := r.exists(`
		SELECT EXISTS (SELECT 1 FROM favorite_feeds WHERE user_id = $1 AND feed_id = $2)
	`, userID, feedID)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite feed: %w", err)
	}
	return found, nil
}

func (r *InteractionRepo) IsViewed(userID, articleID string) (bool, error) {
	found, err := r.exists(`
		SELECT EXISTS (SELECT 1 FROM article_views WHERE user_id = $1 AND article_id = $2)
	`, userID, articleID)
	if err != nil {
		return false, fmt.Errorf("failed to check article view: %w", err)
	}
	return found, nil
}

func (r *InteractionRepo) AddFavoriteFeed(userID, feedID, feedTitle, categoryID string) error {
	_, err := r.db.Exec(`
		INSERT INTO favorite_feeds (user_id, feed_id, feed_title, category_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, feed_id) DO UPDATE SET
			feed_title = EXCLUDED.feed_title,
			category_id = EXCLUDED.category_id
	`, userID, feedID, feedTitle, categoryID)

	if err != nil {
		return fmt.Errorf("failed to add favorite feed: %w", err)
	}

	return nil
}

func (r *InteractionRepo) DeleteFavoriteFeeds(userID string, feedIDs []string) error {
	if len(feedIDs) == 0 {
		return nil
	}

	_, err := r.db.Exec(`
		DELETE FROM favorite_feeds WHERE user_id = $1 AND feed_id = ANY($2)
	`, userID, pq.Array(feedIDs))

	if err != nil {
		return fmt.Errorf("failed to delete favorite feeds: %w", err)
	}

	return nil
}

func (r *InteractionRepo) DeleteFavoriteFeedsByCategory(userID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	_, err := r.db.Exec(`
		DELETE FROM favorite_feeds WHERE user_id = $1 AND category_id = ANY($2)
	`, userID, pq.Array(categoryIDs))

	if err != nil {
		return fmt.Errorf("failed to delete favorite feeds by category: %w", err)
	}

	return nil
}

func (r *InteractionRepo) GetFavoriteFeeds(userID string) ([]FavoriteFeed, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, feed_id, feed_title, category_id, created_at
		FROM favorite_feeds
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get favorite feeds: %w", err)
	}
	defer rows.Close()

	var feeds []FavoriteFeed
	for rows.Next() {
		var feed FavoriteFeed
		err := rows.Scan(&feed.ID, &feed.UserID, &feed.FeedID, &feed.FeedTitle,
			&feed.CategoryID, &feed.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite feed row: %w", err)
		}
		feeds = append(feeds, feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite feed rows: %w", err)
	}

	return feeds, nil
}

func (r *InteractionRepo) AddBookmark(bookmark BookmarkedArticle) error {
	_, err := r.db.Exec(`
		INSERT INTO bookmarked_articles (
			user_id, feed_id, article_id, title, url, description, content,
			category_title, feed_title, image, article_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, bookmark.UserID, bookmark.FeedID, bookmark.ArticleID, bookmark.Title,
		bookmark.URL, bookmark.Description, bookmark.Content,
		bookmark.CategoryTitle, bookmark.FeedTitle, bookmark.Image, bookmark.ArticleDate)

	if err != nil {
		return fmt.Errorf("failed to add bookmark: %w", err)
	}

	return nil
}

func (r *InteractionRepo) GetBookmarks(userID string) ([]BookmarkedArticle, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, feed_id, article_id, COALESCE(title, ''), COALESCE(url, ''),
		       COALESCE(description, ''), COALESCE(content, ''), COALESCE(category_title, ''),
		       COALESCE(feed_title, ''), COALESCE(image, ''), article_date, created_at
		FROM bookmarked_articles
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []BookmarkedArticle
	for rows.Next() {
		var b BookmarkedArticle
		err := rows.Scan(&b.ID, &b.UserID, &b.FeedID, &b.ArticleID, &b.Title, &b.URL,
			&b.Description, &b.Content, &b.CategoryTitle, &b.FeedTitle, &b.Image,
			&b.ArticleDate, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bookmark row: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookmark rows: %w", err)
	}

	return bookmarks, nil
}

func (r *InteractionRepo) DeleteBookmark(userID, articleID string) error {
	_, err := r.db.Exec(`
		DELETE FROM bookmarked_articles WHERE user_id = $1 AND article_id = $2
	`, userID, articleID)

	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	return nil
}

func (r *InteractionRepo) MarkViewed(userID string, articleIDs []string) error {
	for _, articleID := range articleIDs {
		_, err := r.db.Exec(`
			INSERT INTO article_views (user_id, article_id) VALUES ($1, $2)
		`, userID, articleID)
		if err != nil {
			return fmt.Errorf("failed to mark article viewed: %w", err)
		}
	}

	return nil
}

// GetPopularArticles ranks article identifiers by view count within the
// given period, most clicked first.
func (r *InteractionRepo) GetPopularArticles(since, until time.Time, offset, limit int) ([]ArticleClicks, error) {
	rows, err := r.db.Query(`
		SELECT article_id, COUNT(id) AS clicks
		FROM article_views
		WHERE created_at BETWEEN $1 AND $2
		GROUP BY article_id
		ORDER BY clicks DESC
		OFFSET $3 LIMIT $4
	`, since, until, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get popular articles: %w", err)
	}
	defer rows.Close()

	var result []ArticleClicks
	for rows.Next() {
		var row ArticleClicks
		if err := rows.Scan(&row.ArticleID, &row.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan popular article row: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating popular article rows: %w", err)
	}

	return result, nil
}

// UserRepo reads user accounts. Account lifecycle and authentication are
// owned by an external service; only the paid flag matters here.
type UserRepo struct {
	db *DB
}

var _ UserRepository = (*UserRepo)(nil)

func NewUserRepository(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetUser(id string) (*User, error) {
	var user User
	err := r.db.QueryRow(`SELECT id, paid FROM users WHERE id = $1`, id).Scan(&user.ID, &user.Paid)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
