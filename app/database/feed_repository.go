package database

import (
	"database/sql"
	"fmt"
	"time"
)

// FeedRepo handles database operations for feeds
type FeedRepo struct {
	db *DB
}

var _ FeedRepository = (*FeedRepo)(nil)

func NewFeedRepository(db *DB) *FeedRepo {
	return &FeedRepo{db: db}
}

const feedColumns = `id, category_id, feed_url, feed_name, COALESCE(image, ''),
	       extract_content, last_read_at, COALESCE(last_modified, ''), COALESCE(etag, ''),
	       created_at, updated_at`

func (r *FeedRepo) scanFeed(row interface{ Scan(...interface{}) error }) (*Feed, error) {
	var feed Feed
	err := row.Scan(
		&feed.ID, &feed.CategoryID, &feed.URL, &feed.Name, &feed.Image,
		&feed.ExtractContent, &feed.LastReadAt, &feed.LastModified, &feed.ETag,
		&feed.CreatedAt, &feed.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

func (r *FeedRepo) GetFeed(id string) (*Feed, error) {
	feed, err := r.scanFeed(r.db.QueryRow(`
		SELECT `+feedColumns+`
		FROM feeds
		WHERE id = $1
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return feed, nil
}

func (r *FeedRepo) GetFeedByURL(feedURL string) (*Feed, error) {
	feed, err := r.scanFeed(r.db.QueryRow(`
		SELECT `+feedColumns+`
		FROM feeds
		WHERE feed_url = $1
	`, feedURL))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by URL: %w", err)
	}

	return feed, nil
}

// GetFeedsDueForRefresh returns feeds whose last successful read is older
// than the staleness threshold (or that have never been read).
func (r *FeedRepo) GetFeedsDueForRefresh(staleAfter time.Duration) ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT `+feedColumns+`
		FROM feeds
		WHERE last_read_at IS NULL OR last_read_at <= NOW() - make_interval(secs => $1)
		ORDER BY COALESCE(last_read_at, '1970-01-01'::timestamptz)
		LIMIT 50
	`, staleAfter.Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds due for refresh: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := r.scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

func (r *FeedRepo) GetFeedCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

// UpsertFeed registers a feed, keyed by its URL. Fetch state columns are
// left untouched on update so a re-seeded feed keeps its conditional headers.
func (r *FeedRepo) UpsertFeed(categoryID, feedURL, feedName, image string, extractContent bool) (string, error) {
	var id string
	err := r.db.QueryRow(`
		INSERT INTO feeds (category_id, feed_url, feed_name, image, extract_content)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (feed_url) DO UPDATE SET
			category_id = EXCLUDED.category_id,
			feed_name = EXCLUDED.feed_name,
			image = EXCLUDED.image,
			extract_content = EXCLUDED.extract_content,
			updated_at = NOW()
		RETURNING id
	`, categoryID, feedURL, feedName, image, extractContent).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to upsert feed: %w", err)
	}

	return id, nil
}

// UpdateFetchState persists the staleness fields after a successful fetch cycle.
func (r *FeedRepo) UpdateFetchState(id string, lastModified, etag string, lastReadAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET last_modified = $2, etag = $3, last_read_at = $4, updated_at = NOW()
		WHERE id = $1
	`, id, lastModified, etag, lastReadAt)

	if err != nil {
		return fmt.Errorf("failed to update feed fetch state: %w", err)
	}

	return nil
}
