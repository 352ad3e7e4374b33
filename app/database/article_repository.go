package database

import (
	"database/sql"
	"fmt"
	"time"
)

// ArticleRepo handles database operations for cached articles
type ArticleRepo struct {
	db *DB
}

var _ ArticleRepository = (*ArticleRepo)(nil)

func NewArticleRepository(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

// UpsertArticle stores a normalized article, keyed by (feed_id, article_id).
// Re-ingesting the same item overwrites the payload (last write wins).
func (r *ArticleRepo) UpsertArticle(feedID, categoryID, articleID string, content []byte, articleDate time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO articles (feed_id, category_id, article_id, content, article_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (feed_id, article_id) DO UPDATE SET
			category_id = EXCLUDED.category_id,
			content = EXCLUDED.content,
			article_date = EXCLUDED.article_date,
			updated_at = NOW()
	`, feedID, categoryID, articleID, content, articleDate)

	if err != nil {
		return fmt.Errorf("failed to upsert article: %w", err)
	}

	return nil
}

// GetArticlesByFeed returns cached articles for a feed ordered by publish
// date descending. A non-positive limit returns all articles.
func (r *ArticleRepo) GetArticlesByFeed(feedID string, limit int) ([]Article, error) {
	query := `
		SELECT id, feed_id, category_id, article_id, content, article_date,
		       extracted_at, created_at, updated_at
		FROM articles
		WHERE feed_id = $1
		ORDER BY article_date DESC`
	args := []interface{}{feedID}

	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var article Article
		err := rows.Scan(
			&article.ID, &article.FeedID, &article.CategoryID, &article.ArticleID,
			&article.Content, &article.ArticleDate, &article.ExtractedAt,
			&article.CreatedAt, &article.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func (r *ArticleRepo) GetArticleByArticleID(articleID string) (*Article, error) {
	var article Article
	err := r.db.QueryRow(`
		SELECT id, feed_id, category_id, article_id, content, article_date,
		       extracted_at, created_at, updated_at
		FROM articles
		WHERE article_id = $1
		LIMIT 1
	`, articleID).Scan(
		&article.ID, &article.FeedID, &article.CategoryID, &article.ArticleID,
		&article.Content, &article.ArticleDate, &article.ExtractedAt,
		&article.CreatedAt, &article.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return &article, nil
}

func (r *ArticleRepo) GetArticleCount(feedID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM articles WHERE feed_id = $1", feedID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

// GetArticlesForExtraction returns articles that have not had full content
// extracted yet, most recent first.
func (r *ArticleRepo) GetArticlesForExtraction(feedID string, limit int) ([]ArticleForExtraction, error) {
	rows, err := r.db.Query(`
		SELECT id, COALESCE(content->>'url', '')
		FROM articles
		WHERE feed_id = $1 AND extracted_at IS NULL
		ORDER BY article_date DESC
		LIMIT $2
	`, feedID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles for extraction: %w", err)
	}
	defer rows.Close()

	var articles []ArticleForExtraction
	for rows.Next() {
		var article ArticleForExtraction
		if err := rows.Scan(&article.ID, &article.Link); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

// UpdateExtractedContent swaps the content field inside the cached payload
// for the extracted full text and stamps the extraction time.
func (r *ArticleRepo) UpdateExtractedContent(id string, content string, extractedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE articles
		SET content = jsonb_set(content, '{content}', to_jsonb($2::text)),
		    extracted_at = $3, updated_at = NOW()
		WHERE id = $1
	`, id, content, extractedAt)

	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	return nil
}
