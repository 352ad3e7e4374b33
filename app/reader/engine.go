package reader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/ostrenko/feedcast/app/ads"
	"github.com/ostrenko/feedcast/app/database"
	"github.com/ostrenko/feedcast/app/feed"
)

var (
	// ErrFeedNotFound reports an unknown feed identifier.
	ErrFeedNotFound = errors.New("feed not found")

	// ErrFetchFailed covers any network, HTTP, or parse failure at the
	// source. Callers of GetFeedContent never see it: the cycle degrades
	// to an empty result and the staleness fields stay untouched, so the
	// next request retries naturally.
	ErrFetchFailed = errors.New("feed fetch failed")
)

// todayArticleLimit caps the number of articles taken per favorite feed in
// the today digest.
const todayArticleLimit = 7

// Engine runs the feed synchronization and personalized delivery cycle:
// staleness evaluation, conditional fetch, normalization, cache write-through,
// advertisement allocation, and personalization merge.
type Engine struct {
	feedRepo        database.FeedRepository
	categoryRepo    database.CategoryRepository
	articleRepo     database.ArticleRepository
	interactionRepo database.InteractionRepository
	fetcher         *feed.Fetcher
	parser          *feed.Parser
	normalizer      *feed.Normalizer
	allocator       *ads.Allocator
	now             func() time.Time
}

func NewEngine(feedRepo database.FeedRepository, categoryRepo database.CategoryRepository,
	articleRepo database.ArticleRepository, interactionRepo database.InteractionRepository,
	fetcher *feed.Fetcher, parser *feed.Parser, normalizer *feed.Normalizer,
	allocator *ads.Allocator) *Engine {
	return &Engine{
		feedRepo:        feedRepo,
		categoryRepo:    categoryRepo,
		articleRepo:     articleRepo,
		interactionRepo: interactionRepo,
		fetcher:         fetcher,
		parser:          parser,
		normalizer:      normalizer,
		allocator:       allocator,
		now:             time.Now,
	}
}

// GetFeedContent returns the personalized, monetized article list for a
// feed. A non-positive limit returns all articles. A nil user means
// anonymous access: interaction flags are false, but advertisement
// allocation still runs (anonymous users are never paying).
func (e *Engine) GetFeedContent(ctx context.Context, feedID string, limit int, user *database.User) ([]Article, error) {
	f, err := e.feedRepo.GetFeed(feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrFeedNotFound, feedID)
	}

	src, err := e.resolveSource(f)
	if err != nil {
		return nil, err
	}

	articles, err := e.sync(ctx, f, src, limit)
	if err != nil {
		if errors.Is(err, ErrFetchFailed) {
			slog.Warn("Feed fetch failed, serving empty result", "feed", f.Name, "url", f.URL, "error", err)
			return []Article{}, nil
		}
		return nil, err
	}

	placement, err := e.allocator.Run(src.CategoryTitle, user != nil && user.Paid)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate advertisement: %w", err)
	}

	result := make([]Article, 0, len(articles))
	for i, content := range articles {
		article, err := e.personalize(content, user)
		if err != nil {
			return nil, err
		}
		if placement != nil && i == placement.Order {
			article.Advertisement = placement
		}
		result = append(result, article)
	}

	return result, nil
}

// Refresh runs one synchronization cycle for a feed without building a
// personalized response. Fetch failures propagate so the caller can retry.
func (e *Engine) Refresh(ctx context.Context, f *database.Feed) error {
	src, err := e.resolveSource(f)
	if err != nil {
		return err
	}

	_, err = e.sync(ctx, f, src, 0)
	return err
}

// GetTodayArticles builds the daily digest: the freshest articles of every
// feed the user follows.
func (e *Engine) GetTodayArticles(ctx context.Context, user *database.User) ([]Article, error) {
	favorites, err := e.interactionRepo.GetFavoriteFeeds(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite feeds: %w", err)
	}

	articles := []Article{}
	for _, favorite := range favorites {
		feedArticles, err := e.GetFeedContent(ctx, favorite.FeedID, todayArticleLimit, user)
		if err != nil {
			return nil, err
		}
		articles = append(articles, feedArticles...)
	}

	return articles, nil
}

// popularPeriods maps a period name to its lookback duration. "day" and
// "alltime" are handled separately.
var popularPeriods = map[string]time.Duration{
	"3days":   3 * 24 * time.Hour,
	"week":    7 * 24 * time.Hour,
	"month":   30 * 24 * time.Hour,
	"quarter": 90 * 24 * time.Hour,
	"year":    365 * 24 * time.Hour,
}

func ValidPeriod(period string) bool {
	if period == "day" || period == "alltime" {
		return true
	}
	_, ok := popularPeriods[period]
	return ok
}

// GetPopularArticles ranks cached articles by view count over the period.
// Rating carries the click count; no advertisement slot is attached.
func (e *Engine) GetPopularArticles(ctx context.Context, user *database.User, period string, offset, limit int) ([]Article, error) {
	now := e.now()
	until := now

	var since time.Time
	switch period {
	case "day":
		year, month, day := now.Date()
		since = time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	case "alltime":
		// zero time: unbounded lookback
	default:
		lookback, ok := popularPeriods[period]
		if !ok {
			return nil, fmt.Errorf("invalid period: %s", period)
		}
		since = now.Add(-lookback)
	}

	ranking, err := e.interactionRepo.GetPopularArticles(since, until, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load popularity ranking: %w", err)
	}

	result := []Article{}
	for _, row := range ranking {
		cached, err := e.articleRepo.GetArticleByArticleID(row.ArticleID)
		if err != nil {
			return nil, fmt.Errorf("failed to load article: %w", err)
		}
		if cached == nil {
			continue
		}

		content, err := decodeArticle(cached)
		if err != nil {
			return nil, err
		}

		article, err := e.personalize(content, user)
		if err != nil {
			return nil, err
		}

		rating := strconv.Itoa(row.Clicks)
		article.Rating = &rating
		result = append(result, article)
	}

	return result, nil
}

// GetBookmarkedArticles returns the user's saved article snapshots with
// personalization flags, applying the same image fallback and content
// rewrite as ingestion for snapshots saved before those transforms existed.
func (e *Engine) GetBookmarkedArticles(ctx context.Context, user *database.User) ([]Article, error) {
	bookmarks, err := e.interactionRepo.GetBookmarks(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}

	result := []Article{}
	for _, bookmark := range bookmarks {
		content := feed.Article{
			ID:            bookmark.ArticleID,
			Title:         bookmark.Title,
			Date:          bookmark.ArticleDate.Format("Jan 2, 2006 3:04 pm"),
			Description:   bookmark.Description,
			Content:       feed.RewriteImageTags(bookmark.Content),
			URL:           bookmark.URL,
			FeedID:        bookmark.FeedID,
			FeedTitle:     bookmark.FeedTitle,
			CategoryTitle: bookmark.CategoryTitle,
			PublishedAt:   bookmark.ArticleDate,
		}

		if bookmark.Image != "" {
			image := bookmark.Image
			content.Image = &image
		} else if src, ok := feed.ExtractFirstImageSrc(bookmark.Content); ok {
			content.Image = &src
		}

		article, err := e.personalize(content, user)
		if err != nil {
			return nil, err
		}
		result = append(result, article)
	}

	return result, nil
}

// resolveSource denormalizes the owning feed and category into the fields
// carried by every article.
func (e *Engine) resolveSource(f *database.Feed) (feed.Source, error) {
	category, err := e.categoryRepo.GetCategory(f.CategoryID)
	if err != nil {
		return feed.Source{}, fmt.Errorf("failed to load category: %w", err)
	}
	if category == nil {
		return feed.Source{}, fmt.Errorf("category not found: %s", f.CategoryID)
	}

	return feed.Source{
		FeedID:        f.ID,
		FeedTitle:     f.Name,
		CategoryTitle: category.Title,
	}, nil
}

// sync runs the staleness-gated fetch cycle and returns the article list:
// a fresh parse writes every item through the cache and updates the feed's
// validators; a 304 reconstructs the list from the cache. Cache write
// failures fail the whole cycle so the caller never sees an article that
// was silently dropped from the cache.
func (e *Engine) sync(ctx context.Context, f *database.Feed, src feed.Source, limit int) ([]feed.Article, error) {
	var cond *feed.Conditional
	if feed.IsFresh(f.LastReadAt, e.now()) {
		cond = &feed.Conditional{LastModified: f.LastModified, ETag: f.ETag}
	}

	res, err := e.fetcher.Run(ctx, f.URL, cond)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	if res.NotModified {
		return e.loadCached(f.ID, limit)
	}

	items, err := e.parser.Run(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	articles := make([]feed.Article, 0, len(items))
	for _, item := range items {
		article := e.normalizer.Run(item, src)

		payload, err := json.Marshal(article)
		if err != nil {
			return nil, fmt.Errorf("failed to encode article: %w", err)
		}

		// Caching is unconditional; only the returned slice is limited.
		if err := e.articleRepo.UpsertArticle(f.ID, f.CategoryID, article.ID, payload, article.PublishedAt); err != nil {
			return nil, err
		}

		articles = append(articles, article)
	}

	if err := e.feedRepo.UpdateFetchState(f.ID, res.LastModified, res.ETag, e.now()); err != nil {
		return nil, err
	}

	sortByPublishedDesc(articles)

	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	return articles, nil
}

func (e *Engine) loadCached(feedID string, limit int) ([]feed.Article, error) {
	cached, err := e.articleRepo.GetArticlesByFeed(feedID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load cached articles: %w", err)
	}

	articles := make([]feed.Article, 0, len(cached))
	for i := range cached {
		article, err := decodeArticle(&cached[i])
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	return articles, nil
}

func (e *Engine) personalize(content feed.Article, user *database.User) (Article, error) {
	article := Article{Article: content}

	if user == nil {
		return article, nil
	}

	var err error
	if article.Bookmarked, err = e.interactionRepo.IsBookmarked(user.ID, content.ID); err != nil {
		return Article{}, fmt.Errorf("failed to check bookmark: %w", err)
	}
	if article.Followed, err = e.interactionRepo.IsFollowed(user.ID, content.FeedID); err != nil {
		return Article{}, fmt.Errorf("failed to check favorite feed: %w", err)
	}
	if article.Viewed, err = e.interactionRepo.IsViewed(user.ID, content.ID); err != nil {
		return Article{}, fmt.Errorf("failed to check article view: %w", err)
	}

	return article, nil
}

func decodeArticle(row *database.Article) (feed.Article, error) {
	var article feed.Article
	if err := json.Unmarshal(row.Content, &article); err != nil {
		return feed.Article{}, fmt.Errorf("failed to decode cached article %s: %w", row.ArticleID, err)
	}
	article.PublishedAt = row.ArticleDate
	return article, nil
}

func sortByPublishedDesc(articles []feed.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
