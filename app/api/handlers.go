package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ostrenko/feedcast/app/cfg"
	"github.com/ostrenko/feedcast/app/database"
	"github.com/ostrenko/feedcast/app/reader"
	"github.com/ostrenko/feedcast/app/tasks"
)

// startedAt anchors the uptime reported by the stats endpoint.
var startedAt = time.Now()

func NewHandler(engine *reader.Engine, feedRepo database.FeedRepository,
	categoryRepo database.CategoryRepository, articleRepo database.ArticleRepository,
	interactionRepo database.InteractionRepository, userRepo database.UserRepository,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		engine:          engine,
		feedRepo:        feedRepo,
		categoryRepo:    categoryRepo,
		articleRepo:     articleRepo,
		interactionRepo: interactionRepo,
		userRepo:        userRepo,
		scheduler:       scheduler,
	}
}

// sendResponse wraps every payload in the {data, errors} envelope the
// clients expect. Any error string flips the status to 400.
func sendResponse(c *gin.Context, data interface{}, errs ...string) {
	status := http.StatusOK
	if len(errs) > 0 {
		status = http.StatusBadRequest
	}
	if errs == nil {
		errs = []string{}
	}
	c.JSON(status, gin.H{"data": data, "errors": errs})
}

func (h *Handler) currentUser(c *gin.Context) *database.User {
	if value, ok := c.Get(contextUserKey); ok {
		if user, ok := value.(*database.User); ok {
			return user
		}
	}
	return nil
}

func (h *Handler) GetFeedArticles(c *gin.Context) {
	feedID := c.Param("id")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			sendResponse(c, nil, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	articles, err := h.engine.GetFeedContent(c.Request.Context(), feedID, limit, h.currentUser(c))
	if err != nil {
		if errors.Is(err, reader.ErrFeedNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"data": nil, "errors": []string{"feed not found"}})
			return
		}
		slog.Error("Failed to get feed content", "feed_id", feedID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
		return
	}

	sendResponse(c, articles)
}

func (h *Handler) GetTodayArticles(c *gin.Context) {
	user := h.currentUser(c)

	articles, err := h.engine.GetTodayArticles(c.Request.Context(), user)
	if err != nil {
		slog.Error("Failed to build today digest", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
		return
	}

	if len(articles) == 0 {
		sendResponse(c, articles, "no favorite feeds found")
		return
	}

	sendResponse(c, articles)
}

func (h *Handler) GetPopularArticles(c *gin.Context) {
	user := h.currentUser(c)

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			sendResponse(c, nil, "invalid offset parameter")
			return
		}
		offset = parsed
	}

	limit := 30
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 10 || parsed > 100 {
			sendResponse(c, nil, "limit must be between 10 and 100")
			return
		}
		limit = parsed
	}

	period := c.DefaultQuery("period", "day")
	if !reader.ValidPeriod(period) {
		sendResponse(c, nil, "invalid period parameter")
		return
	}

	articles, err := h.engine.GetPopularArticles(c.Request.Context(), user, period, offset, limit)
	if err != nil {
		slog.Error("Failed to get popular articles", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
		return
	}

	sendResponse(c, articles)
}

func (h *Handler) AddFavoriteFeed(c *gin.Context) {
	user := h.currentUser(c)

	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendResponse(c, nil, "feed_id is required")
		return
	}

	f, err := h.feedRepo.GetFeed(req.FeedID)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed_id", req.FeedID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
		return
	}

	if f != nil {
		if err := h.interactionRepo.AddFavoriteFeed(user.ID, f.ID, f.Name, f.CategoryID); err != nil {
			slog.Error("Failed to add favorite feed", "user_id", user.ID, "feed_id", f.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
			return
		}
	}

	h.respondWithFavorites(c, user)
}

func (h *Handler) DeleteFavoriteFeeds(c *gin.Context) {
	user := h.currentUser(c)

	var req DeleteFavoritesRequest
	if err := c.ShouldBindJSON(&req); err != nil || (len(req.FeedIDs) == 0 && len(req.CategoryIDs) == 0) {
		sendResponse(c, nil, "feed_ids or category_ids is required")
		return
	}

	if err := h.interactionRepo.DeleteFavoriteFeedsByCategory(user.ID, req.CategoryIDs); err != nil {
		slog.Error("Failed to delete favorites by category", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
		return
	}

	if err := h.interactionRepo.DeleteFavoriteFeeds(user.ID, req.FeedIDs); err != nil {
		slog.Error("Failed to delete favorites", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
		return
	}

	h.respondWithFavorites(c, user)
}

func (h *Handler) GetFavoriteFeeds(c *gin.Context) {
	h.respondWithFavorites(c, h.currentUser(c))
}

// respondWithFavorites groups the user's followed feeds by category and
// attaches article counters, mirroring the reading-list home screen shape.
func (h *Handler) respondWithFavorites(c *gin.Context, user *database.User) {
	favorites, err := h.interactionRepo.GetFavoriteFeeds(user.ID)
	if err != nil {
		slog.Error("Failed to get favorite feeds", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
		return
	}

	grouped := map[string]*FavoriteCategoryView{}
	order := []string{}

	for _, favorite := range favorites {
		view, ok := grouped[favorite.CategoryID]
		if !ok {
			category, err := h.categoryRepo.GetCategory(favorite.CategoryID)
			if err != nil || category == nil {
				slog.Error("Failed to get category", "category_id", favorite.CategoryID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
				return
			}
			view = &FavoriteCategoryView{
				ID:            category.ID,
				Title:         category.Title,
				Image:         category.Image,
				FavoriteFeeds: []FavoriteFeedView{},
			}
			grouped[favorite.CategoryID] = view
			order = append(order, favorite.CategoryID)
		}

		feedView := FavoriteFeedView{
			ID:   favorite.FeedID,
			Name: favorite.FeedTitle,
		}

		if f, err := h.feedRepo.GetFeed(favorite.FeedID); err == nil && f != nil {
			feedView.Image = f.Image
		}

		count, err := h.articleRepo.GetArticleCount(favorite.FeedID)
		if err != nil {
			slog.Error("Failed to get article count", "feed_id", favorite.FeedID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
			return
		}
		feedView.ArticleCounter = strconv.Itoa(count)

		view.FavoriteFeeds = append(view.FavoriteFeeds, feedView)
	}

	result := make([]FavoriteCategoryView, 0, len(order))
	for _, categoryID := range order {
		view := grouped[categoryID]
		total := 0
		for _, feedView := range view.FavoriteFeeds {
			count, _ := strconv.Atoi(feedView.ArticleCounter)
			total += count
		}
		view.ArticlesCounter = strconv.Itoa(total)
		result = append(result, *view)
	}

	sendResponse(c, result)
}

func (h *Handler) AddBookmark(c *gin.Context) {
	user := h.currentUser(c)

	var req AddBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendResponse(c, nil, "invalid bookmark payload")
		return
	}

	alreadyBookmarked, err := h.interactionRepo.IsBookmarked(user.ID, req.ArticleID)
	if err != nil {
		slog.Error("Failed to check bookmark", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
		return
	}
	if alreadyBookmarked {
		sendResponse(c, nil, "Already bookmarked")
		return
	}

	articleDate, err := parseArticleDate(req.Date)
	if err != nil {
		sendResponse(c, nil, "invalid date format")
		return
	}

	bookmark := database.BookmarkedArticle{
		UserID:        user.ID,
		FeedID:        req.FeedID,
		ArticleID:     req.ArticleID,
		Title:         req.Title,
		URL:           req.URL,
		Description:   req.Description,
		Content:       req.Content,
		CategoryTitle: req.CategoryTitle,
		FeedTitle:     req.FeedTitle,
		Image:         req.Image,
		ArticleDate:   articleDate,
	}

	if err := h.interactionRepo.AddBookmark(bookmark); err != nil {
		slog.Error("Failed to add bookmark", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
		return
	}

	sendResponse(c, gin.H{})
}

func (h *Handler) GetBookmarks(c *gin.Context) {
	user := h.currentUser(c)

	articles, err := h.engine.GetBookmarkedArticles(c.Request.Context(), user)
	if err != nil {
		slog.Error("Failed to get bookmarks", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
		return
	}

	sendResponse(c, articles)
}

func (h *Handler) DeleteBookmark(c *gin.Context) {
	user := h.currentUser(c)
	articleID := c.Param("articleId")

	if err := h.interactionRepo.DeleteBookmark(user.ID, articleID); err != nil {
		slog.Error("Failed to delete bookmark", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
		return
	}

	sendResponse(c, gin.H{})
}

func (h *Handler) MarkArticlesViewed(c *gin.Context) {
	user := h.currentUser(c)

	var req MarkViewedRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.ArticleIDs) == 0 {
		sendResponse(c, nil, "article_ids is required")
		return
	}

	if err := h.interactionRepo.MarkViewed(user.ID, req.ArticleIDs); err != nil {
		slog.Error("Failed to mark articles viewed", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
		return
	}

	sendResponse(c, gin.H{})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := gin.H{
		"version": cfg.GetVersion(),
		"uptime":  time.Since(startedAt).Round(time.Second).String(),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		stats["feeds"] = feedCount
	}

	sendResponse(c, stats)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) AdminRefreshFeed(c *gin.Context) {
	feedID := c.Param("id")

	f, err := h.feedRepo.GetFeed(feedID)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed_id", feedID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
		return
	}
	if f == nil {
		c.JSON(http.StatusNotFound, gin.H{"data": nil, "errors": []string{"feed not found"}})
		return
	}

	task := tasks.NewRefreshFeedTask(*f, h.engine)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue refresh task", "feed_id", feedID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"data": nil, "errors": []string{"task queue is full"}})
		return
	}

	sendResponse(c, gin.H{"feed_id": feedID, "status": "queued"})
}

// parseArticleDate accepts either the human-facing article date format or
// RFC 3339, since clients send back the date they received.
func parseArticleDate(raw string) (time.Time, error) {
	if parsed, err := time.Parse("Jan 2, 2006 3:04 pm", raw); err == nil {
		return parsed, nil
	}
	return time.Parse(time.RFC3339, raw)
}
