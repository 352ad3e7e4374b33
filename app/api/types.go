package api

import (
	"github.com/ostrenko/feedcast/app/database"
	"github.com/ostrenko/feedcast/app/reader"
	"github.com/ostrenko/feedcast/app/tasks"
)

type Handler struct {
	engine          *reader.Engine
	feedRepo        database.FeedRepository
	categoryRepo    database.CategoryRepository
	articleRepo     database.ArticleRepository
	interactionRepo database.InteractionRepository
	userRepo        database.UserRepository
	scheduler       tasks.TaskSchedulerInterface
}

type AddFavoriteRequest struct {
	FeedID string `json:"feed_id" binding:"required"`
}

type DeleteFavoritesRequest struct {
	FeedIDs     []string `json:"feed_ids"`
	CategoryIDs []string `json:"category_ids"`
}

type AddBookmarkRequest struct {
	FeedID        string `json:"feed_id" binding:"required"`
	ArticleID     string `json:"article_id" binding:"required"`
	Title         string `json:"title" binding:"required"`
	URL           string `json:"url" binding:"required"`
	Description   string `json:"description" binding:"required"`
	Content       string `json:"content" binding:"required"`
	Date          string `json:"date" binding:"required"`
	CategoryTitle string `json:"category_title" binding:"required"`
	FeedTitle     string `json:"feed_title" binding:"required"`
	Image         string `json:"image"`
}

type MarkViewedRequest struct {
	ArticleIDs []string `json:"article_ids" binding:"required"`
}

// FavoriteFeedView is one followed feed inside the grouped favorites
// response. Counters are strings to match the mobile client contract.
type FavoriteFeedView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Image          string `json:"image"`
	ArticleCounter string `json:"article_counter"`
}

type FavoriteCategoryView struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Image           string             `json:"image"`
	FavoriteFeeds   []FavoriteFeedView `json:"favorite_feeds"`
	ArticlesCounter string             `json:"articles_counter"`
}
