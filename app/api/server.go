package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ostrenko/feedcast/app/database"
)

const contextUserKey = "user"

// NewServer creates the HTTP server with all routes configured. Public
// routes resolve an optional user from the X-User-ID header; personalized
// routes require one; administrative routes require the access key.
func NewServer(handler *Handler, userRepo database.UserRepository, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for the mobile and web clients
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-User-ID, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.Use(userMiddleware(userRepo))

	r.GET("/feeds/:id/articles", handler.GetFeedArticles)
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	personalized := r.Group("/api")
	personalized.Use(requireUser())
	{
		personalized.GET("/articles/today", handler.GetTodayArticles)
		personalized.GET("/articles/popular", handler.GetPopularArticles)

		personalized.GET("/favorites", handler.GetFavoriteFeeds)
		personalized.POST("/favorites", handler.AddFavoriteFeed)
		personalized.DELETE("/favorites", handler.DeleteFavoriteFeeds)

		personalized.GET("/bookmarks", handler.GetBookmarks)
		personalized.POST("/bookmarks", handler.AddBookmark)
		personalized.DELETE("/bookmarks/:articleId", handler.DeleteBookmark)

		personalized.POST("/views", handler.MarkArticlesViewed)
	}

	if apiAccessKey != "" {
		admin := r.Group("/admin")
		admin.Use(accessKeyMiddleware(apiAccessKey))
		{
			admin.POST("/feeds/:id/refresh", handler.AdminRefreshFeed)
		}
		slog.Info("Administrative endpoints enabled")
	} else {
		slog.Info("Administrative endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})

	return r
}

// userMiddleware resolves the requesting user from the X-User-ID header.
// Authentication itself lives in front of this service; an absent or
// unknown id means anonymous access.
func userMiddleware(userRepo database.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.Next()
			return
		}

		user, err := userRepo.GetUser(userID)
		if err != nil {
			slog.Error("Failed to resolve user", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "errors": []string{"internal error"}})
			c.Abort()
			return
		}

		if user != nil {
			c.Set(contextUserKey, user)
		}

		c.Next()
	}
}

func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(contextUserKey); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"data": nil, "errors": []string{"authentication required"}})
			c.Abort()
			return
		}
		c.Next()
	}
}

func accessKeyMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" || providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{"data": nil, "errors": []string{"invalid access key"}})
			c.Abort()
			return
		}

		c.Next()
	}
}
