package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"skillswap/handlers"
	"skillswap/middleware"
)

type Config struct {
	AllowedOrigins []string
	Tokens         *middleware.SessionTokens
	Limiter        *middleware.IPRateLimiter
	Logger         *zap.Logger
	// WebSocket serves /ws when set.
	WebSocket http.HandlerFunc
}

func SetupRouter(h *handlers.Handler, cfg Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Logger != nil {
		router.Use(middleware.RequestLogger(cfg.Logger))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	}
	router.GET("/health", health)
	router.GET("/api/health", health)

	if cfg.WebSocket != nil {
		router.GET("/ws", gin.WrapF(cfg.WebSocket))
	}

	api := router.Group("/api")

	// Landing and profile viewer
	api.GET("/landing", h.GetLanding)
	api.GET("/profile", h.GetProfile)
	api.POST("/profile/tabs/swipe", h.SwipeTab)
	api.POST("/profile/projects/pan", h.PanProject)
	api.GET("/vapid-public-key", h.GetVapidPublicKey)

	limited := func(hf gin.HandlerFunc) []gin.HandlerFunc {
		if cfg.Limiter == nil {
			return []gin.HandlerFunc{hf}
		}
		return []gin.HandlerFunc{middleware.RateLimit(cfg.Limiter), hf}
	}

	// Editor
	api.POST("/edit/session", limited(h.OpenSession)...)

	edit := api.Group("/edit")
	edit.Use(middleware.SessionAuth(cfg.Tokens))
	edit.GET("", h.GetDraft)
	edit.PUT("/fields/:field", h.SetField)
	edit.PUT("/skills/:kind/pending", h.SetPendingSkill)
	edit.POST("/skills/:kind", h.AddSkill)
	edit.DELETE("/skills/:kind/:index", h.RemoveSkill)
	edit.POST("/avatar", limited(h.UploadAvatar)...)
	edit.POST("/subscribe", h.SubscribePush)
	edit.POST("/save", h.Save)
	edit.POST("/discard", h.Discard)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Endpoint not found",
				"code":    "NOT_FOUND",
				"path":    c.Request.URL.Path,
				"message": "Check the API documentation for available endpoints",
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "path": c.Request.URL.Path})
	})

	return router
}
