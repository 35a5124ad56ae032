package api

import (
	"net/http"
	"time"

	"ClearTracker/internal/auth"
	"ClearTracker/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewRouter 组装中间件与全部路由
func NewRouter(db *gorm.DB, logger *logrus.Logger, cfg *config.Config, tokens *auth.TokenIssuer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(logger))
	if len(cfg.Server.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", HeaderRequestID},
			ExposeHeaders:    []string{HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", healthz(db))

	strict := cfg.Rules.Strict
	authHandler := NewAuthHandler(db, logger, tokens)
	gameHandler := NewGameHandler(db, logger)
	recordHandler := NewClearRecordHandler(db, logger, strict)
	statusHandler := NewClearStatusHandler(db, logger, strict)
	memoHandler := NewGameMemoHandler(db, logger)

	requireAuth := RequireAuth(tokens)
	requireAdmin := RequireAdmin()

	apiGroup := r.Group("/api")

	// 认证
	apiGroup.POST("/auth/register", authHandler.Register)
	apiGroup.POST("/auth/login", authHandler.Login)
	apiGroup.GET("/auth/me", requireAuth, authHandler.Me)

	// 作品目录：查询公开，写操作仅管理员
	apiGroup.GET("/games", gameHandler.ListGames)
	apiGroup.GET("/games/:id", gameHandler.GetGame)
	apiGroup.GET("/games/:id/rules", gameHandler.GetRules)
	apiGroup.GET("/games/:id/characters", gameHandler.ListCharacters)
	admin := apiGroup.Group("", requireAuth, requireAdmin)
	admin.POST("/games", gameHandler.CreateGame)
	admin.PUT("/games/:id", gameHandler.UpdateGame)
	admin.DELETE("/games/:id", gameHandler.DeleteGame)
	admin.POST("/games/:id/characters", gameHandler.CreateCharacter)
	admin.PUT("/game-characters/:id", gameHandler.UpdateCharacter)
	admin.DELETE("/game-characters/:id", gameHandler.DeleteCharacter)

	// 以下均需登录，且只作用于调用方自己的数据
	records := apiGroup.Group("/clear-records", requireAuth)
	records.GET("", recordHandler.ListRecords)
	records.GET("/:id", recordHandler.GetRecord)
	records.POST("", recordHandler.CreateRecord)
	records.PUT("/:id", recordHandler.UpdateRecord)
	records.DELETE("/:id", recordHandler.DeleteRecord)
	records.POST("/upsert", recordHandler.UpsertRecord)
	records.POST("/batch", recordHandler.BatchUpsertRecords)

	status := apiGroup.Group("/clear-status", requireAuth)
	status.GET("", statusHandler.ListStatus)
	status.GET("/:id", statusHandler.GetStatus)
	status.POST("", statusHandler.CreateStatus)
	status.PUT("/:id", statusHandler.UpdateStatus)
	status.DELETE("/:id", statusHandler.DeleteStatus)
	status.POST("/mark-cleared", statusHandler.MarkCleared)
	status.POST("/mark-not-cleared", statusHandler.MarkNotCleared)

	memos := apiGroup.Group("/game-memos", requireAuth)
	memos.GET("", memoHandler.ListMemos)
	memos.GET("/games/:game_id", memoHandler.GetMemo)
	memos.PUT("/games/:game_id", memoHandler.PutMemo)
	memos.PUT("/:id", memoHandler.UpdateMemo)
	memos.DELETE("/:id", memoHandler.DeleteMemo)

	return r
}

// healthz 检查数据库连通性
func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
