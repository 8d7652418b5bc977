package router

import (
	"net/http"

	"cityguide/internal/handlers"
	"cityguide/internal/identity"
	"cityguide/internal/middleware"
	"cityguide/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Store          *services.GormStore
	Ledger         *services.Ledger
	Ranking        *services.RankingService
	Resolver       *identity.Resolver
	Auth           *middleware.Auth
	ToggleLimiter  *middleware.RateLimiter
	FingerprintKey []byte
}

// RegisterRoutes expects the session middleware to be installed on r.
func RegisterRoutes(r *gin.Engine, d Deps) {
	// Handlers
	postHandler := handlers.NewPostHandler(d.Store, d.Ledger, d.Ranking)
	engagementHandler := handlers.NewEngagementHandler(d.Ledger)
	sessionHandler := handlers.NewSessionHandler(d.Resolver)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }) // 健康检查
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))                                        // Prometheus 指标

	api := r.Group("/api")
	api.Use(middleware.SessionID(), d.Auth.LoadIdentity(), middleware.ResolveIdentity(d.Resolver, d.FingerprintKey))
	{
		api.GET("/posts/trending", postHandler.Trending)            // 热门帖子
		api.GET("/posts/:id", postHandler.Detail)                   // 帖子详情（后台记录浏览）
		api.GET("/posts/:id/engagement", engagementHandler.Counts)  // 计数
		api.POST("/posts/:id/views", engagementHandler.RecordView)  // 记录浏览
		api.GET("/posts/:id/helpful", engagementHandler.CheckVoted) // 是否已标记有用
		api.POST("/session/end", sessionHandler.End)                // 结束会话

		// 切换有用，按身份限流
		api.POST("/posts/:id/helpful", d.ToggleLimiter.Middleware(), engagementHandler.ToggleHelpful)
	}
}
