package routers

import (
	"time"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"

	"github.com/haierkeys/note-feed-service/internal/app"
	"github.com/haierkeys/note-feed-service/internal/middleware"
	"github.com/haierkeys/note-feed-service/internal/routers/api_router"
	"github.com/haierkeys/note-feed-service/pkg/limiter"
)

// 发布与列表写入限流，按路由路径计
var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/api/note",
		FillInterval: time.Second,
		Capacity:     50,
		Quantum:      50,
	},
	limiter.BucketRule{
		Key:          "/api/list/member",
		FillInterval: time.Second,
		Capacity:     20,
		Quantum:      20,
	},
)

func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header)) // Trace ID 中间件
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(cfg.GetContextTimeout()))
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		noteHandler := api_router.NewNoteHandler(appContainer)
		timelineHandler := api_router.NewTimelineHandler(appContainer)
		listHandler := api_router.NewListHandler(appContainer)
		socialHandler := api_router.NewSocialHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		api.GET("/health", healthHandler.Check)

		auth := middleware.ViewerAuth(appContainer.TokenManager)
		optional := middleware.OptionalViewerAuth(appContainer.TokenManager)

		// 匿名可读，携带 token 时按查看者过滤
		api.GET("/note", optional, noteHandler.Get)
		api.GET("/timeline/public", optional, timelineHandler.Public)
		api.GET("/timeline/account", optional, timelineHandler.Account)
		api.GET("/timeline/list", optional, timelineHandler.List)
		api.GET("/list", optional, listHandler.Get)
		api.GET("/list/members", optional, listHandler.Members)

		api.POST("/note", auth, noteHandler.Create)
		api.DELETE("/note", auth, noteHandler.Delete)
		api.POST("/note/republish", auth, noteHandler.Republish)

		api.GET("/timeline/home", auth, timelineHandler.Home)
		api.GET("/timeline/bookmarks", auth, timelineHandler.Bookmarks)
		api.GET("/timeline/conversation", auth, timelineHandler.Conversation)

		api.POST("/list", auth, listHandler.Create)
		api.PUT("/list", auth, listHandler.Update)
		api.DELETE("/list", auth, listHandler.Delete)
		api.GET("/lists", auth, listHandler.Owned)
		api.GET("/lists/subscribed", auth, listHandler.Subscribed)
		api.POST("/list/member", auth, listHandler.AddMember)
		api.DELETE("/list/member", auth, listHandler.RemoveMember)

		api.POST("/follow", auth, socialHandler.Follow)
		api.DELETE("/follow", auth, socialHandler.Unfollow)
		api.POST("/bookmark", auth, socialHandler.Bookmark)
		api.DELETE("/bookmark", auth, socialHandler.Unbookmark)
	}

	r.NoRoute(middleware.NoFound())

	return r
}
