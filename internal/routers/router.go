// Package routers 组装 HTTP 路由与中间件
package routers

import (
	"time"

	"github.com/petalpost/proposal-link-service/internal/app"
	"github.com/petalpost/proposal-link-service/internal/middleware"
	"github.com/petalpost/proposal-link-service/internal/routers/api_router"
	"github.com/petalpost/proposal-link-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/api/links",
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
		api.Use(middleware.AppInfo(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddleware(cfg.Tracer.Enabled, cfg.Tracer.Header)) // Trace ID 中间件
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.CorsWithConfig(cfg.Cors.AllowedOrigins))
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		linkHandler := api_router.NewLinkHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)

		api.POST("/links", linkHandler.Create)
		api.GET("/links/:slug", linkHandler.Get)
		api.GET("/links/:slug/status", linkHandler.GetStatus)
		api.POST("/links/:slug/answer", linkHandler.SubmitAnswer)

		api.GET("/health", healthHandler.Check)
		api.GET("/version", versionHandler.ServerVersion)
	}

	r.Use(middleware.CorsWithConfig(cfg.Cors.AllowedOrigins))
	r.NoRoute(middleware.NoFound())

	return r
}
