package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/notification-gateway/internal/api/handlers/health"
	"github.com/aliskhannn/notification-gateway/internal/api/handlers/notification"
	"github.com/aliskhannn/notification-gateway/internal/middlewares"
)

func New(handler *notification.Handler, healthHandler *health.Handler) *ginext.Engine {
	e := ginext.New(gin.Mode())
	e.Use(middlewares.CORSMiddleware())
	e.Use(middlewares.MetricsMiddleware)
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := e.Group("/notifications")
	{
		api.POST("", handler.Create)
		api.GET("", handler.List)
		api.GET("/:id", handler.GetStatus)
	}

	e.POST("/:channel/status", handler.UpdateStatus)

	return e
}
