package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/dropbox2slack/internal/http/handler/webhook"
	"basegraph.app/dropbox2slack/internal/metrics"
	"basegraph.app/dropbox2slack/internal/service"
)

type RouterConfig struct {
	// DropboxAppSecret enables X-Dropbox-Signature checks on notifications.
	DropboxAppSecret string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	dropboxHandler := webhook.NewDropboxWebhookHandler(services.Sync(), cfg.DropboxAppSecret)
	DropboxWebhookRouter(router.Group("/"), dropboxHandler)
}
