package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/dropbox2slack/internal/http/handler/webhook"
)

func DropboxWebhookRouter(router *gin.RouterGroup, handler *webhook.DropboxWebhookHandler) {
	router.GET("", handler.Verify)
	router.POST("", handler.HandleNotification)
}
