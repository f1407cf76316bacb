package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"basegraph.app/dropbox2slack/common/logger"
	"basegraph.app/dropbox2slack/internal/metrics"
)

// Recovery turns a handler panic into a 500 and logs it with the request's
// context log fields.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			metrics.RecordPanic()

			ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
				Component: "dropbox2slack.http",
			})
			slog.ErrorContext(ctx, "panic recovered",
				"error", err,
				"method", c.Request.Method,
				"route", c.FullPath(),
				"path", c.Request.URL.Path,
				"stack", string(debug.Stack()),
			)

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "internal server error",
			})
		}()
		c.Next()
	}
}
