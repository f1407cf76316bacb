package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/dropbox2slack/internal/service"
)

const signatureHeader = "X-Dropbox-Signature"

type DropboxWebhookHandler struct {
	sync      service.SyncService
	appSecret string
}

// NewDropboxWebhookHandler builds the handler. An empty appSecret disables
// signature verification.
func NewDropboxWebhookHandler(sync service.SyncService, appSecret string) *DropboxWebhookHandler {
	return &DropboxWebhookHandler{
		sync:      sync,
		appSecret: appSecret,
	}
}

// Verify answers the Dropbox endpoint verification handshake by echoing the
// challenge parameter. An empty challenge counts as missing.
func (h *DropboxWebhookHandler) Verify(c *gin.Context) {
	challenge := c.Query("challenge")
	if challenge == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing challenge"})
		return
	}

	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(challenge))
}

func (h *DropboxWebhookHandler) HandleNotification(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	if h.appSecret != "" {
		signature := c.GetHeader(signatureHeader)
		if signature == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "missing signature"})
			return
		}
		if !validSignature(h.appSecret, body, signature) {
			slog.WarnContext(ctx, "dropbox webhook signature mismatch")
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
			return
		}
	}

	result, err := h.sync.Run(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "dropbox change sync failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process changes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"run_id":   result.RunID,
		"entries":  result.Entries,
		"files":    result.Files,
		"messages": result.Dispatch.Sent + result.Dispatch.Fallbacks,
	})
}

func validSignature(secret string, body []byte, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), expected)
}
