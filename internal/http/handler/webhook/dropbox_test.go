package webhook_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/dropbox2slack/internal/http/handler/webhook"
	"basegraph.app/dropbox2slack/internal/service"
)

type fakeSyncService struct {
	result *service.SyncResult
	err    error
	calls  int
}

func (f *fakeSyncService) Run(ctx context.Context) (*service.SyncResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

var _ = Describe("DropboxWebhookHandler", func() {
	var (
		router *gin.Engine
		sync   *fakeSyncService
		buf    *bytes.Buffer
	)

	setup := func(appSecret string) {
		router = gin.New()
		h := webhook.NewDropboxWebhookHandler(sync, appSecret)
		router.GET("/", h.Verify)
		router.POST("/", h.HandleNotification)
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		buf = &bytes.Buffer{}
		slog.SetDefault(slog.New(slog.NewJSONHandler(buf, nil)))
		sync = &fakeSyncService{result: &service.SyncResult{
			RunID:    42,
			Entries:  3,
			Files:    2,
			Dispatch: service.DispatchResult{Sent: 1, Fallbacks: 1},
		}}
		setup("")
	})

	Describe("Verify", func() {
		It("echoes the challenge as plain text", func() {
			req := httptest.NewRequest(http.MethodGet, "/?challenge=abc", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("abc"))
			Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/plain"))
			Expect(w.Header().Get("X-Content-Type-Options")).To(Equal("nosniff"))
			Expect(sync.calls).To(BeZero())
		})

		It("rejects an empty challenge", func() {
			req := httptest.NewRequest(http.MethodGet, "/?challenge=", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("missing challenge"))
		})

		It("rejects a request without a challenge", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("missing challenge"))
		})
	})

	Describe("HandleNotification", func() {
		It("runs a sync and reports the summary", func() {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"list_folder":{"accounts":["dbid:x"]}}`))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(sync.calls).To(Equal(1))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp).To(HaveKeyWithValue("status", "ok"))
			Expect(resp).To(HaveKeyWithValue("files", BeNumerically("==", 2)))
			Expect(resp).To(HaveKeyWithValue("messages", BeNumerically("==", 2)))
		})

		It("accepts an empty body", func() {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("returns 500 when the sync fails", func() {
			sync.err = errors.New("bootstrapping cursor: dropbox unavailable")

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(buf.String()).To(ContainSubstring("dropbox change sync failed"))
		})

		Context("with an app secret", func() {
			body := []byte(`{"delta":{"users":[12345]}}`)

			BeforeEach(func() {
				setup("app-secret")
			})

			It("accepts a valid signature", func() {
				req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
				req.Header.Set("X-Dropbox-Signature", sign("app-secret", body))
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				Expect(w.Code).To(Equal(http.StatusOK))
				Expect(sync.calls).To(Equal(1))
			})

			It("rejects a missing signature", func() {
				req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				Expect(w.Code).To(Equal(http.StatusForbidden))
				Expect(sync.calls).To(BeZero())
			})

			It("rejects a signature made with another secret", func() {
				req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
				req.Header.Set("X-Dropbox-Signature", sign("other", body))
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				Expect(w.Code).To(Equal(http.StatusForbidden))
				Expect(sync.calls).To(BeZero())
			})

			It("rejects a non-hex signature", func() {
				req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
				req.Header.Set("X-Dropbox-Signature", "not-hex")
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				Expect(w.Code).To(Equal(http.StatusForbidden))
			})
		})
	})
})
