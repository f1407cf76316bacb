package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"basegraph.app/dropbox2slack/common/id"
	"basegraph.app/dropbox2slack/common/logger"
	"basegraph.app/dropbox2slack/common/otel"
	"basegraph.app/dropbox2slack/core/config"
	"basegraph.app/dropbox2slack/internal/cursor"
	"basegraph.app/dropbox2slack/internal/http/middleware"
	httprouter "basegraph.app/dropbox2slack/internal/http/router"
	"basegraph.app/dropbox2slack/internal/service"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "dropbox2slack starting",
		"env", cfg.Env,
		"target_dir", cfg.Dropbox.TargetDir,
		"cursor_backend", cfg.Cursor.Backend,
		"signature_check", cfg.Dropbox.SignatureCheckEnabled(),
	)

	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	store, closeStore, err := cursor.Open(ctx, cfg.Cursor)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open cursor store", "error", err, "backend", cfg.Cursor.Backend)
		os.Exit(1)
	}
	defer closeStore()
	slog.InfoContext(ctx, "cursor store ready", "backend", cfg.Cursor.Backend)

	services := service.NewServices(service.ServicesConfig{
		Config: cfg,
		Store:  store,
		Logger: slog.Default(),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// a notification runs the whole sync before answering
		WriteTimeout: cfg.SyncTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		DropboxAppSecret: cfg.Dropbox.AppSecret,
	})

	return router
}

const banner = `
 ____                  _                 ____  ____  _            _
|  _ \ _ __ ___  _ __ | |__   _____  __ |___ \/ ___|| | __ _  ___| | __
| | | | '__/ _ \| '_ \| '_ \ / _ \ \/ /   __) \___ \| |/ _' |/ __| |/ /
| |_| | | | (_) | |_) | |_) | (_) >  <   / __/ ___) | | (_| | (__|   <
|____/|_|  \___/| .__/|_.__/ \___/_/\_\ |_____|____/|_|\__,_|\___|_|\_\
                |_|
`
