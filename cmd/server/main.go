package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmsdash/internal/cache"
	"github.com/cmsdash/internal/config"
	"github.com/cmsdash/internal/db"
	"github.com/cmsdash/internal/handler"
	"github.com/cmsdash/internal/logger"
	"github.com/cmsdash/internal/router"
	"github.com/cmsdash/internal/upload"
	"github.com/gin-gonic/gin"
)

func main() {
	os.Exit(serve())
}

// serve wires the application and blocks until shutdown. It returns the
// process exit code so deferred cleanup runs before os.Exit.
func serve() int {
	cfg, err := config.Load()
	if err != nil {
		logger.StdLogger().Printf("加载配置失败: %v", err)
		return 1
	}
	logger.Init(cfg.Server.Mode, cfg.Log)
	defer logger.Sync()

	switch cfg.Server.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库
	gdb, err := db.Open(cfg.Database, logger.GormLogger(cfg.Server.Mode))
	if err != nil {
		logger.Errorw("database_open_failed", "error", err)
		return 1
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Warnw("database_close_failed", "error", err)
		}
	}()

	if err := db.Migrate(gdb); err != nil {
		logger.Errorw("database_migrate_failed", "error", err)
		return 1
	}

	readCache := cache.New(cfg.Redis)
	if r, ok := readCache.(*cache.Redis); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := r.Ping(ctx); err != nil {
			logger.Warnw("redis_unavailable", "addr", cfg.Redis.Addr, "error", err)
		}
		cancel()
	}
	defer readCache.Close()

	api := handler.NewAPI(gdb, readCache, upload.NewStore(cfg.Upload))
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupRouter(api, cfg.Server.SessionSecret),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := run(server, time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second); err != nil {
		logger.Errorw("server_stopped", "error", err)
		return 1
	}
	return 0
}

// run serves until SIGINT/SIGTERM and then shuts the server down gracefully.
func run(server *http.Server, shutdownTimeout time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("server_started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Infow("server_shutting_down")
	return server.Shutdown(shutdownCtx)
}
