package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/logging"
	"yatube/internal/router"
	"yatube/internal/services"
	"yatube/internal/store"
	"yatube/internal/store/gormstore"
	"yatube/internal/store/memstore"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, envFound, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	if !envFound {
		logger.Info("No .env file found, using environment variables")
	}

	gin.SetMode(cfg.GinMode)

	st, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pages, closePages, err := openPageCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open page cache", zap.Error(err))
	}
	defer closePages()

	images := services.NewImageStorage(cfg.MediaRoot, int64(cfg.MaxUploadMB)<<20)

	r, err := router.New(router.Deps{
		Config: cfg,
		Store:  st,
		Images: images,
		Pages:  pages,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logger.Info("Yatube server starting", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func openStore(cfg config.Config, logger *zap.Logger) (store.Store, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on exit")
		return memstore.New(), func() {}, nil
	}

	gdb, err := db.Open(cfg.DBDriver, cfg.DatabaseURL, cfg.LogDev)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Database connected and migrated", zap.String("driver", cfg.DBDriver))

	closeDB := func() {
		sqlDB, err := gdb.DB()
		if err != nil {
			logger.Error("get raw db", zap.Error(err))
			return
		}
		if err := sqlDB.Close(); err != nil {
			logger.Error("close database", zap.Error(err))
		}
	}
	return gormstore.New(gdb), closeDB, nil
}

func openPageCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (cache.Cache, func(), error) {
	if !cfg.PageCacheEnabled {
		return nil, func() {}, nil
	}
	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := cache.NewRedis(pingCtx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("page cache: redis", zap.String("addr", cfg.RedisAddr))
		return rc, func() {
			if err := rc.Close(); err != nil {
				logger.Error("close redis", zap.Error(err))
			}
		}, nil
	}

	lc, err := cache.NewLRU(cfg.PageCacheSize)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("page cache: in-process lru", zap.Int("size", cfg.PageCacheSize))
	return lc, func() {}, nil
}
