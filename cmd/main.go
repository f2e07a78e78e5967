package main

import (
	"civictriage/backend/internal/api/handler"
	"civictriage/backend/internal/attachment"
	"civictriage/backend/internal/complaint"
	"civictriage/backend/internal/config"
	"civictriage/backend/internal/lifecycle"
	"civictriage/backend/internal/localization"
	"civictriage/backend/internal/metrics"
	"civictriage/backend/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	jsonhandler "github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupLogging(settings config.Settings) {
	if settings.LogFormat == "json" {
		log.SetHandler(jsonhandler.New(os.Stderr))
	} else {
		log.SetHandler(text.New(os.Stderr))
	}

	level, err := log.ParseLevel(settings.LogLevel)
	if err != nil {
		log.WithError(err).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if level == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

func setupDependencies(settings config.Settings) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	db, err := gorm.Open(postgres.Open(settings.PostgresDSN()), &gorm.Config{})
	if err != nil {
		log.WithError(err).Fatal("failed to connect PostgreSQL")
	}

	// 2. Redis тримає лише знімок каталогу департаментів, тому без нього працюємо далі
	rdb := redis.NewClient(&redis.Options{
		Addr:     settings.RedisAddr,
		Password: settings.RedisPassword,
		DB:       settings.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Redis unavailable, department catalog will be read from PostgreSQL")
		_ = rdb.Close()
		rdb = nil
	}

	// 3. Міграції
	if err := storage.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	log.Info("database connections established, migrations complete")
	return db, rdb
}

func setupRouter(h *handler.Handler, settings config.Settings) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = config.MaxUploadBytes
	r.Use(gin.Logger(), gin.Recovery())
	// зображення вже стиснені
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/attachments"})))
	r.Use(metrics.Middleware())

	limiter := handler.NewIPRateLimiter(settings.SubmitRatePerSecond, settings.SubmitBurst)
	h.Register(r, h.RateLimit(limiter))
	return r
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn("no .env file loaded")
	}

	settings, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	setupLogging(settings)
	log.WithField("addr", settings.HTTPAddr).Info("starting civictriage backend")

	db, rdb := setupDependencies(settings)
	store := storage.NewStorageService(db, rdb)
	store.CatalogTTL = settings.DepartmentCacheTTL

	policy, err := lifecycle.ParsePolicy(settings.LifecyclePolicy)
	if err != nil {
		log.WithError(err).Fatal("invalid lifecycle policy")
	}

	loc, err := localization.NewLocalizer(settings.LocalesDir)
	if err != nil {
		log.WithError(err).Fatal("failed to load locales")
	}

	complaints := complaint.NewService(store, policy)
	uploader := attachment.NewUploader(store, settings.PublicBaseURL)
	h := handler.NewHandler(store, complaints, uploader, loc, settings)
	if len(h.JWTSecret) == 0 {
		log.Warn("JWT_SECRET is empty, staff endpoints will reject every request")
	}

	metrics.Register()

	server := &http.Server{
		Addr:           settings.HTTPAddr,
		Handler:        setupRouter(h, settings),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server exited")
}
