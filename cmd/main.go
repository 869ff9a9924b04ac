package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/config"
	"github.com/oksasatya/recipe-api/internal/container"
	"github.com/oksasatya/recipe-api/internal/domain/repository"
	"github.com/oksasatya/recipe-api/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/recipe-api/internal/infrastructure/postgres"
	"github.com/oksasatya/recipe-api/internal/infrastructure/storage"
	"github.com/oksasatya/recipe-api/internal/router"
	"github.com/oksasatya/recipe-api/pkg/helpers"
	"github.com/oksasatya/recipe-api/pkg/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, helpers.LogFileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	gin.SetMode(cfg.GinMode)
	validation.Init(cfg.PasswordMinLength)

	ctx := context.Background()
	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	// Storage driver
	var store repository.Store
	switch cfg.DBDriver {
	case "memory":
		logger.Warn("DB_DRIVER=memory: data is kept in process and lost on exit")
		store = memory.NewStore().Repositories()
	default:
		db, err := pginfra.OpenSQL(cfg.PostgresDSN())
		if err != nil {
			logger.Fatalf("open postgres: %v", err)
		}
		if err := pginfra.MigrateUp(db, logger); err != nil {
			logger.Fatalf("migration failed: %v", err)
		}
		_ = db.Close()

		pool, err := pginfra.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatalf("failed to connect to postgres: %v", err)
		}
		cleanups = append(cleanups, pool.Close)
		store = pginfra.NewStore(pool)
	}

	// Redis: token sessions and rate limits
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		cleanups = append(cleanups, func() { _ = rdb.Close() })
		container.SetRedis(rdb)
	} else {
		logger.Warn("REDIS_ADDR not set: sessions are not revocable and rate limits are off")
	}

	// Recipe images: GCS bucket or local directory
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.Fatalf("failed to init GCS client: %v", err)
		}
		cleanups = append(cleanups, func() { _ = gcsClient.Close() })
		container.SetImages(storage.NewGCSStore(gcsClient, cfg.GCSBucket))
	} else {
		container.SetImages(storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL))
	}

	// Elasticsearch search index
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable, search falls back to title match")
		} else {
			container.SetES(es)
		}
	}

	// RabbitMQ publisher for welcome e-mails
	if cfg.MailEnabled() {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, cfg.AppName)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, welcome e-mails disabled")
		} else {
			cleanups = append(cleanups, pub.Close)
			container.SetRabbitPub(pub)
		}
	}

	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL, cfg.AppName)

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetStore(store)
	container.SetJWT(jwtManager)

	r := router.NewEngine()
	if cfg.GCSBucket == "" && strings.HasPrefix(cfg.MediaURL, "/") {
		r.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "driver": cfg.DBDriver}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}
