package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/zfogg/echomatch/internal/cache"
	"github.com/zfogg/echomatch/internal/config"
	"github.com/zfogg/echomatch/internal/container"
	"github.com/zfogg/echomatch/internal/database"
	"github.com/zfogg/echomatch/internal/decoder"
	"github.com/zfogg/echomatch/internal/ingest"
	"github.com/zfogg/echomatch/internal/logger"
	"github.com/zfogg/echomatch/internal/match"
	"github.com/zfogg/echomatch/internal/metrics"
	"github.com/zfogg/echomatch/internal/middleware"
	"github.com/zfogg/echomatch/internal/service"
	"github.com/zfogg/echomatch/internal/store"
	"github.com/zfogg/echomatch/internal/telemetry"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== echomatch server starting ===")
	metrics.Initialize()

	var tracerProvider *trace.TracerProvider
	if cfg.OTELEnabled {
		tracerProvider, err = telemetry.InitTracer(telemetry.Config{
			ServiceName:  cfg.OTELServiceName,
			Environment:  cfg.OTELEnvironment,
			OTLPEndpoint: cfg.OTELEndpoint,
			Enabled:      true,
			SamplingRate: cfg.OTELSamplingRate,
		})
		if err != nil {
			logger.Log.Warn("failed to initialize OpenTelemetry", zap.Error(err))
		} else {
			defer func() {
				if shutdownErr := tracerProvider.Shutdown(context.Background()); shutdownErr != nil {
					logger.Log.Error("failed to shut down tracer provider", zap.Error(shutdownErr))
				}
			}()
		}
	}

	c := container.New().WithLogger(logger.Log)

	var redisClient *cache.RedisClient
	if cfg.RedisHost != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.Log.Warn("failed to connect to redis, lookup caching disabled", zap.Error(err))
			redisClient = nil
		} else {
			c.WithCache(redisClient)
			c.OnCleanup(func(ctx context.Context) error { return redisClient.Close() })
		}
	}

	if err := database.Initialize(); err != nil {
		logger.FatalWithFields("failed to initialize database", err)
	}
	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("failed to run migrations", err)
	}
	c.WithDB(database.DB)
	c.OnCleanup(func(ctx context.Context) error { return database.Close() })

	baseStore := store.NewGormStore(database.DB)
	var fpStore store.Store = baseStore
	if redisClient != nil {
		fpStore = store.NewCachingStore(baseStore, redisClient)
	}
	c.WithStore(fpStore)

	d := decoder.NewFFmpegDecoder(cfg.FFmpegBinary)
	matcher := match.NewMatcher(fpStore)
	c.WithMatcher(matcher)

	pool := ingest.NewPool(cfg.IngestWorkers, d, fpStore, cfg.IngestMaxRetries, logger.Log)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	c.WithIngestPool(pool)
	c.OnCleanup(func(ctx context.Context) error {
		cancel()
		pool.Stop()
		return nil
	})

	if err := c.Validate(); err != nil {
		logger.FatalWithFields("container validation failed", err)
	}

	svc := service.New(pool, matcher, fpStore, d, cfg.IdentifyTimeout, logger.Log)

	router := newRouter(svc, cfg.OTELEnabled)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithFields("server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := c.Cleanup(shutdownCtx); err != nil {
		logger.Log.Error("cleanup failed", zap.Error(err))
	}
}

func newRouter(svc *service.Service, otelEnabled bool) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware(), gin.Recovery())
	router.Use(middleware.GinLoggerMiddleware())
	router.Use(middleware.CorrelationMiddleware())
	if otelEnabled {
		router.Use(middleware.TracingMiddleware("echomatch"))
	}
	router.Use(cors.Default())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.MetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/stats", handleStats(svc))

	ingestLimit := middleware.RedisRateLimitMiddleware(60, time.Minute)
	router.POST("/recordings", ingestLimit, handleAddRecording(svc))
	router.DELETE("/recordings/:id", handleDeleteRecording(svc))
	router.POST("/identify", ingestLimit, handleIdentify(svc))

	return router
}
