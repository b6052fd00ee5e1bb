package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-seat-hold-api/internal/api"
	"github.com/sanosuguru/go-seat-hold-api/internal/api/handler"
	custommw "github.com/sanosuguru/go-seat-hold-api/internal/api/middleware"
	"github.com/sanosuguru/go-seat-hold-api/internal/application"
	"github.com/sanosuguru/go-seat-hold-api/internal/config"
	"github.com/sanosuguru/go-seat-hold-api/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-seat-hold-api/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-seat-hold-api/internal/infrastructure/redis"
	"github.com/sanosuguru/go-seat-hold-api/internal/pkg/logger"
	"github.com/sanosuguru/go-seat-hold-api/internal/pkg/metrics"
	"github.com/sanosuguru/go-seat-hold-api/internal/worker"
)

func main() {
	// .env があれば読み込む（ローカル開発用）
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.NewLogger(os.Getenv("APP_ENV"))
	logger.Set(log)
	defer func() {
		_ = logger.Sync()
	}()

	// PostgreSQL
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// リポジトリ
	eventRepo := postgres.NewEventRepository(db)
	holdRepo := postgres.NewHoldRepository(db)
	invRepo := postgres.NewInventoryRepository(db)
	txManager := postgres.NewTxManager(db)

	// シードデータ（イベントが空の場合のみ）
	if err := postgres.SeedEvents(context.Background(), eventRepo, invRepo); err != nil {
		logger.Fatal("シードデータ投入に失敗", zap.Error(err))
	}

	// Redis
	redisClient, err := redisinfra.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Redis接続に失敗", zap.Error(err))
	}
	defer redisClient.Close()

	lockManager := redisinfra.NewLockManager(redisClient)
	rateLimiter := redisinfra.NewRateLimiter(redisClient, cfg.Hold.RateLimitPerMinute)
	cache := redisinfra.NewAvailabilityCache(redisClient)

	// RabbitMQ（BROKER_URL 未設定なら発行なしで動く）
	var publisher *rabbitmq.Publisher
	if cfg.Broker.URL != "" {
		publisher, err = rabbitmq.NewPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			logger.Fatal("RabbitMQ接続に失敗", zap.Error(err))
		}
		defer publisher.Close()
	} else {
		logger.Warn("BROKER_URLが未設定のため予約イベントは発行されません")
	}

	// メトリクス
	m := metrics.New()

	// サービス
	eventService := application.NewEventService(eventRepo, invRepo, cache)
	holdService := application.NewHoldService(holdRepo, eventRepo, invRepo, txManager, lockManager, rateLimiter, cache, m, cfg.Hold)
	reservationService := application.NewReservationService(holdRepo, invRepo, txManager, cache, publisher, m)

	// 期限切れホールドのスイーパー
	sweeper := worker.NewExpiredHoldSweeper(reservationService, cfg.Hold.SweepInterval)
	go sweeper.Start(context.Background())

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	custommw.SetupMiddleware(e)
	e.Use(custommw.PrometheusMiddleware(m))

	// ハンドラー
	healthHandler := handler.NewHealthHandler()
	eventHandler := handler.NewEventHandler(eventService)
	holdHandler := handler.NewHoldHandler(holdService)
	reservationHandler := handler.NewReservationHandler(reservationService, holdService)

	// ルーティング
	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)
	v1.GET("/events", eventHandler.List)
	v1.GET("/events/:id", eventHandler.GetByID)

	authed := v1.Group("", custommw.JWTAuth(cfg.Auth.JWTSecret))
	authed.POST("/events/:id/holds", holdHandler.Create)
	authed.GET("/holds/:id", holdHandler.GetByID)
	authed.POST("/reservations/:id/confirm", reservationHandler.Confirm)
	authed.POST("/reservations/:id/cancel", reservationHandler.Cancel)
	authed.GET("/me/reservations", reservationHandler.ListMine)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsBasicAuth())

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
