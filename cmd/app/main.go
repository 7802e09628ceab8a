package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "channel-admin-backend/docs"
	"channel-admin-backend/internal/common/cache"
	"channel-admin-backend/internal/common/config"
	"channel-admin-backend/internal/common/logger"
	commonMiddleware "channel-admin-backend/internal/common/middleware"
	adminHttp "channel-admin-backend/internal/features/admin/delivery/http"
	adminRepo "channel-admin-backend/internal/features/admin/repository/postgres"
	adminService "channel-admin-backend/internal/features/admin/service"
	botHttp "channel-admin-backend/internal/features/bot/delivery/http"
	channelHttp "channel-admin-backend/internal/features/channel/delivery/http"
	channelRepo "channel-admin-backend/internal/features/channel/repository/postgres"
	channelService "channel-admin-backend/internal/features/channel/service"
	"channel-admin-backend/internal/features/statistics"
	"channel-admin-backend/internal/middleware"
	"channel-admin-backend/internal/platform/postgres"
	"channel-admin-backend/internal/platform/redis"
	"channel-admin-backend/internal/platform/telegram"
)

// @title           Channel Admin API
// @version         1.0
// @description     API server for the Telegram channel admin dashboard. All endpoints require init_data authentication.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name init_data
// @description Telegram Mini App init_data string for authentication

// @tag.name channels
// @tag.description Channel tracking - synchronization and statistics snapshots

// @tag.name admins
// @tag.description Admin assignments - roles, permissions and activity logs

// @tag.name templates
// @tag.description Reusable permission sets

// @tag.name bot
// @tag.description Bot connection diagnostics

func main() {
	// Загружаем переменные окружения
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	// Инициализируем конфигурацию
	cfg := config.Load()

	// Инициализируем логгеры
	logger.Init("channel-admin-backend", cfg.Debug)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting Channel Admin Backend",
		zap.String("version", "1.0.0"),
		zap.Bool("debug", cfg.Debug),
	)

	// Инициализируем базу данных
	postgresClient, err := postgres.NewClient(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer postgresClient.Close()

	zapLogger.Info("Database connection established")

	// Инициализируем Redis
	redisClient, err := redis.Open(context.Background(), cfg)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Инициализируем кэш
	cacheService := cache.NewCacheService(redisClient)
	zapLogger.Info("Cache service initialized")

	// Инициализируем клиент Telegram и шлюз с кэшем
	telegramClient, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.APIBaseURL)
	if err != nil {
		zapLogger.Fatal("Failed to initialize Telegram client", zap.Error(err))
	}

	gateway := telegram.NewGateway(telegramClient, cfg.Telegram.CacheTTL, nil)
	aggregator := statistics.NewAggregator(telegramClient)

	zapLogger.Info("Telegram gateway initialized",
		zap.Int64("bot_id", telegramClient.BotID()),
		zap.Duration("cache_ttl", cfg.Telegram.CacheTTL),
	)

	// Инициализируем репозитории
	channelRepository := channelRepo.NewPostgresRepository(postgresClient.GetDB())
	adminRepository := adminRepo.NewPostgresRepository(postgresClient.GetDB())

	zapLogger.Info("Repositories initialized")

	// Инициализируем сервисы
	channelSvc := channelService.NewChannelService(channelRepository, gateway, aggregator, cacheService, cfg.Debug, zapLogger)
	adminSvc := adminService.NewAdminService(adminRepository, cfg.Debug, zapLogger)

	zapLogger.Info("Services initialized")

	// Настраиваем Gin
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Добавляем middleware
	router.Use(commonMiddleware.RequestID())
	router.Use(commonMiddleware.ErrorHandler(zapLogger))
	router.Use(gin.Recovery())

	// Настраиваем CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "init_data"}
	router.Use(cors.New(corsConfig))

	zapLogger.Info("Middleware configured")

	// Настраиваем роуты
	v1 := router.Group("/api/v1")
	v1.Use(middleware.InitDataMiddleware(cfg.Telegram.BotToken, cfg.Debug))

	channelHttp.NewChannelHandler(channelSvc, zapLogger).RegisterRoutes(v1)
	adminHttp.NewAdminHandler(adminSvc, zapLogger).RegisterRoutes(v1)
	botHttp.NewBotHandler(telegramClient, zapLogger).RegisterRoutes(v1)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	setupHealthRoutes(router, postgresClient, redisClient)

	zapLogger.Info("Routes configured")

	// Создаем HTTP сервер
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		zapLogger.Info("Starting HTTP server", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Ждем сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func setupHealthRoutes(router *gin.Engine, postgresClient *postgres.Client, redisClient *redis.Client) {
	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "channel-admin-backend",
		})
	})

	// Liveness probe
	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Readiness probe
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		// Проверка Postgres
		if err := postgresClient.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "postgres unavailable",
				"details": err.Error(),
			})
			return
		}

		// Проверка Redis
		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "channel-admin-backend",
		})
	})
}
