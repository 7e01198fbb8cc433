package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	allocationHTTP "github.com/givebridge/distribution/internal/allocation/delivery/http"
	allocationQuery "github.com/givebridge/distribution/internal/allocation/usecase/query"
	"github.com/givebridge/distribution/internal/inventory"
	inventoryHTTP "github.com/givebridge/distribution/internal/inventory/delivery/http"
	"github.com/givebridge/distribution/internal/inventory/delivery/messaging"
	inventorydomain "github.com/givebridge/distribution/internal/inventory/domain"
	"github.com/givebridge/distribution/internal/inventory/usecase/command"
	"github.com/givebridge/distribution/internal/plan"
	planHTTP "github.com/givebridge/distribution/internal/plan/delivery/http"
	plandomain "github.com/givebridge/distribution/internal/plan/domain"
	requestHTTP "github.com/givebridge/distribution/internal/request/delivery/http"
	requestdomain "github.com/givebridge/distribution/internal/request/domain"
	requestRepository "github.com/givebridge/distribution/internal/request/repository"
	"github.com/givebridge/distribution/kafka"
	"github.com/givebridge/distribution/pkg/database"
	"github.com/givebridge/distribution/pkg/logger"
	"github.com/givebridge/distribution/pkg/tracing"
)

// @title Distribution Allocation Engine API
// @version 1.0
// @description Inventory-backed distribution allocation engine for a charity donation portal
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "distribution-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting distribution service")

	// Initialize tracer
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "distributiondb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Connect to database
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&inventorydomain.InventoryRecord{},
		&inventorydomain.LedgerEntry{},
		&requestdomain.BeneficiaryRequest{},
		&plandomain.DistributionPlan{},
		&plandomain.PlanItem{},
		&plandomain.DistributionLog{},
	); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Optional Redis read cache
	var redisClient *redis.Client
	if redisAddr := getEnv("REDIS_ADDR", ""); redisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Logger.Error().Err(err).Str("addr", redisAddr).Msg("Redis unavailable, running without cache")
			redisClient = nil
		} else {
			logger.Logger.Info().Str("addr", redisAddr).Msg("Redis cache enabled")
		}
	}

	// Optional Kafka publisher
	var publisher *kafka.Publisher
	brokers := strings.Split(getEnv("KAFKA_BROKERS", ""), ",")
	kafkaEnabled := len(brokers) > 0 && brokers[0] != ""
	if kafkaEnabled {
		publisher, err = kafka.NewPublisher(brokers)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to create Kafka publisher, events disabled")
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	// Initialize handlers with Wire DI
	inventoryHandler, err := inventory.InitializeHTTPHandler(db, redisClient)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize inventory handler")
	}

	planHandler, err := plan.InitializeHTTPHandler(db, publisher)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize plan handler")
	}

	inventoryRepo := inventory.ProvideInventoryRepository(db, redisClient)
	requestRepo := requestRepository.NewGormRequestRepository(db)
	requestHandler := requestHTTP.NewRequestHandler(requestRepo)
	allocationHandler := allocationHTTP.NewAllocationHandler(
		allocationQuery.NewRecommendAllocationsHandler(requestRepo, inventoryRepo),
	)

	// Optional Kafka consumer for donation workflow events
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if kafkaEnabled {
		consumer, err := kafka.NewConsumer(
			brokers,
			getEnv("KAFKA_GROUP_ID", "distribution-service"),
			[]string{kafka.TopicDonationApproved, kafka.TopicDonationReceived},
		)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to create Kafka consumer, donation events disabled")
		} else {
			defer consumer.Close()
			donationHandler := messaging.NewDonationEventHandler(
				inventoryRepo,
				command.NewCreditStockHandler(inventoryRepo),
				command.NewReceiveStockHandler(inventoryRepo),
			)
			donationHandler.Register(consumer)
			if err := consumer.Start(consumerCtx); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to start Kafka consumer")
			}
		}
	}

	// Start HTTP server
	httpPort := getEnv("HTTP_PORT", "8080")
	go startHTTPServer(inventoryHandler, planHandler, requestHandler, allocationHandler, sqlDB, httpPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
}

func startHTTPServer(
	inventoryHandler *inventoryHTTP.InventoryHandler,
	planHandler *planHTTP.PlanHandler,
	requestHandler *requestHTTP.RequestHandler,
	allocationHandler *allocationHTTP.AllocationHandler,
	db *sql.DB,
	port string,
) {
	// Setup router
	router := mux.NewRouter()

	// Register all middlewares using middleware registration system
	middlewareConfig := inventoryHTTP.DefaultMiddlewareConfig()
	inventoryHTTP.RegisterMiddlewares(router, middlewareConfig)

	// Register routes
	inventoryHandler.RegisterRoutes(router)
	planHandler.RegisterRoutes(router)
	requestHandler.RegisterRoutes(router, inventoryHTTP.StaffMiddleware)
	allocationHandler.RegisterRoutes(router, inventoryHTTP.StaffMiddleware)

	// Health check endpoint
	inventoryHandler.RegisterHealthCheck(router, db)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Swagger UI
	inventoryHTTP.RegisterSwaggerDocs(router, httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Msg("HTTP server started")

	if err := http.ListenAndServe(":"+port, inventoryHTTP.SetupCORS(middlewareConfig)(router)); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
