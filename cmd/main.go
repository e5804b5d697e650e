package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/esinx/student-tests/internal/adapter/logging"
	"github.com/esinx/student-tests/internal/adapter/postgres/testcaserepository"
	"github.com/esinx/student-tests/internal/adapter/redis/runsetport"
	"github.com/esinx/student-tests/internal/config"
	"github.com/esinx/student-tests/internal/core/services/assignment"
	"github.com/esinx/student-tests/internal/core/services/results"
	"github.com/esinx/student-tests/internal/core/services/submission"
	logger2 "github.com/esinx/student-tests/internal/global/logger"
	"github.com/esinx/student-tests/internal/handlers"
	http2 "github.com/esinx/student-tests/internal/http"
)

func main() {
	initReader()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger2.Info("Starting student test bank service")

	logger := logger2.Logger

	sysCfg := config.NewSystemConfig()
	if sysCfg.DebugMode {
		logger = logging.NewDevelopmentLogger()
	}

	if sysCfg.ServerConfig.AuthToken == "" {
		logger.Warn("AUTH_TOKEN not set, mutating endpoints will reject every request")
	}

	db, err := setupDatabase(sysCfg)
	if err != nil {
		logger.Error("Failed to set up database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     sysCfg.RedisConfig.Url,
		Password: sysCfg.RedisConfig.Password,
		DB:       sysCfg.RedisConfig.DB,
	})
	defer redisClient.Close()

	// SECONDARY PORTS
	testRepo := testcaserepository.NewTestCaseRepository(db, logger, "public")
	runSets := runsetport.NewRunSetRepository(redisClient, logger)

	ctxBg := context.Background()
	if err := testRepo.EnsureSchema(ctxBg); err != nil {
		logger.Error("Failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// services
	submissionSvc := submission.NewSubmissionService(testRepo, runSets, logger, sysCfg.SubmissionConfig)
	resultSvc := results.NewResultService(testRepo, runSets, logger)
	assignmentSvc := assignment.NewAssignmentService(testRepo, runSets, logger)
	serviceProvider := http2.NewServiceProvider(submissionSvc, resultSvc, assignmentSvc)

	// server
	middleware := handlers.New(sysCfg.ServerConfig.AuthToken)
	httpServer := http2.NewServer(sysCfg.ServerConfig.Port, "studentTests", *serviceProvider, middleware, logger)
	if err := httpServer.Init(); err != nil {
		logger.Error("Failed to init http server", "error", err)
		os.Exit(1)
	}
	httpServer.Start(ctxBg)

	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(ctxBg, 5*time.Second)
	defer cancel()
	httpServer.Stop(ctx)

	logger.Info("successfully shutdown server")
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(cfg *config.AppConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.PostgresConfig.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// initReader loads the optional .env file; ENV_FILE overrides the path
func initReader() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		logger2.Warn("No env file loaded", "file", envFile)
	}
}
