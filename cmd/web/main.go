package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/sirupsen/logrus"
	_ "github.com/lib/pq"

	"todoservice/internal/config"
	"todoservice/internal/handler"
	"todoservice/internal/mail"
	"todoservice/internal/report"
	"todoservice/internal/repository"
	"todoservice/internal/service"
	"todoservice/internal/session"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Session store: Redis when configured, in-process otherwise
	var store session.Store
	if cfg.RedisURL != "" {
		redisStore, err := session.NewRedisStore(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		store = redisStore
	} else {
		logger.Warn("REDIS_URL not set, sessions will not survive restarts")
		store = session.NewMemoryStore()
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, repo, logger)
	sessions := session.NewManager(cfg.Secret, store)
	h := handler.NewWebHandler(svc, sessions)

	// Ops digest, only when SMTP is configured
	if cfg.DigestEnabled() {
		digest := report.NewDigest(cfg, repo, mail.NewSender(cfg, logger), logger)
		if err := digest.Start(); err != nil {
			logger.Fatalf("Failed to start digest: %v", err)
		}
		defer digest.Stop()
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.WebRouter(h),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting web server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
