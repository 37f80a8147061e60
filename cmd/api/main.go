package main

import (
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
	"todoservice/internal/token"
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

	// Initialize layers
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, repo, logger)
	signer := token.NewSigner(cfg.Secret)
	h := handler.NewHandler(svc, signer)

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
		Handler:      handler.Router(h, signer),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting API server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
