package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Nazarious-ucu/waitlist-api/internal/app"
	"github.com/Nazarious-ucu/waitlist-api/internal/config"
	"github.com/Nazarious-ucu/waitlist-api/pkg/logger"
)

// @title Waitlist API
// @version 1.0
// @description Double opt-in email waitlist
// @host localhost:8080
// @BasePath /
// @securityDefinitions.basic BasicAuth
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Panicf("failed to load configuration: %v", err)
	}

	l := logger.NewLogger(cfg.LogsPath, "waitlist_api")
	defer func() {
		_ = l.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.New(*cfg, l)

	serviceContainer, err := application.Init(ctx)
	if err != nil {
		l.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := application.Start(ctx, serviceContainer); err != nil {
		l.Error("application stopped with error", zap.Error(err))
		return
	}
	l.Info("application shutdown successfully")
}
