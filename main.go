package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nexora/internal/app"
	"nexora/internal/config"
	"nexora/internal/logging"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	cfg, err := loadConfig(viper.New())
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	server, err := app.NewApp(cfg, app.Options{})
	if err != nil {
		zap.S().Fatalf("failed to create app: %v", err)
	}
	if err := server.Start(context.Background()); err != nil {
		zap.S().Fatalf("failed to start background jobs: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zap.S().Infof("starting server on %s", cfg.AppPort)
		if err := server.Fiber.Listen(cfg.AppPort); err != nil {
			zap.S().Fatalf("server failed to start: %v", err)
		}
	}()

	<-quit
	zap.S().Info("shutting down server...")
	if err := server.Shutdown(); err != nil {
		zap.S().Errorf("error during shutdown: %v", err)
	}
	zap.S().Info("server gracefully stopped")
}

// loadConfig reads config.yaml when present and overlays the environment.
func loadConfig(v *viper.Viper) (config.Config, error) {
	if err := config.ReadFile(v); err != nil {
		return config.Config{}, err
	}
	return config.Load(v)
}
