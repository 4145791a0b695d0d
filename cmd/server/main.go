// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"fitplan/config"
	"fitplan/internal/ai"
	"fitplan/internal/bot"
	"fitplan/internal/db"
	"fitplan/internal/server"
	"fitplan/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New("").Fatalw("Failed to load config", "error", err)
	}

	l := logger.New(cfg.Log.Mode)
	defer l.Sync()
	l.Infow("Starting fitness planner...")

	if cfg.Log.Mode != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Open the profile store, retrying while a database server comes up
	var profiles db.ProfileRepository
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		profiles, err = db.Open(cfg)
		if err == nil {
			break
		}
		l.Errorw("Failed to open profile store, retrying...", "driver", cfg.Storage.Driver, "error", err)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	if profiles == nil {
		l.Fatalw("Failed to open profile store after multiple attempts", "error", err)
	}
	defer profiles.Close()

	aiClient, err := ai.New(cfg)
	if err != nil {
		l.Fatalw("Failed to create AI client", "error", err)
	}

	l.Infow("Configuration",
		"ai_provider", aiClient.Source(),
		"ai_configured", aiClient.Configured(),
		"store", cfg.Storage.Driver,
		"persistent_store", db.IsPersistent(profiles),
		"static_dir", cfg.Server.StaticDir,
		"telegram", cfg.Telegram.Token != "")
	if !aiClient.Configured() {
		l.Warnw("AI_API_KEY is not set; image analysis and chat will return sample answers")
	}

	handler := server.NewHandler(profiles, aiClient, l, server.Options{
		StaticDir:      cfg.Server.StaticDir,
		UploadDir:      cfg.Server.UploadDir,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})
	httpServer := server.NewServer(cfg.Server.Port, handler.Routes(), l)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatalw("Failed to start HTTP server", "error", err)
		}
	}()

	// The Telegram front end is optional
	var telegramBot *bot.TelegramBot
	if cfg.Telegram.Token != "" {
		telegramBot, err = bot.NewTelegramBot(cfg.Telegram.Token, profiles, aiClient, cfg.AI.Timeout, l)
		if err != nil {
			l.Fatalw("Failed to create Telegram bot", "error", err)
		}
		if err := telegramBot.Start(context.Background()); err != nil {
			l.Fatalw("Failed to start Telegram bot", "error", err)
		}
		l.Infow("Telegram bot started successfully")
	}

	// Wait for termination signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Infow("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Stop HTTP server first
	if err := httpServer.Stop(ctx); err != nil {
		l.Errorw("Error during HTTP server shutdown", "error", err)
	}

	if telegramBot != nil {
		if err := telegramBot.Stop(ctx); err != nil {
			l.Errorw("Error during bot shutdown", "error", err)
		}
	}

	l.Infow("Stopped successfully")
}
