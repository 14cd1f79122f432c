package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"shopvoice/internal/config"
	"shopvoice/internal/handlers"
	"shopvoice/internal/server"
	"shopvoice/internal/upstream"
)

func main() {
	// Local development convenience; production sets real env vars.
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.ShopAPIURL == "" || cfg.ShopAPIKey == "" {
		log.Fatal("SHOP_API_URL and SHOP_API_KEY are required")
	}
	if cfg.WebhookSecret == "" {
		log.Println("WEBHOOK_SECRET is empty; webhook signature verification is disabled")
	}

	heuristics, err := config.LoadHeuristics()
	if err != nil {
		log.Fatalf("Failed to load search heuristics: %v", err)
	}

	level := slog.LevelInfo
	if cfg.IsDev() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	shop := upstream.New(cfg.ShopAPIURL, cfg.ShopAPIKey, cfg.UpstreamTimeout)
	tools := handlers.New(cfg, shop, heuristics, logger)

	srv := server.New(cfg)
	srv.RegisterRoutes(tools, logger)

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
