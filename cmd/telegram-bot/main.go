package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fitguru-bot/internal/config"
	"fitguru-bot/internal/llm"
	"fitguru-bot/internal/metrics"
	"fitguru-bot/internal/telegram"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment directly")
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing model key is not fatal: the bot runs with the profile
	// calculator and meal log, and tells users the AI features are off.
	var textGen llm.TextGenerator
	switch {
	case cfg.ModelAPIKey() == "":
		log.Println("No model API key configured, AI features disabled")
	case cfg.LLMProvider == "gemini":
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, llm.DefaultGeminiModel, 0.3)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer gemini.Close()
		textGen = gemini
	default:
		textGen = llm.NewGroqClient(cfg.GroqAPIKey, llm.DefaultGroqModel, 0.3)
	}

	usageStore, err := metrics.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open metrics store: %v", err)
	}
	defer usageStore.Close()

	bot, err := telegram.NewBot(cfg, textGen, usageStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	if cfg.TelegramWebhookURL == "" {
		log.Println("No webhook URL configured, long polling for updates")
		bot.Run(ctx)
		log.Println("Bot exiting")
		return
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
