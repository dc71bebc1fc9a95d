package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DhanaADS/crm-dashboard-sub000/config"
	"github.com/DhanaADS/crm-dashboard-sub000/external/gmail"
	"github.com/DhanaADS/crm-dashboard-sub000/external/telegram"
	"github.com/DhanaADS/crm-dashboard-sub000/internal/handlers"
	"github.com/DhanaADS/crm-dashboard-sub000/internal/routes"
	"github.com/DhanaADS/crm-dashboard-sub000/models"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	config.InitJWT()
	config.ConnectDB()
	config.ConnectRedis()
	config.InitGemini()

	if err := config.DB.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.Employee{},
		&models.Order{},
		&models.OrderSite{},
		&models.InventoryItem{},
		&models.IncomingEmail{},
		&models.PricingRule{},
	); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}

	if token := os.Getenv("GMAIL_ACCESS_TOKEN"); token != "" {
		handlers.Mailbox = gmail.NewClient(token)
	} else {
		slog.Warn("GMAIL_ACCESS_TOKEN is not set, mailbox preview is disabled")
	}

	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if botToken != "" && chatID != "" {
		handlers.Notifier = telegram.NewClient(botToken, chatID)
	} else {
		slog.Warn("Telegram credentials are not set, order notifications are disabled")
	}

	go handlers.GlobalHub.Run()

	r := gin.Default()
	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
}
