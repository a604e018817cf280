package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tableorder-backend/config"
	"tableorder-backend/routes"
	"tableorder-backend/services"
	"tableorder-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const notificationTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := utils.NewLogger(cfg.LogLevel, os.Stdout)
	slog.SetDefault(log)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	db, err := config.OpenStore(ctx, cfg.Store, log)
	if err != nil {
		log.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}

	tokens, err := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	if err != nil {
		log.Error("failed to set up tokens", "error", err)
		os.Exit(1)
	}

	notifier := services.NewAsyncNotifier(buildNotifiers(cfg.Notifications, log), notificationTimeout, log)

	r := routes.SetupRouter(routes.Deps{
		Store:         db,
		Auth:          services.NewAuthService(db, tokens, log),
		Menu:          services.NewMenuService(db, log),
		Orders:        services.NewOrderService(db, notifier, log),
		Dashboard:     services.NewDashboardService(db),
		ClientBaseURL: cfg.ClientBaseURL,
		CORSOrigins:   cfg.CORSOrigins,
		Logger:        log,
	})
	printRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", "port", cfg.Server.Port, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if err := notifier.Wait(shutdownCtx); err != nil {
		log.Warn("pending notifications dropped", "error", err)
	}
	if err := db.Close(shutdownCtx); err != nil {
		log.Error("failed to close store", "error", err)
	}
	log.Info("server stopped gracefully")
}

// buildNotifiers enables each channel whose credentials are configured.
func buildNotifiers(cfg config.NotificationConfig, log *slog.Logger) services.Notifiers {
	var notifiers services.Notifiers
	if cfg.SMSEnabled() {
		notifiers = append(notifiers, services.NewSMSNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, log))
		log.Info("sms notifications enabled")
	}
	if cfg.TelegramEnabled() {
		tg, err := services.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warn("telegram notifications disabled", "error", err)
		} else {
			notifiers = append(notifiers, tg)
			log.Info("telegram notifications enabled", "chat_id", cfg.TelegramChatID)
		}
	}
	return notifiers
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
