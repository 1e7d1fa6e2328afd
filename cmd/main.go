/*
Package main is the entry point for the guildchat server.

It loads configuration, initializes logging, opens the message store, starts the
presence Hub and message Relay behind the HTTP router, and shuts everything down
gracefully on SIGINT or SIGTERM.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guildchat/internal/app/chat"
	"guildchat/internal/app/db"
	"guildchat/internal/app/message"
	"guildchat/internal/configs"
	"guildchat/internal/handler"
	"guildchat/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("message_store", cfg.MessageStore).
		Dur("join_interval", cfg.JoinInterval).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open message store")
	}
	defer store.Close()

	hub := chat.NewHub(chat.WithJoinInterval(cfg.JoinInterval))
	relay := chat.NewRelay(hub, store)

	router, stopLimiters := handler.Router(&handler.AppDeps{
		Hub:    hub,
		Relay:  relay,
		Store:  store,
		Config: cfg,
	})
	defer stopLimiters()

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("guildchat server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	// Hijacked websocket connections are not tracked by Shutdown; the Hub closes them.
	hub.Shutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}

func openStore(ctx context.Context, cfg *configs.AppConfig) (message.Store, error) {
	if cfg.MessageStore == configs.StoreMemory {
		logx.Warn("Using in-memory message store; history is lost on restart.")
		return message.NewMemoryStore(), nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	return db.NewMessageStore(pool, pool.Close), nil
}
