package main

import (
	"chat-room/api"
	"chat-room/domain"
	"chat-room/infrastructure/storage"
	"chat-room/repositories"
	"chat-room/runtime/workers"
	"chat-room/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat room terminated with error: %v\n", err)
	}
	os.Exit(code)
}

type stores struct {
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	close        func()
}

// run initializes all components, manages the server lifecycle and centralizes error reporting.
// Returning instead of exiting lets every deferred cleanup run.
func run() (int, error) {
	// 1. Configuration & Logger
	// A missing .env file is fine, the environment may already be set.
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Store
	store, err := openStores(ctx, config, log)
	if err != nil {
		return exitRuntime, err
	}
	defer store.close()

	// 3. Services
	clock := domain.SystemClock{}
	messageService := services.NewMessageService(log, store.messages, store.participants, clock)
	presenceService := services.NewPresenceService(log, store.participants, messageService, clock)

	// 4. Background reaper under supervision
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(workers.NewReaperWorker(log, presenceService, clock, config.ReapInterval, config.StaleThreshold))
	supervised := make(chan struct{})
	go func() {
		supervisor.Run(ctx)
		close(supervised)
	}()

	// 5. HTTP server
	if config.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(log, presenceService, messageService)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           api.NewRouter(log, handler, config.CorsOrigin),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "store", config.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown incomplete", "error", err)
	}
	supervisor.Stop()
	<-supervised
	log.Info("Program stopped cleanly")

	return code, runErr
}

func openStores(ctx context.Context, config Config, log *slog.Logger) (stores, error) {
	switch config.StoreDriver {
	case "mongo":
		db, err := storage.OpenConnection(ctx, config.MongoURI, config.MongoDatabase, config.MongoTimeout)
		if err != nil {
			return stores{}, fmt.Errorf("database opening failed: %w", err)
		}
		return stores{
			participants: storage.NewParticipantRepository(db, log),
			messages:     storage.NewMessageRepository(db, log),
			close: func() {
				log.Info("Disconnecting MongoDB...")
				_ = db.Client().Disconnect(context.Background())
			},
		}, nil
	default:
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return stores{}, fmt.Errorf("database opening failed: %w", err)
		}
		return stores{
			participants: repositories.NewParticipantRepository(db, log),
			messages:     repositories.NewMessageRepository(db, log),
			close: func() {
				log.Info("Closing BadgerDB...")
				_ = db.Close()
			},
		}, nil
	}
}
