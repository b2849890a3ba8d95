package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/graphpilot/relay/internal/assistant"
	"github.com/graphpilot/relay/internal/config"
	"github.com/graphpilot/relay/internal/dataservice"
	"github.com/graphpilot/relay/internal/relay"
	"github.com/graphpilot/relay/internal/server"
	"github.com/graphpilot/relay/internal/storage"
	"github.com/graphpilot/relay/internal/storage/sqlite"
	"github.com/graphpilot/relay/internal/telemetry"
	"github.com/graphpilot/relay/internal/tools"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("RELAY_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize OpenTelemetry
	shutdown, err := telemetry.InitTracer(telemetry.Config{
		ServiceName: "graph-relay",
		Environment: cfg.Telemetry.Environment,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	graphClient := dataservice.NewClient(dataservice.WithBaseURL(cfg.DataService.BaseURL))

	assistantOpts := []assistant.ClientOption{}
	if cfg.Assistant.BaseURL != "" {
		assistantOpts = append(assistantOpts, assistant.WithBaseURL(cfg.Assistant.BaseURL))
	}
	provider := assistant.NewClient(cfg.Assistant.APIKey, assistantOpts...)

	registry := tools.NewRegistry(tools.GraphCatalog(graphClient)...)
	dispatcher := tools.NewDispatcher(registry, logger)
	translator := relay.NewTranslator(provider, dispatcher, logger)

	var store storage.RunStore
	if cfg.Storage.Path != "" {
		store, err = sqlite.New(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to open run store: %v", err)
		}
		defer store.Close()
	}

	orchestrator := relay.NewOrchestrator(provider, translator, cfg.Assistant.AgentID, store, logger)

	srv := server.New(cfg.Server.Port, logger,
		server.NewChatHandler(orchestrator, logger),
		server.NewGraphHandler(graphClient, logger),
	)

	logger.Info("relay configured",
		slog.String("data_service", cfg.DataService.BaseURL),
		slog.Bool("run_store", store != nil),
		slog.Int("tools", len(registry.Names())),
	)

	// Serve until SIGINT/SIGTERM, then drain and run the deferred
	// cleanup (tracer flush, run store close).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		logger.Error("server failed", slog.String("error", err.Error()))
		return
	}

	logger.Info("relay shutdown complete")
}
