package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"wayfinder_backend/internal/geocode"
	apphttp "wayfinder_backend/internal/http"
	"wayfinder_backend/internal/http/router"
	"wayfinder_backend/internal/intent"
	"wayfinder_backend/internal/search"
	"wayfinder_backend/internal/search/service"
	"wayfinder_backend/internal/stations"
	"wayfinder_backend/internal/verify"
	"wayfinder_backend/platform/config"
	"wayfinder_backend/platform/events"
	"wayfinder_backend/platform/logger"
	"wayfinder_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	directory, err := stations.Load(ctx, cfg)
	if err != nil {
		log.Error("failed to load station directory", "error", err)
		panic("failed to load station directory: " + err.Error())
	}
	log.Info("station directory loaded", "stations", directory.Len())

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	intentClient, err := intent.NewClient(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize intent client", "error", err)
		panic("failed to initialize intent client: " + err.Error())
	}
	if intentClient == nil {
		log.Warn("GEMINI_API_KEY not configured; searches degrade to station matches only")
	}

	geocodeModule := geocode.NewModule(cfg, log)
	stationsModule := stations.NewModule(directory)

	// The coordinator takes interfaces; a nil *intent.Client must stay a
	// nil interface value.
	var parser service.IntentParser
	if intentClient != nil {
		parser = intentClient
	}

	searchModule := search.NewModule(cfg, parser, geocodeModule.Enricher(), directory, eventBus, val, log)

	// Verification runs off the critical path, triggered by search.completed.
	verifyModule := verify.NewModule(cfg, searchModule.Coordinator(), log)
	verifyModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			searchModule,
			stationsModule,
			geocodeModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}
