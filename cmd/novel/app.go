package main

import (
	"context"
	"fmt"

	"visualnovel/cmd/novel/ui"
	"visualnovel/internal/art"
	"visualnovel/internal/config"
	"visualnovel/internal/debug"
	"visualnovel/internal/llm"
	"visualnovel/internal/logging"
	"visualnovel/internal/novel"
	"visualnovel/internal/observability"
	"visualnovel/internal/storage"
)

func createApp() (ui.Model, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return ui.Model{}, nil, err
	}

	debugLogger := debug.NewLogger(cfg.Debug, cfg.DebugLog)

	ctx := context.Background()
	tracingConfig := observability.LoadConfigFromEnv()
	tracerProvider, err := observability.InitTracing(ctx, tracingConfig)
	if err != nil {
		debugLogger.Printf("Failed to initialize tracing: %v", err)
	} else if tracerProvider.IsEnabled() {
		debugLogger.Println("OpenTelemetry tracing initialized and enabled")
	}

	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		return ui.Model{}, nil, fmt.Errorf("failed to initialize story store: %w", err)
	}

	audit, err := logging.NewCompletionLogger(cfg.TurnsDB, cfg.ChatModel)
	if err != nil {
		return ui.Model{}, nil, fmt.Errorf("failed to initialize turn logger: %w", err)
	}

	llmService := llm.NewService(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.CompletionTimeout, debugLogger)
	recorder := novel.NewRecorder(store, debugLogger)
	intro := novel.NewIntro(llmService, store, debugLogger)

	var artist *art.Generator
	if cfg.ArtEnabled() {
		decisionService := llm.NewService(cfg.OpenAIAPIKey, cfg.DecisionModel, cfg.CompletionTimeout, debugLogger)
		artist = art.NewGenerator(art.GeneratorConfig{
			Decider:     art.NewDecider(decisionService, debugLogger),
			Client:      art.NewClient(cfg.ImageAPIBaseURL, cfg.ImageAPIKey),
			Log:         debugLogger,
			AspectRatio: cfg.ArtAspectRatio,
			Interval:    cfg.ArtPollInterval,
			MaxAttempts: cfg.ArtPollMaxAttempts,
		})
	} else {
		debugLogger.Println("Image API not configured, scene art disabled")
	}

	deps := ui.Deps{
		Store:    store,
		LLM:      llmService,
		Recorder: recorder,
		Intro:    intro,
		Audit:    audit,
		Artist:   artist,
		Log:      debugLogger,
		PageSize: cfg.PageSize,
	}
	model := ui.NewModel(deps)

	cleanup := func() {
		model.Cleanup()
		audit.Close()
		if tracerProvider != nil {
			tracerProvider.Shutdown(context.Background())
		}
	}
	return model, cleanup, nil
}
