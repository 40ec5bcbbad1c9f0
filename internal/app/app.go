package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/handlers"
	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/pipeline"
	"github.com/ternarybob/auspex/internal/providers/alpaca"
	"github.com/ternarybob/auspex/internal/providers/finnhub"
	"github.com/ternarybob/auspex/internal/services/agents"
	"github.com/ternarybob/auspex/internal/services/chunker"
	"github.com/ternarybob/auspex/internal/services/collector"
	"github.com/ternarybob/auspex/internal/services/embeddings"
	"github.com/ternarybob/auspex/internal/services/llm"
	"github.com/ternarybob/auspex/internal/services/retrieval"
	"github.com/ternarybob/auspex/internal/services/scheduler"
	"github.com/ternarybob/auspex/internal/services/transform"
	auditstore "github.com/ternarybob/auspex/internal/storage/badger"
	"github.com/ternarybob/auspex/internal/storage/sqlite"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	LLMServices    *llm.Services

	// Ingestion services
	EmbeddingService interfaces.EmbeddingService
	TransformService *transform.Service
	Chunker          *chunker.Chunker
	CollectorService interfaces.Collector

	// Query-path services
	RetrievalService interfaces.RetrievalService
	Supervisor       *pipeline.Supervisor

	// Background refresh
	SchedulerService *scheduler.Service

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	TickerHandler *handlers.TickerHandler
	WSHandler     *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.StorageManager.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	if cfg.Scheduler.Enabled {
		if err := app.SchedulerService.Start(cfg.Scheduler.Schedule); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	logger.Info().
		Str("llm_provider", string(cfg.LLM.Provider)).
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage brings up the audit trail (Badger) and the relational/vector
// store (SQLite with sqlite-vec).
func (a *App) initStorage() error {
	auditDB, err := auditstore.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to open audit store: %w", err)
	}

	auditStorage := auditstore.NewAuditStorage(auditDB, a.Logger)

	manager, err := sqlite.NewManager(a.Logger, &a.Config.Storage.SQLite, auditStorage)
	if err != nil {
		auditStorage.Close()
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.StorageManager = manager

	a.Logger.Debug().
		Str("sqlite", a.Config.Storage.SQLite.Path).
		Str("badger", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes all business services in dependency order.
func (a *App) initServices() error {
	llmServices, err := llm.NewServices(a.Config, a.StorageManager.AuditStorage(), a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM services: %w", err)
	}
	a.LLMServices = llmServices

	a.EmbeddingService = embeddings.NewService(llmServices.Embed, a.Config.LLM.EmbedDimension, a.Logger)
	a.TransformService = transform.NewService(a.Logger)
	a.Chunker = chunker.New(a.Config.Collector.ChunkSize, a.Config.Collector.MinChunkChars)

	marketProvider := finnhub.NewClient(a.Config.Finnhub.APIKey,
		finnhub.WithBaseURL(a.Config.Finnhub.BaseURL),
		finnhub.WithRateLimit(a.Config.Finnhub.RateLimit),
		finnhub.WithInsiderLookback(a.Config.Collector.InsiderLookback),
		finnhub.WithLogger(a.Logger),
	)
	newsProvider := alpaca.NewClient(a.Config.Alpaca.APIKey, a.Config.Alpaca.APISecret,
		alpaca.WithBaseURL(a.Config.Alpaca.BaseURL),
		alpaca.WithRateLimit(a.Config.Alpaca.RateLimit),
		alpaca.WithLogger(a.Logger),
	)

	a.CollectorService = collector.NewService(
		a.StorageManager,
		marketProvider,
		newsProvider,
		a.TransformService,
		a.Chunker,
		a.EmbeddingService,
		&a.Config.Collector,
		a.Logger,
	)

	a.RetrievalService = retrieval.NewService(
		a.StorageManager.Store(),
		a.EmbeddingService,
		&a.Config.Retrieval,
		a.Logger,
	)

	extractor := agents.NewExtractor(llmServices.Chat, a.Logger)
	researcher := agents.NewResearcher(llmServices.Chat, a.RetrievalService, a.Config.Pipeline.ResearchCallBudget, a.Logger)
	writer := agents.NewAnswerWriter(llmServices.Chat, a.Logger)
	critic := agents.NewCritic(llmServices.Chat, a.Logger)

	a.Supervisor = pipeline.NewSupervisor(
		extractor,
		a.CollectorService,
		researcher,
		writer,
		critic,
		&a.Config.Pipeline,
		a.Logger,
	)

	a.SchedulerService = scheduler.NewService(a.StorageManager, a.CollectorService, a.Logger)

	return nil
}

// initHandlers initializes the HTTP handlers.
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.LLMServices.Chat, a.Logger)
	a.TickerHandler = handlers.NewTickerHandler(a.StorageManager, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.Supervisor, &a.Config.Server, a.Logger)
}

// Close shuts down all components in reverse dependency order.
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	var firstErr error
	if a.LLMServices != nil {
		if err := a.LLMServices.Close(); err != nil {
			firstErr = err
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
