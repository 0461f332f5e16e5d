package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/common"
	"github.com/codelie14/zillasec/internal/interfaces"
	"github.com/codelie14/zillasec/internal/models"
	"github.com/codelie14/zillasec/internal/services/analysis"
	"github.com/codelie14/zillasec/internal/services/chat"
	"github.com/codelie14/zillasec/internal/services/kv"
	"github.com/codelie14/zillasec/internal/services/llm"
	"github.com/codelie14/zillasec/internal/services/metrics"
	"github.com/codelie14/zillasec/internal/services/reconcile"
	"github.com/codelie14/zillasec/internal/services/templates"
	"github.com/codelie14/zillasec/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Completion
	Providers   *llm.ProviderFactory
	AuditLogger llm.AuditLogger
	Completion  *llm.CompletionService

	// Domain services
	Reconciler      *reconcile.Engine
	AnalysisService *analysis.Service
	TemplateService *templates.Service
	ChatService     *chat.ChatService
	MetricsService  *metrics.Service
	KeyService      *kv.Service
	IdentityStorage interfaces.IdentityStorage
}

// New initializes the application with all dependencies
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Debug().
		Str("provider", string(cfg.LLM.DefaultProvider)).
		Str("schema_variant", cfg.Analysis.SchemaVariant).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")
	return nil
}

// initServices builds services in dependency order.
// API keys are resolved here once and handed to the provider factory.
func (a *App) initServices(ctx context.Context) error {
	a.IdentityStorage = a.StorageManager.IdentityStorage()
	a.KeyService = kv.NewService(a.StorageManager.KeyValueStorage(), a.Logger)

	keys := a.resolveAPIKeys(ctx)
	a.Providers = llm.NewProviderFactory(a.Config, keys, a.Logger)
	a.AuditLogger = llm.NewStorageAuditLogger(a.StorageManager.CompletionAuditStorage(), a.Logger)

	timeout, err := a.Config.AnalysisTimeout()
	if err != nil {
		return err
	}
	a.Completion = llm.NewCompletionService(a.Providers, a.AuditLogger, timeout, a.Logger)

	a.TemplateService = templates.NewService(a.StorageManager.TemplateStorage(), a.Config.Analysis.TemplatesDir, a.Logger)
	if err := a.TemplateService.SeedDefaults(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to seed built-in templates")
	}

	a.Reconciler = reconcile.NewEngine(a.StorageManager.IdentityStorage(), a.Logger)

	a.AnalysisService, err = analysis.NewService(
		analysis.Config{
			MaxInputRows:       a.Config.Analysis.MaxInputRows,
			Variant:            models.SchemaVariant(a.Config.Analysis.SchemaVariant),
			DefaultInstruction: a.Config.Analysis.DefaultInstruction,
		},
		a.StorageManager.AnalysisStorage(),
		a.Completion.WithOperation("analysis"),
		a.TemplateService,
		a.Logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis service: %w", err)
	}

	a.ChatService = chat.NewChatService(
		a.Completion.WithOperation("chat"),
		a.StorageManager.AnalysisStorage(),
		a.StorageManager.ConversationStorage(),
		a.Logger,
		a.Config.Chat.ContextLimit,
	)

	a.MetricsService = metrics.NewService(a.StorageManager.AnalysisStorage(), a.StorageManager.IdentityStorage(), a.Logger)
	return nil
}

// resolveAPIKeys looks every provider key up once. Missing keys are left empty;
// the provider reports them when it is actually used.
func (a *App) resolveAPIKeys(ctx context.Context) llm.APIKeys {
	store := a.StorageManager.KeyValueStorage()
	resolve := func(name, fallback string) string {
		key, err := common.ResolveAPIKey(ctx, store, name, fallback)
		if err != nil {
			a.Logger.Debug().Str("key", name).Msg("API key not configured")
			return ""
		}
		return key
	}

	return llm.APIKeys{
		Gemini:     resolve(kv.KeyGemini, a.Config.Gemini.APIKey),
		Claude:     resolve(kv.KeyClaude, a.Config.Claude.APIKey),
		OpenRouter: resolve(kv.KeyOpenRouter, a.Config.OpenRouter.APIKey),
	}
}

// Close closes all application resources
func (a *App) Close() error {
	if a.Providers != nil {
		if err := a.Providers.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close provider clients")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Debug().Msg("Storage closed")
	}
	return nil
}
