package container

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/akhil1198/ER/internal/application/port"
	"github.com/akhil1198/ER/internal/application/service"
	"github.com/akhil1198/ER/internal/domain/expense"
	"github.com/akhil1198/ER/internal/domain/taxonomy"
	"github.com/akhil1198/ER/internal/infrastructure/external/concur"
	"github.com/akhil1198/ER/internal/infrastructure/external/extraction"
	"github.com/akhil1198/ER/internal/infrastructure/external/gemini"
	infraLark "github.com/akhil1198/ER/internal/infrastructure/external/lark"
	"github.com/akhil1198/ER/internal/infrastructure/external/openai"
	"github.com/akhil1198/ER/internal/infrastructure/imaging"
	"github.com/akhil1198/ER/internal/infrastructure/session"
	"github.com/akhil1198/ER/internal/infrastructure/storage"
	"github.com/akhil1198/ER/internal/infrastructure/worker"
	"github.com/akhil1198/ER/migrations"
	"github.com/akhil1198/ER/pkg/database"
)

// ExternalBundle holds the clients for remote services.
type ExternalBundle struct {
	Extractor  port.Extractor
	Normalizer port.ImageNormalizer
	Reports    port.ReportClient
	Notifier   port.Notifier

	// closers release SDK clients on shutdown
	closers []func() error
}

// DomainBundle holds the classifier and mapper built from the taxonomy.
type DomainBundle struct {
	Resolver *taxonomy.Resolver
	Mapper   *expense.Mapper
}

// ServiceDeps holds dependencies needed to create services.
type ServiceDeps struct {
	Config      *ConversationConfig
	Sessions    port.SessionStore
	Submissions port.SubmissionRepository
	External    *ExternalBundle
	Storage     port.FileStorage
	ReceiptDir  string
	Domain      *DomainBundle
	Logger      *zap.Logger
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Chat    service.ChatService
	Catalog service.CatalogService
	Reports service.ReportService
	Export  service.ExportService
}

// ProvideDatabase opens the audit database and applies embedded migrations.
func ProvideDatabase(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*database.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	applied, err := database.NewMigrator(db, logger).Run(ctx, migrations.FS)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("Migrations applied", zap.Int("count", applied))

	return db, nil
}

// ProvideSessionStore creates the configured session store.
func ProvideSessionStore(cfg *SessionConfig, logger *zap.Logger) (port.SessionStore, error) {
	switch cfg.Driver {
	case "bolt":
		store, err := session.NewBoltStore(cfg.BoltPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		return store, nil
	case "memory", "":
		return session.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session driver %q", cfg.Driver)
	}
}

// ProvideDomain builds the classifier and field mapper.
func ProvideDomain(taxCfg *TaxonomyConfig, concurCfg *ConcurConfig, logger *zap.Logger) (*DomainBundle, error) {
	aliases := taxonomy.DefaultAliases()
	if taxCfg.AliasesPath != "" {
		loaded, err := taxonomy.LoadAliases(taxCfg.AliasesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load aliases: %w", err)
		}
		if err := loaded.Validate(taxonomy.DefaultTable()); err != nil {
			return nil, err
		}
		aliases = loaded
	}
	logger.Info("Taxonomy loaded",
		zap.String("alias_version", aliases.Version),
		zap.Int("alias_count", len(aliases.Entries)))

	resolver := taxonomy.NewResolver(taxonomy.DefaultTable(), aliases)

	var opts []expense.MapperOption
	if concurCfg.DefaultCurrency != "" {
		opts = append(opts, expense.WithDefaults(expense.Defaults{
			Currency: strings.ToUpper(concurCfg.DefaultCurrency),
			Location: expense.DefaultLocation,
		}))
	}
	mapper := expense.NewMapper(resolver, taxonomy.NewPaymentResolver(concurCfg.PaymentTypeID), opts...)

	return &DomainBundle{Resolver: resolver, Mapper: mapper}, nil
}

// ProvideExternalClients creates the extractor chain, image normalizer,
// backend client and optional notifier.
func ProvideExternalClients(ctx context.Context, cfg *Config, table *taxonomy.Table, logger *zap.Logger) (*ExternalBundle, error) {
	bundle := &ExternalBundle{
		Normalizer: imaging.NewNormalizer(logger),
		Reports: concur.NewClient(concur.Config{
			BaseURL:     cfg.Concur.BaseURL,
			AccessToken: cfg.Concur.AccessToken,
			UserID:      cfg.Concur.UserID,
			UserLogin:   cfg.Concur.UserLogin,
			Timeout:     cfg.Concur.Timeout,
		}, logger),
	}

	extractor, closers, err := provideExtractor(ctx, &cfg.Extraction, table, logger)
	if err != nil {
		return nil, err
	}
	bundle.Extractor = extractor
	bundle.closers = closers

	larkCfg := infraLark.Config{
		AppID:     cfg.Lark.AppID,
		AppSecret: cfg.Lark.AppSecret,
		ChatID:    cfg.Lark.ChatID,
	}
	if larkCfg.Enabled() {
		bundle.Notifier = infraLark.NewNotifier(larkCfg, logger)
		logger.Info("Lark notifications enabled", zap.String("chat_id", larkCfg.ChatID))
	}

	return bundle, nil
}

func provideExtractor(ctx context.Context, cfg *ExtractionConfig, table *taxonomy.Table, logger *zap.Logger) (port.Extractor, []func() error, error) {
	prompts, err := openai.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		return nil, nil, err
	}
	data := extraction.NewPromptData(table)

	var (
		extractors []port.Extractor
		closers    []func() error
	)

	if (cfg.Provider == "openai" || cfg.Provider == "chain") && cfg.OpenAIKey != "" {
		oa, err := openai.NewExtractor(openai.ExtractorConfig{
			APIKey:      cfg.OpenAIKey,
			BaseURL:     cfg.OpenAIURL,
			Model:       cfg.OpenAIModel,
			SchemaCheck: cfg.SchemaCheck,
		}, prompts, data, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create openai extractor: %w", err)
		}
		extractors = append(extractors, oa)
	}

	if (cfg.Provider == "gemini" || cfg.Provider == "chain") && cfg.GeminiKey != "" {
		user, err := prompts.RenderUser(data)
		if err != nil {
			return nil, nil, err
		}
		prompt := strings.TrimSpace(prompts.ReceiptExtraction.System + "\n\n" + user)

		gm, err := gemini.NewExtractor(ctx, cfg.GeminiKey, cfg.GeminiModel, prompt, cfg.SchemaCheck, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gemini extractor: %w", err)
		}
		extractors = append(extractors, gm)
		closers = append(closers, gm.Close)
	}

	switch len(extractors) {
	case 0:
		return nil, nil, fmt.Errorf("no extractor configured for provider %q", cfg.Provider)
	case 1:
		return extractors[0], closers, nil
	default:
		return extraction.NewChain(logger, extractors...), closers, nil
	}
}

// ProvideStorage creates the receipt archive.
func ProvideStorage(cfg *StorageConfig, logger *zap.Logger) port.FileStorage {
	return storage.NewLocalFileStorage(cfg.BaseDir, logger)
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Sessions == nil || deps.External == nil || deps.Domain == nil {
		return nil, fmt.Errorf("sessions, external clients and domain are required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}
	chatCfg := service.ChatConfig{
		CallTimeout:     deps.Config.CallTimeout,
		ReportListLimit: deps.Config.ReportListLimit,
		ReceiptDir:      deps.ReceiptDir,
	}

	return &ServiceBundle{
		Chat: service.NewChatService(service.ChatDeps{
			Sessions:    deps.Sessions,
			Extractor:   deps.External.Extractor,
			Normalizer:  deps.External.Normalizer,
			Reports:     deps.External.Reports,
			Storage:     deps.Storage,
			Notifier:    deps.External.Notifier,
			Submissions: deps.Submissions,
			Mapper:      deps.Domain.Mapper,
		}, chatCfg, serviceLogger),
		Catalog: service.NewCatalogService(deps.Domain.Resolver),
		Reports: service.NewReportService(deps.External.Reports, deps.Domain.Mapper, deps.Submissions, chatCfg, serviceLogger),
		Export:  service.NewExportService(deps.Submissions, serviceLogger),
	}, nil
}

// ProvideWorkers creates the worker group with the idle-session sweeper.
func ProvideWorkers(cfg *SessionConfig, sessions port.SessionStore, logger *zap.Logger) *worker.Group {
	group := worker.NewGroup(logger)
	group.Add(worker.NewSessionSweeper(sessions, worker.SweeperConfig{
		Schedule:    cfg.SweepSchedule,
		IdleTimeout: cfg.IdleTimeout,
	}, logger))
	return group
}

// zapLoggerAdapter adapts zap.Logger to service.Logger interface
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Sugar().Infow(msg, keysAndValues...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Sugar().Errorw(msg, keysAndValues...)
}

// NewServiceLogger exposes the adapter for components outside the container
func NewServiceLogger(logger *zap.Logger) service.Logger {
	return &zapLoggerAdapter{logger: logger}
}
