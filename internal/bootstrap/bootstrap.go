package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/hsa-claims-engine/internal/config"
	"github.com/kirillkom/hsa-claims-engine/internal/core/catalog"
	"github.com/kirillkom/hsa-claims-engine/internal/core/ports"
	"github.com/kirillkom/hsa-claims-engine/internal/core/usecase"
	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/accountseed"
	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/catalogsource"
	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/llm"
	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/llm/openai"
	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/lock/local"
	redislock "github.com/kirillkom/hsa-claims-engine/internal/infrastructure/lock/redis"
	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/queue/nats"
	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/repository/memory"
	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/resilience"
	"github.com/kirillkom/hsa-claims-engine/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.HTTPServerMetrics
	Catalog *catalog.Catalog

	Accounts ports.AccountRepository
	AuditLog ports.ClaimAuditReader
	Events   *nats.EventBus

	Claims      *usecase.ClaimUseCase
	Eligibility *usecase.EligibilityUseCase
	Audit       *usecase.AuditUseCase

	closeFns []func()
}

type stores struct {
	accounts ports.AccountRepository
	claims   ports.ClaimRepository
	ledger   ports.LedgerStore
	audit    ports.ClaimAuditStore
	auditLog ports.ClaimAuditReader
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	app := &App{
		Config:  cfg,
		Metrics: metrics.NewHTTPServerMetrics(service),
	}

	cat, err := catalogsource.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	app.Catalog = cat

	st, err := app.openStores(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Accounts = st.accounts
	app.AuditLog = st.auditLog

	locker, err := app.openLocker(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	classifier, err := newClassifier(cfg, app.Metrics)
	if err != nil {
		app.Close()
		return nil, err
	}

	var publisher ports.ClaimEventPublisher
	if cfg.EventsEnabled {
		bus, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
			ClientName:         service,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init event bus: %w", err)
		}
		app.Events = bus
		app.closeFns = append(app.closeFns, bus.Close)
		publisher = bus
	}

	policy := usecase.NewAdjudicationPolicy(cat, classifier)
	ledger := usecase.NewClaimLedger(st.ledger, locker, app.Metrics)
	app.Claims = usecase.NewClaimUseCase(st.accounts, st.claims, policy, ledger, publisher, app.Metrics)
	app.Eligibility = usecase.NewEligibilityUseCase(cat, classifier)
	app.Audit = usecase.NewAuditUseCase(st.audit)

	slog.Info("app_bootstrapped",
		"storage_backend", cfg.StorageBackend,
		"lock_backend", cfg.LockBackend,
		"classifier_provider", cfg.ClassifierProvider,
		"catalog_entries", cat.Len(),
		"events_enabled", cfg.EventsEnabled,
	)
	return app, nil
}

func (a *App) openStores(ctx context.Context) (stores, error) {
	switch a.Config.StorageBackend {
	case "memory":
		store := memory.NewStore()
		if err := seedAccounts(ctx, store, a.Config.AccountsSeedPath); err != nil {
			return stores{}, err
		}
		return stores{accounts: store, claims: store, ledger: store, audit: store, auditLog: store}, nil
	case "postgres":
		db, err := postgres.OpenDB(a.Config.PostgresDSN)
		if err != nil {
			return stores{}, fmt.Errorf("open postgres: %w", err)
		}
		a.closeFns = append(a.closeFns, func() { _ = db.Close() })
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return stores{}, fmt.Errorf("ensure schema: %w", err)
		}
		if a.Config.AccountsSeedPath != "" {
			slog.Warn("accounts_seed_ignored", "storage_backend", "postgres", "hint", "use hsactl seed-account")
		}
		claims := postgres.NewClaimRepository(db)
		audit := postgres.NewAuditRepository(db)
		return stores{
			accounts: postgres.NewAccountRepository(db),
			claims:   claims,
			ledger:   claims,
			audit:    audit,
			auditLog: audit,
		}, nil
	default:
		return stores{}, fmt.Errorf("unknown storage backend %q", a.Config.StorageBackend)
	}
}

// seedAccounts fills a memory store from the fixture file, if any.
func seedAccounts(ctx context.Context, accounts ports.AccountRepository, path string) error {
	seed, err := accountseed.Load(path)
	if err != nil {
		return fmt.Errorf("load accounts seed: %w", err)
	}
	for i := range seed {
		if err := accounts.CreateAccount(ctx, &seed[i]); err != nil {
			return fmt.Errorf("seed account for owner %s: %w", seed[i].OwnerID, err)
		}
	}
	if path != "" {
		slog.Info("accounts_seeded", "path", path, "accounts", len(seed))
	}
	return nil
}

func (a *App) openLocker(ctx context.Context) (ports.AccountLocker, error) {
	switch a.Config.LockBackend {
	case "local", "":
		return local.New(), nil
	case "redis":
		client, err := redislock.NewClient(ctx, a.Config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closeFns = append(a.closeFns, func() { _ = client.Close() })
		return redislock.New(client, redislock.DefaultOptions()), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", a.Config.LockBackend)
	}
}

// newClassifier always returns a classifier. Without a usable backend every
// call falls back, so unknown services land in manual review.
func newClassifier(cfg config.Config, m *metrics.HTTPServerMetrics) (*llm.Classifier, error) {
	var backend llm.Completer
	switch cfg.ClassifierProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			slog.Warn("classifier_unconfigured", "provider", "openai", "reason", "OPENAI_API_KEY is empty")
			break
		}
		backend = openai.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "ollama":
		backend = ollama.New(cfg.OllamaURL, cfg.OllamaModel)
	case "none", "":
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.ClassifierProvider)
	}

	execCfg := resilience.SingleAttempt()
	execCfg.BreakerEnabled = cfg.ClassifierBreakerEnabled
	execCfg.OnStateChange = m.RecordBreakerState
	executor := resilience.NewExecutor(execCfg)

	classifier := llm.NewClassifier(backend, llm.Options{
		Timeout:  cfg.ClassifierTimeout,
		Executor: executor,
		Recorder: m,
	})
	if op := classifier.Operation(); op != "" {
		m.RecordBreakerState(op, executor.State(op))
	}
	return classifier, nil
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}
