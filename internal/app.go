package internal

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fluent/fluent-logger-golang/fluent"

	"houseclay-client/internal/adapters/api_client"
	"houseclay-client/internal/adapters/console"
	logger_adapter "houseclay-client/internal/adapters/logger"
	"houseclay-client/internal/adapters/places_client"
	postgres_adapter "houseclay-client/internal/adapters/postgres"
	sqlite_adapter "houseclay-client/internal/adapters/sqlite"
	"houseclay-client/internal/configs"
	"houseclay-client/internal/contextkeys"
	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"
	"houseclay-client/internal/core/port/usecases_port"
	"houseclay-client/internal/core/usecase"
	"houseclay-client/internal/store"
	"houseclay-client/pkg/clock"
	fluentlogger "houseclay-client/pkg/fluent_logger"
	"houseclay-client/pkg/postgres"
)

// Options - параметры запуска, пришедшие из командной строки.
type Options struct {
	EnvPath string
	// Out - куда печатать уведомления. По умолчанию stdout.
	Out io.Writer
	// LogLevel перекрывает STDOUT_LOG_LEVEL, если не пустой.
	LogLevel string
}

type App struct {
	config       *configs.AppConfig
	logger       port.LoggerPort
	fluentClient *fluent.Fluent

	persister   port.StatePersisterPort
	store       *store.Store
	unsubscribe func()
	pipeline    *api_client.Pipeline
	client      *api_client.Client
	navigator   *console.Navigator
	notifier    *console.Notifier
	places      *places_client.PlacesAPIClient

	authFlow  *usecase.AuthFlowController
	shortlist *usecase.ShortlistSync
	details   *usecase.PropertyDetailsUseCase
	session   *usecase.SessionUseCase
	listings  *usecase.ListingSubmission
}

func NewApp(ctx context.Context, opts Options) (*App, error) {
	appConfig, err := configs.LoadConfig(opts.EnvPath)
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}
	if opts.LogLevel != "" {
		appConfig.StdoutLogger.Level = opts.LogLevel
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	// --- 1. логгеры ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   appConfig.StdoutLogger.IsJSON,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}
	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	ctx = contextkeys.ContextWithLogger(ctx, baseLogger)

	application := &App{config: appConfig, logger: appLogger, fluentClient: fluentClient}
	// при ошибке ниже закрываем то, что уже открыто
	ok := false
	defer func() {
		if !ok {
			application.Close()
		}
	}()

	// --- 2. хранилище состояния ---
	application.persister, err = newPersister(ctx, appConfig.StateStore)
	if err != nil {
		appLogger.Error("Failed to open state store", err, nil)
		return nil, err
	}
	application.store, err = store.New(application.persister)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	if err := application.store.Rehydrate(ctx); err != nil {
		appLogger.Warn("Starting with empty state", port.Fields{"error": err.Error()})
	}

	// --- 3. исходящие адаптеры ---
	application.navigator = console.NewNavigator()
	application.notifier = console.NewNotifier(opts.Out)
	clk := clock.Real()

	application.pipeline, err = api_client.NewPipeline(ctx, api_client.PipelineConfig{
		BaseURL:   appConfig.API.BaseURL,
		LoginPath: appConfig.API.LoginPath,
		Timeout:   appConfig.API.Timeout,
		Navigator: application.navigator,
		Cookies:   api_client.NewPersistedCookieStore(application.persister),
		OnSessionExpired: func(ctx context.Context) {
			if err := application.store.Dispatch(ctx, store.Logout{}); err != nil {
				contextkeys.LoggerFromContext(ctx).Warn("Failed to persist forced logout", port.Fields{"error": err.Error()})
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create request pipeline: %w", err)
	}
	application.client = api_client.NewClient(application.pipeline, clk, appConfig.Search.PageSize)
	application.places = places_client.NewPlacesAPIClient(appConfig.Places.BaseURL, appConfig.Places.APIKey, appConfig.API.Timeout)

	// Вход снова включает обработку 401, выход сбрасывает кеш запросов.
	application.unsubscribe = application.store.Subscribe(func(prev, next store.State) {
		switch {
		case !prev.Session.IsAuthenticated && next.Session.IsAuthenticated:
			application.pipeline.Rearm()
		case prev.Session.IsAuthenticated && !next.Session.IsAuthenticated:
			application.client.ResetCache()
		}
	})
	appLogger.Info("All outgoing adapters initialized", nil)

	// --- 4. use cases ---
	application.authFlow = usecase.NewAuthFlowController(application.client, application.store, application.navigator, clk, appConfig.Auth.OTPResendSeconds)
	application.shortlist = usecase.NewShortlistSync(application.client, application.store, application.navigator, application.notifier)
	application.details = usecase.NewPropertyDetailsUseCase(application.client, application.store)
	application.session = usecase.NewSessionUseCase(application.client, application.client, application.client, application.store, application.navigator)
	application.listings = usecase.NewListingSubmission(application.client, application.store, application.navigator, application.notifier)
	appLogger.Info("All use cases initialized", nil)

	ok = true
	return application, nil
}

func newPersister(ctx context.Context, cfg configs.StateStoreConfig) (port.StatePersisterPort, error) {
	if cfg.IsPostgres() {
		pool, err := postgres.NewClient(ctx, postgres.Config{DatabaseURL: cfg.URL})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		adapter, err := postgres_adapter.NewStateStoreAdapter(ctx, pool, "default")
		if err != nil {
			pool.Close()
			return nil, err
		}
		return adapter, nil
	}
	return sqlite_adapter.NewStateStoreAdapter(ctx, cfg.URL)
}

// Command - одна команда CLI.
type Command func(ctx context.Context, app *App) error

// Run выполняет команду и закрывает ресурсы. Ctrl+C отменяет контекст команды.
func (a *App) Run(cmd Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer a.Close()

	ctx = contextkeys.ContextWithLogger(ctx, a.logger)
	ctx, traceID := contextkeys.EnsureTraceID(ctx)
	a.logger.Debug("Command started", port.Fields{"trace_id": traceID})

	if err := cmd(ctx, a); err != nil {
		if ctx.Err() != nil {
			a.logger.Warn("Command interrupted", port.Fields{"trace_id": traceID})
		}
		return err
	}
	return nil
}

// Close дожидается фоновых запросов и закрывает хранилища.
func (a *App) Close() {
	if a.authFlow != nil {
		a.authFlow.Close()
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.pipeline != nil {
		a.pipeline.Wait()
	}
	if a.persister != nil {
		if err := a.persister.Close(); err != nil {
			a.logger.Error("Error closing state store", err, nil)
		}
		a.persister = nil
	}
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Error closing fluent client: %v\n", err)
		}
		a.fluentClient = nil
	}
}

func (a *App) State() store.State                            { return a.store.State() }
func (a *App) Navigator() *console.Navigator                 { return a.navigator }
func (a *App) Notifier() port.NotifierPort                   { return a.notifier }
func (a *App) Places() port.PlacesPort                       { return a.places }
func (a *App) AuthFlow() usecases_port.AuthFlowUseCase       { return a.authFlow }
func (a *App) Shortlist() usecases_port.ShortlistUseCase     { return a.shortlist }
func (a *App) Details() usecases_port.PropertyDetailsUseCase { return a.details }
func (a *App) Session() usecases_port.SessionUseCase         { return a.session }
func (a *App) Listings() usecases_port.ListingSubmissionUseCase {
	return a.listings
}

// NewSearchFeed создаёт ленту выдачи. Вызывающий закрывает её через Close.
func (a *App) NewSearchFeed() usecases_port.SearchFeedUseCase {
	return usecase.NewSearchFeed(a.client)
}

// SaveSearchSelection запоминает выбор пользователя между запусками.
func (a *App) SaveSearchSelection(ctx context.Context, sel domain.SearchSelection) error {
	if err := a.store.Dispatch(ctx, store.SetSearchLocation{Location: sel.Location}); err != nil {
		return err
	}
	if err := a.store.Dispatch(ctx, store.SetSearchCategory{Category: sel.Category}); err != nil {
		return err
	}
	return a.store.Dispatch(ctx, store.SetSearchFilters{Filters: sel.Filters})
}

// SaveDraft сохраняет незавершённую форму объявления.
func (a *App) SaveDraft(ctx context.Context, kind domain.DraftKind, draft domain.ListingDraft) error {
	return a.store.Dispatch(ctx, store.SaveDraft{Kind: kind, Draft: draft})
}

func (a *App) ClearDraft(ctx context.Context, kind domain.DraftKind) error {
	return a.store.Dispatch(ctx, store.ClearDraft{Kind: kind})
}

// SearchPageSize - размер страницы выдачи из конфигурации.
func (a *App) SearchPageSize() int { return a.config.Search.PageSize }

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
