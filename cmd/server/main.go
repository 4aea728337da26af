// Package main - точка входа Pathwise Hub.
//
// Один процесс обслуживает HTTP API и фоновые задачи:
// - учётные записи, профиль, активность, навыки, цели, достижения
// - генерация траекторий и резюме (Gemini или шаблоны)
// - пересчёт серий, очистка сессий, экспорт архива в PostgreSQL
//
// Источник истины - память процесса. PostgreSQL используется только
// для выгрузки снимков, Redis - для сессий и событий между инстансами.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pathwise/pathwise-hub/config"
	"github.com/pathwise/pathwise-hub/internal/application/command"
	"github.com/pathwise/pathwise-hub/internal/application/eventhandler"
	"github.com/pathwise/pathwise-hub/internal/application/query"
	"github.com/pathwise/pathwise-hub/internal/application/saga"
	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/generation"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/external/gemini"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/extract"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/messaging"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/persistence/memory"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/persistence/postgres"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/persistence/redis"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/scheduler"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/scheduler/jobs"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/service"
	httpapi "github.com/pathwise/pathwise-hub/internal/interface/http"
	"github.com/pathwise/pathwise-hub/internal/interface/http/handlers"
	"github.com/pathwise/pathwise-hub/pkg/logger"
	"github.com/pathwise/pathwise-hub/pkg/timeutil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	opts.Format = cfg.Observability.LogFormat
	log := logger.New(opts)
	defer log.Sync()

	log.Info("starting Pathwise Hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("timezone", cfg.App.Timezone),
	)

	features := cfg.Features
	clock := timeutil.NewSystemClock(cfg.App.Location)
	health := handlers.NewCompositeHealthChecker(cfg.App.Version)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var cache *redis.Cache
	if !cfg.Redis.Disabled {
		cache, err = redis.NewCache(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			// Без Redis сервис работает: сессии и события остаются в памяти.
			log.Warn("redis unavailable, using in-memory sessions", logger.Err(err))
			cache = nil
		} else {
			defer func() { _ = cache.Close() }()
			health.AddCheck("redis", handlers.NewPingCheck(cache))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. СОБЫТИЯ
	// ─────────────────────────────────────────────────────────────────────────
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = log

	var (
		events     shared.EventPublisher
		subscriber messaging.Subscriber
	)
	if cache != nil && features.IsEnabled(config.FeatureRedisEvents, nil) {
		bus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:  cache.Client(),
			Channel: cfg.Redis.EventsChannel,
			Local:   busConfig,
			Logger:  log,
		})
		if err != nil {
			return fmt.Errorf("failed to start redis event bus: %w", err)
		}
		defer func() { _ = bus.Close() }()
		events, subscriber = bus, bus
	} else {
		bus := messaging.NewInMemoryEventBus(busConfig)
		defer func() { _ = bus.Close() }()
		events, subscriber = bus, bus
	}

	dispatcher := messaging.NewDispatcher(subscriber,
		messaging.LoggingMiddleware(log),
		messaging.TimeoutMiddleware(5*time.Second),
	)
	audit := eventhandler.NewAuditLog(log)
	if err := eventhandler.Register(dispatcher, audit, eventhandler.NewProgressWatcher(log)); err != nil {
		return fmt.Errorf("failed to register event handlers: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ХРАНИЛИЩА И СЕРВИСЫ
	// ─────────────────────────────────────────────────────────────────────────
	hasher, err := service.NewBcryptHasher(cfg.App.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to create password hasher: %w", err)
	}

	var (
		sessions    account.SessionStore
		memSessions *memory.SessionStore
	)
	if cache != nil {
		sessions = redis.NewSessionStore(cache)
	} else {
		memSessions = memory.NewSessionStore(clock.Now)
		sessions = memSessions
	}

	cmdDeps := command.Deps{
		Accounts:     memory.NewAccountRepository(),
		Activities:   memory.NewActivityRepository(),
		Skills:       memory.NewSkillRepository(),
		Achievements: memory.NewAchievementRepository(),
		Goals:        memory.NewGoalRepository(),
		Clock:        clock,
		IDs:          service.UUIDGenerator{},
		Locks:        service.NewUserLocks(),
		Events:       events,
		Logger:       log,
	}
	queryDeps := query.Deps{
		Accounts:     cmdDeps.Accounts,
		Activities:   cmdDeps.Activities,
		Skills:       cmdDeps.Skills,
		Achievements: cmdDeps.Achievements,
		Goals:        cmdDeps.Goals,
		Clock:        clock,
		Logger:       log,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ГЕНЕРАЦИЯ ТЕКСТА
	// ─────────────────────────────────────────────────────────────────────────
	var provider generation.Provider
	if cfg.Gemini.APIKey != "" && features.IsEnabled(config.FeatureAIGeneration, nil) {
		gc := gemini.DefaultClientConfig(cfg.Gemini.APIKey)
		gc.Model = cfg.Gemini.Model
		gc.BaseURL = cfg.Gemini.BaseURL
		gc.Timeout = cfg.Gemini.Timeout
		gc.MaxAttempts = cfg.Gemini.MaxRetries + 1
		gc.RateLimit.RequestsPerMinute = cfg.Gemini.RequestsPerMinute
		gc.RateLimit.Burst = cfg.Gemini.Burst
		gc.Logger = log
		provider = gemini.NewClient(gc)
		log.Info("text generation enabled", logger.String("provider", provider.Name()))
	} else {
		log.Warn("GEMINI_API_KEY not set or generation disabled, using templates")
	}

	sagaDeps := saga.Deps{
		Accounts: cmdDeps.Accounts,
		Provider: provider,
		Recorder: command.NewRecordGenerationHandler(cmdDeps),
		Timeout:  cfg.Gemini.GenerationTimeout,
		Logger:   log,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ПЛАНИРОВЩИК
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:         log,
		Timezone:       cfg.App.Location,
		MaxHistorySize: cfg.Scheduler.HistorySize,
	})

	if features.IsEnabled(config.FeatureStreakRefresh, nil) {
		job := jobs.NewStreakRefreshJob(command.NewRefreshStreaksHandler(cmdDeps))
		if err := sched.Register(cfg.Scheduler.StreakCron, job); err != nil {
			return fmt.Errorf("failed to register %s: %w", job.Name(), err)
		}
	}
	if memSessions != nil {
		job := jobs.NewSessionSweepJob(memSessions, log)
		if err := sched.Register(cfg.Scheduler.SessionSweepCron, job); err != nil {
			return fmt.Errorf("failed to register %s: %w", job.Name(), err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. POSTGRESQL (архив снимков, опционально)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.Enabled() && features.IsEnabled(config.FeatureArchiveExport, nil) {
		pgConfig := postgres.DefaultConfig(cfg.Database.URL)
		pgConfig.MaxConns = int32(cfg.Database.MaxConns)
		pgConfig.MinConns = int32(cfg.Database.MinConns)
		pgConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		pgConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
		pgConfig.ConnectTimeout = cfg.Database.ConnectTimeout

		log.Info("connecting to archive database...")
		conn, err := postgres.NewConnection(ctx, pgConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer conn.Close()

		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		health.AddCheck("postgres", handlers.NewPingCheck(conn))

		job := jobs.NewArchiveExportJob(
			query.NewArchiveSource(queryDeps),
			postgres.NewArchiveRepository(conn, log),
			events,
			clock,
			log,
			jobs.ArchiveExportConfig{
				Concurrency: cfg.Scheduler.ArchiveConcurrency,
				Timeout:     cfg.Scheduler.JobTimeout,
			},
		)
		if err := sched.Register(cfg.Scheduler.ArchiveCron, job); err != nil {
			return fmt.Errorf("failed to register %s: %w", job.Name(), err)
		}
	} else {
		log.Info("archive export disabled")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HTTP СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	server := httpapi.NewServer(httpapi.Config{
		Host:           cfg.HTTP.Host,
		Port:           cfg.HTTP.Port,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Version:        cfg.App.Version,
		Location:       cfg.App.Location,
	}, httpapi.Dependencies{
		Register:      command.NewRegisterHandler(cmdDeps, hasher),
		Auth:          command.NewAuthHandler(cmdDeps, hasher, sessions, cfg.App.SessionTTL),
		Profile:       command.NewUpdateProfileHandler(cmdDeps),
		Activities:    command.NewLogActivityHandler(cmdDeps),
		Skills:        command.NewUpdateSkillHandler(cmdDeps),
		Awards:        command.NewAwardHandler(cmdDeps),
		Goals:         command.NewGoalHandler(cmdDeps),
		Accounts:      query.NewAccountHandler(queryDeps),
		Dashboard:     query.NewDashboardHandler(queryDeps),
		Paths:         saga.NewGeneratePathSaga(sagaDeps),
		Resumes:       saga.NewGenerateResumeSaga(sagaDeps),
		Assistant:     saga.NewAssistantSaga(sagaDeps),
		Extractor:     extract.New(cfg.HTTP.MaxUploadBytes, log),
		Features:      features,
		HealthChecker: health,
		Logger:        log,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ЗАПУСК
	// ─────────────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gctx, cfg.App.ShutdownTimeout)
	})
	if cfg.Scheduler.Enabled {
		g.Go(func() error {
			return sched.Run(gctx, cfg.App.ShutdownTimeout)
		})
	}

	log.Info("pathwise hub is running", logger.String("addr", cfg.HTTP.Addr()))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("shutdown with error", logger.Err(err))
		return err
	}

	log.Info("pathwise hub stopped", logger.Any("events", audit.Counts()))
	return nil
}
