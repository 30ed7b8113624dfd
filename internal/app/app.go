// Package app is the composition root: it builds every component from the
// config and owns their lifetimes.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"folio-backend/internal/application/holdings"
	"folio-backend/internal/application/portfolio"
	"folio-backend/internal/application/pricing"
	"folio-backend/internal/application/quotes"
	"folio-backend/internal/application/refresh"
	"folio-backend/internal/application/scheduler"
	"folio-backend/internal/application/snapshots"
	"folio-backend/internal/config"
	"folio-backend/internal/domain"
	"folio-backend/internal/infrastructure/database"
	"folio-backend/internal/infrastructure/repository"
	"folio-backend/internal/infrastructure/sources"
	"folio-backend/internal/interfaces/router"
	"folio-backend/internal/middleware"
	"folio-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// App holds the wired service.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	DB        *gorm.DB
	Redis     *redis.Client
	Fiber     *fiber.App
	Refresh   *refresh.Service
	Scheduler *scheduler.Scheduler

	quotes    *quotes.MemoryCache
	snapshots *repository.SnapshotStore
	now       func() time.Time
	catchUp   sync.WaitGroup
	cancel    context.CancelFunc
	ownDB     bool
	ownRedis  bool
}

const (
	// dailyJobTimeout bounds one run of the daily refresh across all users.
	dailyJobTimeout = time.Hour
	// pruneSchedule evicts quotes that expired without being read again.
	pruneSchedule = "@every 10m"
)

type options struct {
	db        *gorm.DB
	rdb       *redis.Client
	endpoints *sources.Endpoints
	logger    *zerolog.Logger
}

// Option overrides a dependency New would otherwise open from the config.
type Option func(*options)

func WithDB(db *gorm.DB) Option {
	return func(o *options) { o.db = db }
}

func WithRedis(rdb *redis.Client) Option {
	return func(o *options) { o.rdb = rdb }
}

func WithEndpoints(ep sources.Endpoints) Option {
	return func(o *options) { o.endpoints = &ep }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// New wires the service. It opens the database and Redis unless given.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var log zerolog.Logger
	if o.logger != nil {
		log = *o.logger
	} else {
		log = logger.New(cfg.LogLevel, cfg.Env)
	}

	a := &App{Config: cfg, Logger: log, DB: o.db, Redis: o.rdb, now: time.Now}
	if a.DB == nil {
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required")
		}
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.DB = db
		a.ownDB = true
	}
	if a.Redis == nil {
		rdb, err := database.OpenRedis(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Redis = rdb
		a.ownRedis = rdb != nil
	}

	loc := cfg.Location()
	holdingStore := &repository.HoldingStore{DB: a.DB}
	snapshotStore := &repository.SnapshotStore{DB: a.DB}
	a.snapshots = snapshotStore

	local := quotes.NewMemoryCache()
	a.quotes = local
	var shared quotes.Cache
	if a.Redis != nil {
		shared = quotes.NewRedisCache(a.Redis, logger.Component(log, "quote_cache"))
	}
	cache := quotes.NewLayeredCache(local, shared)

	client := sources.NewClient(
		sources.WithTimeout(cfg.HTTPTimeout),
		sources.WithRateLimit(cfg.RequestsPerSecond),
		sources.WithUserAgents(cfg.UserAgents),
		sources.WithDelay(cfg.MinRequestDelay, cfg.MaxRequestDelay),
		sources.WithLogger(logger.Component(log, "sources")),
	)
	ep := sources.DefaultEndpoints()
	if o.endpoints != nil {
		ep = *o.endpoints
	}

	pricingOpts := []pricing.Option{
		pricing.WithFXSource(sources.NewFXRate(client, ep.ChartURL, ep.FXPageURL)),
		pricing.WithPacer(client),
		pricing.WithWorkers(cfg.FetchWorkers),
		pricing.WithTimeouts(cfg.ItemTimeout, cfg.BatchTimeout),
		pricing.WithDefaultFXRate(cfg.DefaultFXRate),
		pricing.WithLogger(logger.Component(log, "pricing")),
	}
	for class, p := range sources.NewParsers(client, ep) {
		pricingOpts = append(pricingOpts, pricing.WithParser(class, p))
	}
	prices := pricing.NewService(cache, pricingOpts...)

	recorder := snapshots.NewRecorder(holdingStore, snapshotStore, prices,
		snapshots.WithLocation(loc),
		snapshots.WithLogger(logger.Component(log, "snapshots")),
	)

	a.Refresh = &refresh.Service{
		Holdings: holdingStore,
		Prices:   prices,
		Recorder: recorder,
		Users:    &repository.UserStore{DB: a.DB},
		Logger:   logger.Component(log, "refresh"),
	}

	a.Fiber = router.CreateApp(router.Deps{
		Logger: logger.Component(log, "http"),
		Redis:  a.Redis,
		DB:     database.Pinger{DB: a.DB},
		Cache:  cache,
		Holdings: &holdings.Service{
			Store:   holdingStore,
			Trigger: a.Refresh,
			Logger:  logger.Component(log, "holdings"),
		},
		Portfolio: &portfolio.Service{
			Holdings:  holdingStore,
			Snapshots: snapshotStore,
			FX:        prices,
			Location:  loc,
		},
		Refresher: a.Refresh,
		CORS: middleware.CORSConfig{
			AllowedSuffix: cfg.FrontendURLEndsWith,
			DevPassword:   cfg.DevPassword,
		},
		SessionCookie:  cfg.SessionCookie,
		HealthAdminKey: cfg.HealthAdminKey,
	})

	var ctx context.Context
	ctx, a.cancel = context.WithCancel(context.Background())
	a.Scheduler = scheduler.New(ctx, loc, log)
	return a, nil
}

// Migrate creates or updates the tables.
func (a *App) Migrate() error {
	if err := database.AutoMigrate(a.DB); err != nil {
		return fmt.Errorf("migrate: %w", database.Classify(err))
	}
	return nil
}

// StartScheduler registers the daily refresh and the quote cache pruning,
// then starts the cron loop. If today's refresh was due before startup and
// recorded nothing, it runs once in the background.
func (a *App) StartScheduler() error {
	job := &scheduler.DailyRefreshJob{Refresher: a.Refresh, Timeout: dailyJobTimeout}
	if err := a.Scheduler.AddJob(a.Config.DailyCron, job); err != nil {
		return err
	}
	prune := &scheduler.CachePruneJob{Cache: a.quotes, Logger: logger.Component(a.Logger, "quote_cache")}
	if err := a.Scheduler.AddJob(pruneSchedule, prune); err != nil {
		return err
	}
	a.Scheduler.Start()

	missed, err := a.dailyRunMissed(context.Background(), a.now())
	if err != nil {
		a.Logger.Warn().Err(err).Msg("checking for a missed daily refresh")
		return nil
	}
	if missed {
		a.catchUp.Add(1)
		go func() {
			defer a.catchUp.Done()
			if err := a.Scheduler.RunNow(job); err != nil {
				a.Logger.Error().Err(err).Msg("catch-up daily refresh failed")
			}
		}()
	}
	return nil
}

// dailyRunMissed reports whether the daily schedule already fired today in
// the configured timezone while no snapshot exists for today.
func (a *App) dailyRunMissed(ctx context.Context, now time.Time) (bool, error) {
	sched, err := cron.ParseStandard(a.Config.DailyCron)
	if err != nil {
		return false, err
	}
	loc := a.Config.Location()
	local := now.In(loc)
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if due := sched.Next(midnight.Add(-time.Second)); due.After(local) {
		return false, nil
	}
	n, err := a.snapshots.CountSnapshotsOn(ctx, domain.CalendarDate(now, loc))
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Close stops background work and releases connections it opened.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	a.catchUp.Wait()
	if a.ownRedis {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("closing redis")
		}
	}
	if a.ownDB && a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
