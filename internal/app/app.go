// Package app собирает зависимости из конфигурации: хранилища, сервисы и HTTP router.
// Используется сервером и утилитой plakactl.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	deliveryHTTP "github.com/frontandrew/plakatakip/internal/delivery/http"
	"github.com/frontandrew/plakatakip/internal/delivery/http/middleware"
	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/infrastructure/export"
	"github.com/frontandrew/plakatakip/internal/infrastructure/sms"
	"github.com/frontandrew/plakatakip/internal/infrastructure/storage"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
	"github.com/frontandrew/plakatakip/internal/pkg/config"
	"github.com/frontandrew/plakatakip/internal/pkg/database"
	"github.com/frontandrew/plakatakip/internal/pkg/hash"
	"github.com/frontandrew/plakatakip/internal/pkg/jwt"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/pkg/metrics"
	"github.com/frontandrew/plakatakip/internal/pkg/redis"
	"github.com/frontandrew/plakatakip/internal/repository"
	"github.com/frontandrew/plakatakip/internal/repository/cached"
	"github.com/frontandrew/plakatakip/internal/repository/kv"
	"github.com/frontandrew/plakatakip/internal/repository/postgres"
	"github.com/frontandrew/plakatakip/internal/repository/postgres/migrations"
	"github.com/frontandrew/plakatakip/internal/repository/sample"
	"github.com/frontandrew/plakatakip/internal/usecase/archive"
	"github.com/frontandrew/plakatakip/internal/usecase/auth"
	"github.com/frontandrew/plakatakip/internal/usecase/dashboard"
	"github.com/frontandrew/plakatakip/internal/usecase/notify"
	"github.com/frontandrew/plakatakip/internal/usecase/record"
)

// Stores - репозитории выбранного backend'а
type Stores struct {
	Records    repository.RecordRepository
	Archive    repository.ArchiveRepository
	SMSHistory repository.SMSHistoryRepository
}

// App - собранное приложение
type App struct {
	Config   *config.Config
	Logger   logger.Logger
	Catalog  *catalog.Catalog
	Metrics  *metrics.Metrics
	Location *time.Location
	Stores   Stores

	Tokens    *jwt.TokenService
	Auth      *auth.Service
	Records   *record.Service
	Dashboard *dashboard.Service
	Archive   *archive.Service
	Notify    *notify.Service
	Exporter  *export.Exporter

	closers []func()
}

// New подключается к хранилищам и создает сервисы
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{
		Config:   cfg,
		Logger:   log,
		Metrics:  metrics.New(),
		Location: cfg.Scheduler.Location(),
	}

	cat, err := loadCatalog(cfg.Catalog.File)
	if err != nil {
		return nil, err
	}
	a.Catalog = cat

	if err := a.openStores(ctx); err != nil {
		a.Close()
		return nil, err
	}

	documents, err := openDocuments(ctx, &cfg.Documents)
	if err != nil {
		a.Close()
		return nil, err
	}

	users, err := auth.ParseUsers(cfg.Auth.Users, hash.DefaultCost)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Tokens = jwt.NewTokenService(cfg.JWT.SecretKey, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)
	a.Auth = auth.NewService(auth.NewDirectory(users), a.Tokens, log)
	a.Records = record.NewService(a.Stores.Records, cat, a.Metrics, log)
	a.Dashboard = dashboard.NewService(a.Stores.Records, cat, a.Metrics, a.Location, log)
	a.Archive = archive.NewService(a.Stores.Archive, documents, cfg.Documents.MaxUploadBytes(), a.Metrics, log)
	a.Notify = notify.NewService(a.Stores.Records, a.Stores.SMSHistory, newSender(&cfg.SMS, log), cat, a.Metrics, a.Location, log)
	a.Exporter = export.New(a.Location)

	log.Info("Application initialized", map[string]interface{}{
		"storage":    cfg.Storage.Backend,
		"documents":  cfg.Documents.Backend,
		"categories": len(cat.Entries()),
		"users":      len(users),
	})
	return a, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

func (a *App) openStores(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		a.useKV(kv.NewMemoryStore())
		return nil

	case config.BackendRedis:
		client, err := a.connectRedis(ctx)
		if err != nil {
			return err
		}
		a.useKV(kv.NewRedisStore(client, cfg.Storage.KeyPrefix))
		return nil

	case config.BackendPostgres:
		return a.usePostgres(ctx)

	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func (a *App) useKV(store kv.Store) {
	a.Stores = Stores{
		Records:    kv.NewRecordRepository(store, a.Catalog, a.Logger, kv.WithSeed(a.Config.Storage.SeedSample)),
		Archive:    kv.NewArchiveRepository(store),
		SMSHistory: kv.NewSMSHistoryRepository(store),
	}
}

func (a *App) usePostgres(ctx context.Context) error {
	cfg := a.Config
	if cfg.Database.AutoMigrate {
		if err := migrations.Up(cfg.Database.MigrateURL()); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		a.Logger.Info("Database migrations applied")
	}

	db, err := database.Connect(ctx, &cfg.Database, a.Logger)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func() { database.Close(db) })
	a.Logger.Info("Connected to PostgreSQL", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Database,
	})

	records := postgres.NewRecordRepository(db)
	if cfg.Storage.UseCache {
		client, err := a.connectRedis(ctx)
		if err != nil {
			return err
		}
		records = cached.NewRecordRepository(records, client, cfg.Storage.CacheTTL, a.Logger)
	}

	a.Stores = Stores{
		Records:    records,
		Archive:    postgres.NewArchiveRepository(db),
		SMSHistory: postgres.NewSMSHistoryRepository(db),
	}

	if cfg.Storage.SeedSample {
		if _, err := a.Seed(ctx, false); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) connectRedis(ctx context.Context) (*redis.Client, error) {
	cfg := a.Config.Redis
	client, err := redis.NewClient(ctx, redis.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	a.Logger.Info("Connected to Redis", map[string]interface{}{
		"address": cfg.Address(),
	})
	return client, nil
}

func openDocuments(ctx context.Context, cfg *config.DocumentsConfig) (storage.Storage, error) {
	switch cfg.Backend {
	case config.DocumentsS3:
		client, err := storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return nil, err
		}
		return storage.NewS3(client, cfg.S3.Bucket, cfg.S3.Prefix), nil
	default:
		return storage.NewFileSystem(cfg.Dir)
	}
}

func newSender(cfg *config.SMSConfig, log logger.Logger) sms.Sender {
	if cfg.GatewayURL == "" {
		return sms.NewLogSender(log)
	}
	return sms.NewHTTPClient(sms.Config{
		BaseURL:    cfg.GatewayURL,
		APIKey:     cfg.APIKey,
		Sender:     cfg.Sender,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	})
}

// Seed записывает демонстрационные данные. Без force заполняются только пустые категории.
// Возвращает число записанных записей по категориям.
func (a *App) Seed(ctx context.Context, force bool) (map[domain.Category]int, error) {
	now := time.Now().In(a.Location)
	written := make(map[domain.Category]int)

	for _, entry := range a.Catalog.Entries() {
		if !force {
			existing, err := a.Stores.Records.List(ctx, entry.Code)
			if err != nil {
				return nil, fmt.Errorf("list %s: %w", entry.Code, err)
			}
			if len(existing) > 0 {
				continue
			}
		}
		records := sample.Records(entry, now)
		if err := a.Stores.Records.ReplaceAll(ctx, entry.Code, records); err != nil {
			return nil, fmt.Errorf("seed %s: %w", entry.Code, err)
		}
		written[entry.Code] = len(records)
	}

	a.Logger.Info("Sample data written", map[string]interface{}{
		"categories": len(written),
		"force":      force,
	})
	return written, nil
}

// Router собирает HTTP handler'ы; loginLimiter может быть nil
func (a *App) Router(loginLimiter *middleware.RateLimiter) http.Handler {
	handlers := deliveryHTTP.Handlers{
		Auth:      deliveryHTTP.NewAuthHandler(a.Auth, a.Logger),
		Record:    deliveryHTTP.NewRecordHandler(a.Records, a.Exporter, a.Metrics, a.Logger),
		Dashboard: deliveryHTTP.NewDashboardHandler(a.Dashboard, a.Exporter, a.Metrics, a.Logger),
		Archive:   deliveryHTTP.NewArchiveHandler(a.Archive, a.maxBodyBytes(), a.Logger),
		SMS:       deliveryHTTP.NewSMSHandler(a.Notify, a.Config.Scheduler.WindowDays, a.Logger),
	}
	return deliveryHTTP.NewRouter(handlers, a.Tokens, loginLimiter, a.Metrics, a.Config, a.Logger).Setup()
}

// multipartOverhead - запас на поля формы и границы multipart сверх размера файла
const multipartOverhead = 1 << 20

func (a *App) maxBodyBytes() int64 {
	limit := a.Config.Documents.MaxUploadBytes()
	if limit <= 0 {
		return 0
	}
	return limit + multipartOverhead
}

// Scheduler создает ежедневную проверку истекающих документов
func (a *App) Scheduler() *notify.Scheduler {
	cfg := a.Config.Scheduler
	return notify.NewScheduler(a.Notify, cfg.At, cfg.WindowDays, a.Location, a.Metrics, a.Logger)
}

// Close закрывает подключения в обратном порядке
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
