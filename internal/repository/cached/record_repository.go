package cached

import (
	"context"
	"encoding/json"
	"time"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/repository"
)

const recordsCachePrefix = "records:"

// Cache - операции кэша, которые нужны декоратору.
// Реализуется *redis.Client из internal/pkg/redis.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RecordRepository добавляет кэширование списков категорий
type RecordRepository struct {
	repo   repository.RecordRepository
	cache  Cache
	ttl    time.Duration
	logger logger.Logger
}

// NewRecordRepository создает новый кэшируемый repository записей
func NewRecordRepository(repo repository.RecordRepository, cache Cache, ttl time.Duration, log logger.Logger) *RecordRepository {
	return &RecordRepository{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

var _ repository.RecordRepository = (*RecordRepository)(nil)

// List возвращает записи категории (с кэшированием)
func (r *RecordRepository) List(ctx context.Context, category domain.Category) ([]*domain.ComplianceRecord, error) {
	cacheKey := recordsCachePrefix + string(category)

	// 1. Проверяем кэш
	if raw, err := r.cache.Get(ctx, cacheKey); err == nil {
		var records []*domain.ComplianceRecord
		if err := json.Unmarshal(raw, &records); err == nil {
			return records, nil
		}
	}

	// 2. Cache miss - идем в БД
	records, err := r.repo.List(ctx, category)
	if err != nil {
		return nil, err
	}

	// 3. Сохраняем результат в кэш, ошибка записи не критична
	if raw, err := json.Marshal(records); err == nil {
		if err := r.cache.Set(ctx, cacheKey, raw, r.ttl); err != nil {
			r.logger.Warn("Failed to populate records cache", map[string]interface{}{
				"category": category,
				"error":    err.Error(),
			})
		}
	}

	return records, nil
}

// Get читает одну запись напрямую из БД
func (r *RecordRepository) Get(ctx context.Context, category domain.Category, id string) (*domain.ComplianceRecord, error) {
	return r.repo.Get(ctx, category, id)
}

// Upsert сохраняет запись и инвалидирует кэш категории
func (r *RecordRepository) Upsert(ctx context.Context, category domain.Category, record *domain.ComplianceRecord) (bool, error) {
	created, err := r.repo.Upsert(ctx, category, record)
	if err != nil {
		return false, err
	}
	r.invalidate(ctx, category)
	return created, nil
}

// ReplaceAll заменяет коллекцию и инвалидирует кэш категории
func (r *RecordRepository) ReplaceAll(ctx context.Context, category domain.Category, records []*domain.ComplianceRecord) error {
	if err := r.repo.ReplaceAll(ctx, category, records); err != nil {
		return err
	}
	r.invalidate(ctx, category)
	return nil
}

func (r *RecordRepository) invalidate(ctx context.Context, category domain.Category) {
	if err := r.cache.Del(ctx, recordsCachePrefix+string(category)); err != nil {
		r.logger.Warn("Failed to invalidate records cache", map[string]interface{}{
			"category": category,
			"error":    err.Error(),
		})
	}
}
