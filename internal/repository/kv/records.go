package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/repository"
	"github.com/frontandrew/plakatakip/internal/repository/sample"
)

// SchemaVersion - текущая версия формата записи в хранилище
const SchemaVersion = 2

// storedRecord - запись в том виде, в котором она лежит в JSON массиве.
// Active объявлен указателем, чтобы отличать "false" от отсутствия поля
// в документах первой версии.
type storedRecord struct {
	SchemaVersion int `json:"schemaVersion,omitempty"`
	domain.ComplianceRecord
	Active *bool `json:"active,omitempty"`
}

// RecordRepository хранит каждую категорию как JSON массив под своим ключом
type RecordRepository struct {
	store   Store
	catalog *catalog.Catalog
	logger  logger.Logger
	seed    bool
	now     func() time.Time

	// сериализует чтение-изменение-запись внутри процесса
	mu sync.Mutex
}

// Option настраивает RecordRepository
type Option func(*RecordRepository)

// WithSeed заполняет отсутствующие категории демонстрационными данными
func WithSeed(seed bool) Option {
	return func(r *RecordRepository) { r.seed = seed }
}

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(r *RecordRepository) { r.now = now }
}

// NewRecordRepository создает репозиторий записей поверх key-value хранилища
func NewRecordRepository(store Store, cat *catalog.Catalog, log logger.Logger, opts ...Option) *RecordRepository {
	r := &RecordRepository{
		store:   store,
		catalog: cat,
		logger:  log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ repository.RecordRepository = (*RecordRepository)(nil)

func (r *RecordRepository) List(ctx context.Context, category domain.Category) ([]*domain.ComplianceRecord, error) {
	entry, ok := r.catalog.Get(category)
	if !ok {
		return nil, domain.ErrUnknownCategory
	}
	return r.load(ctx, entry)
}

func (r *RecordRepository) Get(ctx context.Context, category domain.Category, id string) (*domain.ComplianceRecord, error) {
	records, err := r.List(ctx, category)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (r *RecordRepository) Upsert(ctx context.Context, category domain.Category, record *domain.ComplianceRecord) (bool, error) {
	entry, ok := r.catalog.Get(category)
	if !ok {
		return false, domain.ErrUnknownCategory
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx, entry)
	if err != nil {
		return false, err
	}

	created := true
	for i, rec := range records {
		if rec.ID == record.ID {
			records[i] = record
			created = false
			break
		}
	}
	if created {
		records = append(records, record)
	}

	if err := r.save(ctx, entry, records); err != nil {
		return false, err
	}
	return created, nil
}

func (r *RecordRepository) ReplaceAll(ctx context.Context, category domain.Category, records []*domain.ComplianceRecord) error {
	entry, ok := r.catalog.Get(category)
	if !ok {
		return domain.ErrUnknownCategory
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.save(ctx, entry, records)
}

// load читает коллекцию и нормализует каждую запись к текущей версии.
// Поврежденный JSON заменяется демонстрационным набором.
func (r *RecordRepository) load(ctx context.Context, entry catalog.Entry) ([]*domain.ComplianceRecord, error) {
	raw, err := r.store.Get(ctx, entry.StorageKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			if !r.seed {
				return []*domain.ComplianceRecord{}, nil
			}
			return r.reseed(ctx, entry, "missing")
		}
		return nil, err
	}

	var stored []storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		r.logger.Error("Malformed category data, replacing with sample dataset", map[string]interface{}{
			"category": entry.Code,
			"key":      entry.StorageKey,
			"error":    err.Error(),
		})
		return r.reseed(ctx, entry, "malformed")
	}

	now := r.now()
	records := make([]*domain.ComplianceRecord, 0, len(stored))
	for i := range stored {
		records = append(records, normalizeRecord(&stored[i], entry, now))
	}
	return records, nil
}

func (r *RecordRepository) reseed(ctx context.Context, entry catalog.Entry, reason string) ([]*domain.ComplianceRecord, error) {
	records := sample.Records(entry, r.now())
	if err := r.save(ctx, entry, records); err != nil {
		return nil, err
	}
	r.logger.Info("Category seeded with sample data", map[string]interface{}{
		"category": entry.Code,
		"reason":   reason,
		"count":    len(records),
	})
	return records, nil
}

func (r *RecordRepository) save(ctx context.Context, entry catalog.Entry, records []*domain.ComplianceRecord) error {
	stored := make([]storedRecord, 0, len(records))
	for _, rec := range records {
		active := rec.Active
		stored = append(stored, storedRecord{
			SchemaVersion:    SchemaVersion,
			ComplianceRecord: *rec,
			Active:           &active,
		})
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", entry.StorageKey, err)
	}
	return r.store.Set(ctx, entry.StorageKey, raw)
}

// normalizeRecord приводит запись любой версии к канонической форме.
// Документы первой версии не содержат active, ownerType и флагов,
// а обязательные периоды в них могли отсутствовать.
func normalizeRecord(s *storedRecord, entry catalog.Entry, now time.Time) *domain.ComplianceRecord {
	rec := s.ComplianceRecord
	rec.Active = true
	if s.Active != nil {
		rec.Active = *s.Active
	}
	rec.ApplyDefaults()

	if s.SchemaVersion < SchemaVersion {
		y, m, d := now.Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		for _, doc := range entry.Required {
			if rec.Range(doc) == nil {
				rec.SetRange(doc, &domain.DateRange{StartDate: today, EndDate: today.AddDate(0, 0, 365)})
			}
		}
	}
	if !entry.Applies(domain.DocumentSeatInsurance) {
		rec.SeatInsurance = nil
	}
	return &rec
}
