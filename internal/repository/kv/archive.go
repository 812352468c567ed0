package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/repository"
)

const (
	archiveKey    = "archiveDocuments"
	smsHistoryKey = "smsHistory"
)

// ArchiveRepository хранит список документов архива под одним ключом
type ArchiveRepository struct {
	store Store
	mu    sync.Mutex
}

// NewArchiveRepository создает репозиторий архива
func NewArchiveRepository(store Store) *ArchiveRepository {
	return &ArchiveRepository{store: store}
}

var _ repository.ArchiveRepository = (*ArchiveRepository)(nil)

func (r *ArchiveRepository) Create(ctx context.Context, doc *domain.ArchiveDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.List(ctx)
	if err != nil {
		return err
	}
	docs = append(docs, doc)
	return setJSON(ctx, r.store, archiveKey, docs)
}

func (r *ArchiveRepository) GetByID(ctx context.Context, id string) (*domain.ArchiveDocument, error) {
	docs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

func (r *ArchiveRepository) List(ctx context.Context) ([]*domain.ArchiveDocument, error) {
	docs := []*domain.ArchiveDocument{}
	if err := getJSON(ctx, r.store, archiveKey, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// SMSHistoryRepository хранит журнал SMS под одним ключом
type SMSHistoryRepository struct {
	store Store
	mu    sync.Mutex
}

// NewSMSHistoryRepository создает репозиторий журнала SMS
func NewSMSHistoryRepository(store Store) *SMSHistoryRepository {
	return &SMSHistoryRepository{store: store}
}

var _ repository.SMSHistoryRepository = (*SMSHistoryRepository)(nil)

func (r *SMSHistoryRepository) Create(ctx context.Context, entry *domain.SMSHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := []*domain.SMSHistoryEntry{}
	if err := getJSON(ctx, r.store, smsHistoryKey, &entries); err != nil {
		return err
	}
	entries = append(entries, entry)
	return setJSON(ctx, r.store, smsHistoryKey, entries)
}

func (r *SMSHistoryRepository) List(ctx context.Context) ([]*domain.SMSHistoryEntry, error) {
	entries := []*domain.SMSHistoryEntry{}
	if err := getJSON(ctx, r.store, smsHistoryKey, &entries); err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SentDate.After(entries[j].SentDate)
	})
	return entries, nil
}

// getJSON читает значение; отсутствующий ключ оставляет dst без изменений
func getJSON(ctx context.Context, store Store, key string, dst interface{}) error {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func setJSON(ctx context.Context, store Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, raw)
}
