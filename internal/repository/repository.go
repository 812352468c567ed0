package repository

import (
	"context"

	"github.com/frontandrew/plakatakip/internal/domain"
)

// RecordRepository определяет методы для работы с учетными записями категорий
type RecordRepository interface {
	// List возвращает все записи категории в порядке добавления
	List(ctx context.Context, category domain.Category) ([]*domain.ComplianceRecord, error)

	// Get возвращает запись по ID внутри категории
	Get(ctx context.Context, category domain.Category, id string) (*domain.ComplianceRecord, error)

	// Upsert заменяет запись с тем же ID целиком или добавляет новую в конец.
	// Возвращает true, если запись была создана.
	Upsert(ctx context.Context, category domain.Category, record *domain.ComplianceRecord) (bool, error)

	// ReplaceAll заменяет всю коллекцию категории
	ReplaceAll(ctx context.Context, category domain.Category, records []*domain.ComplianceRecord) error
}

// ArchiveRepository определяет методы для работы с архивом документов
type ArchiveRepository interface {
	// Create добавляет документ в архив
	Create(ctx context.Context, doc *domain.ArchiveDocument) error

	// GetByID возвращает документ по ID
	GetByID(ctx context.Context, id string) (*domain.ArchiveDocument, error)

	// List возвращает все документы в порядке загрузки
	List(ctx context.Context) ([]*domain.ArchiveDocument, error)
}

// SMSHistoryRepository определяет методы для журнала SMS
type SMSHistoryRepository interface {
	// Create добавляет запись в журнал
	Create(ctx context.Context, entry *domain.SMSHistoryEntry) error

	// List возвращает журнал, новые записи первыми
	List(ctx context.Context) ([]*domain.SMSHistoryEntry, error)
}

// UserRepository определяет методы для получения операторов
type UserRepository interface {
	// GetByUsername возвращает пользователя по логину
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// List возвращает всех пользователей
	List(ctx context.Context) ([]*domain.User, error)
}
