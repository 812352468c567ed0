package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/zeebo/xxh3"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/infrastructure/storage"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/pkg/metrics"
	"github.com/frontandrew/plakatakip/internal/pkg/textutil"
	"github.com/frontandrew/plakatakip/internal/repository"
)

// Сообщения формы загрузки
const (
	MsgPlateRequired = "Lütfen plaka numarası girin"
	MsgTypeRequired  = "Lütfen belge türü seçin"
	MsgFileRequired  = "Lütfen bir dosya seçin"
	MsgFileTooLarge  = "Dosya boyutu çok büyük"
)

// UploadError - ошибка формы загрузки с сообщением для пользователя
type UploadError struct {
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Message)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// UploadRequest - загружаемый файл и его метаданные
type UploadRequest struct {
	LicensePlate string
	DocumentType string
	FileName     string
	ContentType  string
	Content      io.Reader
}

// Service управляет архивом документов
type Service struct {
	repo     repository.ArchiveRepository
	storage  storage.Storage
	maxBytes int64
	metrics  *metrics.Metrics
	logger   logger.Logger
	now      func() time.Time
}

// NewService создает сервис архива; maxBytes <= 0 снимает ограничение размера
func NewService(repo repository.ArchiveRepository, st storage.Storage, maxBytes int64, m *metrics.Metrics, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		storage:  st,
		maxBytes: maxBytes,
		metrics:  m,
		logger:   log,
		now:      time.Now,
	}
}

// Upload проверяет форму, сохраняет содержимое и добавляет документ в архив
func (s *Service) Upload(ctx context.Context, req *UploadRequest) (*domain.ArchiveDocument, error) {
	plate := strings.Join(strings.Fields(req.LicensePlate), " ")
	if plate == "" {
		return nil, &UploadError{Message: MsgPlateRequired, Err: domain.ErrInvalidUpload}
	}
	docType := normalizeDocumentType(req.DocumentType)
	if docType == "" {
		return nil, &UploadError{Message: MsgTypeRequired, Err: domain.ErrInvalidUpload}
	}
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(req.FileName), "\\", "/"))
	if req.Content == nil || name == "" || name == "." || name == "/" {
		return nil, &UploadError{Message: MsgFileRequired, Err: domain.ErrInvalidUpload}
	}

	data, err := s.read(req.Content)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &UploadError{Message: MsgFileRequired, Err: domain.ErrInvalidUpload}
	}

	now := s.now().UTC()
	doc := &domain.ArchiveDocument{
		ID:           uuid.NewString(),
		LicensePlate: plate,
		DocumentType: docType,
		FileName:     name,
		UploadDate:   now,
		ContentType:  req.ContentType,
		Size:         int64(len(data)),
		Checksum:     fmt.Sprintf("%016x", xxh3.Hash(data)),
	}
	doc.StorageKey = StorageKey(doc)

	if err := s.storage.Put(ctx, doc.StorageKey, bytes.NewReader(data), doc.Size, doc.ContentType); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		// файл без метаданных никому не виден
		if derr := s.storage.Delete(ctx, doc.StorageKey); derr != nil {
			s.logger.Warn("Failed to remove orphan upload", map[string]interface{}{
				"key":   doc.StorageKey,
				"error": derr.Error(),
			})
		}
		return nil, fmt.Errorf("save document: %w", err)
	}

	s.metrics.DocumentStored()
	s.logger.Info("Document uploaded", map[string]interface{}{
		"id":            doc.ID,
		"license_plate": doc.LicensePlate,
		"document_type": doc.DocumentType,
		"size":          doc.Size,
	})
	return doc, nil
}

func (s *Service) read(r io.Reader) ([]byte, error) {
	if s.maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, &UploadError{Message: MsgFileTooLarge, Err: domain.ErrUploadTooLarge}
	}
	return data, nil
}

// StorageKey строит ключ вида 2024/04/<id>-<slug>.<ext>
func StorageKey(doc *domain.ArchiveDocument) string {
	ext := strings.ToLower(path.Ext(doc.FileName))
	base := slug.MakeLang(strings.TrimSuffix(doc.FileName, path.Ext(doc.FileName)), "tr")
	if base == "" {
		base = "belge"
	}
	return fmt.Sprintf("%s/%s-%s%s", doc.UploadDate.Format("2006/01"), doc.ID, base, ext)
}

// normalizeDocumentType приводит известные типы к турецкому названию,
// остальные значения сохраняет как есть.
func normalizeDocumentType(s string) string {
	s = strings.TrimSpace(s)
	if d, err := domain.ParseDocumentType(s); err == nil {
		return d.Label()
	}
	return s
}

// List возвращает документы, новые первыми. query ищется в номере и типе.
func (s *Service) List(ctx context.Context, query string) ([]*domain.ArchiveDocument, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	query = strings.TrimSpace(query)
	out := make([]*domain.ArchiveDocument, 0, len(docs))
	for _, d := range docs {
		if query == "" ||
			textutil.Contains(d.LicensePlate, query) ||
			textutil.Contains(d.DocumentType, query) ||
			textutil.Contains(strings.ReplaceAll(d.LicensePlate, " ", ""), strings.ReplaceAll(query, " ", "")) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadDate.After(out[j].UploadDate)
	})
	return out, nil
}

// Open возвращает метаданные и содержимое документа
func (s *Service) Open(ctx context.Context, id string) (*domain.ArchiveDocument, io.ReadCloser, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if doc.StorageKey == "" {
		return nil, nil, domain.ErrDocumentNotFound
	}
	rc, err := s.storage.Open(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return doc, rc, nil
}
