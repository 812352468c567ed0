package record

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/pkg/metrics"
	"github.com/frontandrew/plakatakip/internal/pkg/textutil"
	"github.com/frontandrew/plakatakip/internal/repository"
	"github.com/google/uuid"
)

// Service реализует бизнес-логику учетных записей категорий
type Service struct {
	repo    repository.RecordRepository
	catalog *catalog.Catalog
	metrics *metrics.Metrics
	logger  logger.Logger
	now     func() time.Time
}

// NewService создает новый сервис записей
func NewService(repo repository.RecordRepository, cat *catalog.Catalog, m *metrics.Metrics, log logger.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: cat,
		metrics: m,
		logger:  log,
		now:     time.Now,
	}
}

// View - запись вместе с вычисленными статусами
type View struct {
	*domain.ComplianceRecord
	Status         domain.Status                         `json:"status"`
	StatusLabel    string                                `json:"statusLabel"`
	OwnerTypeLabel string                                `json:"ownerTypeLabel"`
	Documents      map[domain.DocumentType]domain.Status `json:"documents"`
}

// ListResult - содержимое одной категории
type ListResult struct {
	Category catalog.Entry `json:"category"`
	Records  []View        `json:"records"`
}

// Categories возвращает таблицу категорий
func (s *Service) Categories() []catalog.Entry {
	return s.catalog.Entries()
}

// Resolve находит категорию по коду из URL
func (s *Service) Resolve(plateType string) (catalog.Entry, error) {
	return s.catalog.Resolve(plateType)
}

// List возвращает записи категории: фильтр по имени, номеру или телефону,
// владельцы перед водителями, порядок внутри групп сохраняется.
func (s *Service) List(ctx context.Context, plateType, query string) (*ListResult, error) {
	entry, err := s.catalog.Resolve(plateType)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.List(ctx, entry.Code)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entry.Code, err)
	}

	records = SortByOwnerType(Filter(records, query))

	now := s.now()
	views := make([]View, 0, len(records))
	for _, r := range records {
		views = append(views, s.view(r, entry, now))
	}

	return &ListResult{Category: entry, Records: views}, nil
}

// Records возвращает записи категории без фильтрации и представлений
func (s *Service) Records(ctx context.Context, plateType string) (catalog.Entry, []*domain.ComplianceRecord, error) {
	entry, err := s.catalog.Resolve(plateType)
	if err != nil {
		return catalog.Entry{}, nil, err
	}
	records, err := s.repo.List(ctx, entry.Code)
	if err != nil {
		return catalog.Entry{}, nil, fmt.Errorf("list %s: %w", entry.Code, err)
	}
	return entry, SortByOwnerType(records), nil
}

// Get возвращает запись по ID
func (s *Service) Get(ctx context.Context, plateType, id string) (*View, error) {
	entry, err := s.catalog.Resolve(plateType)
	if err != nil {
		return nil, err
	}

	r, err := s.repo.Get(ctx, entry.Code, id)
	if err != nil {
		return nil, err
	}

	v := s.view(r, entry, s.now())
	return &v, nil
}

// Save проверяет форму, собирает номер и заменяет запись целиком
// (или добавляет новую, если ID пустой или неизвестный).
func (s *Service) Save(ctx context.Context, plateType string, req *SaveRequest) (*domain.ComplianceRecord, bool, error) {
	entry, err := s.catalog.Resolve(plateType)
	if err != nil {
		return nil, false, err
	}

	if errs := Validate(req, entry); len(errs) > 0 {
		s.logger.Debug("Record rejected by validation", map[string]interface{}{
			"category": entry.Code,
			"fields":   errs.Fields(),
		})
		return nil, false, &ValidationError{Fields: errs}
	}

	rec, err := buildRecord(req, entry)
	if err != nil {
		return nil, false, err
	}

	created, err := s.repo.Upsert(ctx, entry.Code, rec)
	if err != nil {
		return nil, false, fmt.Errorf("save %s/%s: %w", entry.Code, rec.ID, err)
	}

	op := "update"
	if created {
		op = "create"
	}
	s.metrics.RecordSaved(string(entry.Code), op)
	s.logger.Info("Record saved", map[string]interface{}{
		"category": entry.Code,
		"id":       rec.ID,
		"plate":    rec.LicensePlate,
		"op":       op,
	})

	return rec, created, nil
}

func buildRecord(req *SaveRequest, entry catalog.Entry) (*domain.ComplianceRecord, error) {
	prefix, number := req.plateParts()
	plate, err := domain.ComposePlate(prefix, entry.Code, number)
	if err != nil {
		return nil, err
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	rec := &domain.ComplianceRecord{
		ID:                  id,
		Name:                strings.TrimSpace(req.Name),
		RegistrationNumber:  strings.TrimSpace(req.RegistrationNumber),
		Phone:               strings.TrimSpace(req.Phone),
		LicensePlate:        plate,
		VehicleAge:          req.VehicleAge,
		OwnerType:           req.OwnerType,
		Active:              active,
		CriminalRecord:      req.CriminalRecord,
		TaxCertificate:      req.TaxCertificate,
		ChamberRegistration: req.ChamberRegistration,
		SGKServiceList:      req.SGKServiceList,
		PenaltyPoints:       req.PenaltyPoints,
		LicenseDocument:     req.LicenseDocument,
	}
	rec.ApplyDefaults()

	for _, f := range req.dateFields() {
		if !entry.Applies(f.doc) || f.start == nil || f.end == nil || f.start.IsZero() || f.end.IsZero() {
			continue
		}
		rec.SetRange(f.doc, &domain.DateRange{StartDate: f.start.Time, EndDate: f.end.Time})
	}

	return rec, nil
}

func (s *Service) view(r *domain.ComplianceRecord, entry catalog.Entry, now time.Time) View {
	docs := make(map[domain.DocumentType]domain.Status, len(entry.Documents))
	statuses := make([]domain.Status, 0, len(entry.Documents))
	for _, doc := range entry.Documents {
		dr := r.Range(doc)
		if dr == nil {
			continue
		}
		st := domain.Classify(dr.EndDate, now, r.Active)
		docs[doc] = st
		statuses = append(statuses, st)
	}
	worst := domain.Worst(statuses...)

	return View{
		ComplianceRecord: r,
		Status:           worst,
		StatusLabel:      worst.Label(),
		OwnerTypeLabel:   r.OwnerType.Label(),
		Documents:        docs,
	}
}

// Filter оставляет записи, у которых имя, номер или телефон содержат query.
// Сравнение без учета регистра и турецкой диакритики.
func Filter(records []*domain.ComplianceRecord, query string) []*domain.ComplianceRecord {
	query = strings.TrimSpace(query)
	if query == "" {
		return records
	}
	digits := textutil.Digits(query)

	out := make([]*domain.ComplianceRecord, 0, len(records))
	for _, r := range records {
		switch {
		case textutil.Contains(r.Name, query),
			textutil.Contains(r.LicensePlate, query),
			textutil.Contains(r.RegistrationNumber, query),
			strings.Contains(r.Phone, query),
			digits != "" && len(digits) == len(strings.ReplaceAll(query, " ", "")) &&
				strings.Contains(textutil.Digits(r.Phone), digits):
			out = append(out, r)
		}
	}
	return out
}

// SortByOwnerType ставит владельцев перед водителями, сохраняя порядок внутри групп
func SortByOwnerType(records []*domain.ComplianceRecord) []*domain.ComplianceRecord {
	out := make([]*domain.ComplianceRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return ownerRank(out[i].OwnerType) < ownerRank(out[j].OwnerType)
	})
	return out
}

func ownerRank(o domain.OwnerType) int {
	if o == domain.OwnerTypeDriver {
		return 1
	}
	return 0
}
