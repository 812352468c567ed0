package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/pkg/metrics"
	"github.com/frontandrew/plakatakip/internal/repository"
)

// ErrUnknownRange - период отчета не из week/month/quarter
var ErrUnknownRange = fmt.Errorf("%w: unknown report range", domain.ErrBadRequest)

// Service собирает сводки по всем категориям
type Service struct {
	repo    repository.RecordRepository
	catalog *catalog.Catalog
	metrics *metrics.Metrics
	logger  logger.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewService создает сервис панели и отчетов.
// loc задает календарь, в котором считаются дни; nil - UTC.
func NewService(repo repository.RecordRepository, cat *catalog.Catalog, m *metrics.Metrics, loc *time.Location, log logger.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:    repo,
		catalog: cat,
		metrics: m,
		logger:  log,
		loc:     loc,
		now:     time.Now,
	}
}

// Now - текущее время в календаре сервиса
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Snapshot загружает записи всех категорий каталога
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	all := make(Snapshot, len(s.catalog.Entries()))
	for _, entry := range s.catalog.Entries() {
		records, err := s.repo.List(ctx, entry.Code)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Code, err)
		}
		all[entry.Code] = records
	}
	return all, nil
}

// Summary - данные главной панели
type Summary struct {
	GeneratedAt       time.Time       `json:"generatedAt"`
	WindowDays        int             `json:"windowDays"`
	Entries           []ExpiryEntry   `json:"entries"`
	ExpiredCount      int             `json:"expiredCount"`
	ExpiringSoonCount int             `json:"expiringSoonCount"`
	Categories        []CategoryCount `json:"categories"`
	TotalRecords      int             `json:"totalRecords"`
}

// Dashboard строит список истекающих документов и счетчики
func (s *Service) Dashboard(ctx context.Context, windowDays int) (*Summary, error) {
	if windowDays <= 0 {
		windowDays = domain.WarningWindowDays
	}
	all, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	ref := s.Now()

	entries := ComputeExpiringDocuments(s.catalog, all, windowDays, ref)
	dist := Distribution(s.catalog, all)
	total := 0
	for _, c := range dist {
		total += c.Count
	}

	sum := &Summary{
		GeneratedAt:       ref,
		WindowDays:        windowDays,
		Entries:           entries,
		ExpiredCount:      CountExpired(entries),
		ExpiringSoonCount: CountExpiringSoon(entries),
		Categories:        dist,
		TotalRecords:      total,
	}
	s.metrics.SetExpiring(sum.ExpiredCount, sum.ExpiringSoonCount, len(entries))

	return sum, nil
}

// Report - данные страницы отчетов
type Report struct {
	GeneratedAt     time.Time         `json:"generatedAt"`
	Range           RangeStats        `json:"range"`
	Distribution    []CategoryCount   `json:"distribution"`
	Forecast        []ForecastPoint   `json:"forecast"`
	OwnerComparison []OwnerComparison `json:"ownerComparison"`
	ExpiredCount    int               `json:"expiredCount"`
	TotalRecords    int               `json:"totalRecords"`
}

// Report строит отчет за период week, month или quarter (пусто - month)
func (s *Service) Report(ctx context.Context, r TimeRange) (*Report, error) {
	if r == "" {
		r = RangeMonth
	}
	days, ok := r.Days()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRange, r)
	}

	all, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.BuildReport(all, r, days), nil
}

// BuildReport считает отчет по готовому снимку
func (s *Service) BuildReport(all Snapshot, r TimeRange, days int) *Report {
	ref := s.Now()
	dist := Distribution(s.catalog, all)
	total := 0
	for _, c := range dist {
		total += c.Count
	}

	return &Report{
		GeneratedAt:     ref,
		Range:           ComputeRangeStats(s.catalog, all, r, days, ref),
		Distribution:    dist,
		Forecast:        Forecast(s.catalog, all, ref, ForecastMonths),
		OwnerComparison: CompareOwnerTypes(s.catalog, all, days, ref),
		ExpiredCount:    CountExpired(ComputeExpiringDocuments(s.catalog, all, days, ref)),
		TotalRecords:    total,
	}
}

// Catalog возвращает каталог категорий
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}
