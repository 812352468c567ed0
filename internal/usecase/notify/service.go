package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/infrastructure/sms"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/pkg/metrics"
	"github.com/frontandrew/plakatakip/internal/pkg/textutil"
	"github.com/frontandrew/plakatakip/internal/repository"
	"github.com/frontandrew/plakatakip/internal/usecase/dashboard"
)

// DefaultMessage - текст напоминания из диалога отправки SMS
func DefaultMessage(name, plate string) string {
	return fmt.Sprintf("Sayın %s, %s plakalı aracınızın belgelerinden biri yakında süresi dolacaktır. "+
		"Lütfen en kısa sürede yenileme işlemlerini yapınız.", name, plate)
}

// ReminderMessage - текст автоматического напоминания со списком документов
func ReminderMessage(name, plate string, docs []string) string {
	return fmt.Sprintf("Sayın %s, %s plakalı aracınızın şu belgelerinin süresi dolmak üzere veya dolmuştur: %s. "+
		"Lütfen en kısa sürede yenileme işlemlerini yapınız.", name, plate, strings.Join(docs, ", "))
}

// SendRequest - запрос на отправку SMS владельцу записи
type SendRequest struct {
	PlateType string `json:"plateType"`
	RecordID  string `json:"recordId"`
	Message   string `json:"message,omitempty"`
}

// Service отправляет SMS и ведет журнал
type Service struct {
	records repository.RecordRepository
	history repository.SMSHistoryRepository
	sender  sms.Sender
	catalog *catalog.Catalog
	metrics *metrics.Metrics
	logger  logger.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewService создает сервис уведомлений
func NewService(
	records repository.RecordRepository,
	history repository.SMSHistoryRepository,
	sender sms.Sender,
	cat *catalog.Catalog,
	m *metrics.Metrics,
	loc *time.Location,
	log logger.Logger,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		records: records,
		history: history,
		sender:  sender,
		catalog: cat,
		metrics: m,
		logger:  log,
		loc:     loc,
		now:     time.Now,
	}
}

// Send отправляет SMS владельцу записи. Пустой текст заменяется стандартным.
// Неудачная отправка попадает в журнал со статусом failed и возвращается
// вместе с ошибкой.
func (s *Service) Send(ctx context.Context, req *SendRequest) (*domain.SMSHistoryEntry, error) {
	entry, err := s.catalog.Resolve(req.PlateType)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.Get(ctx, entry.Code, req.RecordID)
	if err != nil {
		return nil, err
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		message = DefaultMessage(rec.Name, rec.LicensePlate)
	}
	return s.deliver(ctx, rec, message)
}

func (s *Service) deliver(ctx context.Context, rec *domain.ComplianceRecord, message string) (*domain.SMSHistoryEntry, error) {
	phone := strings.TrimSpace(rec.Phone)
	if phone == "" {
		return nil, domain.ErrNoPhoneNumber
	}
	if strings.TrimSpace(message) == "" {
		return nil, domain.ErrEmptyMessage
	}

	h := &domain.SMSHistoryEntry{
		ID:            uuid.NewString(),
		PhoneNumber:   phone,
		LicensePlate:  rec.LicensePlate,
		RecipientName: rec.Name,
		Message:       message,
		SentDate:      s.now().UTC(),
	}

	res, sendErr := s.sender.Send(ctx, sms.Message{To: phone, Text: message})
	if sendErr != nil {
		h.Status = domain.SMSStatusFailed
		s.logger.Error("Failed to send SMS", map[string]interface{}{
			"license_plate": rec.LicensePlate,
			"error":         sendErr.Error(),
		})
	} else {
		h.Status = res.Status
	}
	s.metrics.SMS(string(h.Status))

	if err := s.history.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("save sms history: %w", err)
	}

	if sendErr != nil {
		if !errors.Is(sendErr, domain.ErrSMSGateway) {
			sendErr = fmt.Errorf("%w: %v", domain.ErrSMSGateway, sendErr)
		}
		return h, sendErr
	}

	s.logger.Info("SMS sent", map[string]interface{}{
		"license_plate": rec.LicensePlate,
		"status":        h.Status,
	})
	return h, nil
}

// History возвращает журнал, новые первыми; plate фильтрует по номеру
func (s *Service) History(ctx context.Context, plate string) ([]*domain.SMSHistoryEntry, error) {
	entries, err := s.history.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sms history: %w", err)
	}
	plate = strings.ReplaceAll(strings.TrimSpace(plate), " ", "")
	if plate == "" {
		return entries, nil
	}

	out := make([]*domain.SMSHistoryEntry, 0, len(entries))
	for _, e := range entries {
		if textutil.Contains(strings.ReplaceAll(e.LicensePlate, " ", ""), plate) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ScanResult - итог одной проверки истекающих документов
type ScanResult struct {
	Documents int `json:"documents"`
	Notified  int `json:"notified"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Scan находит документы, истекающие в течение windowDays дней, и отправляет
// одно SMS на каждую активную запись. Записи без телефона пропускаются.
func (s *Service) Scan(ctx context.Context, windowDays int) (*ScanResult, error) {
	all := make(dashboard.Snapshot)
	for _, entry := range s.catalog.Entries() {
		records, err := s.records.List(ctx, entry.Code)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Code, err)
		}
		all[entry.Code] = records
	}

	ref := s.now().In(s.loc)
	expiring := dashboard.ComputeExpiringDocuments(s.catalog, all, windowDays, ref)

	type target struct {
		rec  *domain.ComplianceRecord
		docs []string
	}
	var order []string
	targets := make(map[string]*target)
	for _, e := range expiring {
		key := string(e.Category) + "/" + e.RecordID
		t, ok := targets[key]
		if !ok {
			t = &target{rec: findRecord(all[e.Category], e.RecordID)}
			targets[key] = t
			order = append(order, key)
		}
		t.docs = append(t.docs, e.DocumentTypeLabel)
	}

	res := &ScanResult{Documents: len(expiring)}
	for _, key := range order {
		t := targets[key]
		if t.rec == nil || !t.rec.Active || strings.TrimSpace(t.rec.Phone) == "" {
			res.Skipped++
			continue
		}
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if _, err := s.deliver(ctx, t.rec, ReminderMessage(t.rec.Name, t.rec.LicensePlate, t.docs)); err != nil {
			if !errors.Is(err, domain.ErrSMSGateway) {
				return res, err
			}
			res.Failed++
			continue
		}
		res.Notified++
	}

	s.logger.Info("Expiry scan finished", map[string]interface{}{
		"window_days": windowDays,
		"documents":   res.Documents,
		"notified":    res.Notified,
		"failed":      res.Failed,
		"skipped":     res.Skipped,
	})
	return res, nil
}

func findRecord(records []*domain.ComplianceRecord, id string) *domain.ComplianceRecord {
	for _, r := range records {
		if r.ID == id {
			return r
		}
	}
	return nil
}
