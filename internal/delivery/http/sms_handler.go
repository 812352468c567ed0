package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/usecase/notify"
)

// SMSService - отправка SMS и журнал
type SMSService interface {
	Send(ctx context.Context, req *notify.SendRequest) (*domain.SMSHistoryEntry, error)
	History(ctx context.Context, plate string) ([]*domain.SMSHistoryEntry, error)
	Scan(ctx context.Context, windowDays int) (*notify.ScanResult, error)
}

// SMSHandler обрабатывает запросы SMS
type SMSHandler struct {
	smsService SMSService
	windowDays int
	logger     logger.Logger
}

// NewSMSHandler создает новый handler; windowDays - окно ручной проверки по умолчанию
func NewSMSHandler(smsService SMSService, windowDays int, logger logger.Logger) *SMSHandler {
	return &SMSHandler{
		smsService: smsService,
		windowDays: windowDays,
		logger:     logger,
	}
}

// Send отправляет SMS владельцу записи
// POST /api/sms
func (h *SMSHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req notify.SendRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.smsService.Send(r.Context(), &req)
	if err != nil {
		// неудачная отправка уже в журнале, отдаем запись вместе с ошибкой
		if entry != nil && errors.Is(err, domain.ErrSMSGateway) {
			h.logger.Warn("SMS delivery failed", map[string]interface{}{
				"license_plate": entry.LicensePlate,
				"error":         err.Error(),
			})
			respondJSON(w, http.StatusBadGateway, map[string]interface{}{
				"success": false,
				"error":   "SMS gateway error",
				"data":    entry,
			})
			return
		}
		respondServiceError(w, h.logger, "Failed to send sms", err)
		return
	}

	respondSuccess(w, http.StatusOK, entry)
}

// History возвращает журнал SMS
// GET /api/sms/history?plate=
func (h *SMSHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.smsService.History(r.Context(), r.URL.Query().Get("plate"))
	if err != nil {
		respondServiceError(w, h.logger, "Failed to load sms history", err)
		return
	}

	respondSuccess(w, http.StatusOK, entries)
}

// Scan запускает проверку истекающих документов вне расписания
// POST /api/sms/scan?window=
func (h *SMSHandler) Scan(w http.ResponseWriter, r *http.Request) {
	window, err := queryInt(r, "window", h.windowDays)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid window")
		return
	}

	result, err := h.smsService.Scan(r.Context(), window)
	if err != nil {
		respondServiceError(w, h.logger, "Failed to scan expiring documents", err)
		return
	}

	respondSuccess(w, http.StatusOK, result)
}
