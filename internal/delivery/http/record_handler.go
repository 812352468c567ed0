package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/infrastructure/export"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/pkg/metrics"
	"github.com/frontandrew/plakatakip/internal/usecase/dashboard"
	"github.com/frontandrew/plakatakip/internal/usecase/record"
	"github.com/go-chi/chi/v5"
)

// RecordService - операции над записями категорий
type RecordService interface {
	Categories() []catalog.Entry
	List(ctx context.Context, plateType, query string) (*record.ListResult, error)
	Records(ctx context.Context, plateType string) (catalog.Entry, []*domain.ComplianceRecord, error)
	Get(ctx context.Context, plateType, id string) (*record.View, error)
	Save(ctx context.Context, plateType string, req *record.SaveRequest) (*domain.ComplianceRecord, bool, error)
}

// Renderer строит файлы выгрузки
type Renderer interface {
	Workbook(w io.Writer, sheets []export.Sheet) error
	Word(w io.Writer, entry catalog.Entry, records []*domain.ComplianceRecord) error
	ReportPDF(w io.Writer, rep *dashboard.Report) error
}

// RecordHandler обрабатывает запросы к записям категорий
type RecordHandler struct {
	recordService RecordService
	renderer      Renderer
	metrics       *metrics.Metrics
	logger        logger.Logger
}

// NewRecordHandler создает новый handler
func NewRecordHandler(recordService RecordService, renderer Renderer, m *metrics.Metrics, logger logger.Logger) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		renderer:      renderer,
		metrics:       m,
		logger:        logger,
	}
}

// Categories возвращает таблицу категорий
// GET /api/categories
func (h *RecordHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.recordService.Categories())
}

// List возвращает записи категории
// GET /api/licenses/{plateType}?q=
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.recordService.List(r.Context(), chi.URLParam(r, "plateType"), r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, h.logger, "Failed to list records", err)
		return
	}

	respondSuccess(w, http.StatusOK, result)
}

// Get возвращает одну запись
// GET /api/licenses/{plateType}/{id}
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.recordService.Get(r.Context(), chi.URLParam(r, "plateType"), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, "Failed to get record", err)
		return
	}

	respondSuccess(w, http.StatusOK, view)
}

// Save создает или заменяет запись
// POST /api/licenses/{plateType}
func (h *RecordHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req record.SaveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, created, err := h.recordService.Save(r.Context(), chi.URLParam(r, "plateType"), &req)
	if err != nil {
		respondServiceError(w, h.logger, "Failed to save record", err)
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	respondSuccess(w, code, rec)
}

// Export выгружает категорию в xlsx или doc
// GET /api/licenses/{plateType}/export?format=xlsx|doc
func (h *RecordHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "doc" {
		respondError(w, http.StatusBadRequest, "Unsupported export format")
		return
	}

	entry, records, err := h.recordService.Records(r.Context(), chi.URLParam(r, "plateType"))
	if err != nil {
		respondServiceError(w, h.logger, "Failed to load records for export", err)
		return
	}

	var buf bytes.Buffer
	contentType := export.ContentTypeXLSX
	if format == "doc" {
		contentType = export.ContentTypeWord
		err = h.renderer.Word(&buf, entry, records)
	} else {
		err = h.renderer.Workbook(&buf, []export.Sheet{{Entry: entry, Records: records}})
	}
	h.metrics.Export(format, err)
	if err != nil {
		h.logger.Error("Failed to render export", map[string]interface{}{
			"category": entry.Code,
			"format":   format,
			"error":    err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to export records")
		return
	}

	attachment(w, contentType, export.FileName(entry, format))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
