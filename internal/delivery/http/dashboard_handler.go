package http

import (
	"bytes"
	"context"
	"net/http"

	"github.com/frontandrew/plakatakip/internal/infrastructure/export"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/pkg/metrics"
	"github.com/frontandrew/plakatakip/internal/usecase/dashboard"
	"github.com/frontandrew/plakatakip/internal/usecase/record"
)

// DashboardService - сводки и отчеты по всем категориям
type DashboardService interface {
	Dashboard(ctx context.Context, windowDays int) (*dashboard.Summary, error)
	Report(ctx context.Context, r dashboard.TimeRange) (*dashboard.Report, error)
	Snapshot(ctx context.Context) (dashboard.Snapshot, error)
	Catalog() *catalog.Catalog
}

// DashboardHandler обрабатывает запросы панели и отчетов
type DashboardHandler struct {
	dashboardService DashboardService
	renderer         Renderer
	metrics          *metrics.Metrics
	logger           logger.Logger
}

// NewDashboardHandler создает новый handler
func NewDashboardHandler(dashboardService DashboardService, renderer Renderer, m *metrics.Metrics, logger logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		renderer:         renderer,
		metrics:          m,
		logger:           logger,
	}
}

// Dashboard возвращает истекающие документы и счетчики
// GET /api/dashboard?window=7
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	window, err := queryInt(r, "window", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid window")
		return
	}

	summary, err := h.dashboardService.Dashboard(r.Context(), window)
	if err != nil {
		respondServiceError(w, h.logger, "Failed to build dashboard", err)
		return
	}

	respondSuccess(w, http.StatusOK, summary)
}

// Report возвращает отчет за период
// GET /api/reports?range=week|month|quarter
func (h *DashboardHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.dashboardService.Report(r.Context(), dashboard.TimeRange(r.URL.Query().Get("range")))
	if err != nil {
		respondServiceError(w, h.logger, "Failed to build report", err)
		return
	}

	respondSuccess(w, http.StatusOK, report)
}

// ReportPDF выгружает отчет в PDF
// GET /api/reports/pdf?range=
func (h *DashboardHandler) ReportPDF(w http.ResponseWriter, r *http.Request) {
	report, err := h.dashboardService.Report(r.Context(), dashboard.TimeRange(r.URL.Query().Get("range")))
	if err != nil {
		respondServiceError(w, h.logger, "Failed to build report", err)
		return
	}

	var buf bytes.Buffer
	err = h.renderer.ReportPDF(&buf, report)
	h.metrics.Export("pdf", err)
	if err != nil {
		h.logger.Error("Failed to render report pdf", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to export report")
		return
	}

	attachment(w, export.ContentTypePDF, export.ReportPDFName)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// ReportExport выгружает все категории в одну книгу, по листу на категорию
// GET /api/reports/export
func (h *DashboardHandler) ReportExport(w http.ResponseWriter, r *http.Request) {
	all, err := h.dashboardService.Snapshot(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "Failed to load records for export", err)
		return
	}

	entries := h.dashboardService.Catalog().Entries()
	sheets := make([]export.Sheet, 0, len(entries))
	for _, entry := range entries {
		sheets = append(sheets, export.Sheet{
			Entry:   entry,
			Records: record.SortByOwnerType(all[entry.Code]),
		})
	}

	var buf bytes.Buffer
	err = h.renderer.Workbook(&buf, sheets)
	h.metrics.Export("xlsx", err)
	if err != nil {
		h.logger.Error("Failed to render workbook", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to export records")
		return
	}

	attachment(w, export.ContentTypeXLSX, export.AllRecordsXLSX)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
