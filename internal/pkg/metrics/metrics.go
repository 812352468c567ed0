// Package metrics содержит Prometheus коллекторы сервиса.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "plakatakip"

// Metrics - набор коллекторов с собственным registry
type Metrics struct {
	reg *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	RecordsSaved    *prometheus.CounterVec
	ExpiringDocs    *prometheus.GaugeVec
	SMSSent         *prometheus.CounterVec
	DocumentsStored prometheus.Counter
	ExportsRendered *prometheus.CounterVec
	SchedulerRuns   *prometheus.CounterVec
}

// New регистрирует все коллекторы в новом registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		RecordsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_saved_total",
			Help:      "Compliance records saved, by category and operation.",
		}, []string{"category", "op"}),
		ExpiringDocs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "expiring_documents",
			Help:      "Documents in the last computed dashboard window, by status.",
		}, []string{"status"}),
		SMSSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sms_total",
			Help:      "SMS reminders by delivery status.",
		}, []string{"status"}),
		DocumentsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_documents_stored_total",
			Help:      "Uploaded archive documents.",
		}),
		ExportsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Rendered exports by format and result.",
		}, []string{"format", "result"}),
		SchedulerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_runs_total",
			Help:      "Scheduled expiry scans by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.RecordsSaved,
		m.ExpiringDocs,
		m.SMSSent,
		m.DocumentsStored,
		m.ExportsRendered,
		m.SchedulerRuns,
	)
	return m
}

// Registry возвращает registry для тестов
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler возвращает HTTP handler для /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Методы ниже допускают nil получатель, чтобы сервисы работали без метрик.

// RecordSaved учитывает сохранение записи
func (m *Metrics) RecordSaved(category, op string) {
	if m == nil {
		return
	}
	m.RecordsSaved.WithLabelValues(category, op).Inc()
}

// SetExpiring публикует размер окна истекающих документов
func (m *Metrics) SetExpiring(expired, expiringSoon, total int) {
	if m == nil {
		return
	}
	m.ExpiringDocs.WithLabelValues("danger").Set(float64(expired))
	m.ExpiringDocs.WithLabelValues("warning").Set(float64(expiringSoon))
	m.ExpiringDocs.WithLabelValues("window").Set(float64(total))
}

// SMS учитывает попытку отправки SMS
func (m *Metrics) SMS(status string) {
	if m == nil {
		return
	}
	m.SMSSent.WithLabelValues(status).Inc()
}

// DocumentStored учитывает загрузку файла в архив
func (m *Metrics) DocumentStored() {
	if m == nil {
		return
	}
	m.DocumentsStored.Inc()
}

// Export учитывает построение файла экспорта
func (m *Metrics) Export(format string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ExportsRendered.WithLabelValues(format, result).Inc()
}

// SchedulerRun учитывает запуск ежедневной проверки
func (m *Metrics) SchedulerRun(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SchedulerRuns.WithLabelValues(result).Inc()
}
