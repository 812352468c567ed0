package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/pkg/metrics"
)

// Scanner - то, что запускает планировщик
type Scanner interface {
	Scan(ctx context.Context, windowDays int) (*ScanResult, error)
}

// Scheduler запускает ежедневную проверку истекающих документов
type Scheduler struct {
	scanner    Scanner
	windowDays int
	at         string
	scheduler  *gocron.Scheduler
	metrics    *metrics.Metrics
	logger     logger.Logger
	timeout    time.Duration
}

// NewScheduler создает планировщик; at в формате HH:MM в часовом поясе loc
func NewScheduler(scanner Scanner, at string, windowDays int, loc *time.Location, m *metrics.Metrics, log logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		scanner:    scanner,
		windowDays: windowDays,
		at:         at,
		scheduler:  gocron.NewScheduler(loc),
		metrics:    m,
		logger:     log,
		timeout:    10 * time.Minute,
	}
}

// Start регистрирует задачу и запускает планировщик в фоне
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(s.at).SingletonMode().Do(s.run); err != nil {
		return fmt.Errorf("failed to schedule expiry scan: %w", err)
	}
	s.scheduler.StartAsync()

	_, next := s.scheduler.NextRun()
	s.logger.Info("Expiry scan scheduled", map[string]interface{}{
		"at":          s.at,
		"window_days": s.windowDays,
		"next_run":    next,
	})
	return nil
}

// Stop останавливает планировщик
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunNow выполняет проверку немедленно
func (s *Scheduler) RunNow() {
	s.run()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.scanner.Scan(ctx, s.windowDays)
	s.metrics.SchedulerRun(err)
	if err != nil {
		s.logger.Error("Expiry scan failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
