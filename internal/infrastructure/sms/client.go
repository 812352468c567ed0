package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
)

// Message - одно SMS сообщение
type Message struct {
	To   string `json:"to"`
	Text string `json:"message"`
}

// Result содержит ответ шлюза
type Result struct {
	Success   bool             `json:"success"`
	MessageID string           `json:"messageId,omitempty"`
	Error     string           `json:"error,omitempty"`
	Status    domain.SMSStatus `json:"-"`
}

// sendRequest - тело запроса к шлюзу
type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
	Sender  string `json:"sender,omitempty"`
}

// Sender - интерфейс для работы с SMS шлюзом
type Sender interface {
	// Send отправляет сообщение
	Send(ctx context.Context, msg Message) (*Result, error)

	// Health проверяет доступность шлюза
	Health(ctx context.Context) error
}

// Config - параметры HTTP клиента шлюза
type Config struct {
	BaseURL    string
	APIKey     string
	Sender     string
	Timeout    time.Duration
	MaxRetries int
	// Backoff - базовая задержка между попытками, растет линейно
	Backoff time.Duration
}

// httpClient - HTTP реализация SMS клиента
type httpClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewHTTPClient создает новый HTTP клиент для SMS шлюза
func NewHTTPClient(cfg Config) Sender {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	return &httpClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

var errRejected = errors.New("gateway rejected message")

// statusError - шлюз ответил кодом, отличным от 2xx
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("SMS gateway returned status %d: %s", e.code, e.body)
}

// Send отправляет сообщение с повторами при временных ошибках
func (c *httpClient) Send(ctx context.Context, msg Message) (*Result, error) {
	jsonData, err := json.Marshal(sendRequest{To: msg.To, Message: msg.Text, Sender: c.cfg.Sender})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/messages", c.cfg.BaseURL)

	var result *Result
	var lastErr error

	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * c.cfg.Backoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		result, lastErr = c.doRequest(req)
		if lastErr == nil {
			return result, nil
		}

		if !isRetryable(lastErr) {
			break
		}
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrSMSGateway, lastErr)
}

// doRequest выполняет HTTP запрос и обрабатывает ответ
func (c *httpClient) doRequest(req *http.Request) (*Result, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, body: string(body)}
	}

	var result Result
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
	} else {
		result.Success = true
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", errRejected, result.Error)
	}

	result.Status = domain.SMSStatusSent
	return &result, nil
}

// Health проверяет доступность шлюза
func (c *httpClient) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", c.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health check returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// isRetryable: сетевые ошибки, 429 и 5xx повторяем, остальные 4xx нет
func isRetryable(err error) bool {
	if errors.Is(err, errRejected) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return true
}

// logSender только пишет сообщение в лог, когда шлюз не настроен
type logSender struct {
	logger logger.Logger
}

// NewLogSender создает отправитель без внешнего шлюза
func NewLogSender(log logger.Logger) Sender {
	return &logSender{logger: log}
}

func (s *logSender) Send(_ context.Context, msg Message) (*Result, error) {
	s.logger.Info("SMS gateway not configured, message logged", map[string]interface{}{
		"to":      msg.To,
		"message": msg.Text,
	})
	return &Result{Success: true, Status: domain.SMSStatusLogged}, nil
}

func (s *logSender) Health(context.Context) error {
	return nil
}
