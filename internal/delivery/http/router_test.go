package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frontandrew/plakatakip/internal/delivery/http/middleware"
	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/infrastructure/export"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
	"github.com/frontandrew/plakatakip/internal/pkg/config"
	"github.com/frontandrew/plakatakip/internal/pkg/jwt"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/pkg/metrics"
	"github.com/frontandrew/plakatakip/internal/usecase/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type routerFixture struct {
	handler http.Handler
	records *MockRecordService
	auth    *MockAuthService
	tokens  *jwt.TokenService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	log := logger.NewDevelopment()
	renderer := export.New(time.UTC)

	f := &routerFixture{
		records: new(MockRecordService),
		auth:    new(MockAuthService),
		tokens:  jwt.NewTokenService("router-secret", time.Hour, "plaka-takip"),
	}

	limiter := middleware.NewRateLimiter(60, 2)
	t.Cleanup(limiter.Stop)

	cfg := &config.Config{CORS: config.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}}
	router := NewRouter(Handlers{
		Auth:      NewAuthHandler(f.auth, log),
		Record:    NewRecordHandler(f.records, renderer, nil, log),
		Dashboard: NewDashboardHandler(new(MockDashboardService), renderer, nil, log),
		Archive:   NewArchiveHandler(new(MockArchiveService), 0, log),
		SMS:       NewSMSHandler(new(MockSMSService), 7, log),
	}, f.tokens, limiter, metrics.New(), cfg, log)
	f.handler = router.Setup()
	return f
}

func (f *routerFixture) token(t *testing.T, role domain.UserRole) string {
	t.Helper()
	tok, err := f.tokens.GenerateToken(&domain.User{Username: string(role), Name: string(role), Role: role})
	require.NoError(t, err)
	return tok.AccessToken
}

func (f *routerFixture) do(method, target, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

// TestRouter_PublicEndpoints тестирует публичные маршруты
func TestRouter_PublicEndpoints(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "plakatakip_")

	w = f.do(http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestRouter_Roles тестирует разграничение прав на запись
func TestRouter_Roles(t *testing.T) {
	f := newRouterFixture(t)
	f.records.On("Categories").Return(catalog.Default().Entries())
	f.records.On("Save", mock.Anything, "M", mock.AnythingOfType("*record.SaveRequest")).
		Return(CreateTestRecord("1", "Ali Veli", testRef), true, nil)
	f.records.On("List", mock.Anything, "T", "").
		Return(&record.ListResult{Category: catalog.Default().MustGet(domain.CategoryJ)}, nil)

	body := []byte(`{"name":"Ali Veli"}`)

	tests := []struct {
		name           string
		method         string
		target         string
		role           domain.UserRole
		expectedStatus int
	}{
		{name: "просмотр категорий", method: http.MethodGet, target: "/api/categories", role: domain.RoleViewer, expectedStatus: http.StatusOK},
		{name: "список по алиасу T", method: http.MethodGet, target: "/api/licenses/T", role: domain.RoleViewer, expectedStatus: http.StatusOK},
		{name: "viewer не сохраняет", method: http.MethodPost, target: "/api/licenses/M", role: domain.RoleViewer, expectedStatus: http.StatusForbidden},
		{name: "editor сохраняет", method: http.MethodPost, target: "/api/licenses/M", role: domain.RoleEditor, expectedStatus: http.StatusCreated},
		{name: "editor не запускает проверку", method: http.MethodPost, target: "/api/sms/scan", role: domain.RoleEditor, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(tt.method, tt.target, f.token(t, tt.role), body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}

// TestRouter_LoginRateLimit тестирует ограничение попыток входа
func TestRouter_LoginRateLimit(t *testing.T) {
	f := newRouterFixture(t)
	f.auth.On("Login", mock.Anything, mock.AnythingOfType("*auth.LoginRequest")).
		Return(nil, domain.ErrInvalidCredentials)

	body := []byte(`{"username":"admin","password":"x"}`)
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, f.do(http.MethodPost, "/api/auth/login", "", body).Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}
