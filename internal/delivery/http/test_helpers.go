package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frontandrew/plakatakip/internal/delivery/http/middleware"
	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

// CreateTestRecord создает тестовую запись категории M
func CreateTestRecord(id, name string, ref time.Time) *domain.ComplianceRecord {
	return &domain.ComplianceRecord{
		ID:           id,
		Name:         name,
		Phone:        "0532 111 22 33",
		LicensePlate: "35 M 1234",
		OwnerType:    domain.OwnerTypeOwner,
		Active:       true,
		StartDate:    ref.AddDate(-1, 0, 0),
		EndDate:      ref.AddDate(0, 0, 5),
	}
}

// CreateAuthContext создает контекст с claims пользователя для тестирования
func CreateAuthContext(t *testing.T, username string, role domain.UserRole) context.Context {
	t.Helper()
	return middleware.WithUserClaims(context.Background(), &jwt.Claims{
		Username: username,
		Name:     username,
		Role:     role,
	})
}

// WithURLParams добавляет параметры маршрута chi в контекст запроса
func WithURLParams(ctx context.Context, params map[string]string) context.Context {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}

// DecodeResponse разбирает JSON ответ
func DecodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
	return response
}

// AssertSuccess проверяет успешный ответ API
func AssertSuccess(t *testing.T, response map[string]interface{}) {
	t.Helper()
	success, ok := response["success"].(bool)
	if !ok || !success {
		t.Errorf("Expected success=true, got %v", response)
	}
}

// AssertError проверяет ошибочный ответ API
func AssertError(t *testing.T, response map[string]interface{}) {
	t.Helper()
	success, ok := response["success"].(bool)
	if !ok || success {
		t.Errorf("Expected success=false, got %v", response)
	}
}
