package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/config"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Storage: config.StorageConfig{Backend: config.BackendMemory, KeyPrefix: "test:"},
		JWT:     config.JWTConfig{SecretKey: "app-test-secret", AccessExpiry: time.Hour, Issuer: "plaka-takip"},
		Auth:    config.AuthConfig{Users: "admin:secret:admin:Yönetici;viewer:view:viewer"},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
		Documents: config.DocumentsConfig{
			Backend:     config.DocumentsFS,
			Dir:         t.TempDir(),
			MaxUploadMB: 1,
		},
		Scheduler: config.SchedulerConfig{At: "09:00", WindowDays: 7, Timezone: "UTC"},
	}
}

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *client) do(method, target string, body []byte, contentType string) (int, map[string]interface{}) {
	c.t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	var resp map[string]interface{}
	if ct := w.Header().Get("Content-Type"); ct == "application/json" {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func (c *client) login(username, password string) {
	c.t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	code, resp := c.do(http.MethodPost, "/api/auth/login", body, "application/json")
	require.Equal(c.t, http.StatusOK, code, resp)
	c.token = resp["data"].(map[string]interface{})["accessToken"].(string)
}

func TestApp_EndToEnd(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logger.NewNoop())
	require.NoError(t, err)
	defer a.Close()

	written, err := a.Seed(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, written, len(a.Catalog.Entries()))

	c := &client{t: t, handler: a.Router(nil)}
	c.login("admin", "secret")

	// панель по демонстрационным данным
	code, resp := c.do(http.MethodGet, "/api/dashboard", nil, "")
	require.Equal(t, http.StatusOK, code)
	summary := resp["data"].(map[string]interface{})
	assert.Equal(t, 15.0, summary["totalRecords"])

	// новая запись категории J по алиасу T
	record := map[string]interface{}{
		"name":               "Zeynep Ak",
		"phone":              "0533 444 55 66",
		"licensePlatePrefix": "35",
		"licensePlateNumber": "77",
		"startDate":          "2024-01-01",
		"endDate":            "2030-01-01",
		"healthStartDate":    "2024-01-01",
		"healthEndDate":      "2030-01-01",
		"psychoStartDate":    "2024-01-01",
		"psychoEndDate":      "2030-01-01",
	}
	body, _ := json.Marshal(record)
	code, resp = c.do(http.MethodPost, "/api/licenses/T", body, "application/json")
	require.Equal(t, http.StatusCreated, code, resp)
	saved := resp["data"].(map[string]interface{})
	assert.Equal(t, "35 J 77", saved["licensePlate"])
	id := saved["id"].(string)

	code, resp = c.do(http.MethodGet, "/api/licenses/j?q=zeynep", nil, "")
	require.Equal(t, http.StatusOK, code)
	list := resp["data"].(map[string]interface{})["records"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "normal", list[0].(map[string]interface{})["status"])

	// загрузка и скачивание документа
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	require.NoError(t, mw.WriteField("licensePlate", "35 J 77"))
	require.NoError(t, mw.WriteField("documentType", "ruhsat"))
	fw, err := mw.CreateFormFile("document", "Ruhsat Belgesi.pdf")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, mw.Close())

	code, resp = c.do(http.MethodPost, "/api/upload", form.Bytes(), mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, code, resp)
	doc := resp["data"].(map[string]interface{})["document"].(map[string]interface{})

	req := httptest.NewRequest(http.MethodGet, "/api/documents/"+doc["id"].(string)+"/download?access_token="+c.token, nil)
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4 test", w.Body.String())

	// SMS через журналирующий отправитель
	body, _ = json.Marshal(map[string]string{"plateType": "J", "recordId": id})
	code, resp = c.do(http.MethodPost, "/api/sms", body, "application/json")
	require.Equal(t, http.StatusOK, code, resp)
	assert.Equal(t, string(domain.SMSStatusLogged), resp["data"].(map[string]interface{})["status"])

	code, resp = c.do(http.MethodGet, "/api/sms/history?plate=35J77", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp["data"].([]interface{}), 1)

	// выгрузки
	for _, target := range []string{"/api/licenses/M/export?format=xlsx", "/api/licenses/M/export?format=doc", "/api/reports/pdf", "/api/reports/export"} {
		code, _ = c.do(http.MethodGet, target, nil, "")
		assert.Equal(t, http.StatusOK, code, target)
	}
}

func TestApp_ViewerIsReadOnly(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logger.NewNoop())
	require.NoError(t, err)
	defer a.Close()

	c := &client{t: t, handler: a.Router(nil)}
	c.login("viewer", "view")

	code, _ := c.do(http.MethodGet, "/api/categories", nil, "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = c.do(http.MethodPost, "/api/licenses/M", []byte(`{}`), "application/json")
	assert.Equal(t, http.StatusForbidden, code)
}

func TestApp_SeedForce(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logger.NewNoop())
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Seed(context.Background(), false)
	require.NoError(t, err)

	written, err := a.Seed(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, written)

	written, err = a.Seed(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 3, written[domain.CategoryM])
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "cassandra"
	_, err := New(context.Background(), cfg, logger.NewNoop())
	assert.Error(t, err)
}
