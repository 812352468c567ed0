package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(url string) Sender {
	return NewHTTPClient(Config{
		BaseURL:    url,
		APIKey:     "key",
		Sender:     "BELEDIYE",
		Timeout:    time.Second,
		MaxRetries: 3,
		Backoff:    time.Millisecond,
	})
}

func TestHTTPClient_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/messages", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var body sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "05321112233", body.To)
		assert.Equal(t, "BELEDIYE", body.Sender)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "messageId": "m-1"})
	}))
	defer srv.Close()

	res, err := newClient(srv.URL).Send(context.Background(), Message{To: "05321112233", Text: "Merhaba"})
	require.NoError(t, err)
	assert.Equal(t, "m-1", res.MessageID)
	assert.Equal(t, domain.SMSStatusSent, res.Status)
}

func TestHTTPClient_Retries(t *testing.T) {
	tests := []struct {
		name     string
		codes    []int
		wantErr  bool
		attempts int32
	}{
		{name: "успех со второй попытки", codes: []int{503, 200}, attempts: 2},
		{name: "429 повторяется", codes: []int{429, 429, 200}, attempts: 3},
		{name: "400 не повторяется", codes: []int{400}, wantErr: true, attempts: 1},
		{name: "все попытки неудачны", codes: []int{500, 500, 500}, wantErr: true, attempts: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				code := tt.codes[int(n)-1]
				w.WriteHeader(code)
				if code == http.StatusOK {
					_, _ = w.Write([]byte(`{"success":true}`))
				}
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).Send(context.Background(), Message{To: "1", Text: "x"})
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrSMSGateway)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.attempts, atomic.LoadInt32(&calls))
		})
	}
}

func TestHTTPClient_RejectedMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"invalid number"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Send(context.Background(), Message{To: "1", Text: "x"})
	assert.ErrorIs(t, err, domain.ErrSMSGateway)
}

func TestHTTPClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	assert.NoError(t, newClient(srv.URL).Health(context.Background()))
	assert.Error(t, newClient(srv.URL+"/missing").Health(context.Background()))
}

func TestLogSender(t *testing.T) {
	res, err := NewLogSender(logger.NewNoop()).Send(context.Background(), Message{To: "1", Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, domain.SMSStatusLogged, res.Status)
}
