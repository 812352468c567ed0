package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, 7, cfg.Scheduler.WindowDays)
	assert.Equal(t, int64(20<<20), cfg.Documents.MaxUploadBytes())
	assert.Contains(t, cfg.Auth.Users, "admin:admin123:admin")
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "Postgres")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SCHEDULER_ENABLED", "true")
	t.Setenv("SMS_TIMEOUT", "3s")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 3*time.Second, cfg.SMS.Timeout)
	assert.Equal(t, "pgx5://u:p@localhost:5432/plaka_db?sslmode=disable", cfg.Database.MigrateURL())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "неизвестное хранилище", env: map[string]string{"STORAGE_BACKEND": "mongo"}},
		{name: "s3 без бакета", env: map[string]string{"DOCUMENTS_BACKEND": "s3"}},
		{name: "неверное время планировщика", env: map[string]string{"SCHEDULER_AT": "25:99"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
