package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Logger    LoggerConfig
	Documents DocumentsConfig
	SMS       SMSConfig
	Scheduler SchedulerConfig
	RateLimit RateLimitConfig
	Catalog   CatalogConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Storage backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// StorageConfig определяет, где хранятся записи, архив и история SMS
type StorageConfig struct {
	Backend    string // memory, redis или postgres
	KeyPrefix  string // префикс ключей для key-value хранилищ
	SeedSample bool   // заполнять пустые категории демонстрационными данными
	CacheTTL   time.Duration
	UseCache   bool // redis кэш поверх postgres
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	ConnectRetries  int // попытки подключения при старте, пока база поднимается
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig содержит настройки JWT аутентификации
type JWTConfig struct {
	SecretKey    string
	AccessExpiry time.Duration
	Issuer       string
}

// AuthConfig - список учетных записей в формате
// "username:password:role:Имя;username2:..."
type AuthConfig struct {
	Users string
}

// CORSConfig содержит настройки CORS
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// LoggerConfig содержит настройки логирования
type LoggerConfig struct {
	Level  string
	Format string // json или console
	Output string // stdout или путь к файлу
}

// Document storage backends
const (
	DocumentsFS = "fs"
	DocumentsS3 = "s3"
)

// DocumentsConfig содержит настройки хранилища загруженных файлов
type DocumentsConfig struct {
	Backend     string // fs или s3
	Dir         string
	MaxUploadMB int64
	S3          S3Config
}

// S3Config - параметры S3-совместимого хранилища
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	UsePathStyle    bool
}

// SMSConfig содержит настройки SMS шлюза
type SMSConfig struct {
	GatewayURL string // пусто - только логирование
	APIKey     string
	Sender     string
	Timeout    time.Duration
	MaxRetries int
}

// SchedulerConfig - ежедневная проверка истекающих документов
type SchedulerConfig struct {
	Enabled    bool
	At         string // HH:MM
	WindowDays int
	Timezone   string
}

// RateLimitConfig - ограничение частоты попыток входа
type RateLimitConfig struct {
	LoginPerMinute float64
	LoginBurst     int
}

// CatalogConfig - таблица категорий
type CatalogConfig struct {
	File string // пусто - встроенная таблица
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку, если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Storage: StorageConfig{
			Backend:    strings.ToLower(getEnv("STORAGE_BACKEND", BackendMemory)),
			KeyPrefix:  getEnv("KV_PREFIX", "plakatakip:"),
			SeedSample: getBoolEnv("STORE_SEED_SAMPLE", false),
			CacheTTL:   getDurationEnv("CACHE_TTL", 10*time.Minute),
			UseCache:   getBoolEnv("CACHE_ENABLED", false),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "plaka_user"),
			Password:        getEnv("DB_PASSWORD", "plaka_password"),
			Database:        getEnv("DB_NAME", "plaka_db"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:     getBoolEnv("DB_AUTO_MIGRATE", true),
			ConnectRetries:  getIntEnv("DB_CONNECT_RETRIES", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			SecretKey:    getEnv("JWT_SECRET", "change-me-in-production"),
			AccessExpiry: getDurationEnv("JWT_ACCESS_EXPIRY", 12*time.Hour),
			Issuer:       getEnv("JWT_ISSUER", "plaka-takip"),
		},
		Auth: AuthConfig{
			Users: getEnv("AUTH_USERS",
				"admin:admin123:admin:Yönetici;editor:editor123:editor:Editör;user:user123:viewer:Kullanıcı"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080"),
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Documents: DocumentsConfig{
			Backend:     strings.ToLower(getEnv("DOCUMENTS_BACKEND", DocumentsFS)),
			Dir:         getEnv("DOCUMENTS_DIR", "./data/documents"),
			MaxUploadMB: int64(getIntEnv("DOCUMENTS_MAX_UPLOAD_MB", 20)),
			S3: S3Config{
				Bucket:          getEnv("S3_BUCKET", ""),
				Region:          getEnv("S3_REGION", "eu-central-1"),
				Endpoint:        getEnv("S3_ENDPOINT", ""),
				AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
				Prefix:          getEnv("S3_PREFIX", "documents/"),
				UsePathStyle:    getBoolEnv("S3_USE_PATH_STYLE", false),
			},
		},
		SMS: SMSConfig{
			GatewayURL: getEnv("SMS_GATEWAY_URL", ""),
			APIKey:     getEnv("SMS_API_KEY", ""),
			Sender:     getEnv("SMS_SENDER", "BELEDIYE"),
			Timeout:    getDurationEnv("SMS_TIMEOUT", 10*time.Second),
			MaxRetries: getIntEnv("SMS_MAX_RETRIES", 3),
		},
		Scheduler: SchedulerConfig{
			Enabled:    getBoolEnv("SCHEDULER_ENABLED", false),
			At:         getEnv("SCHEDULER_AT", "09:00"),
			WindowDays: getIntEnv("SCHEDULER_WINDOW_DAYS", 7),
			Timezone:   getEnv("SCHEDULER_TIMEZONE", "Europe/Istanbul"),
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: getFloatEnv("LOGIN_RATE_PER_MINUTE", 10),
			LoginBurst:     getIntEnv("LOGIN_RATE_BURST", 5),
		},
		Catalog: CatalogConfig{
			File: getEnv("CATALOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	switch c.Documents.Backend {
	case DocumentsFS:
	case DocumentsS3:
		if c.Documents.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for s3 documents backend")
		}
	default:
		return fmt.Errorf("unknown DOCUMENTS_BACKEND %q", c.Documents.Backend)
	}
	if _, err := time.Parse("15:04", c.Scheduler.At); err != nil {
		return fmt.Errorf("invalid SCHEDULER_AT %q: %w", c.Scheduler.At, err)
	}
	return nil
}

// Location возвращает часовой пояс планировщика и расчета сроков
func (c *SchedulerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// MigrateURL возвращает адрес для golang-migrate (драйвер pgx/v5)
func (c *DatabaseConfig) MigrateURL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Address возвращает адрес сервера
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Address возвращает адрес Redis
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// MaxUploadBytes возвращает лимит размера загрузки
func (c *DocumentsConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
