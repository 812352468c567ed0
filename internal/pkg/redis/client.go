package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNil возвращается Get, если ключ отсутствует
var ErrNil = redis.Nil

// scanBatch - сколько ключей запрашивать за один SCAN
const scanBatch = 200

// Config - параметры подключения к Redis
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr возвращает адрес в виде host:port
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Client - тонкая обертка над redis.Client: значения хранятся как байты,
// отсутствие ключа проверяется через IsNil.
type Client struct {
	rdb *redis.Client
}

// NewClient подключается к Redis и проверяет соединение
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Addr(), err)
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Set записывает значение; ttl 0 - без срока
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Get читает значение. Для отсутствующего ключа возвращает ErrNil.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	return c.rdb.Get(ctx, key).Bytes()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Exists возвращает число существующих ключей из списка
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	return c.rdb.Exists(ctx, keys...).Result()
}

// DeletePrefix удаляет все ключи с префиксом prefix и возвращает их число.
// Идет через SCAN, чтобы не блокировать сервер на KEYS.
func (c *Client) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, errors.New("redis: empty prefix")
	}

	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, prefix+"*", scanBatch).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan %s*: %w", prefix, err)
		}
		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("delete %s*: %w", prefix, err)
			}
			deleted += int(n)
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// IsNil сообщает, что ошибка означает отсутствие ключа
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
