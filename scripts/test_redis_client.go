package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/pkg/redis"
	"github.com/frontandrew/plakatakip/internal/repository/kv"
)

// Проверка Redis backend'а key-value хранилища на живом сервере.
// Все ключи пишутся под отдельным префиксом и удаляются в конце.
func main() {
	fmt.Println("=========================================")
	fmt.Println("Redis KV Store Test")
	fmt.Println("=========================================")
	fmt.Println()

	ctx := context.Background()

	client, err := redis.NewClient(ctx, redis.Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})
	if err != nil {
		fail("Failed to connect to Redis", err)
	}
	defer client.Close()

	fmt.Println("✅ Connected to Redis")
	fmt.Println()

	prefix := fmt.Sprintf("plakatakip:smoke:%d:", time.Now().UnixNano())
	cat := catalog.Default()
	entry := cat.MustGet(domain.CategoryM)
	store := kv.NewRedisStore(client, prefix)
	repo := kv.NewRecordRepository(store, cat, logger.NewNoop(), kv.WithSeed(true))

	defer func() {
		n, err := client.DeletePrefix(ctx, prefix)
		if err != nil {
			fmt.Printf("❌ Cleanup failed: %v\n", err)
			return
		}
		fmt.Printf("✅ Deleted %d test keys\n", n)
	}()

	// Test 1: seed on first read
	fmt.Println("Test 1: seed on first read")
	records, err := repo.List(ctx, entry.Code)
	if err != nil {
		fail("List failed", err)
	}
	if len(records) == 0 {
		fail("Seeded category is empty", nil)
	}
	n, err := client.Exists(ctx, prefix+entry.StorageKey)
	if err != nil || n != 1 {
		fail("Seeded key was not written", err)
	}
	fmt.Printf("✅ %s seeded with %d records\n", entry.StorageKey, len(records))
	fmt.Println()

	// Test 2: upsert + get
	fmt.Println("Test 2: upsert + get")
	rec := records[0]
	rec.Name = "Smoke Test"
	created, err := repo.Upsert(ctx, entry.Code, rec)
	if err != nil {
		fail("Upsert failed", err)
	}
	if created {
		fail("Existing record was reported as created", nil)
	}
	got, err := repo.Get(ctx, entry.Code, rec.ID)
	if err != nil {
		fail("Get failed", err)
	}
	if got.Name != "Smoke Test" {
		fail(fmt.Sprintf("Get returned wrong name %q", got.Name), nil)
	}
	fmt.Printf("✅ Record %s replaced\n", rec.ID)
	fmt.Println()

	// Test 3: malformed JSON is replaced by sample data
	fmt.Println("Test 3: malformed JSON")
	if err := store.Set(ctx, entry.StorageKey, []byte("{not json")); err != nil {
		fail("Set failed", err)
	}
	records, err = repo.List(ctx, entry.Code)
	if err != nil {
		fail("List after corruption failed", err)
	}
	fmt.Printf("✅ Recovered %d sample records\n", len(records))
	fmt.Println()

	// Test 4: SMS history
	fmt.Println("Test 4: SMS history")
	history := kv.NewSMSHistoryRepository(store)
	if err := history.Create(ctx, &domain.SMSHistoryEntry{
		ID:           "smoke",
		LicensePlate: rec.LicensePlate,
		Message:      "test",
		SentDate:     time.Now(),
		Status:       domain.SMSStatusLogged,
	}); err != nil {
		fail("History create failed", err)
	}
	entries, err := history.List(ctx)
	if err != nil || len(entries) != 1 {
		fail("History list failed", err)
	}
	fmt.Println("✅ SMS history round trip")
	fmt.Println()

	fmt.Println("=========================================")
	fmt.Println("✅ All Redis KV tests passed!")
	fmt.Println("=========================================")
}

func fail(msg string, err error) {
	if err != nil {
		fmt.Printf("❌ %s: %v\n", msg, err)
	} else {
		fmt.Printf("❌ %s\n", msg)
	}
	os.Exit(1)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
