package kv

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)

func newTestRepo(store Store, opts ...Option) *RecordRepository {
	opts = append(opts, WithClock(func() time.Time { return fixedNow }))
	return NewRecordRepository(store, catalog.Default(), logger.NewNoop(), opts...)
}

func TestRecordRepository_EmptyCategory(t *testing.T) {
	repo := newTestRepo(NewMemoryStore())

	records, err := repo.List(context.Background(), domain.CategoryM)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordRepository_SeedMissing(t *testing.T) {
	store := NewMemoryStore()
	repo := newTestRepo(store, WithSeed(true))

	records, err := repo.List(context.Background(), domain.CategoryS)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "34 S 1234", records[0].LicensePlate)

	// набор сохранен под ключом категории
	_, err = store.Get(context.Background(), "sPlaka")
	assert.NoError(t, err)
}

func TestRecordRepository_MalformedFallsBackToSample(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "mPlaka", []byte(`[{"id": broken`)))

	repo := newTestRepo(store)
	records, err := repo.List(context.Background(), domain.CategoryM)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Ahmet Yılmaz", records[0].Name)
}

func TestRecordRepository_UpsertReplacesOrAppends(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(NewMemoryStore())

	first := &domain.ComplianceRecord{ID: "a", Name: "Ali", Active: true, EndDate: fixedNow}
	second := &domain.ComplianceRecord{ID: "b", Name: "Veli", Active: true, EndDate: fixedNow}

	created, err := repo.Upsert(ctx, domain.CategoryD4, first)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Upsert(ctx, domain.CategoryD4, second)
	require.NoError(t, err)
	assert.True(t, created)

	updated := &domain.ComplianceRecord{ID: "a", Name: "Ali Veli", Active: false, EndDate: fixedNow}
	created, err = repo.Upsert(ctx, domain.CategoryD4, updated)
	require.NoError(t, err)
	assert.False(t, created)

	records, err := repo.List(ctx, domain.CategoryD4)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Ali Veli", records[0].Name)
	assert.False(t, records[0].Active)
	assert.Equal(t, "b", records[1].ID)

	got, err := repo.Get(ctx, domain.CategoryD4, "b")
	require.NoError(t, err)
	assert.Equal(t, "Veli", got.Name)

	_, err = repo.Get(ctx, domain.CategoryD4, "zzz")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestRecordRepository_NormalizesLegacyRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	legacy := `[{
		"id": "7",
		"name": "Eski Kayıt",
		"phone": "0555",
		"licensePlate": "34 J 77",
		"vehicleAge": 4,
		"startDate": "2023-01-01T00:00:00.000Z",
		"endDate": "2024-01-01T00:00:00.000Z",
		"seatInsurance": {"startDate": "2023-01-01T00:00:00.000Z", "endDate": "2024-01-01T00:00:00.000Z"}
	}]`
	require.NoError(t, store.Set(ctx, "jPlaka", []byte(legacy)))

	repo := newTestRepo(store)
	records, err := repo.List(ctx, domain.CategoryJ)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.True(t, r.Active)
	assert.Equal(t, domain.OwnerTypeOwner, r.OwnerType)
	assert.Equal(t, domain.No, r.TaxCertificate)
	assert.Equal(t, domain.No, r.PenaltyPoints)
	require.NotNil(t, r.HealthReport)
	assert.Equal(t, 365, domain.DaysBetween(r.HealthReport.EndDate, fixedNow))
	require.NotNil(t, r.Psychotechnic)
	assert.Nil(t, r.SeatInsurance, "seat insurance is not applicable for J")
	assert.Nil(t, r.SRCCertificate)
}

func TestRecordRepository_ExplicitInactiveSurvivesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := newTestRepo(store)

	_, err := repo.Upsert(ctx, domain.CategoryM, &domain.ComplianceRecord{ID: "x", Active: false, EndDate: fixedNow})
	require.NoError(t, err)

	raw, err := store.Get(ctx, "mPlaka")
	require.NoError(t, err)

	var docs []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &docs))
	assert.Equal(t, false, docs[0]["active"])
	assert.EqualValues(t, SchemaVersion, docs[0]["schemaVersion"])

	records, err := repo.List(ctx, domain.CategoryM)
	require.NoError(t, err)
	assert.False(t, records[0].Active)
}

func TestRecordRepository_UnknownCategory(t *testing.T) {
	repo := newTestRepo(NewMemoryStore())
	_, err := repo.List(context.Background(), domain.Category("X"))
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestArchiveAndSMSRepositories(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	archive := NewArchiveRepository(store)
	require.NoError(t, archive.Create(ctx, &domain.ArchiveDocument{ID: "d1", LicensePlate: "34 M 1"}))
	require.NoError(t, archive.Create(ctx, &domain.ArchiveDocument{ID: "d2", LicensePlate: "34 M 2"}))

	docs, err := archive.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	_, err = archive.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	sms := NewSMSHistoryRepository(store)
	require.NoError(t, sms.Create(ctx, &domain.SMSHistoryEntry{ID: "s1", SentDate: fixedNow}))
	require.NoError(t, sms.Create(ctx, &domain.SMSHistoryEntry{ID: "s2", SentDate: fixedNow.Add(time.Hour)}))

	entries, err := sms.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "s2", entries[0].ID)
}
