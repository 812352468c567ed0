package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// recordRepository хранит запись целиком в JSONB, а поля для
// поиска и сортировки дублирует в отдельных колонках
type recordRepository struct {
	db *pgxpool.Pool
}

func NewRecordRepository(db *pgxpool.Pool) repository.RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) List(ctx context.Context, category domain.Category) ([]*domain.ComplianceRecord, error) {
	query := `
		SELECT data
		FROM compliance_records
		WHERE category = $1
		ORDER BY seq
	`

	rows, err := r.db.Query(ctx, query, string(category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*domain.ComplianceRecord{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *recordRepository) Get(ctx context.Context, category domain.Category, id string) (*domain.ComplianceRecord, error) {
	query := `
		SELECT data
		FROM compliance_records
		WHERE category = $1 AND id = $2
	`

	var raw []byte
	err := r.db.QueryRow(ctx, query, string(category), id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return decodeRecord(raw)
}

const upsertRecordQuery = `
	INSERT INTO compliance_records (category, id, name, license_plate, phone, owner_type, active, end_date, data)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (category, id) DO UPDATE SET
		name = EXCLUDED.name,
		license_plate = EXCLUDED.license_plate,
		phone = EXCLUDED.phone,
		owner_type = EXCLUDED.owner_type,
		active = EXCLUDED.active,
		end_date = EXCLUDED.end_date,
		data = EXCLUDED.data,
		updated_at = NOW()
	RETURNING (xmax = 0)
`

func (r *recordRepository) Upsert(ctx context.Context, category domain.Category, record *domain.ComplianceRecord) (bool, error) {
	args, err := upsertArgs(category, record)
	if err != nil {
		return false, err
	}

	// xmax = 0 только у только что вставленной строки
	var created bool
	if err := r.db.QueryRow(ctx, upsertRecordQuery, args...).Scan(&created); err != nil {
		return false, err
	}
	return created, nil
}

func (r *recordRepository) ReplaceAll(ctx context.Context, category domain.Category, records []*domain.ComplianceRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM compliance_records WHERE category = $1`, string(category)); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		args, err := upsertArgs(category, rec)
		if err != nil {
			return err
		}
		batch.Queue(upsertRecordQuery, args...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func upsertArgs(category domain.Category, rec *domain.ComplianceRecord) ([]interface{}, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}
	return []interface{}{
		string(category),
		rec.ID,
		rec.Name,
		rec.LicensePlate,
		rec.Phone,
		string(rec.OwnerType),
		rec.Active,
		rec.EndDate,
		data,
	}, nil
}

func decodeRecord(raw []byte) (*domain.ComplianceRecord, error) {
	rec := &domain.ComplianceRecord{}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	rec.ApplyDefaults()
	return rec, nil
}
