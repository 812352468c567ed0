package postgres

import (
	"context"
	"errors"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type archiveRepository struct {
	db *pgxpool.Pool
}

func NewArchiveRepository(db *pgxpool.Pool) repository.ArchiveRepository {
	return &archiveRepository{db: db}
}

func (r *archiveRepository) Create(ctx context.Context, doc *domain.ArchiveDocument) error {
	query := `
		INSERT INTO archive_documents (id, license_plate, document_type, file_name, storage_key, content_type, size, checksum, upload_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		doc.ID,
		doc.LicensePlate,
		doc.DocumentType,
		doc.FileName,
		doc.StorageKey,
		doc.ContentType,
		doc.Size,
		doc.Checksum,
		doc.UploadDate,
	)
	return err
}

const archiveColumns = `id, license_plate, document_type, file_name, storage_key, content_type, size, checksum, upload_date`

func (r *archiveRepository) GetByID(ctx context.Context, id string) (*domain.ArchiveDocument, error) {
	query := `SELECT ` + archiveColumns + ` FROM archive_documents WHERE id = $1`

	doc, err := scanDocument(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (r *archiveRepository) List(ctx context.Context) ([]*domain.ArchiveDocument, error) {
	query := `SELECT ` + archiveColumns + ` FROM archive_documents ORDER BY upload_date, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []*domain.ArchiveDocument{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func scanDocument(row pgx.Row) (*domain.ArchiveDocument, error) {
	doc := &domain.ArchiveDocument{}
	err := row.Scan(
		&doc.ID,
		&doc.LicensePlate,
		&doc.DocumentType,
		&doc.FileName,
		&doc.StorageKey,
		&doc.ContentType,
		&doc.Size,
		&doc.Checksum,
		&doc.UploadDate,
	)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

type smsHistoryRepository struct {
	db *pgxpool.Pool
}

func NewSMSHistoryRepository(db *pgxpool.Pool) repository.SMSHistoryRepository {
	return &smsHistoryRepository{db: db}
}

func (r *smsHistoryRepository) Create(ctx context.Context, e *domain.SMSHistoryEntry) error {
	query := `
		INSERT INTO sms_history (id, phone_number, license_plate, recipient_name, message, status, sent_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		e.ID,
		e.PhoneNumber,
		e.LicensePlate,
		e.RecipientName,
		e.Message,
		string(e.Status),
		e.SentDate,
	)
	return err
}

func (r *smsHistoryRepository) List(ctx context.Context) ([]*domain.SMSHistoryEntry, error) {
	query := `
		SELECT id, phone_number, license_plate, recipient_name, message, status, sent_date
		FROM sms_history
		ORDER BY sent_date DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.SMSHistoryEntry{}
	for rows.Next() {
		e := &domain.SMSHistoryEntry{}
		var status string
		if err := rows.Scan(
			&e.ID,
			&e.PhoneNumber,
			&e.LicensePlate,
			&e.RecipientName,
			&e.Message,
			&status,
			&e.SentDate,
		); err != nil {
			return nil, err
		}
		e.Status = domain.SMSStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
