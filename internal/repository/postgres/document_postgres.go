package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, storage_name, storage_path, display_name, mime_type, size_bytes, created_at,
		ai_description, ai_document_type, ai_country, ai_typical_use, ai_keywords`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d        model.Document
		keywords []byte
	)
	if err := row.Scan(
		&d.ID,
		&d.StorageName,
		&d.StoragePath,
		&d.DisplayName,
		&d.MimeType,
		&d.SizeBytes,
		&d.CreatedAt,
		&d.AIDescription,
		&d.AIDocumentType,
		&d.AICountry,
		&d.AITypicalUse,
		&keywords,
	); err != nil {
		return nil, err
	}
	kw, err := repository.DecodeKeywords(keywords)
	if err != nil {
		return nil, err
	}
	d.AIKeywords = kw
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	keywords, err := repository.EncodeKeywords(doc.AIKeywords)
	if err != nil {
		return nil, err
	}
	q := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.StorageName,
		doc.StoragePath,
		doc.DisplayName,
		doc.MimeType,
		doc.SizeBytes,
		doc.CreatedAt,
		doc.AIDescription,
		doc.AIDocumentType,
		doc.AICountry,
		doc.AITypicalUse,
		keywords,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + documentColumns + ` FROM documents
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	items, err := r.query(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// ListAll returns the whole corpus, newest first.
func (r *DocumentPostgres) ListAll(ctx context.Context) ([]model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents ORDER BY created_at DESC, id DESC`
	return r.query(ctx, q)
}

// Rename sets display_name. It returns sql.ErrNoRows when the document does not exist.
func (r *DocumentPostgres) Rename(ctx context.Context, id, displayName string) (*model.Document, error) {
	q := `UPDATE documents SET display_name = $2 WHERE id = $1 RETURNING ` + documentColumns
	return scanDocument(r.db.QueryRowContext(ctx, q, id, displayName))
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (r *DocumentPostgres) query(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
