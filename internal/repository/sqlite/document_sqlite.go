// Package sqlite implements the repositories on an embedded SQLite file for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentSQLite is a SQLite implementation of repository.DocumentRepository.
type DocumentSQLite struct {
	db *sql.DB
}

func NewDocumentSQLite(db *sql.DB) *DocumentSQLite {
	return &DocumentSQLite{db: db}
}

var _ repository.DocumentRepository = (*DocumentSQLite)(nil)

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
	err := row.Scan(
		&d.ID, &d.StorageName, &d.StoragePath, &d.DisplayName, &d.MimeType, &d.SizeBytes, &d.CreatedAt,
		&d.AIDescription, &d.AIDocumentType, &d.AICountry, &d.AITypicalUse, &keywords,
	)
	if err != nil {
		return nil, err
	}
	if d.AIKeywords, err = repository.DecodeKeywords(keywords); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a document and reads it back.
func (r *DocumentSQLite) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	keywords, err := repository.EncodeKeywords(doc.AIKeywords)
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO documents (` + documentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		doc.ID, doc.StorageName, doc.StoragePath, doc.DisplayName, doc.MimeType, doc.SizeBytes, doc.CreatedAt.UTC(),
		doc.AIDescription, doc.AIDocumentType, doc.AICountry, doc.AITypicalUse, keywords,
	)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return r.FindByID(ctx, doc.ID)
}

// FindByID returns sql.ErrNoRows when the document does not exist.
func (r *DocumentSQLite) FindByID(ctx context.Context, id string) (*model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`
	return scanDocument(r.db.QueryRowContext(ctx, query, id))
}

func (r *DocumentSQLite) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&total); err != nil {
		return nil, err
	}
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	items, err := r.query(ctx, query, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

func (r *DocumentSQLite) ListAll(ctx context.Context) ([]model.Document, error) {
	return r.query(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC, id DESC`)
}

// Rename returns sql.ErrNoRows when no row was updated.
func (r *DocumentSQLite) Rename(ctx context.Context, id, displayName string) (*model.Document, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE documents SET display_name = ? WHERE id = ?`, displayName, id)
	if err != nil {
		return nil, fmt.Errorf("rename document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, sql.ErrNoRows
	}
	return r.FindByID(ctx, id)
}

func (r *DocumentSQLite) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (r *DocumentSQLite) query(ctx context.Context, query string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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
	return items, rows.Err()
}
