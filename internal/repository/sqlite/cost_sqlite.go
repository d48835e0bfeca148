package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// CostSQLite is a SQLite implementation of repository.CostRepository.
type CostSQLite struct {
	db *sql.DB
}

func NewCostSQLite(db *sql.DB) *CostSQLite {
	return &CostSQLite{db: db}
}

var _ repository.CostRepository = (*CostSQLite)(nil)

const costColumns = `id, operation_type, related_document_id, input_tokens, output_tokens,
	cost_usd, cost_brl, model, created_at, details`

func (r *CostSQLite) Create(ctx context.Context, rec *model.CostRecord) error {
	var related, details any
	if rec.RelatedDocumentID != nil {
		related = *rec.RelatedDocumentID
	}
	if len(rec.Details) > 0 {
		details = string(rec.Details)
	}
	query := `INSERT INTO cost_records (` + costColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, string(rec.OperationType), related, rec.InputTokens, rec.OutputTokens,
		rec.CostUSD, rec.CostBRL, rec.Model, rec.CreatedAt.UTC(), details,
	)
	if err != nil {
		return fmt.Errorf("insert cost record: %w", err)
	}
	return nil
}

// Query filters on created_at. Timestamps are stored in UTC so the text comparison orders correctly.
func (r *CostSQLite) Query(ctx context.Context, cq repository.CostQuery) ([]model.CostRecord, error) {
	var (
		conds []string
		args  []any
	)
	if cq.Start != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, cq.Start.UTC())
	}
	if cq.End != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, cq.End.UTC())
	}

	query := `SELECT ` + costColumns + ` FROM cost_records`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.CostRecord, 0)
	for rows.Next() {
		var (
			rec     model.CostRecord
			op      string
			related sql.NullString
			details sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &op, &related, &rec.InputTokens, &rec.OutputTokens,
			&rec.CostUSD, &rec.CostBRL, &rec.Model, &rec.CreatedAt, &details,
		); err != nil {
			return nil, err
		}
		rec.OperationType = model.OperationType(op)
		if related.Valid {
			id := related.String
			rec.RelatedDocumentID = &id
		}
		if details.Valid && details.String != "" {
			rec.Details = []byte(details.String)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
