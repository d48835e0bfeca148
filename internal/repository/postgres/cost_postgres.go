package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// CostPostgres stores cost records in the cost_records table.
type CostPostgres struct {
	db *sql.DB
}

func NewCostPostgres(db *sql.DB) *CostPostgres {
	return &CostPostgres{db: db}
}

var _ repository.CostRepository = (*CostPostgres)(nil)

const costColumns = `id, operation_type, related_document_id, input_tokens, output_tokens,
		cost_usd, cost_brl, model, created_at, details`

// Create appends a record. Details is stored as JSONB, or NULL when empty.
func (r *CostPostgres) Create(ctx context.Context, rec *model.CostRecord) error {
	q := `INSERT INTO cost_records (` + costColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb)`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID,
		string(rec.OperationType),
		nullString(rec.RelatedDocumentID),
		rec.InputTokens,
		rec.OutputTokens,
		rec.CostUSD,
		rec.CostBRL,
		rec.Model,
		rec.CreatedAt,
		nullJSON(rec.Details),
	)
	if err != nil {
		return fmt.Errorf("insert cost record: %w", err)
	}
	return nil
}

// Query returns records inside the inclusive bounds, newest first.
func (r *CostPostgres) Query(ctx context.Context, cq repository.CostQuery) ([]model.CostRecord, error) {
	var (
		conds []string
		args  []any
	)
	if cq.Start != nil {
		args = append(args, cq.Start.UTC())
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if cq.End != nil {
		args = append(args, cq.End.UTC())
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	q := `SELECT ` + costColumns + ` FROM cost_records`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.CostRecord, 0)
	for rows.Next() {
		rec, err := scanCost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanCost(row rowScanner) (*model.CostRecord, error) {
	var (
		rec     model.CostRecord
		op      string
		related sql.NullString
		details []byte
	)
	if err := row.Scan(
		&rec.ID,
		&op,
		&related,
		&rec.InputTokens,
		&rec.OutputTokens,
		&rec.CostUSD,
		&rec.CostBRL,
		&rec.Model,
		&rec.CreatedAt,
		&details,
	); err != nil {
		return nil, err
	}
	rec.OperationType = model.OperationType(op)
	if related.Valid {
		id := related.String
		rec.RelatedDocumentID = &id
	}
	if len(details) > 0 {
		rec.Details = details
	}
	return &rec, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
