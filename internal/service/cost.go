package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"docvault/internal/analysis"
	"docvault/internal/logger"
	"docvault/internal/metrics"
	"docvault/internal/model"
	"docvault/internal/pricing"
	"docvault/internal/repository"
)

// CostService reads the cost ledger.
type CostService interface {
	// List returns records with created_at inside the optional bounds, newest first.
	List(ctx context.Context, start, end *time.Time) ([]model.CostRecord, error)
	// Summary aggregates the same records.
	Summary(ctx context.Context, start, end *time.Time) (*model.CostSummary, error)
}

type costService struct {
	repo repository.CostRepository
}

func NewCostService(repo repository.CostRepository) CostService {
	return &costService{repo: repo}
}

func (s *costService) List(ctx context.Context, start, end *time.Time) ([]model.CostRecord, error) {
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("%w: end is before start", ErrValidation)
	}
	recs, err := s.repo.Query(ctx, repository.CostQuery{Start: start, End: end})
	if err != nil {
		return nil, fmt.Errorf("%w: query costs: %v", ErrPersistence, err)
	}
	return recs, nil
}

func (s *costService) Summary(ctx context.Context, start, end *time.Time) (*model.CostSummary, error) {
	recs, err := s.List(ctx, start, end)
	if err != nil {
		return nil, err
	}
	sum := SummarizeCosts(recs)
	return &sum, nil
}

// SummarizeCosts totals a set of cost records.
func SummarizeCosts(recs []model.CostRecord) model.CostSummary {
	var sum model.CostSummary
	for _, r := range recs {
		sum.Count++
		sum.TotalUSD += r.CostUSD
		sum.TotalBRL += r.CostBRL
		sum.InputTokens += r.InputTokens
		sum.OutputTokens += r.OutputTokens
	}
	return sum
}

// costRecorder turns per-call usage into ledger rows. Ledger failures are logged and swallowed.
type costRecorder struct {
	repo    repository.CostRepository
	prices  pricing.Table
	metrics *metrics.Pipeline
	log     zerolog.Logger
}

func (r costRecorder) newRecord(op model.OperationType, documentID *string, usage *analysis.Usage, details map[string]any) *model.CostRecord {
	cost := r.prices.Calculate(usage.Model, usage.InputTokens, usage.OutputTokens)
	rec := &model.CostRecord{
		ID:                uuid.New().String(),
		OperationType:     op,
		RelatedDocumentID: documentID,
		InputTokens:       usage.InputTokens,
		OutputTokens:      usage.OutputTokens,
		CostUSD:           cost.USD,
		CostBRL:           cost.BRL,
		Model:             usage.Model,
		CreatedAt:         time.Now().UTC(),
	}
	if len(details) > 0 {
		if raw, err := json.Marshal(details); err == nil {
			rec.Details = raw
		}
	}
	return rec
}

func (r costRecorder) record(ctx context.Context, op model.OperationType, documentID *string, usage *analysis.Usage, details map[string]any) {
	if usage == nil || r.repo == nil {
		return
	}
	rec := r.newRecord(op, documentID, usage, details)
	if err := r.repo.Create(ctx, rec); err != nil {
		r.log.Error().Err(err).
			Str("request_id", logger.RequestID(ctx)).
			Str("operation", string(op)).
			Str("model", rec.Model).
			Float64("cost_usd", rec.CostUSD).
			Msg("failed to record cost")
		return
	}
	r.metrics.AddCost(string(op), rec.Model, rec.CostUSD)
}
