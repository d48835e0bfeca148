package model

import (
	"encoding/json"
	"time"
)

// OperationType identifies which external call a cost record bills.
type OperationType string

const (
	OperationAnalysis OperationType = "analysis"
	OperationSearch   OperationType = "search"
)

// CostRecord is a billing line item for one external model invocation.
// RelatedDocumentID is set for analysis and nil for search.
type CostRecord struct {
	ID                string          `json:"id"`
	OperationType     OperationType   `json:"operation_type"`
	RelatedDocumentID *string         `json:"related_document_id"`
	InputTokens       int64           `json:"input_tokens"`
	OutputTokens      int64           `json:"output_tokens"`
	CostUSD           float64         `json:"cost_usd"`
	CostBRL           float64         `json:"cost_brl"`
	Model             string          `json:"model"`
	CreatedAt         time.Time       `json:"created_at"`
	Details           json.RawMessage `json:"details,omitempty"`
}

// CostSummary aggregates a set of cost records.
type CostSummary struct {
	Count        int     `json:"count"`
	TotalUSD     float64 `json:"total_usd"`
	TotalBRL     float64 `json:"total_brl"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
}
