package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"docvault/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, only persistence operations.
// Lookups of a missing row return sql.ErrNoRows.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of documents, newest first, and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// ListAll returns every document, newest first.
	ListAll(ctx context.Context) ([]model.Document, error)

	// Rename updates the display name and returns the updated row.
	Rename(ctx context.Context, id, displayName string) (*model.Document, error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// EncodeKeywords serializes a keyword list for a JSON/TEXT column. A nil list encodes as [].
func EncodeKeywords(kw []string) (string, error) {
	if kw == nil {
		kw = []string{}
	}
	b, err := json.Marshal(kw)
	if err != nil {
		return "", fmt.Errorf("encode keywords: %w", err)
	}
	return string(b), nil
}

// DecodeKeywords is the inverse of EncodeKeywords. Empty input decodes as an empty list.
func DecodeKeywords(raw []byte) ([]string, error) {
	kw := []string{}
	if len(raw) == 0 {
		return kw, nil
	}
	if err := json.Unmarshal(raw, &kw); err != nil {
		return nil, fmt.Errorf("decode keywords: %w", err)
	}
	return kw, nil
}
