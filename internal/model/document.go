package model

import "time"

// Document represents an ingested file plus the metadata the analysis model extracted from it.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID             string    `json:"id"`
	StorageName    string    `json:"storage_name"`
	StoragePath    string    `json:"storage_path"`
	DisplayName    string    `json:"display_name"`
	MimeType       string    `json:"mime_type"`
	SizeBytes      int64     `json:"size_bytes"`
	CreatedAt      time.Time `json:"created_at"`
	AIDescription  string    `json:"ai_description"`
	AIDocumentType string    `json:"ai_document_type"`
	AICountry      string    `json:"ai_country,omitempty"`
	AITypicalUse   string    `json:"ai_typical_use,omitempty"`
	AIKeywords     []string  `json:"ai_keywords"`
}

// Summary projects the fields the query interpreter needs to reason about the corpus.
func (d Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:           d.ID,
		DisplayName:  d.DisplayName,
		DocumentType: d.AIDocumentType,
		Description:  d.AIDescription,
		Country:      d.AICountry,
		Keywords:     d.AIKeywords,
	}
}

// DocumentSummary is one corpus entry sent along with a natural-language query.
type DocumentSummary struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"display_name"`
	DocumentType string   `json:"document_type"`
	Description  string   `json:"description"`
	Country      string   `json:"country,omitempty"`
	Keywords     []string `json:"keywords"`
}
