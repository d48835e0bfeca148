package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"docvault/internal/analysis"
	"docvault/internal/keywords"
	"docvault/internal/metrics"
	"docvault/internal/model"
	"docvault/internal/pricing"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

var tracer = otel.Tracer("docvault/internal/service")

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"documents"`
	Total int              `json:"total"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload runs the ingestion pipeline over a batch. Either every file is stored, analyzed
	// and persisted, or nothing is left behind.
	Upload(ctx context.Context, files []UploadFile) ([]model.Document, error)

	// List returns documents using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Rename changes the display name of a document.
	Rename(ctx context.Context, id, displayName string) (*model.Document, error)

	// Delete removes a document by ID from both storage and repository.
	Delete(ctx context.Context, id string) error

	// FileURL returns a presigned download URL for the stored file.
	FileURL(ctx context.Context, id string, expiry time.Duration) (string, error)
}

// DocumentConfig carries the collaborators and limits of the ingestion pipeline.
type DocumentConfig struct {
	MaxBytes     int64
	AllowedTypes []string
	Expander     *keywords.Expander
	Pricing      pricing.Table
	Metrics      *metrics.Pipeline
	Logger       zerolog.Logger
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store    storage.Storage
	repo     repository.DocumentRepository
	analyzer analysis.Client
	costs    costRecorder
	expander *keywords.Expander
	metrics  *metrics.Pipeline
	log      zerolog.Logger

	maxBytes     int64
	allowedTypes []string
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, costs repository.CostRepository,
	analyzer analysis.Client, cfg DocumentConfig) DocumentService {
	if cfg.Expander == nil {
		cfg.Expander = keywords.Default()
	}
	if cfg.Pricing.Models == nil {
		cfg.Pricing = pricing.Default()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	if len(cfg.AllowedTypes) == 0 {
		cfg.AllowedTypes = []string{"application/pdf"}
	}
	log := cfg.Logger.With().Str("component", "ingest").Logger()
	return &documentService{
		store:        store,
		repo:         repo,
		analyzer:     analyzer,
		costs:        costRecorder{repo: costs, prices: cfg.Pricing, metrics: cfg.Metrics, log: log},
		expander:     cfg.Expander,
		metrics:      cfg.Metrics,
		log:          log,
		maxBytes:     cfg.MaxBytes,
		allowedTypes: cfg.AllowedTypes,
	}
}

// List returns paginated documents without exposing repository types.
// A limit <= 0 returns every document from offset on.
func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		all, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list documents: %v", ErrPersistence, err)
		}
		items := []model.Document{}
		if offset < len(all) {
			items = all[offset:]
		}
		return &DocumentListResult{Items: items, Total: len(all)}, nil
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", ErrPersistence, err)
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return doc, nil
}

func (s *documentService) Rename(ctx context.Context, id, displayName string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, fmt.Errorf("%w: display_name is required", ErrValidation)
	}
	if len(displayName) > 255 {
		return nil, fmt.Errorf("%w: display_name exceeds 255 characters", ErrValidation)
	}
	doc, err := s.repo.Rename(ctx, id, displayName)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return doc, nil
}

// Delete removes a document from storage, then deletes its record.
func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err)
	}
	// Delete from storage first; if this fails, keep DB row to avoid orphaned storage reference loss
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *documentService) FileURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, doc.StoragePath, doc.DisplayName, expiry)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", doc.StoragePath, err)
	}
	return u, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
