package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docvault/internal/analysis"
	"docvault/internal/keywords"
	"docvault/internal/logger"
	"docvault/internal/model"
	"docvault/internal/storage"
)

// UploadFile is one file of an upload batch, fully read into memory.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}

// acceptedFile is an UploadFile that passed validation.
type acceptedFile struct {
	UploadFile
	mimeType    string
	displayName string
}

// stagedDocument has been stored, analyzed and validated but not yet persisted.
type stagedDocument struct {
	doc   model.Document
	usage *analysis.Usage
}

// Upload validates the whole batch, then folds over the files in order: store, describe,
// expand keywords, validate. The first failure removes every object stored so far and
// aborts the batch. Rows are inserted only once every file has been validated.
func (s *documentService) Upload(ctx context.Context, files []UploadFile) ([]model.Document, error) {
	ctx, span := tracer.Start(ctx, "ingest.batch", trace.WithAttributes(attribute.Int("files", len(files))))
	defer span.End()

	docs, err := s.upload(ctx, files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload rejected")
		s.metrics.UploadRejected(rejectReason(err))
		s.log.Warn().Err(err).Str("request_id", logger.RequestID(ctx)).Int("files", len(files)).Msg("upload rejected")
		return nil, err
	}
	s.metrics.DocumentsIngested(len(docs))
	s.log.Info().Str("request_id", logger.RequestID(ctx)).Int("documents", len(docs)).Msg("upload ingested")
	return docs, nil
}

func (s *documentService) upload(ctx context.Context, files []UploadFile) ([]model.Document, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files provided", ErrValidation)
	}

	accepted := make([]acceptedFile, 0, len(files))
	for _, f := range files {
		af, err := s.validate(f)
		if err != nil {
			return nil, err
		}
		accepted = append(accepted, af)
	}

	var (
		storedKeys []string
		staged     = make([]stagedDocument, 0, len(accepted))
	)
	for _, f := range accepted {
		key, sd, err := s.stage(ctx, f)
		if key != "" {
			storedKeys = append(storedKeys, key)
		}
		if err != nil {
			s.removeObjects(ctx, storedKeys)
			return nil, fmt.Errorf("%s: %w", f.displayName, err)
		}
		staged = append(staged, *sd)
	}

	docs := make([]model.Document, 0, len(staged))
	for _, sd := range staged {
		stored, err := s.repo.Create(ctx, &sd.doc)
		if err != nil {
			s.removeRows(ctx, docs)
			s.removeObjects(ctx, storedKeys)
			return nil, fmt.Errorf("%w: save %s: %v", ErrPersistence, sd.doc.DisplayName, err)
		}
		docs = append(docs, *stored)
	}

	for i, sd := range staged {
		id := docs[i].ID
		s.costs.record(ctx, model.OperationAnalysis, &id, sd.usage, map[string]any{
			"file":          docs[i].DisplayName,
			"mime_type":     docs[i].MimeType,
			"document_type": docs[i].AIDocumentType,
		})
	}
	return docs, nil
}

func (s *documentService) validate(f UploadFile) (acceptedFile, error) {
	name := displayName(f.Filename)
	if len(f.Content) == 0 {
		return acceptedFile{}, fmt.Errorf("%w: %s is empty", ErrValidation, name)
	}
	size := f.Size
	if size <= 0 {
		size = int64(len(f.Content))
	}
	if size > s.maxBytes || int64(len(f.Content)) > s.maxBytes {
		return acceptedFile{}, fmt.Errorf("%w: %s exceeds the %d byte limit", ErrValidation, name, s.maxBytes)
	}

	mimeType := resolveMimeType(f.ContentType, f.Content)
	if !s.typeAllowed(mimeType) {
		return acceptedFile{}, fmt.Errorf("%w: %s has unsupported type %s", ErrValidation, name, mimeType)
	}

	f.Size = int64(len(f.Content))
	return acceptedFile{UploadFile: f, mimeType: mimeType, displayName: name}, nil
}

func (s *documentService) typeAllowed(mimeType string) bool {
	if strings.HasPrefix(mimeType, "image/") {
		return true
	}
	for _, t := range s.allowedTypes {
		if strings.EqualFold(t, mimeType) {
			return true
		}
	}
	return false
}

// stage stores one file and analyzes it. The returned key is non-empty whenever an object
// was written, including on error.
func (s *documentService) stage(ctx context.Context, f acceptedFile) (string, *stagedDocument, error) {
	storageName := uuid.New().String() + extensionFor(f.Filename, f.mimeType)
	key := path.Join("documents", storageName)

	info, err := s.store.Put(ctx, key, bytes.NewReader(f.Content), storage.PutObjectOptions{
		Size:        f.Size,
		ContentType: f.mimeType,
		Metadata:    map[string]string{"original-filename": f.displayName},
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: upload to storage: %v", ErrPersistence, err)
	}
	if info.Key != "" {
		key = info.Key
	}

	desc, err := s.describe(ctx, f)
	if err != nil {
		return key, nil, err
	}

	kw := s.expander.Expand(nonEmpty(desc.Keywords), desc.DocumentType)
	kw = nonEmpty(kw)
	if len(kw) < keywords.MinKeywords {
		return key, nil, fmt.Errorf("%w: got %d, need %d", ErrInsufficientKeywords, len(kw), keywords.MinKeywords)
	}

	return key, &stagedDocument{
		doc: model.Document{
			ID:             uuid.New().String(),
			StorageName:    storageName,
			StoragePath:    key,
			DisplayName:    f.displayName,
			MimeType:       f.mimeType,
			SizeBytes:      f.Size,
			CreatedAt:      time.Now().UTC(),
			AIDescription:  desc.Description,
			AIDocumentType: desc.DocumentType,
			AICountry:      desc.Country,
			AITypicalUse:   desc.TypicalUse,
			AIKeywords:     kw,
		},
		usage: desc.Usage,
	}, nil
}

func (s *documentService) describe(ctx context.Context, f acceptedFile) (*analysis.Description, error) {
	ctx, span := tracer.Start(ctx, "ingest.describe", trace.WithAttributes(
		attribute.String("mime_type", f.mimeType),
		attribute.Int64("size_bytes", f.Size),
	))
	defer span.End()

	start := time.Now()
	desc, err := s.analyzer.Describe(ctx, f.Content, f.mimeType)
	s.metrics.ObserveAnalysis(string(model.OperationAnalysis), err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "describe failed")
		return nil, err
	}
	return desc, nil
}

// removeObjects is best effort: failures are logged and leave an orphaned object behind.
func (s *documentService) removeObjects(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Error().Err(err).Str("storage_path", key).Msg("rollback: failed to delete object")
		}
	}
}

func (s *documentService) removeRows(ctx context.Context, docs []model.Document) {
	ctx = context.WithoutCancel(ctx)
	for _, d := range docs {
		if err := s.repo.Delete(ctx, d.ID); err != nil {
			s.log.Error().Err(err).Str("document_id", d.ID).Msg("rollback: failed to delete row")
		}
	}
}

func resolveMimeType(header string, content []byte) string {
	mt := normalizeMediaType(header)
	if mt == "" || mt == "application/octet-stream" {
		mt = normalizeMediaType(http.DetectContentType(content))
	}
	return mt
}

func normalizeMediaType(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(v)
	}
	return mt
}

var preferredExt = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
}

func extensionFor(filename, mimeType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	if ext, ok := preferredExt[mimeType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func displayName(filename string) string {
	name := strings.TrimSpace(filepath.Base(strings.ReplaceAll(filename, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "document"
	}
	return name
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientKeywords):
		return "insufficient_keywords"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, analysis.ErrConfiguration), errors.Is(err, analysis.ErrAuth),
		errors.Is(err, analysis.ErrMalformedResponse), errors.Is(err, analysis.ErrUnavailable):
		return "analysis"
	default:
		return "internal"
	}
}
