package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/analysis"
	"docvault/internal/keywords"
	"docvault/internal/model"
	"docvault/internal/pricing"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

func keywordList(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%02d", prefix, i)
	}
	return out
}

func describeOK(docType string, kw []string) func([]byte, string) (*analysis.Description, error) {
	return func([]byte, string) (*analysis.Description, error) {
		return &analysis.Description{
			DocumentType: docType,
			Description:  "a " + docType,
			Keywords:     kw,
			Usage:        &analysis.Usage{Model: "gemini-2.5-flash", InputTokens: 1000, OutputTokens: 200},
		}, nil
	}
}

type ingestFixture struct {
	store  *memStore
	docs   *memDocs
	costs  *memCosts
	client *scriptedClient
	svc    DocumentService
}

func newIngestFixture(cfg DocumentConfig) *ingestFixture {
	f := &ingestFixture{
		store:  newMemStore(),
		docs:   &memDocs{},
		costs:  &memCosts{},
		client: &scriptedClient{describe: describeOK("Passport", keywordList("kw", 25))},
	}
	cfg.Logger = zerolog.Nop()
	f.svc = NewDocumentService(f.store, f.docs, f.costs, f.client, cfg)
	return f
}

// assertAtomic checks that every row has its object and every object has its row.
func (f *ingestFixture) assertAtomic(t *testing.T) {
	t.Helper()
	assert.Equal(t, f.store.keys(), f.docs.paths())
}

func TestUpload_ScenarioA_KeepsModelKeywords(t *testing.T) {
	f := newIngestFixture(DocumentConfig{})
	kw := keywordList("passport", 25)
	f.client.describe = describeOK("passport", kw)

	docs, err := f.svc.Upload(context.Background(), []UploadFile{{Filename: "scan.png", ContentType: "image/png", Content: []byte("png-bytes")}})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, kw, docs[0].AIKeywords)
	assert.Equal(t, "scan.png", docs[0].DisplayName)
	assert.True(t, strings.HasPrefix(docs[0].StoragePath, "documents/"))
	assert.True(t, strings.HasSuffix(docs[0].StoragePath, ".png"))
	assert.Equal(t, docs[0].StorageName, strings.TrimPrefix(docs[0].StoragePath, "documents/"))

	require.Len(t, f.costs.recs, 1)
	rec := f.costs.recs[0]
	assert.Equal(t, model.OperationAnalysis, rec.OperationType)
	require.NotNil(t, rec.RelatedDocumentID)
	assert.Equal(t, docs[0].ID, *rec.RelatedDocumentID)
	want := pricing.Calculate("gemini-2.5-flash", 1000, 200)
	assert.InDelta(t, want.USD, rec.CostUSD, 1e-12)
	assert.InDelta(t, want.BRL, rec.CostBRL, 1e-12)
	f.assertAtomic(t)
}

func TestUpload_ScenarioB_AuthFailureLeavesNothing(t *testing.T) {
	f := newIngestFixture(DocumentConfig{})
	f.client.describe = func([]byte, string) (*analysis.Description, error) {
		return nil, fmt.Errorf("describe: %w", analysis.ErrAuth)
	}

	docs, err := f.svc.Upload(context.Background(), []UploadFile{{Filename: "contract.pdf", ContentType: "application/pdf", Content: pdfBytes}})

	assert.ErrorIs(t, err, analysis.ErrAuth)
	assert.Nil(t, docs)
	assert.Equal(t, 1, f.store.puts)
	assert.Empty(t, f.store.keys())
	assert.Empty(t, f.docs.docs)
	assert.Empty(t, f.costs.recs)
}

func TestUpload_ExpandsShortKeywordLists(t *testing.T) {
	f := newIngestFixture(DocumentConfig{})
	f.client.describe = describeOK("Passport", []string{"passport photo", "", "  "})

	docs, err := f.svc.Upload(context.Background(), []UploadFile{{Filename: "p.jpg", ContentType: "image/jpeg", Content: []byte("jpeg")}})

	require.NoError(t, err)
	assert.Len(t, docs[0].AIKeywords, keywords.MinKeywords)
	assert.Equal(t, "passport photo", docs[0].AIKeywords[0])
	assert.Equal(t, "travel", docs[0].AIKeywords[1])
}

func TestUpload_InsufficientKeywords(t *testing.T) {
	f := newIngestFixture(DocumentConfig{Expander: keywords.NewExpander(keywords.Table{Generic: []string{"document"}})})
	f.client.describe = describeOK("Receipt", []string{"receipt"})

	_, err := f.svc.Upload(context.Background(), []UploadFile{{Filename: "r.png", ContentType: "image/png", Content: []byte("x")}})

	assert.ErrorIs(t, err, ErrInsufficientKeywords)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, f.store.keys())
	assert.Empty(t, f.docs.docs)
	assert.Empty(t, f.costs.recs)
}

func TestUpload_ValidationBeforeAnyWrite(t *testing.T) {
	tests := []struct {
		name  string
		files []UploadFile
	}{
		{name: "no files", files: nil},
		{name: "empty file", files: []UploadFile{{Filename: "a.pdf", ContentType: "application/pdf"}}},
		{name: "unsupported type", files: []UploadFile{{Filename: "notes.txt", ContentType: "text/plain", Content: []byte("hello")}}},
		{name: "oversized", files: []UploadFile{{Filename: "big.pdf", ContentType: "application/pdf", Content: make([]byte, 33)}}},
		{name: "declared size over limit", files: []UploadFile{{Filename: "big.pdf", ContentType: "application/pdf", Size: 64, Content: pdfBytes[:8]}}},
		{name: "valid then invalid", files: []UploadFile{
			{Filename: "ok.png", ContentType: "image/png", Content: []byte("png")},
			{Filename: "bad.exe", ContentType: "application/x-msdownload", Content: []byte("MZ")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIngestFixture(DocumentConfig{MaxBytes: 32})

			_, err := f.svc.Upload(context.Background(), tt.files)

			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, 0, f.store.puts)
			assert.Empty(t, f.docs.docs)
		})
	}
}

func TestUpload_SniffsOctetStream(t *testing.T) {
	f := newIngestFixture(DocumentConfig{})
	var gotMime string
	f.client.describe = func(_ []byte, mimeType string) (*analysis.Description, error) {
		gotMime = mimeType
		return describeOK("Invoice", keywordList("inv", 20))(nil, mimeType)
	}

	docs, err := f.svc.Upload(context.Background(), []UploadFile{{Filename: "invoice", ContentType: "application/octet-stream", Content: pdfBytes}})

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", gotMime)
	assert.Equal(t, "application/pdf", docs[0].MimeType)
	assert.True(t, strings.HasSuffix(docs[0].StoragePath, ".pdf"))
}

func TestUpload_BatchAllOrNothing(t *testing.T) {
	f := newIngestFixture(DocumentConfig{})
	calls := 0
	f.client.describe = func(c []byte, m string) (*analysis.Description, error) {
		calls++
		if calls == 3 {
			return nil, fmt.Errorf("describe: %w", analysis.ErrMalformedResponse)
		}
		return describeOK("Invoice", keywordList("inv", 22))(c, m)
	}
	files := []UploadFile{
		{Filename: "1.png", ContentType: "image/png", Content: []byte("1")},
		{Filename: "2.png", ContentType: "image/png", Content: []byte("2")},
		{Filename: "3.png", ContentType: "image/png", Content: []byte("3")},
		{Filename: "4.png", ContentType: "image/png", Content: []byte("4")},
	}

	_, err := f.svc.Upload(context.Background(), files)

	assert.ErrorIs(t, err, analysis.ErrMalformedResponse)
	assert.Contains(t, err.Error(), "3.png")
	assert.Equal(t, 3, f.store.puts, "fold stops at the first failure")
	assert.Empty(t, f.store.keys())
	assert.Empty(t, f.docs.docs)
	assert.Empty(t, f.costs.recs)
}

func TestUpload_BatchSuccessKeepsOrder(t *testing.T) {
	f := newIngestFixture(DocumentConfig{})
	files := []UploadFile{
		{Filename: "a.png", ContentType: "image/png", Content: []byte("a")},
		{Filename: "b.pdf", ContentType: "application/pdf", Content: pdfBytes},
	}

	docs, err := f.svc.Upload(context.Background(), files)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.png", docs[0].DisplayName)
	assert.Equal(t, "b.pdf", docs[1].DisplayName)
	assert.Len(t, f.costs.recs, 2)
	f.assertAtomic(t)
}

func TestUpload_RowInsertFailureUndoesBatch(t *testing.T) {
	f := newIngestFixture(DocumentConfig{})
	f.docs.failCreateAt = 2
	files := []UploadFile{
		{Filename: "a.png", ContentType: "image/png", Content: []byte("a")},
		{Filename: "b.png", ContentType: "image/png", Content: []byte("b")},
	}

	_, err := f.svc.Upload(context.Background(), files)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.Empty(t, f.docs.docs)
	assert.Empty(t, f.store.keys())
	assert.Empty(t, f.costs.recs)
}

func TestUpload_StorageFailureRemovesEarlierObjects(t *testing.T) {
	f := newIngestFixture(DocumentConfig{})
	f.store.failPutAt = 2
	files := []UploadFile{
		{Filename: "a.png", ContentType: "image/png", Content: []byte("a")},
		{Filename: "b.png", ContentType: "image/png", Content: []byte("b")},
	}

	_, err := f.svc.Upload(context.Background(), files)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorContains(t, err, "upload to storage")
	assert.Equal(t, "persistence", rejectReason(err))
	f.assertAtomic(t)
	assert.Empty(t, f.store.keys())
}

func TestUpload_CostFailureDoesNotUndoDocument(t *testing.T) {
	f := newIngestFixture(DocumentConfig{})
	f.costs.err = errors.New("ledger down")

	docs, err := f.svc.Upload(context.Background(), []UploadFile{{Filename: "a.png", ContentType: "image/png", Content: []byte("a")}})

	require.NoError(t, err)
	assert.Len(t, docs, 1)
	f.assertAtomic(t)
}

func TestUpload_RollbackDeleteFailureIsSwallowed(t *testing.T) {
	f := newIngestFixture(DocumentConfig{})
	f.store.failDelete = true
	f.client.describe = func([]byte, string) (*analysis.Description, error) {
		return nil, analysis.ErrUnavailable
	}

	_, err := f.svc.Upload(context.Background(), []UploadFile{{Filename: "a.png", ContentType: "image/png", Content: []byte("a")}})

	assert.ErrorIs(t, err, analysis.ErrUnavailable)
	assert.Len(t, f.store.keys(), 1, "orphaned object is left behind")
	assert.Empty(t, f.docs.docs)
}

func TestUpload_NoUsageNoCost(t *testing.T) {
	f := newIngestFixture(DocumentConfig{})
	f.client.describe = func([]byte, string) (*analysis.Description, error) {
		return &analysis.Description{DocumentType: "Invoice", Description: "x", Keywords: keywordList("k", 20)}, nil
	}

	_, err := f.svc.Upload(context.Background(), []UploadFile{{Filename: "a.png", ContentType: "image/png", Content: []byte("a")}})

	require.NoError(t, err)
	assert.Empty(t, f.costs.recs)
}

func TestUpload_AtomicUnderInjectedFailures(t *testing.T) {
	files := []UploadFile{
		{Filename: "a.png", ContentType: "image/png", Content: []byte("a")},
		{Filename: "b.png", ContentType: "image/png", Content: []byte("b")},
		{Filename: "c.pdf", ContentType: "application/pdf", Content: pdfBytes},
	}
	for failDescribe := 0; failDescribe <= 3; failDescribe++ {
		for failPut := 0; failPut <= 3; failPut++ {
			for failCreate := 0; failCreate <= 3; failCreate++ {
				f := newIngestFixture(DocumentConfig{})
				f.store.failPutAt = failPut
				f.docs.failCreateAt = failCreate
				calls := 0
				f.client.describe = func(c []byte, m string) (*analysis.Description, error) {
					calls++
					if calls == failDescribe {
						return nil, analysis.ErrUnavailable
					}
					return describeOK("Invoice", keywordList("k", 20))(c, m)
				}

				docs, err := f.svc.Upload(context.Background(), files)

				name := fmt.Sprintf("describe=%d put=%d create=%d", failDescribe, failPut, failCreate)
				assert.Equal(t, f.store.keys(), f.docs.paths(), name)
				if err != nil {
					assert.Empty(t, f.docs.docs, name)
				} else {
					assert.Len(t, docs, len(files), name)
				}
			}
		}
	}
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "application/pdf", resolveMimeType("", pdfBytes))
	assert.Equal(t, "image/png", resolveMimeType("image/png; charset=binary", nil))
	assert.Equal(t, "application/pdf", resolveMimeType("Application/PDF", nil))

	assert.Equal(t, ".jpg", extensionFor("", "image/jpeg"))
	assert.Equal(t, ".pdf", extensionFor("SCAN.PDF", "application/pdf"))
	assert.Equal(t, "", extensionFor("", "application/x-unknown-thing"))

	assert.Equal(t, "scan.pdf", displayName(`C:\Users\me\scan.pdf`))
	assert.Equal(t, "scan.pdf", displayName("/tmp/scan.pdf"))
	assert.Equal(t, "document", displayName(""))

	assert.Equal(t, "analysis", rejectReason(fmt.Errorf("describe: %w", analysis.ErrAuth)))
	assert.Equal(t, "validation", rejectReason(fmt.Errorf("%w: empty file", ErrValidation)))
	assert.Equal(t, "internal", rejectReason(errors.New("boom")))
}
