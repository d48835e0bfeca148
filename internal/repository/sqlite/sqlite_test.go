package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/database/migration"
	"docvault/internal/model"
	"docvault/internal/repository"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migration.EnsureMigrated(context.Background(), db, migration.SQLite, zerolog.Nop(), "test"))
	return db
}

func newDoc(id string, created time.Time) *model.Document {
	return &model.Document{
		ID:             id,
		StorageName:    id + ".pdf",
		StoragePath:    "documents/" + id + ".pdf",
		DisplayName:    id + " original.pdf",
		MimeType:       "application/pdf",
		SizeBytes:      1024,
		CreatedAt:      created,
		AIDescription:  "description of " + id,
		AIDocumentType: "Invoice",
		AIKeywords:     []string{"invoice", "payment"},
	}
}

func TestDocumentSQLite_CRUD(t *testing.T) {
	repo := NewDocumentSQLite(openDB(t))
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	stored, err := repo.Create(ctx, newDoc("a", base))
	require.NoError(t, err)
	assert.Equal(t, []string{"invoice", "payment"}, stored.AIKeywords)
	assert.True(t, base.Equal(stored.CreatedAt))

	_, err = repo.Create(ctx, newDoc("b", base.Add(time.Minute)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newDoc("c", base.Add(2*time.Minute)))
	require.NoError(t, err)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})

	page, err := repo.List(ctx, repository.PageQuery{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "b", page.Items[0].ID)

	renamed, err := repo.Rename(ctx, "b", "Light bill")
	require.NoError(t, err)
	assert.Equal(t, "Light bill", renamed.DisplayName)

	_, err = repo.Rename(ctx, "missing", "x")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, repo.Delete(ctx, "b"))
	require.NoError(t, repo.Delete(ctx, "b"))

	_, err = repo.FindByID(ctx, "b")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDocumentSQLite_DuplicateStoragePath(t *testing.T) {
	repo := NewDocumentSQLite(openDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, newDoc("a", time.Now()))
	require.NoError(t, err)

	dup := newDoc("z", time.Now())
	dup.StoragePath = "documents/a.pdf"
	_, err = repo.Create(ctx, dup)
	assert.ErrorContains(t, err, "insert document")
}

func TestCostSQLite_CreateAndQuery(t *testing.T) {
	repo := NewCostSQLite(openDB(t))
	ctx := context.Background()
	day := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	docID := "doc-1"

	records := []model.CostRecord{
		{ID: "c1", OperationType: model.OperationAnalysis, RelatedDocumentID: &docID, InputTokens: 100, OutputTokens: 10,
			CostUSD: 0.001, CostBRL: 0.0055, Model: "m", CreatedAt: day.Add(-time.Hour), Details: json.RawMessage(`{"file":"a.pdf"}`)},
		{ID: "c2", OperationType: model.OperationSearch, InputTokens: 50, OutputTokens: 5,
			CostUSD: 0.002, CostBRL: 0.011, Model: "m", CreatedAt: day.Add(time.Hour)},
		{ID: "c3", OperationType: model.OperationSearch, InputTokens: 1, OutputTokens: 1,
			CostUSD: 0.003, CostBRL: 0.0165, Model: "m", CreatedAt: day.Add(25 * time.Hour)},
	}
	for i := range records {
		require.NoError(t, repo.Create(ctx, &records[i]))
	}

	all, err := repo.Query(ctx, repository.CostQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c3", all[0].ID)
	require.NotNil(t, all[2].RelatedDocumentID)
	assert.Equal(t, "doc-1", *all[2].RelatedDocumentID)
	assert.JSONEq(t, `{"file":"a.pdf"}`, string(all[2].Details))
	assert.Nil(t, all[1].RelatedDocumentID)

	end := day.Add(24*time.Hour - time.Nanosecond)
	inDay, err := repo.Query(ctx, repository.CostQuery{Start: &day, End: &end})
	require.NoError(t, err)
	require.Len(t, inDay, 1)
	assert.Equal(t, "c2", inDay[0].ID)

	since, err := repo.Query(ctx, repository.CostQuery{Start: &day})
	require.NoError(t, err)
	assert.Len(t, since, 2)
}

func TestCostSQLite_RejectsUnknownOperation(t *testing.T) {
	repo := NewCostSQLite(openDB(t))

	err := repo.Create(context.Background(), &model.CostRecord{ID: "x", OperationType: "refund", Model: "m", CreatedAt: time.Now()})

	assert.ErrorContains(t, err, "insert cost record")
}
