package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"docvault/internal/analysis"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

// memStore is an in-memory storage.Storage with optional failure injection.
type memStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	puts       int
	failPutAt  int // 1-based put number to fail, 0 disables
	failDelete bool
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Put(_ context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.failPutAt == m.puts {
		return storage.ObjectInfo{}, errors.New("bucket unavailable")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	m.objects[key] = b
	return storage.ObjectInfo{Key: key, Size: int64(len(b)), ContentType: opt.ContentType}, nil
}

func (m *memStore) Get(_ context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(b)), storage.ObjectInfo{Key: key, Size: int64(len(b))}, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return errors.New("delete refused")
	}
	delete(m.objects, key)
	return nil
}

func (m *memStore) PresignGet(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://objects.local/" + key, nil
}

func (m *memStore) Ping(context.Context) error { return nil }

func (m *memStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// memDocs is an in-memory repository.DocumentRepository.
type memDocs struct {
	mu           sync.Mutex
	docs         []model.Document
	creates      int
	failCreateAt int
	listErr      error
}

func (m *memDocs) Create(_ context.Context, doc *model.Document) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.failCreateAt == m.creates {
		return nil, errors.New("unique violation")
	}
	m.docs = append(m.docs, *doc)
	out := *doc
	return &out, nil
}

func (m *memDocs) FindByID(_ context.Context, id string) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.ID == id {
			out := d
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memDocs) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	all, err := m.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	end := min(pq.Offset+pq.Limit, len(all))
	start := min(pq.Offset, end)
	return &repository.PageResult[model.Document]{Items: all[start:end], Total: len(all)}, nil
}

func (m *memDocs) ListAll(context.Context) ([]model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := append([]model.Document(nil), m.docs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memDocs) Rename(_ context.Context, id, displayName string) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.docs {
		if m.docs[i].ID == id {
			m.docs[i].DisplayName = displayName
			out := m.docs[i]
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memDocs) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.docs {
		if m.docs[i].ID == id {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memDocs) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d.StoragePath)
	}
	sort.Strings(out)
	return out
}

// memCosts is an in-memory repository.CostRepository.
type memCosts struct {
	mu   sync.Mutex
	recs []model.CostRecord
	err  error
}

func (m *memCosts) Create(_ context.Context, rec *model.CostRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.recs = append(m.recs, *rec)
	return nil
}

func (m *memCosts) Query(context.Context, repository.CostQuery) ([]model.CostRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.CostRecord(nil), m.recs...), nil
}

// scriptedClient answers from per-call functions.
type scriptedClient struct {
	describe   func(content []byte, mimeType string) (*analysis.Description, error)
	interpret  func(query string, corpus []model.DocumentSummary) (*analysis.Interpretation, error)
	interprets int
}

func (c *scriptedClient) Describe(_ context.Context, content []byte, mimeType string) (*analysis.Description, error) {
	return c.describe(content, mimeType)
}

func (c *scriptedClient) InterpretQuery(_ context.Context, query string, corpus []model.DocumentSummary) (*analysis.Interpretation, error) {
	c.interprets++
	return c.interpret(query, corpus)
}
