package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"docvault/internal/model"
	"docvault/internal/repository"
	repoMocks "docvault/internal/repository/mocks"
	storeMocks "docvault/internal/storage/mocks"
)

func newMockedDocumentService(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) DocumentService {
	return NewDocumentService(mStore, mRepo, nil, nil, DocumentConfig{Logger: zerolog.Nop()})
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		limit      int
		offset     int
		setupMocks func(mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
		checkRes   func(t *testing.T, res *DocumentListResult)
	}{
		{
			name:   "happy path",
			limit:  10,
			offset: 0,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Document]{
						Items: []model.Document{{ID: "1"}, {ID: "2"}},
						Total: 2,
					}, nil)
			},
			checkRes: func(t *testing.T, res *DocumentListResult) {
				assert.Equal(t, 2, len(res.Items))
				assert.Equal(t, 2, res.Total)
			},
		},
		{
			name:   "zero limit returns everything",
			limit:  0,
			offset: -1,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("ListAll", ctx).Return([]model.Document{{ID: "1"}, {ID: "2"}, {ID: "3"}}, nil)
			},
			checkRes: func(t *testing.T, res *DocumentListResult) {
				assert.Len(t, res.Items, 3)
				assert.Equal(t, 3, res.Total)
			},
		},
		{
			name:   "zero limit honours offset",
			limit:  0,
			offset: 2,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("ListAll", ctx).Return([]model.Document{{ID: "1"}, {ID: "2"}, {ID: "3"}}, nil)
			},
			checkRes: func(t *testing.T, res *DocumentListResult) {
				assert.Equal(t, []model.Document{{ID: "3"}}, res.Items)
				assert.Equal(t, 3, res.Total)
			},
		},
		{
			name:   "zero limit offset past the end",
			limit:  0,
			offset: 5,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("ListAll", ctx).Return([]model.Document{{ID: "1"}}, nil)
			},
			checkRes: func(t *testing.T, res *DocumentListResult) {
				assert.NotNil(t, res.Items)
				assert.Empty(t, res.Items)
				assert.Equal(t, 1, res.Total)
			},
		},
		{
			name: "zero limit repository error",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("ListAll", ctx).Return(nil, errors.New("db fail"))
			},
			wantErr: ErrPersistence,
		},
		{
			name:  "repository error",
			limit: 10,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := newMockedDocumentService(nil, mRepo)

			tt.setupMocks(mRepo)

			res, err := svc.List(ctx, tt.limit, tt.offset)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, res)
				}
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_ListWithoutLimitReturnsWholeCorpus(t *testing.T) {
	ctx := context.Background()
	repo := &memDocs{}
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 12 {
		_, err := repo.Create(ctx, &model.Document{ID: fmt.Sprintf("doc-%02d", i), CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		assert.NoError(t, err)
	}
	svc := NewDocumentService(nil, repo, nil, nil, DocumentConfig{Logger: zerolog.Nop()})

	res, err := svc.List(ctx, 0, 0)

	assert.NoError(t, err)
	assert.Len(t, res.Items, 12)
	assert.Equal(t, 12, res.Total)
	assert.Equal(t, "doc-11", res.Items[0].ID)
	assert.Equal(t, "doc-00", res.Items[11].ID)
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "valid-id",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "valid-id").Return(&model.Document{ID: "valid-id"}, nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			id:   "missing-id",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "generic repository error",
			id:   "error-id",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "error-id").Return(nil, errors.New("db fail"))
			},
			wantErr: ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := newMockedDocumentService(nil, mRepo)

			tt.setupMocks(mRepo)

			doc, err := svc.Get(ctx, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, doc)
				assert.Equal(t, tt.id, doc.ID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Rename(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		id          string
		displayName string
		setupMocks  func(mRepo *repoMocks.MockDocumentRepository)
		wantErr     error
	}{
		{
			name:        "happy path trims the name",
			id:          "doc-1",
			displayName: "  Passport 2031.jpg ",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("Rename", ctx, "doc-1", "Passport 2031.jpg").
					Return(&model.Document{ID: "doc-1", DisplayName: "Passport 2031.jpg"}, nil)
			},
		},
		{
			name:       "validation - empty id",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name:        "validation - blank name",
			id:          "doc-1",
			displayName: "   ",
			setupMocks:  func(mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:     ErrValidation,
		},
		{
			name:        "validation - name too long",
			id:          "doc-1",
			displayName: strings.Repeat("a", 256),
			setupMocks:  func(mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:     ErrValidation,
		},
		{
			name:        "not found",
			id:          "missing-id",
			displayName: "x.pdf",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("Rename", ctx, "missing-id", "x.pdf").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := newMockedDocumentService(nil, mRepo)

			tt.setupMocks(mRepo)

			doc, err := svc.Rename(ctx, tt.id, tt.displayName)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, strings.TrimSpace(tt.displayName), doc.DisplayName)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "happy path",
			id:   "valid-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "valid-id").Return(&model.Document{ID: "valid-id", StoragePath: "path/to/obj"}, nil)
				mStore.On("Delete", ctx, "path/to/obj").Return(nil)
				mRepo.On("Delete", ctx, "valid-id").Return(nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found",
			id:   "missing-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "storage delete error keeps the row",
			id:   "storage-fail-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "storage-fail-id").Return(&model.Document{ID: "id", StoragePath: "path"}, nil)
				mStore.On("Delete", ctx, "path").Return(errors.New("storage fail"))
			},
			wantErrMsg: "delete storage: storage fail",
		},
		{
			name: "repository delete error",
			id:   "repo-fail-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "repo-fail-id").Return(&model.Document{ID: "id", StoragePath: "path"}, nil)
				mStore.On("Delete", ctx, "path").Return(nil)
				mRepo.On("Delete", ctx, "repo-fail-id").Return(errors.New("db fail"))
			},
			wantErr: ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := newMockedDocumentService(mStore, mRepo)

			tt.setupMocks(mStore, mRepo)

			err := svc.Delete(ctx, tt.id)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			default:
				assert.NoError(t, err)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_FileURL(t *testing.T) {
	ctx := context.Background()

	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockDocumentRepository)
	svc := newMockedDocumentService(mStore, mRepo)

	mRepo.On("FindByID", ctx, "doc-1").
		Return(&model.Document{ID: "doc-1", StoragePath: "documents/abc.pdf", DisplayName: "Contract.pdf"}, nil)
	mStore.On("PresignGet", ctx, "documents/abc.pdf", "Contract.pdf", 5*time.Minute).
		Return("https://objects.local/documents/abc.pdf?sig=1", nil)
	mRepo.On("FindByID", ctx, "gone").Return(nil, sql.ErrNoRows)

	u, err := svc.FileURL(ctx, "doc-1", 5*time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, "https://objects.local/documents/abc.pdf?sig=1", u)

	_, err = svc.FileURL(ctx, "gone", time.Minute)
	assert.ErrorIs(t, err, ErrNotFound)

	mStore.AssertExpectations(t)
	mRepo.AssertExpectations(t)
}
