package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvault/internal/analysis"
	"docvault/internal/model"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Describe(ctx context.Context, content []byte, mimeType string) (*analysis.Description, error) {
	args := m.Called(ctx, content, mimeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.Description), args.Error(1)
}

func (m *MockClient) InterpretQuery(ctx context.Context, query string, corpus []model.DocumentSummary) (*analysis.Interpretation, error) {
	args := m.Called(ctx, query, corpus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.Interpretation), args.Error(1)
}
