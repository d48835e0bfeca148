package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvault/internal/model"
	"docvault/internal/repository"
)

type MockCostRepository struct {
	mock.Mock
}

func (m *MockCostRepository) Create(ctx context.Context, rec *model.CostRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockCostRepository) Query(ctx context.Context, q repository.CostQuery) ([]model.CostRecord, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CostRecord), args.Error(1)
}
