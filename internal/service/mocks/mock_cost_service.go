package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"docvault/internal/model"
)

type MockCostService struct {
	mock.Mock
}

func (m *MockCostService) List(ctx context.Context, start, end *time.Time) ([]model.CostRecord, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CostRecord), args.Error(1)
}

func (m *MockCostService) Summary(ctx context.Context, start, end *time.Time) (*model.CostSummary, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CostSummary), args.Error(1)
}
