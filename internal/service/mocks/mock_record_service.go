package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pharmadash/internal/model"
	"pharmadash/internal/query"
	"pharmadash/internal/service"
)

type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) List(ctx context.Context, kind model.Kind) ([]model.Record, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Record), args.Error(1)
}

func (m *MockRecordService) Query(ctx context.Context, kind model.Kind, q query.Query) (*query.Result, error) {
	args := m.Called(ctx, kind, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.Result), args.Error(1)
}

func (m *MockRecordService) Get(ctx context.Context, kind model.Kind, id string) (*model.Record, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Record), args.Error(1)
}

func (m *MockRecordService) Create(ctx context.Context, kind model.Kind, fields map[string]any) (*model.Record, error) {
	args := m.Called(ctx, kind, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Record), args.Error(1)
}

func (m *MockRecordService) Update(ctx context.Context, kind model.Kind, id string, patch map[string]any, opts service.UpdateOptions) (*model.Record, error) {
	args := m.Called(ctx, kind, id, patch, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Record), args.Error(1)
}

func (m *MockRecordService) Delete(ctx context.Context, kind model.Kind, id string) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MockRecordService) Select(ctx context.Context, kind model.Kind, id string) (*model.Record, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Record), args.Error(1)
}

func (m *MockRecordService) Selection(ctx context.Context, kind model.Kind) (*model.Record, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Record), args.Error(1)
}

func (m *MockRecordService) ClearSelection(kind model.Kind) {
	m.Called(kind)
}

var _ service.RecordService = (*MockRecordService)(nil)
