package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"pharmadash/internal/model"
)

type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Create(ctx context.Context, rec *model.Record) (*model.Record, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Record), args.Error(1)
}

func (m *MockRecordRepository) FindByID(ctx context.Context, kind model.Kind, id string) (*model.Record, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Record), args.Error(1)
}

func (m *MockRecordRepository) List(ctx context.Context, kind model.Kind) ([]model.Record, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Record), args.Error(1)
}

func (m *MockRecordRepository) Update(ctx context.Context, rec *model.Record, prevUpdatedAt time.Time) (*model.Record, error) {
	args := m.Called(ctx, rec, prevUpdatedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Record), args.Error(1)
}

func (m *MockRecordRepository) Delete(ctx context.Context, kind model.Kind, id string) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}
