package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/childbooklet/booklet-server-go/internal/model"
)

// Mock repositories

type mockChildRecordRepo struct {
	mock.Mock
}

func (m *mockChildRecordRepo) InsertIfAbsent(ctx context.Context, record *model.ChildRecord) (bool, error) {
	args := m.Called(ctx, record)
	return args.Bool(0), args.Error(1)
}

func (m *mockChildRecordRepo) FindByHealthID(ctx context.Context, healthID string) (*model.ChildRecord, error) {
	args := m.Called(ctx, healthID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChildRecord), args.Error(1)
}

func (m *mockChildRecordRepo) FindByNamePrefix(ctx context.Context, prefix string) (*model.ChildRecord, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChildRecord), args.Error(1)
}

func (m *mockChildRecordRepo) FindAll(ctx context.Context, limit, offset int) ([]model.ChildRecord, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChildRecord), args.Error(1)
}

func (m *mockChildRecordRepo) FindByUploader(ctx context.Context, query model.UploaderQuery) ([]model.ChildRecord, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChildRecord), args.Error(1)
}

func (m *mockChildRecordRepo) Update(ctx context.Context, healthID string, update model.RecordUpdate) (*model.ChildRecord, error) {
	args := m.Called(ctx, healthID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChildRecord), args.Error(1)
}

func (m *mockChildRecordRepo) Delete(ctx context.Context, healthID string) (bool, error) {
	args := m.Called(ctx, healthID)
	return args.Bool(0), args.Error(1)
}

func (m *mockChildRecordRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockChildRecordRepo) Recent(ctx context.Context, limit int) ([]model.RecentUpload, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RecentUpload), args.Error(1)
}

type mockAdminUserRepo struct {
	mock.Mock
}

func (m *mockAdminUserRepo) FindByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminUser), args.Error(1)
}

func (m *mockAdminUserRepo) Seed(ctx context.Context, params model.CreateAdminUserParams) (bool, error) {
	args := m.Called(ctx, params)
	return args.Bool(0), args.Error(1)
}

type mockIdentityRepo struct {
	mock.Mock
}

func (m *mockIdentityRepo) List(ctx context.Context, limit, offset int) ([]model.IdentityRow, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.IdentityRow), args.Error(1)
}

func (m *mockIdentityRepo) FindByIndividualID(ctx context.Context, individualID string) (*model.IdentityRow, error) {
	args := m.Called(ctx, individualID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IdentityRow), args.Error(1)
}
