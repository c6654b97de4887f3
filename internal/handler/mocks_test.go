package handler

import (
	"context"

	"github.com/childbooklet/booklet-server-go/internal/model"
)

type mockChildRepo struct {
	insertIfAbsentFunc   func(ctx context.Context, record *model.ChildRecord) (bool, error)
	findByHealthIDFunc   func(ctx context.Context, healthID string) (*model.ChildRecord, error)
	findByNamePrefixFunc func(ctx context.Context, prefix string) (*model.ChildRecord, error)
	findAllFunc          func(ctx context.Context, limit, offset int) ([]model.ChildRecord, error)
	findByUploaderFunc   func(ctx context.Context, query model.UploaderQuery) ([]model.ChildRecord, error)
	updateFunc           func(ctx context.Context, healthID string, update model.RecordUpdate) (*model.ChildRecord, error)
	deleteFunc           func(ctx context.Context, healthID string) (bool, error)
	countFunc            func(ctx context.Context) (int64, error)
	recentFunc           func(ctx context.Context, limit int) ([]model.RecentUpload, error)
}

func (m *mockChildRepo) InsertIfAbsent(ctx context.Context, record *model.ChildRecord) (bool, error) {
	if m.insertIfAbsentFunc != nil {
		return m.insertIfAbsentFunc(ctx, record)
	}
	return true, nil
}

func (m *mockChildRepo) FindByHealthID(ctx context.Context, healthID string) (*model.ChildRecord, error) {
	if m.findByHealthIDFunc != nil {
		return m.findByHealthIDFunc(ctx, healthID)
	}
	return nil, nil
}

func (m *mockChildRepo) FindByNamePrefix(ctx context.Context, prefix string) (*model.ChildRecord, error) {
	if m.findByNamePrefixFunc != nil {
		return m.findByNamePrefixFunc(ctx, prefix)
	}
	return nil, nil
}

func (m *mockChildRepo) FindAll(ctx context.Context, limit, offset int) ([]model.ChildRecord, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []model.ChildRecord{}, nil
}

func (m *mockChildRepo) FindByUploader(ctx context.Context, query model.UploaderQuery) ([]model.ChildRecord, error) {
	if m.findByUploaderFunc != nil {
		return m.findByUploaderFunc(ctx, query)
	}
	return []model.ChildRecord{}, nil
}

func (m *mockChildRepo) Update(ctx context.Context, healthID string, update model.RecordUpdate) (*model.ChildRecord, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, healthID, update)
	}
	return nil, nil
}

func (m *mockChildRepo) Delete(ctx context.Context, healthID string) (bool, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, healthID)
	}
	return false, nil
}

func (m *mockChildRepo) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockChildRepo) Recent(ctx context.Context, limit int) ([]model.RecentUpload, error) {
	if m.recentFunc != nil {
		return m.recentFunc(ctx, limit)
	}
	return []model.RecentUpload{}, nil
}

type mockAdminRepo struct {
	findByUsernameFunc func(ctx context.Context, username string) (*model.AdminUser, error)
	seedFunc           func(ctx context.Context, params model.CreateAdminUserParams) (bool, error)
}

func (m *mockAdminRepo) FindByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return nil, nil
}

func (m *mockAdminRepo) Seed(ctx context.Context, params model.CreateAdminUserParams) (bool, error) {
	if m.seedFunc != nil {
		return m.seedFunc(ctx, params)
	}
	return false, nil
}

type mockIdentityStore struct {
	listFunc func(ctx context.Context, limit, offset int) ([]model.IdentityRow, error)
	findFunc func(ctx context.Context, individualID string) (*model.IdentityRow, error)
}

func (m *mockIdentityStore) List(ctx context.Context, limit, offset int) ([]model.IdentityRow, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return []model.IdentityRow{}, nil
}

func (m *mockIdentityStore) FindByIndividualID(ctx context.Context, individualID string) (*model.IdentityRow, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, individualID)
	}
	return nil, nil
}
