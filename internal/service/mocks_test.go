package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"videovoyage/internal/model"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) AdminExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type mockVideoRepo struct {
	mock.Mock
}

func (m *mockVideoRepo) Create(ctx context.Context, v model.Video) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *mockVideoRepo) FindByID(ctx context.Context, id string) (model.Video, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Video), args.Error(1)
}

func (m *mockVideoRepo) ListPublic(ctx context.Context) ([]model.Video, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Video), args.Error(1)
}

func (m *mockVideoRepo) ListVisibleTo(ctx context.Context, ownerID string) ([]model.Video, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.Video), args.Error(1)
}

func (m *mockVideoRepo) ListAll(ctx context.Context) ([]model.Video, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Video), args.Error(1)
}

func (m *mockVideoRepo) Update(ctx context.Context, v model.Video) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *mockVideoRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockVideoRepo) IncrementViews(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
