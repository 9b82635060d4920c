package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"videovoyage/internal/model"
)

const testSecret = "test-signing-secret"

func TestRegister(t *testing.T) {
	t.Run("creates user with user role and returns token", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, testSecret, time.Hour, "")

		repo.On("ExistsByUsernameOrEmail", mock.Anything, "alice", "alice@example.com").Return(false, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
			return u.Username == "alice" && u.Email == "alice@example.com" &&
				u.Role == model.RoleUser && u.PasswordHash != "" && u.PasswordHash != "secret"
		})).Return(nil)

		user, token, err := svc.Register(context.Background(), "alice", "alice@example.com", "secret")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "alice", user.Username)
		assert.Empty(t, user.PasswordHash, "hash must never be returned")
		repo.AssertExpectations(t)
	})

	t.Run("duplicate username or email", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, testSecret, time.Hour, "")

		repo.On("ExistsByUsernameOrEmail", mock.Anything, "alice", "alice@example.com").Return(true, nil)

		_, _, err := svc.Register(context.Background(), "alice", "alice@example.com", "secret")

		assert.ErrorIs(t, err, model.ErrUserAlreadyExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing fields", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, testSecret, time.Hour, "")

		_, _, err := svc.Register(context.Background(), "alice", "", "secret")
		assert.Error(t, err)
		repo.AssertNotCalled(t, "ExistsByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := model.User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Role:         model.RoleUser,
	}

	t.Run("valid credentials", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, testSecret, time.Hour, "")

		repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(stored, nil)

		user, token, err := svc.Login(context.Background(), "alice@example.com", "secret")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, testSecret, time.Hour, "")

		repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(stored, nil)

		_, _, err := svc.Login(context.Background(), "alice@example.com", "nope")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("unknown email resolves to the same error", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, testSecret, time.Hour, "")

		repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(model.User{}, model.ErrUserNotFound)

		_, _, err := svc.Login(context.Background(), "ghost@example.com", "secret")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})
}

func TestResolveToken(t *testing.T) {
	stored := model.User{ID: "user-1", Username: "alice", Role: model.RoleUser}

	t.Run("valid token resolves to identity", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, testSecret, time.Hour, "")

		token, err := svc.IssueToken("user-1")
		require.NoError(t, err)

		repo.On("FindByID", mock.Anything, "user-1").Return(stored, nil)

		identity, ok := svc.ResolveToken(context.Background(), token)
		require.True(t, ok)
		assert.Equal(t, "user-1", identity.ID)
		assert.Equal(t, "alice", identity.Username)
		assert.False(t, identity.IsAnonymous())
	})

	t.Run("expired token resolves to anonymous", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, testSecret, -time.Minute, "")

		token, err := svc.IssueToken("user-1")
		require.NoError(t, err)

		identity, ok := svc.ResolveToken(context.Background(), token)
		assert.False(t, ok)
		assert.True(t, identity.IsAnonymous())
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("token signed with a different secret resolves to anonymous", func(t *testing.T) {
		other := NewAuthService(new(mockUserRepo), "other-secret", time.Hour, "")
		token, err := other.IssueToken("user-1")
		require.NoError(t, err)

		repo := new(mockUserRepo)
		svc := NewAuthService(repo, testSecret, time.Hour, "")

		_, ok := svc.ResolveToken(context.Background(), token)
		assert.False(t, ok)
	})

	t.Run("garbage token resolves to anonymous", func(t *testing.T) {
		svc := NewAuthService(new(mockUserRepo), testSecret, time.Hour, "")

		_, ok := svc.ResolveToken(context.Background(), "not-a-jwt")
		assert.False(t, ok)
	})

	t.Run("subject no longer exists resolves to anonymous", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, testSecret, time.Hour, "")

		token, err := svc.IssueToken("gone")
		require.NoError(t, err)

		repo.On("FindByID", mock.Anything, "gone").Return(model.User{}, model.ErrUserNotFound)

		_, ok := svc.ResolveToken(context.Background(), token)
		assert.False(t, ok)
	})
}

func TestCreateAdmin(t *testing.T) {
	t.Run("bad key", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, testSecret, time.Hour, "bootstrap-key")

		_, _, err := svc.CreateAdmin(context.Background(), "root", "root@example.com", "secret", "wrong")
		assert.Error(t, err)
		repo.AssertNotCalled(t, "AdminExists", mock.Anything)
	})

	t.Run("key configured empty disables bootstrap", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, testSecret, time.Hour, "")

		_, _, err := svc.CreateAdmin(context.Background(), "root", "root@example.com", "secret", "")
		assert.Error(t, err)
	})

	t.Run("admin already exists", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, testSecret, time.Hour, "bootstrap-key")

		repo.On("AdminExists", mock.Anything).Return(true, nil)

		_, _, err := svc.CreateAdmin(context.Background(), "root", "root@example.com", "secret", "bootstrap-key")
		assert.ErrorIs(t, err, model.ErrAdminExists)
	})

	t.Run("creates admin with admin role", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := NewAuthService(repo, testSecret, time.Hour, "bootstrap-key")

		repo.On("AdminExists", mock.Anything).Return(false, nil)
		repo.On("ExistsByUsernameOrEmail", mock.Anything, "root", "root@example.com").Return(false, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
			return u.Role == model.RoleAdmin
		})).Return(nil)

		user, token, err := svc.CreateAdmin(context.Background(), "root", "root@example.com", "secret", "bootstrap-key")

		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, user.Role)
		assert.NotEmpty(t, token)
	})
}
