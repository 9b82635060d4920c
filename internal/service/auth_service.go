package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"videovoyage/internal/model"
	"videovoyage/pkg/apierror"
)

// UserRepository is the slice of the user store the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, u model.User) error
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error)
	AdminExists(ctx context.Context) (bool, error)
}

type AuthService struct {
	users     UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	adminKey  string
}

func NewAuthService(users UserRepository, jwtSecret string, tokenTTL time.Duration, adminKey string) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		adminKey:  adminKey,
	}
}

func (s *AuthService) Register(ctx context.Context, username string, email string, password string) (model.User, string, error) {
	return s.createUser(ctx, username, email, password, model.RoleUser)
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		// Same response for unknown email and wrong password.
		return model.User{}, "", model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, "", model.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return model.User{}, "", err
	}

	user.PasswordHash = ""
	return user, token, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (model.User, error) {
	return s.users.FindByID(ctx, userID)
}

// CreateAdmin bootstraps the first admin account. It is guarded by a shared
// key from configuration and refuses to run once any admin exists.
func (s *AuthService) CreateAdmin(ctx context.Context, username string, email string, password string, adminKey string) (model.User, string, error) {
	if s.adminKey == "" || adminKey != s.adminKey {
		return model.User{}, "", apierror.New("UNAUTHORIZED", "Invalid admin key", http.StatusUnauthorized)
	}

	exists, err := s.users.AdminExists(ctx)
	if err != nil {
		return model.User{}, "", err
	}
	if exists {
		return model.User{}, "", model.ErrAdminExists
	}

	return s.createUser(ctx, username, email, password, model.RoleAdmin)
}

// IssueToken mints a signed bearer credential for the user, valid for the
// configured window (30 days by default) from issuance.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	})

	return token.SignedString(s.jwtSecret)
}

// ResolveToken verifies the token and looks up its subject. Any failure —
// malformed token, bad signature, expiry, or a subject that no longer
// exists — resolves to the anonymous identity, never an error: the caller
// enforces authorization against whatever identity comes back.
func (s *AuthService) ResolveToken(ctx context.Context, tokenString string) (model.Identity, bool) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return model.Identity{}, false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return model.Identity{}, false
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return model.Identity{}, false
	}

	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		return model.Identity{}, false
	}

	return model.Identity{ID: user.ID, Username: user.Username, Role: user.Role}, true
}

func (s *AuthService) createUser(ctx context.Context, username string, email string, password string, role string) (model.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return model.User{}, "", apierror.New("BAD_REQUEST", "username, email and password are required", http.StatusBadRequest)
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return model.User{}, "", err
	}
	if exists {
		return model.User{}, "", model.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return model.User{}, "", err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.User{}, "", err
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return model.User{}, "", err
	}

	user.PasswordHash = ""
	return user, token, nil
}
