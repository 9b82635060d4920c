package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"videovoyage/internal/model"
)

type stubResolver struct {
	identities map[string]model.Identity
}

func (s *stubResolver) ResolveToken(_ context.Context, token string) (model.Identity, bool) {
	identity, ok := s.identities[token]
	return identity, ok
}

func newResolver() *stubResolver {
	return &stubResolver{identities: map[string]model.Identity{
		"good-token": {ID: "user-1", Username: "alice", Role: model.RoleUser},
	}}
}

func identityEcho(t *testing.T, captured *model.Identity, found *bool) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured, *found = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid bearer token", "Bearer good-token", http.StatusOK},
		{"unknown token", "Bearer bad-token", http.StatusUnauthorized},
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good-token", http.StatusUnauthorized},
		{"bare token without scheme", "good-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var identity model.Identity
			var found bool
			handler := NewAuthMiddleware(newResolver()).RequireAuth(identityEcho(t, &identity, &found))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.True(t, found)
				assert.Equal(t, "user-1", identity.ID)
			} else {
				assert.False(t, found, "rejected requests must not reach the handler")
				assert.Contains(t, rec.Body.String(), "Not authorized to access this route")
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	t.Run("valid token attaches identity", func(t *testing.T) {
		var identity model.Identity
		var found bool
		handler := NewAuthMiddleware(newResolver()).OptionalAuth(identityEcho(t, &identity, &found))

		req := httptest.NewRequest(http.MethodGet, "/videos", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, found)
		assert.Equal(t, "alice", identity.Username)
	})

	t.Run("missing token passes through as anonymous", func(t *testing.T) {
		var identity model.Identity
		var found bool
		handler := NewAuthMiddleware(newResolver()).OptionalAuth(identityEcho(t, &identity, &found))

		req := httptest.NewRequest(http.MethodGet, "/videos", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, found)
		assert.True(t, identity.IsAnonymous())
	})

	t.Run("invalid token also passes through as anonymous", func(t *testing.T) {
		var identity model.Identity
		var found bool
		handler := NewAuthMiddleware(newResolver()).OptionalAuth(identityEcho(t, &identity, &found))

		req := httptest.NewRequest(http.MethodGet, "/videos", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, found)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Bearer   abc  ", "abc"},
		{"Basic abc", ""},
		{"", ""},
		{"Bearer", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, bearerToken(req), tt.header)
	}
}
