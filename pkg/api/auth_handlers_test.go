package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/renovapanel/renova/pkg/auth"
	"github.com/renovapanel/renova/pkg/contextkeys"
	"github.com/renovapanel/renova/pkg/faults"
)

type mockAuthService struct {
	loginFunc         func(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error)
	validateTokenFunc func(ctx context.Context, token string) (*auth.User, error)
	logoutFunc        func(ctx context.Context, token string) error
}

func (m *mockAuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	return m.loginFunc(ctx, req)
}

func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*auth.User, error) {
	return m.validateTokenFunc(ctx, token)
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	return m.logoutFunc(ctx, token)
}

func TestLoginHandler(t *testing.T) {
	t.Run("success returns the token", func(t *testing.T) {
		svc := &mockAuthService{
			loginFunc: func(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
				assert.Equal(t, "admin@admin.com", req.Email)
				return &auth.LoginResponse{
					Token:     "renova_abc",
					ExpiresAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
					User:      &auth.User{ID: 1, Email: req.Email},
				}, nil
			},
		}
		handlers := NewAuthHandlers(svc)

		body := bytes.NewBufferString(`{"email":"admin@admin.com","password":"admin"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
		rec := httptest.NewRecorder()
		handlers.Login(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "renova_abc")
	})

	t.Run("bad credentials", func(t *testing.T) {
		svc := &mockAuthService{
			loginFunc: func(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
				return nil, faults.Unauthorized("invalid credentials")
			},
		}
		handlers := NewAuthHandlers(svc)

		body := bytes.NewBufferString(`{"email":"admin@admin.com","password":"wrong"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
		rec := httptest.NewRecorder()
		handlers.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		handlers := NewAuthHandlers(&mockAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		handlers.Login(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogoutHandler(t *testing.T) {
	t.Run("revokes the presented token", func(t *testing.T) {
		var revoked string
		svc := &mockAuthService{
			logoutFunc: func(ctx context.Context, token string) error {
				revoked = token
				return nil
			},
		}
		handlers := NewAuthHandlers(svc)

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer renova_abc")
		rec := httptest.NewRecorder()
		handlers.Logout(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "renova_abc", revoked)
	})

	t.Run("missing header", func(t *testing.T) {
		handlers := NewAuthHandlers(&mockAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		rec := httptest.NewRecorder()
		handlers.Logout(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMeHandler(t *testing.T) {
	t.Run("returns the account from the context", func(t *testing.T) {
		handlers := NewAuthHandlers(&mockAuthService{})

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		ctx := contextkeys.WithUser(req.Context(), &auth.User{ID: 1, Email: "admin@admin.com"})
		rec := httptest.NewRecorder()
		handlers.Me(rec, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "admin@admin.com")
	})

	t.Run("no session in context", func(t *testing.T) {
		handlers := NewAuthHandlers(&mockAuthService{})

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rec := httptest.NewRecorder()
		handlers.Me(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
