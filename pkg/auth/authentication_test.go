package auth

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"github.com/tracktivity-app/tracktivity-backend/pkg/auth/jwt"
	"github.com/tracktivity-app/tracktivity-backend/pkg/communication"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func signed(t *testing.T, claims jwt.Claims) string {
	token := jwt.New(jwt.AlgHS256, claims)
	s, err := token.Sign("secret")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

type verifierFunc func(ctx context.Context, userID string) (context.Context, error)

func (f verifierFunc) VerifyUser(ctx context.Context, userID string) (context.Context, error) {
	return f(ctx, userID)
}

func TestAuthenticationMiddleware(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer abc", http.StatusUnauthorized, ""},
		{"expired", "Bearer " + signed(t, jwt.NewClaims("u1", jwt.TokenTypeAccess, time.Minute, now.Add(-time.Hour))), http.StatusUnauthorized, ""},
		{"refresh token", "Bearer " + signed(t, jwt.NewClaims("u1", jwt.TokenTypeRefresh, time.Hour, now)), http.StatusUnauthorized, ""},
		{"valid", "Bearer " + signed(t, jwt.NewClaims("u1", jwt.TokenTypeAccess, time.Hour, now)), http.StatusOK, "u1"},
	}

	middleware := AuthenticationMiddleware{
		ResponseManager: &communication.ResponseManager{Logger: logger.NewNop()},
		Secret:          "secret",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seenUser string
			handler := middleware.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenUser, _ = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			request := httptest.NewRequest(http.MethodGet, "/activity/me/burnout", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantUser, seenUser)
		})
	}
}

func TestAuthenticationMiddleware_VerifiesUser(t *testing.T) {
	accounts := map[string]bool{"active": true, "inactive": false}

	middleware := AuthenticationMiddleware{
		ResponseManager: &communication.ResponseManager{Logger: logger.NewNop()},
		Secret:          "secret",
		Users: verifierFunc(func(ctx context.Context, userID string) (context.Context, error) {
			active, ok := accounts[userID]
			if !ok {
				return ctx, apperror.NotFound("User %s not found.", userID)
			}
			if !active {
				return ctx, apperror.Forbidden("Inactive user.")
			}
			return ctx, nil
		}),
	}

	tests := []struct {
		name       string
		subject    string
		wantStatus int
		wantDetail string
	}{
		{"active", "active", http.StatusOK, ""},
		{"deleted", "deleted", http.StatusUnauthorized, "Could not validate credentials."},
		{"inactive", "inactive", http.StatusForbidden, "Inactive user."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := middleware.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			request := httptest.NewRequest(http.MethodGet, "/activity/me/daily-summary", nil)
			request.Header.Set("Authorization", "Bearer "+signed(t, jwt.NewClaims(tt.subject, jwt.TokenTypeAccess, time.Hour, time.Now())))
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
			assert.Contains(t, recorder.Body.String(), tt.wantDetail)
		})
	}
}
