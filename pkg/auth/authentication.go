package auth

import (
	"context"
	"errors"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"github.com/tracktivity-app/tracktivity-backend/pkg/auth/jwt"
	"github.com/tracktivity-app/tracktivity-backend/pkg/communication"
	"net/http"
	"strings"
)

// AuthenticationMiddleware checks if the user login token is valid and responds with an error if it's not the case
type AuthenticationMiddleware struct {
	ResponseManager *communication.ResponseManager
	Secret          string
	Users           UserVerifier
}

// UserVerifier checks that the subject of a valid token is still an active account.
// It returns NotFound for unknown users and may enrich the context with what it resolved.
type UserVerifier interface {
	VerifyUser(ctx context.Context, userID string) (context.Context, error)
}

type key string

const (
	// KeyUserID the key for the request variable for getting the user id
	KeyUserID key = "userID"
)

// Middleware gets called when a request needs to be authenticated
func (m *AuthenticationMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, r *http.Request) {
		extractedToken, err := extractTokenStringFromHeader(r)
		if err != nil {
			m.ResponseManager.RespondWithAppError(writer, apperror.Auth("Not authenticated.", err), "")
			return
		}

		token, err := jwt.Verify(extractedToken, jwt.TokenTypeAccess, m.Secret, jwt.AlgHS256)
		if err != nil {
			m.ResponseManager.RespondWithAppError(writer, apperror.Auth("Could not validate credentials.", err), "")
			return
		}

		ctx := WithUserID(r.Context(), token.Payload.Subject)
		if m.Users != nil {
			ctx, err = m.Users.VerifyUser(ctx, token.Payload.Subject)
			if apperror.IsNotFound(err) {
				m.ResponseManager.RespondWithAppError(writer, apperror.Auth("Could not validate credentials.", err), "")
				return
			}
			if err != nil {
				m.ResponseManager.RespondWithAppError(writer, err, "Could not verify user")
				return
			}
		}

		next.ServeHTTP(writer, r.WithContext(ctx))
	})
}

// WithUserID stores the authenticated user id in ctx
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, KeyUserID, userID)
}

// UserIDFromContext returns the authenticated user id
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(KeyUserID).(string)
	return userID, ok && userID != ""
}

func extractTokenStringFromHeader(r *http.Request) (string, error) {
	nonformatted := r.Header.Get("Authorization")
	if strings.TrimSpace(nonformatted) == "" {
		return "", errors.New("no authorization token specified")
	}

	tokenParts := strings.Fields(nonformatted)
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
		return "", errors.New("token must be a bearer token")
	}

	return tokenParts[1], nil
}
