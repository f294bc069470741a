package users

import (
	"context"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
)

type contextKey string

const keyUser contextKey = "user"

// Verifier resolves the account behind an access token for auth.AuthenticationMiddleware
type Verifier struct {
	Repository UserRepositoryInterface
}

// VerifyUser fails with NotFound for deleted accounts and Forbidden for inactive ones.
// On success the returned context carries the user.
func (v Verifier) VerifyUser(ctx context.Context, userID string) (context.Context, error) {
	user, err := v.Repository.FindByID(ctx, userID)
	if err != nil {
		return ctx, err
	}

	if !user.IsActive {
		return ctx, apperror.Forbidden("Inactive user.")
	}

	return WithUser(ctx, user), nil
}

// WithUser stores the authenticated user in the context
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, keyUser, user)
}

// FromContext returns the user stored by WithUser
func FromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(keyUser).(*User)
	return user, ok && user != nil
}

// Current returns the authenticated user with the given ID. A user that no longer exists
// is reported as an authentication failure, not as a missing resource.
func Current(ctx context.Context, repository UserRepositoryInterface, userID string) (*User, error) {
	if user, ok := FromContext(ctx); ok && user.ID.Hex() == userID {
		return user, nil
	}

	user, err := repository.FindByID(ctx, userID)
	if apperror.IsNotFound(err) {
		return nil, apperror.Auth("Could not validate credentials.", err)
	}

	return user, err
}
