package users

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"testing"
)

func TestVerifier_VerifyUser(t *testing.T) {
	ctx := context.Background()
	repository := &MockUserRepository{}

	active := User{Username: "alice", Email: "alice@example.com", IsActive: true}
	require.NoError(t, repository.Add(ctx, &active))
	inactive := User{Username: "bob", Email: "bob@example.com"}
	require.NoError(t, repository.Add(ctx, &inactive))

	verifier := Verifier{Repository: repository}

	verified, err := verifier.VerifyUser(ctx, active.ID.Hex())
	require.NoError(t, err)
	user, ok := FromContext(verified)
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)

	_, err = verifier.VerifyUser(ctx, inactive.ID.Hex())
	var forbidden *apperror.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	repository.Remove(active.ID.Hex())
	_, err = verifier.VerifyUser(ctx, active.ID.Hex())
	assert.True(t, apperror.IsNotFound(err))
}

func TestCurrent(t *testing.T) {
	ctx := context.Background()
	repository := &MockUserRepository{}

	alice := User{Username: "alice", Email: "alice@example.com", IsActive: true}
	require.NoError(t, repository.Add(ctx, &alice))

	user, err := Current(ctx, repository, alice.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	// the user resolved by the middleware wins over a second lookup
	resolved := WithUser(ctx, &User{ID: alice.ID, Username: "resolved"})
	user, err = Current(resolved, repository, alice.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "resolved", user.Username)

	_, err = Current(resolved, repository, primitive.NewObjectID().Hex())
	assert.True(t, apperror.IsAuth(err))
	assert.False(t, apperror.IsNotFound(err))
}
