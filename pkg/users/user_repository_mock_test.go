package users

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"testing"
)

func TestMockUserRepository_FindByTeamID(t *testing.T) {
	ctx := context.Background()
	repository := MockUserRepository{}

	for _, u := range []User{
		{Username: "carol", Email: "carol@example.com", TeamID: "red"},
		{Username: "alice", Email: "alice@example.com", TeamID: "red"},
		{Username: "bob", Email: "bob@example.com", TeamID: "blue"},
	} {
		u := u
		require.NoError(t, repository.Add(ctx, &u))
	}

	members, err := repository.FindByTeamID(ctx, "red")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "alice", members[0].Username)
	assert.Equal(t, "carol", members[1].Username)

	err = repository.Add(ctx, &User{Username: "dave", Email: "alice@example.com"})
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestUser_Location(t *testing.T) {
	tests := []struct {
		timeZone string
		want     string
	}{
		{"Europe/Berlin", "Europe/Berlin"},
		{"", "UTC"},
		{"Nowhere/Special", "UTC"},
	}

	for _, tt := range tests {
		u := User{TimeZone: tt.timeZone}
		assert.Equal(t, tt.want, u.Location().String())
	}
}
