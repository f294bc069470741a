package users

import (
	"context"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"sort"
	"sync"
	"time"
)

// MockUserRepository keeps users in memory, used in tests and for local development
type MockUserRepository struct {
	Users []*User
	mutex sync.RWMutex
}

// Add adds a user
func (m *MockUserRepository) Add(_ context.Context, user *User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, u := range m.Users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperror.Conflict("Username or email already exists.")
		}
	}

	user.CreatedAt = time.Now()
	user.LastModifiedAt = time.Now()
	user.ID = primitive.NewObjectID()

	stored := *user
	m.Users = append(m.Users, &stored)
	return nil
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, u := range m.Users {
		if u.ID.Hex() == id {
			found := *u
			return &found, nil
		}
	}

	return nil, apperror.NotFound("User %s not found.", id)
}

// FindByUsernameOrEmail finds a user whose username or email matches
func (m *MockUserRepository) FindByUsernameOrEmail(_ context.Context, usernameOrEmail string) (*User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, u := range m.Users {
		if u.Username == usernameOrEmail || u.Email == usernameOrEmail {
			found := *u
			return &found, nil
		}
	}

	return nil, apperror.NotFound("User not found.")
}

// FindByTeamID finds all members of a team ordered by username
func (m *MockUserRepository) FindByTeamID(_ context.Context, teamID string) ([]*User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var members []*User
	for _, u := range m.Users {
		if u.TeamID == teamID {
			found := *u
			members = append(members, &found)
		}
	}

	sort.Slice(members, func(i, j int) bool {
		return members[i].Username < members[j].Username
	})

	return members, nil
}

// Update updates a user
func (m *MockUserRepository) Update(_ context.Context, user *User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, u := range m.Users {
		if u.ID == user.ID {
			user.LastModifiedAt = time.Now()
			stored := *user
			m.Users[i] = &stored
			return nil
		}
	}

	return apperror.NotFound("User %s not found.", user.ID.Hex())
}

// Remove deletes a user, simulating an account removed while its tokens are still valid
func (m *MockUserRepository) Remove(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, u := range m.Users {
		if u.ID.Hex() == id {
			m.Users = append(m.Users[:i], m.Users[i+1:]...)
			return
		}
	}
}
