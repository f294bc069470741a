package users

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// User is the model for an account
type User struct {
	ID             primitive.ObjectID `json:"user_id" bson:"_id"`
	Username       string             `json:"username" bson:"username" validate:"required,min=3,max=64"`
	Email          string             `json:"email" bson:"email" validate:"required,email,max=256"`
	Password       string             `json:"-" bson:"password" validate:"required"`
	FullName       *string            `json:"full_name" bson:"fullName,omitempty" validate:"omitempty,max=128"`
	IsActive       bool               `json:"is_active" bson:"isActive"`
	TimeZone       string             `json:"timezone" bson:"timeZone" validate:"required"`
	TeamID         string             `json:"team_id,omitempty" bson:"teamId,omitempty" validate:"omitempty,max=64"`
	CreatedAt      time.Time          `json:"created_at" bson:"createdAt"`
	LastModifiedAt time.Time          `json:"-" bson:"lastModifiedAt"`
}

// UserRegistration is the request body for creating an account
type UserRegistration struct {
	Username string  `json:"username" validate:"required,min=3,max=64"`
	Email    string  `json:"email" validate:"required,email,max=256"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	FullName *string `json:"full_name" validate:"omitempty,max=128"`
	TimeZone string  `json:"timezone" validate:"omitempty,max=64"`
	TeamID   string  `json:"team_id" validate:"omitempty,max=64"`
}

// UserLogin is the request body for authentication; Username may also hold the email address
type UserLogin struct {
	Username string `json:"username" validate:"required,max=256"`
	Password string `json:"password" validate:"required,max=128"`
}

// DefaultTimeZone is assigned when a registration does not name one
const DefaultTimeZone = "UTC"

// Location returns the user's time zone, UTC when it can't be loaded
func (u *User) Location() *time.Location {
	location, err := time.LoadLocation(u.TimeZone)
	if err != nil || u.TimeZone == "" {
		return time.UTC
	}

	return location
}

// DisplayName returns the full name when set, the username otherwise
func (u *User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}

	return u.Username
}
