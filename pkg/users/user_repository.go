package users

import (
	"context"
	"github.com/pkg/errors"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"time"
)

// UserRepositoryInterface is the interface for a UserRepository
type UserRepositoryInterface interface {
	Add(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*User, error)
	FindByTeamID(ctx context.Context, teamID string) ([]*User, error)
	Update(ctx context.Context, user *User) error
}

// UserRepository does everything related to user storing
type UserRepository struct {
	DB     *mongo.Collection
	Logger logger.Interface
}

// EnsureIndexes creates the unique and lookup indexes of the users collection
func (s UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := s.DB.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "teamId", Value: 1}}},
	})
	return errors.Wrap(err, "could not create user indexes")
}

// Add adds a user
func (s UserRepository) Add(ctx context.Context, user *User) error {
	user.CreatedAt = time.Now()
	user.LastModifiedAt = time.Now()
	user.ID = primitive.NewObjectID()
	_, err := s.DB.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Conflict("Username or email already exists.")
	}
	return errors.Wrap(err, "could not insert user")
}

// FindByID finds a user by ID
func (s UserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NotFound("User %s not found.", id)
	}

	return s.findOne(ctx, bson.M{"_id": objectID})
}

// FindByUsernameOrEmail finds a user whose username or email matches
func (s UserRepository) FindByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*User, error) {
	return s.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": usernameOrEmail},
		bson.M{"email": usernameOrEmail},
	}})
}

// FindByTeamID finds all members of a team ordered by username
func (s UserRepository) FindByTeamID(ctx context.Context, teamID string) ([]*User, error) {
	var users []*User

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"username": 1})

	cursor, err := s.DB.Find(ctx, bson.M{"teamId": teamID}, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "could not query team members")
	}

	err = cursor.All(ctx, &users)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode team members")
	}

	return users, nil
}

// Update updates a user
func (s UserRepository) Update(ctx context.Context, user *User) error {
	user.LastModifiedAt = time.Now()

	result, err := s.DB.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": user})
	if err != nil {
		return errors.Wrap(err, "could not update user")
	}

	if result.MatchedCount != 1 {
		return apperror.NotFound("User %s not found.", user.ID.Hex())
	}

	return nil
}

func (s UserRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var u = User{}

	result := s.DB.FindOne(ctx, filter)
	if errors.Is(result.Err(), mongo.ErrNoDocuments) {
		return nil, apperror.NotFound("User not found.")
	}
	if result.Err() != nil {
		return nil, errors.Wrap(result.Err(), "could not find user")
	}

	err := result.Decode(&u)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode user")
	}
	return &u, nil
}
