package tracking

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

// RepositoryInterface stores work sessions and heartbeats
type RepositoryInterface interface {
	AddSession(ctx context.Context, session *Session) error
	UpdateSession(ctx context.Context, session *Session) error
	FindSessionByID(ctx context.Context, sessionID string, userID string) (*Session, error)
	FindActiveSession(ctx context.Context, userID string) (*Session, error)
	AddHeartbeat(ctx context.Context, heartbeat *Heartbeat) error
	// FindHeartbeatsBetween returns the heartbeats of a user with from <= timestamp < to
	FindHeartbeatsBetween(ctx context.Context, userID string, from time.Time, to time.Time) ([]Heartbeat, error)
	FindLatestHeartbeat(ctx context.Context, userID string) (*Heartbeat, error)
	// CountHeartbeats returns how many heartbeats a user has, heartbeats are append only so it grows with every write
	CountHeartbeats(ctx context.Context, userID string) (int64, error)
}

// MongoDBRepository stores sessions and heartbeats in MongoDB
type MongoDBRepository struct {
	Sessions   *mongo.Collection
	Heartbeats *mongo.Collection
	Logger     logger.Interface
}

// EnsureIndexes creates the indexes the queries of the repository rely on
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
	})
	if err != nil {
		return errors.Wrap(err, "could not create session index")
	}

	_, err = r.Heartbeats.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return errors.Wrap(err, "could not create heartbeat index")
}

// AddSession adds a session
func (r *MongoDBRepository) AddSession(ctx context.Context, session *Session) error {
	session.ID = primitive.NewObjectID()
	session.CreatedAt = time.Now()
	session.LastModifiedAt = time.Now()

	_, err := r.Sessions.InsertOne(ctx, session)
	return errors.Wrap(err, "could not insert session")
}

// UpdateSession updates a session
func (r *MongoDBRepository) UpdateSession(ctx context.Context, session *Session) error {
	session.LastModifiedAt = time.Now()

	result, err := r.Sessions.ReplaceOne(ctx, bson.M{"_id": session.ID, "userId": session.UserID}, session)
	if err != nil {
		return errors.Wrap(err, "could not update session")
	}

	if result.MatchedCount == 0 {
		return apperror.NotFound("Session not found.")
	}

	return nil
}

// FindSessionByID finds a session of a user
func (r *MongoDBRepository) FindSessionByID(ctx context.Context, sessionID string, userID string) (*Session, error) {
	sessionObjectID, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return nil, apperror.NotFound("Session not found.")
	}

	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperror.NotFound("Session not found.")
	}

	return r.findOneSession(ctx, bson.M{"_id": sessionObjectID, "userId": userObjectID})
}

// FindActiveSession finds the ACTIVE session of a user
func (r *MongoDBRepository) FindActiveSession(ctx context.Context, userID string) (*Session, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperror.NotFound("Session not found.")
	}

	return r.findOneSession(ctx, bson.M{"userId": userObjectID, "status": StatusActive})
}

func (r *MongoDBRepository) findOneSession(ctx context.Context, filter bson.M) (*Session, error) {
	session := Session{}

	err := r.Sessions.FindOne(ctx, filter).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NotFound("Session not found.")
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not find session")
	}

	return &session, nil
}

// AddHeartbeat adds a heartbeat
func (r *MongoDBRepository) AddHeartbeat(ctx context.Context, heartbeat *Heartbeat) error {
	heartbeat.ID = primitive.NewObjectID()

	_, err := r.Heartbeats.InsertOne(ctx, heartbeat)
	return errors.Wrap(err, "could not insert heartbeat")
}

// FindHeartbeatsBetween finds the heartbeats of a user in [from, to) ordered by time
func (r *MongoDBRepository) FindHeartbeatsBetween(ctx context.Context, userID string, from time.Time, to time.Time) ([]Heartbeat, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperror.Validation("invalid user id %s", userID)
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"timestamp": 1})

	cursor, err := r.Heartbeats.Find(ctx, bson.M{
		"userId":    userObjectID,
		"timestamp": bson.M{"$gte": from, "$lt": to},
	}, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "could not query heartbeats")
	}

	heartbeats := make([]Heartbeat, 0)
	err = cursor.All(ctx, &heartbeats)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode heartbeats")
	}

	return heartbeats, nil
}

// FindLatestHeartbeat finds the most recent heartbeat of a user
func (r *MongoDBRepository) FindLatestHeartbeat(ctx context.Context, userID string) (*Heartbeat, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperror.NotFound("No heartbeat found.")
	}

	heartbeat := Heartbeat{}
	findOptions := options.FindOne()
	findOptions.SetSort(bson.M{"timestamp": -1})

	err = r.Heartbeats.FindOne(ctx, bson.M{"userId": userObjectID}, findOptions).Decode(&heartbeat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NotFound("No heartbeat found.")
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not find latest heartbeat")
	}

	return &heartbeat, nil
}

// CountHeartbeats counts the heartbeats of a user
func (r *MongoDBRepository) CountHeartbeats(ctx context.Context, userID string) (int64, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, apperror.Validation("invalid user id %s", userID)
	}

	count, err := r.Heartbeats.CountDocuments(ctx, bson.M{"userId": userObjectID})
	if err != nil {
		return 0, errors.Wrap(err, "could not count heartbeats")
	}

	return count, nil
}
