package activity

import (
	"context"
	"github.com/pkg/errors"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"sync"
	"time"
)

// RepositoryInterface is the interface of the activity store
type RepositoryInterface interface {
	// UpsertWorkLog stores entry, replacing an earlier entry of the same user and date. created reports
	// whether no entry existed before.
	UpsertWorkLog(ctx context.Context, entry *WorkLogEntry) (created bool, err error)
	FindWorkLog(ctx context.Context, userID string, day string) (*WorkLogEntry, error)
	// FindWorkLogsBetween returns the entries with from <= date <= to ordered by date
	FindWorkLogsBetween(ctx context.Context, userID string, from string, to string) ([]WorkLogEntry, error)
	AddIdleEpisode(ctx context.Context, episode *IdleEpisode) error
	// FindIdleEpisodesBetween returns the episodes intersecting [from, to) ordered by start time
	FindIdleEpisodesBetween(ctx context.Context, userID string, from time.Time, to time.Time) ([]IdleEpisode, error)
	// Revision returns the activity revision of the user, it grows with every write
	Revision(ctx context.Context, userID string) (int64, error)
}

// Event kinds
const (
	EventWorkLogCreated     = "work_log.created"
	EventWorkLogUpdated     = "work_log.updated"
	EventIdleEpisodeCreated = "idle_episode.created"
)

// Event describes a write to the activity store
type Event struct {
	Kind        string
	UserID      string
	Revision    int64
	WorkLog     *WorkLogEntry
	IdleEpisode *IdleEpisode
}

// Observer is an Observer
type Observer interface {
	OnNotify(event *Event)
}

// Observable is an Observable
type Observable interface {
	Subscribe(o Observer)
	Unsubscribe(o Observer)
	Publish(event *Event)
}

// subscribers implements Observable for the repositories
type subscribers struct {
	mutex     sync.RWMutex
	observers []Observer
}

// Subscribe is useful for listening to activity changes
func (s *subscribers) Subscribe(o Observer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.observers = append(s.observers, o)
}

// Unsubscribe unsubscribes from a subscription
func (s *subscribers) Unsubscribe(o Observer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, subscriber := range s.observers {
		if subscriber == o {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// Publish publishes an event to all subscribers
func (s *subscribers) Publish(event *Event) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, subscriber := range s.observers {
		go subscriber.OnNotify(event)
	}
}

// MongoDBRepository stores activity in MongoDB
type MongoDBRepository struct {
	WorkLogs     *mongo.Collection
	IdleEpisodes *mongo.Collection
	Revisions    *mongo.Collection
	Logger       logger.Interface
	subscribers
}

// EnsureIndexes creates the indexes the queries of the repository rely on
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.WorkLogs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "could not create work log index")
	}

	_, err = r.IdleEpisodes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "startTime", Value: 1}, {Key: "endTime", Value: 1}},
	})
	return errors.Wrap(err, "could not create idle episode index")
}

// UpsertWorkLog stores entry, last writer wins
func (r *MongoDBRepository) UpsertWorkLog(ctx context.Context, entry *WorkLogEntry) (bool, error) {
	timestamp := time.Now()
	entry.LastModifiedAt = timestamp

	update := bson.M{
		"$set": bson.M{
			"totalTrackedMinutes": entry.TotalTrackedMinutes,
			"activeMinutes":       entry.ActiveMinutes,
			"deepWorkMinutes":     entry.DeepWorkMinutes,
			"tasksCompleted":      entry.TasksCompleted,
			"tasksStarted":        entry.TasksStarted,
			"contextSwitches":     entry.ContextSwitches,
			"breaksTaken":         entry.BreaksTaken,
			"lateNightMinutes":    entry.LateNightMinutes,
			"sessionStartedAt":    entry.SessionStartedAt,
			"sessionEndedAt":      entry.SessionEndedAt,
			"notes":               entry.Notes,
			"lastModifiedAt":      timestamp,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"createdAt": timestamp,
		},
	}

	result := r.WorkLogs.FindOneAndUpdate(ctx,
		bson.M{"userId": entry.UserID, "date": entry.Date},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before),
	)

	created := false
	previous := WorkLogEntry{}
	err := result.Decode(&previous)
	if errors.Is(err, mongo.ErrNoDocuments) {
		created = true
	} else if err != nil {
		return false, errors.Wrap(err, "could not upsert work log")
	}

	stored := r.WorkLogs.FindOne(ctx, bson.M{"userId": entry.UserID, "date": entry.Date})
	err = stored.Decode(entry)
	if err != nil {
		return false, errors.Wrap(err, "could not read back work log")
	}

	revision, err := r.bumpRevision(ctx, entry.UserID)
	if err != nil {
		return false, err
	}

	kind := EventWorkLogUpdated
	if created {
		kind = EventWorkLogCreated
	}
	r.Publish(&Event{Kind: kind, UserID: entry.UserID.Hex(), Revision: revision, WorkLog: entry})

	return created, nil
}

// FindWorkLog finds the entry of a user for a day
func (r *MongoDBRepository) FindWorkLog(ctx context.Context, userID string, day string) (*WorkLogEntry, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperror.NotFound("No work log for %s.", day)
	}

	entry := WorkLogEntry{}
	err = r.WorkLogs.FindOne(ctx, bson.M{"userId": userObjectID, "date": day}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.NotFound("No work log for %s.", day)
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not find work log")
	}

	return &entry, nil
}

// FindWorkLogsBetween finds the entries of a user between two days, both inclusive
func (r *MongoDBRepository) FindWorkLogsBetween(ctx context.Context, userID string, from string, to string) ([]WorkLogEntry, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperror.Validation("invalid user id %s", userID)
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"date": 1})

	cursor, err := r.WorkLogs.Find(ctx, bson.M{
		"userId": userObjectID,
		"date":   bson.M{"$gte": from, "$lte": to},
	}, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "could not query work logs")
	}

	entries := make([]WorkLogEntry, 0)
	err = cursor.All(ctx, &entries)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode work logs")
	}

	return entries, nil
}

// AddIdleEpisode appends an idle episode
func (r *MongoDBRepository) AddIdleEpisode(ctx context.Context, episode *IdleEpisode) error {
	episode.ID = primitive.NewObjectID()
	episode.CreatedAt = time.Now()

	_, err := r.IdleEpisodes.InsertOne(ctx, episode)
	if err != nil {
		return errors.Wrap(err, "could not insert idle episode")
	}

	revision, err := r.bumpRevision(ctx, episode.UserID)
	if err != nil {
		return err
	}

	r.Publish(&Event{Kind: EventIdleEpisodeCreated, UserID: episode.UserID.Hex(), Revision: revision, IdleEpisode: episode})

	return nil
}

// FindIdleEpisodesBetween finds the episodes of a user that intersect [from, to)
func (r *MongoDBRepository) FindIdleEpisodesBetween(ctx context.Context, userID string, from time.Time, to time.Time) ([]IdleEpisode, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperror.Validation("invalid user id %s", userID)
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"startTime": 1})

	cursor, err := r.IdleEpisodes.Find(ctx, bson.M{
		"userId":    userObjectID,
		"startTime": bson.M{"$lt": to},
		"endTime":   bson.M{"$gt": from},
	}, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "could not query idle episodes")
	}

	episodes := make([]IdleEpisode, 0)
	err = cursor.All(ctx, &episodes)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode idle episodes")
	}

	return episodes, nil
}

// Revision returns the activity revision of a user, 0 when nothing was written yet
func (r *MongoDBRepository) Revision(ctx context.Context, userID string) (int64, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, apperror.Validation("invalid user id %s", userID)
	}

	document := struct {
		Revision int64 `bson:"revision"`
	}{}

	err = r.Revisions.FindOne(ctx, bson.M{"_id": userObjectID}).Decode(&document)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "could not read activity revision")
	}

	return document.Revision, nil
}

func (r *MongoDBRepository) bumpRevision(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	document := struct {
		Revision int64 `bson:"revision"`
	}{}

	err := r.Revisions.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{"revision": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&document)
	if err != nil {
		return 0, errors.Wrap(err, "could not bump activity revision")
	}

	return document.Revision, nil
}
