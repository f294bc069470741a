package app

import (
	"context"
	"fmt"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/tracktivity-app/tracktivity-backend/pkg/activity"
	"github.com/tracktivity-app/tracktivity-backend/pkg/analytics"
	"github.com/tracktivity-app/tracktivity-backend/pkg/environment"
	"github.com/tracktivity-app/tracktivity-backend/pkg/events"
	"github.com/tracktivity-app/tracktivity-backend/pkg/locking"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"github.com/tracktivity-app/tracktivity-backend/pkg/metrics"
	"github.com/tracktivity-app/tracktivity-backend/pkg/tracking"
	"github.com/tracktivity-app/tracktivity-backend/pkg/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"time"
)

// MemoryDatabaseURL selects the in-memory repositories instead of MongoDB
const MemoryDatabaseURL = "memory"

const connectTimeout = 10 * time.Second

// ActivityRepository is an activity store whose writes can be observed
type ActivityRepository interface {
	activity.RepositoryInterface
	activity.Observable
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// Dependencies are the stores and infrastructure clients the handlers are built from
type Dependencies struct {
	Users    users.UserRepositoryInterface
	Activity ActivityRepository
	Tracking tracking.RepositoryInterface
	Locker   locking.LockerInterface
	Cache    analytics.CacheInterface
	Metrics  *metrics.Metrics

	indexers []indexer
	closers  []func(ctx context.Context) error
}

// NewMemoryDependencies builds dependencies that live only in the process
func NewMemoryDependencies(env *environment.Environment) (*Dependencies, error) {
	cache, err := analytics.NewMemoryCache(env.AnalyticsCacheSize, env.AnalyticsCacheTTL())
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		Users:    &users.MockUserRepository{},
		Activity: activity.NewMockRepository(),
		Tracking: &tracking.MockRepository{},
		Locker:   locking.NewLockerMemory(),
		Cache:    cache,
		Metrics:  metrics.New(),
	}, nil
}

// Connect builds the dependencies described by env. MongoDB is used unless DATABASE_URL is "memory",
// Redis backs locks and the analytics cache when REDIS is set, and activity events go to NATS when
// NATS_URL is set.
func Connect(ctx context.Context, env *environment.Environment, log logger.Interface) (*Dependencies, error) {
	deps, err := NewMemoryDependencies(env)
	if err != nil {
		return nil, err
	}

	if env.DatabaseURL != MemoryDatabaseURL {
		err = deps.connectMongo(ctx, env, log)
		if err != nil {
			return nil, err
		}
	} else {
		log.Info("using in-memory repositories")
	}

	if env.Redis != "" {
		err = deps.connectRedis(ctx, env, log)
		if err != nil {
			_ = deps.Close(ctx)
			return nil, err
		}
	}

	if env.NatsURL != "" {
		publisher, err := events.NewNATSPublisher(env.NatsURL, log)
		if err != nil {
			_ = deps.Close(ctx)
			return nil, err
		}

		deps.Activity.Subscribe(publisher)
		deps.closers = append(deps.closers, func(context.Context) error {
			return publisher.Close()
		})
		log.Info(fmt.Sprintf("publishing activity events to %s", env.NatsURL))
	}

	return deps, nil
}

func (d *Dependencies) connectMongo(ctx context.Context, env *environment.Environment, log logger.Interface) error {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(env.DatabaseURL))
	if err != nil {
		return errors.Wrap(err, "could not connect to database")
	}

	err = client.Ping(connectCtx, readpref.Primary())
	if err != nil {
		_ = client.Disconnect(ctx)
		return errors.Wrap(err, "could not ping database")
	}

	log.Info("database connected")

	db := client.Database(env.Database)

	userRepository := &users.UserRepository{DB: db.Collection("Users"), Logger: log}
	activityRepository := &activity.MongoDBRepository{
		WorkLogs:     db.Collection("WorkLogs"),
		IdleEpisodes: db.Collection("IdleEpisodes"),
		Revisions:    db.Collection("ActivityRevisions"),
		Logger:       log,
	}
	trackingRepository := &tracking.MongoDBRepository{
		Sessions:   db.Collection("Sessions"),
		Heartbeats: db.Collection("Heartbeats"),
		Logger:     log,
	}

	d.Users = userRepository
	d.Activity = activityRepository
	d.Tracking = trackingRepository
	d.indexers = append(d.indexers, userRepository, activityRepository, trackingRepository)
	d.closers = append(d.closers, client.Disconnect)

	return nil
}

func (d *Dependencies) connectRedis(ctx context.Context, env *environment.Environment, log logger.Interface) error {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     env.Redis,
		Password: env.RedisPassword,
	})

	err := redisClient.Ping(ctx).Err()
	if err != nil {
		_ = redisClient.Close()
		return errors.Wrap(err, "could not connect to redis")
	}

	log.Info("redis connected")

	d.Locker = locking.NewLockerRedis(redisClient)
	d.Cache = analytics.NewRedisCache(redisClient, env.AnalyticsCacheTTL())
	d.closers = append(d.closers, func(context.Context) error {
		return redisClient.Close()
	})

	return nil
}

// EnsureIndexes creates the database indexes of every MongoDB repository
func (d *Dependencies) EnsureIndexes(ctx context.Context) error {
	for _, i := range d.indexers {
		err := i.EnsureIndexes(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}

// Close releases all connections in reverse order of creation
func (d *Dependencies) Close(ctx context.Context) error {
	var firstErr error
	for i := len(d.closers) - 1; i >= 0; i-- {
		err := d.closers[i](ctx)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	d.closers = nil
	return firstErr
}
