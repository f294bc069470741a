package tracking

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"github.com/tracktivity-app/tracktivity-backend/pkg/date"
	"github.com/tracktivity-app/tracktivity-backend/pkg/locking"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

var now = time.Now

// sessionLockTTL bounds how long a crashed instance can block session starts of a user
const sessionLockTTL = 10 * time.Second

// Service manages work sessions and heartbeats
type Service struct {
	repository RepositoryInterface
	locker     locking.LockerInterface
	logger     logger.Interface
}

// NewService builds a new Service
func NewService(repository RepositoryInterface, locker locking.LockerInterface, logger logger.Interface) *Service {
	return &Service{repository: repository, locker: locker, logger: logger}
}

// StartSession starts a new ACTIVE session, a ConflictError is returned if the user already has one
func (s *Service) StartSession(ctx context.Context, userID string, projectName *string) (*Session, error) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperror.Validation("invalid user id %s", userID)
	}

	lock, err := s.locker.Acquire(ctx, fmt.Sprintf("session-%s", userID), sessionLockTTL)
	if err != nil {
		return nil, errors.Wrap(err, "error acquiring session lock")
	}

	defer func(lock locking.LockInterface, ctx context.Context) {
		err := lock.Release(ctx)
		if err != nil {
			s.logger.Error("error releasing lock", errors.Wrap(err, "error releasing lock"))
		}
	}(lock, ctx)

	_, err = s.repository.FindActiveSession(ctx, userID)
	if err == nil {
		return nil, apperror.Conflict("An active session already exists.")
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	session := Session{
		UserID:      userObjectID,
		StartTime:   now().UTC(),
		Status:      StatusActive,
		ProjectName: projectName,
	}

	err = s.repository.AddSession(ctx, &session)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// EndSession completes an ACTIVE session, the end defaults to now
func (s *Service) EndSession(ctx context.Context, userID string, request SessionEnd) (*Session, error) {
	session, err := s.repository.FindSessionByID(ctx, request.SessionID, userID)
	if err != nil {
		return nil, err
	}

	if session.Status != StatusActive {
		return nil, apperror.Validation("Session is not active.")
	}

	end := now().UTC()
	if request.EndTime != nil {
		end = request.EndTime.UTC()
	}

	if end.Before(session.StartTime) {
		return nil, apperror.Validation("end_time cannot be before start_time.")
	}

	session.EndTime = &end
	session.Status = StatusCompleted

	err = s.repository.UpdateSession(ctx, session)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// RecordHeartbeat stores a heartbeat for an ACTIVE session, the timestamp defaults to now
func (s *Service) RecordHeartbeat(ctx context.Context, userID string, request HeartbeatCreate) (*Heartbeat, error) {
	session, err := s.repository.FindSessionByID(ctx, request.SessionID, userID)
	if err != nil {
		return nil, err
	}

	if session.Status != StatusActive {
		return nil, apperror.Validation("Session is not active.")
	}

	timestamp := now().UTC()
	if request.Timestamp != nil {
		timestamp = request.Timestamp.UTC()

		accepted := date.Timespan{Start: session.StartTime, End: now().UTC()}
		if !accepted.Includes(timestamp) {
			return nil, apperror.Validation("timestamp must lie between the session start and now.")
		}
	}

	heartbeat := Heartbeat{
		SessionID: session.ID,
		UserID:    session.UserID,
		Timestamp: timestamp,
		IsIdle:    request.IsIdle,
		MetaData:  request.MetaData,
	}

	err = s.repository.AddHeartbeat(ctx, &heartbeat)
	if err != nil {
		return nil, err
	}

	return &heartbeat, nil
}
