package team

import (
	"context"
	"github.com/tracktivity-app/tracktivity-backend/pkg/apperror"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"github.com/tracktivity-app/tracktivity-backend/pkg/tracking"
	"github.com/tracktivity-app/tracktivity-backend/pkg/users"
	"golang.org/x/sync/errgroup"
	"time"
)

var now = time.Now

// Service resolves the presence of a user's team
type Service struct {
	userRepository     users.UserRepositoryInterface
	trackingRepository tracking.RepositoryInterface
	logger             logger.Interface
}

// NewService constructs a team Service
func NewService(userRepository users.UserRepositoryInterface, trackingRepository tracking.RepositoryInterface,
	logger logger.Interface) *Service {
	return &Service{
		userRepository:     userRepository,
		trackingRepository: trackingRepository,
		logger:             logger,
	}
}

// Presence returns the presence of every member of the caller's team, ordered by username.
// A user without team only sees themselves.
func (s *Service) Presence(ctx context.Context, userID string) ([]MemberPresence, error) {
	user, err := users.Current(ctx, s.userRepository, userID)
	if err != nil {
		return nil, err
	}

	members := []*users.User{user}
	if user.TeamID != "" {
		members, err = s.userRepository.FindByTeamID(ctx, user.TeamID)
		if err != nil {
			return nil, err
		}
	}

	at := now()
	presences := make([]MemberPresence, len(members))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, member := range members {
		i, member := i, member

		group.Go(func() error {
			latest, err := s.trackingRepository.FindLatestHeartbeat(groupCtx, member.ID.Hex())
			if err != nil && !apperror.IsNotFound(err) {
				return err
			}

			presences[i] = MemberPresence{
				UserID:   member.ID.Hex(),
				Name:     member.DisplayName(),
				Email:    member.Email,
				Status:   StatusOf(latest, at),
				TimeZone: member.TimeZone,
			}
			return nil
		})
	}

	err = group.Wait()
	if err != nil {
		return nil, err
	}

	return presences, nil
}
