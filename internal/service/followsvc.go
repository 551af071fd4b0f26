package service

import (
	"context"
	"fmt"
	"log/slog"

	"PartnerWebserver/internal/domain"
)

type FollowsStore interface {
	Follow(ctx context.Context, follower, followee string) (bool, error)
	Unfollow(ctx context.Context, follower, followee string) error
	IsFollowing(ctx context.Context, follower, followee string) (bool, error)
	ListFollowers(ctx context.Context, username string) ([]string, error)
	ListFollowing(ctx context.Context, username string) ([]string, error)
}

type FollowUsersStore interface {
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
}

type FollowService struct {
	Follows  FollowsStore
	Users    FollowUsersStore
	Notifier Notifier
	Logger   *slog.Logger
}

// Follow is idempotent; only a genuinely new edge notifies the followee.
func (s *FollowService) Follow(ctx context.Context, follower, followee string) error {
	if follower == followee {
		return domain.NewValidationError(map[string]string{"username": "cannot follow yourself"})
	}
	if _, err := s.Users.GetUserByUsername(ctx, followee); err != nil {
		return err
	}

	created, err := s.Follows.Follow(ctx, follower, followee)
	if err != nil {
		return err
	}
	if created && s.Notifier != nil {
		msg := fmt.Sprintf("%s started following you.", follower)
		if err := s.Notifier.Notify(ctx, followee, follower, domain.NotificationFollow, msg, domain.FollowPayload{
			Follower: follower,
		}); err != nil {
			logger := s.Logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Error("follow notification failed", "err", err, "followee", followee)
		}
	}
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, follower, followee string) error {
	if _, err := s.Users.GetUserByUsername(ctx, followee); err != nil {
		return err
	}
	return s.Follows.Unfollow(ctx, follower, followee)
}

func (s *FollowService) Lists(ctx context.Context, username string) (domain.FollowLists, error) {
	if _, err := s.Users.GetUserByUsername(ctx, username); err != nil {
		return domain.FollowLists{}, err
	}
	followers, err := s.Follows.ListFollowers(ctx, username)
	if err != nil {
		return domain.FollowLists{}, err
	}
	following, err := s.Follows.ListFollowing(ctx, username)
	if err != nil {
		return domain.FollowLists{}, err
	}
	return domain.FollowLists{Followers: followers, Following: following}, nil
}
