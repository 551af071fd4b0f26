package service

import (
	"context"
	"strings"
	"time"

	"PartnerWebserver/internal/domain"
)

type ProfileUsersStore interface {
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	SearchUsers(ctx context.Context, q string, limit int, excludeUsername string) ([]domain.UserSummary, error)
}

type ReviewsStore interface {
	CreateReview(ctx context.Context, r domain.Review) (domain.Review, error)
	ListReviewsFor(ctx context.Context, reviewee string) ([]domain.Review, error)
}

type ReportsStore interface {
	CreateReport(ctx context.Context, r domain.Report) (domain.Report, error)
}

type TripCountsStore interface {
	CountTripsForUser(ctx context.Context, username string) (int, error)
}

type PhotoCountsStore interface {
	CountPhotosByUser(ctx context.Context, username string) (int, error)
}

type UsersService struct {
	Users       ProfileUsersStore
	Posts       PostsStore
	Reviews     ReviewsStore
	Reports     ReportsStore
	Follows     FollowsStore
	Trips       TripsStore
	TripCounts  TripCountsStore
	PhotoCounts PhotoCountsStore
	Now         func() time.Time
}

func (s *UsersService) Search(ctx context.Context, q string, limit int, excludeUsername string) ([]domain.UserSummary, error) {
	q = strings.TrimSpace(q)
	if len(q) < 2 {
		return nil, domain.NewValidationError(map[string]string{"q": "must be at least 2 characters"})
	}
	return s.Users.SearchUsers(ctx, q, limit, excludeUsername)
}

// Profile assembles the public profile page: user summary, bio and
// interests, badges, posts, reviews received, and the follow graph.
func (s *UsersService) Profile(ctx context.Context, viewer, username string) (domain.Profile, error) {
	u, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}

	posts, err := s.Posts.ListPostsByUser(ctx, viewer, username)
	if err != nil {
		return domain.Profile{}, err
	}
	reviews, err := s.Reviews.ListReviewsFor(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}
	followers, err := s.Follows.ListFollowers(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}
	following, err := s.Follows.ListFollowing(ctx, username)
	if err != nil {
		return domain.Profile{}, err
	}

	badges, err := s.badges(ctx, username, len(reviews))
	if err != nil {
		return domain.Profile{}, err
	}

	p := domain.Profile{
		User: domain.UserSummary{
			ID:              u.ID,
			Username:        u.Username,
			AvatarPath:      u.AvatarPath,
			AvatarUpdatedAt: u.AvatarUpdatedAt,
			LastSeenAt:      u.LastSeenAt,
		},
		Bio:       u.Bio,
		Interests: u.Interests,
		Badges:    badges,
		Posts:     posts,
		Reviews:   reviews,
		Followers: followers,
		Following: following,
	}

	if viewer != "" && viewer != username {
		follows, err := s.Follows.IsFollowing(ctx, viewer, username)
		if err != nil {
			return domain.Profile{}, err
		}
		p.ViewerFollows = follows
	}
	return p, nil
}

func (s *UsersService) Review(ctx context.Context, reviewer string, r domain.Review) (domain.Review, error) {
	r.Reviewer = reviewer
	r.Comment = strings.TrimSpace(r.Comment)

	fields := map[string]string{}
	if r.Reviewee == "" {
		fields["reviewee"] = "required"
	} else if r.Reviewee == reviewer {
		fields["reviewee"] = "cannot review yourself"
	}
	if r.Rating < 1 || r.Rating > 5 {
		fields["rating"] = "must be between 1 and 5"
	}
	if len(fields) > 0 {
		return domain.Review{}, domain.NewValidationError(fields)
	}

	if _, err := s.Users.GetUserByUsername(ctx, r.Reviewee); err != nil {
		return domain.Review{}, err
	}
	trip, err := s.Trips.GetTrip(ctx, r.TripID)
	if err != nil {
		return domain.Review{}, err
	}
	if !trip.HasParticipant(reviewer) || !trip.HasParticipant(r.Reviewee) {
		return domain.Review{}, domain.NewValidationError(map[string]string{"trip_id": "both users must be on the trip"})
	}

	return s.Reviews.CreateReview(ctx, r)
}

func (s *UsersService) Report(ctx context.Context, reporter string, r domain.Report) (domain.Report, error) {
	r.Reporter = reporter
	r.Reason = strings.TrimSpace(r.Reason)
	r.Details = strings.TrimSpace(r.Details)

	fields := map[string]string{}
	if r.Reported == "" {
		fields["reported"] = "required"
	} else if r.Reported == reporter {
		fields["reported"] = "cannot report yourself"
	}
	if r.Reason == "" {
		fields["reason"] = "required"
	}
	if len(fields) > 0 {
		return domain.Report{}, domain.NewValidationError(fields)
	}

	if _, err := s.Users.GetUserByUsername(ctx, r.Reported); err != nil {
		return domain.Report{}, err
	}
	return s.Reports.CreateReport(ctx, r)
}

const (
	badgeFirstTrip    = "First Trip"
	badgeExplorer     = "Explorer"
	badgeTopReviewer  = "Top Reviewer"
	badgePhotographer = "Photographer"
)

func (s *UsersService) badges(ctx context.Context, username string, reviewsReceived int) ([]string, error) {
	trips, err := s.TripCounts.CountTripsForUser(ctx, username)
	if err != nil {
		return nil, err
	}
	photos, err := s.PhotoCounts.CountPhotosByUser(ctx, username)
	if err != nil {
		return nil, err
	}

	var out []string
	if trips >= 1 {
		out = append(out, badgeFirstTrip)
	}
	if trips >= 5 {
		out = append(out, badgeExplorer)
	}
	if reviewsReceived >= 3 {
		out = append(out, badgeTopReviewer)
	}
	if photos >= 1 {
		out = append(out, badgePhotographer)
	}
	return out, nil
}
