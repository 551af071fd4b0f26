package service

import (
	"context"
	"errors"
	"testing"

	"PartnerWebserver/internal/domain"
)

type stubProfileUsersStore struct {
	t *testing.T

	getUserByUsernameFunc func(context.Context, string) (domain.User, error)
	searchUsersFunc       func(context.Context, string, int, string) ([]domain.UserSummary, error)
}

func (s *stubProfileUsersStore) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	if s.getUserByUsernameFunc != nil {
		return s.getUserByUsernameFunc(ctx, username)
	}
	s.t.Fatalf("GetUserByUsername called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubProfileUsersStore) SearchUsers(ctx context.Context, q string, limit int, excludeUsername string) ([]domain.UserSummary, error) {
	if s.searchUsersFunc != nil {
		return s.searchUsersFunc(ctx, q, limit, excludeUsername)
	}
	s.t.Fatalf("SearchUsers called unexpectedly")
	return nil, errors.New("unexpected call")
}

type stubReviewsStore struct {
	t *testing.T

	createReviewFunc   func(context.Context, domain.Review) (domain.Review, error)
	listReviewsForFunc func(context.Context, string) ([]domain.Review, error)
}

func (s *stubReviewsStore) CreateReview(ctx context.Context, r domain.Review) (domain.Review, error) {
	if s.createReviewFunc != nil {
		return s.createReviewFunc(ctx, r)
	}
	s.t.Fatalf("CreateReview called unexpectedly")
	return domain.Review{}, errors.New("unexpected call")
}

func (s *stubReviewsStore) ListReviewsFor(ctx context.Context, reviewee string) ([]domain.Review, error) {
	if s.listReviewsForFunc != nil {
		return s.listReviewsForFunc(ctx, reviewee)
	}
	s.t.Fatalf("ListReviewsFor called unexpectedly")
	return nil, errors.New("unexpected call")
}

type stubReportsStore struct {
	t *testing.T

	createReportFunc func(context.Context, domain.Report) (domain.Report, error)
}

func (s *stubReportsStore) CreateReport(ctx context.Context, r domain.Report) (domain.Report, error) {
	if s.createReportFunc != nil {
		return s.createReportFunc(ctx, r)
	}
	s.t.Fatalf("CreateReport called unexpectedly")
	return domain.Report{}, errors.New("unexpected call")
}

type stubFollowsStore struct {
	t *testing.T

	followFunc        func(context.Context, string, string) (bool, error)
	unfollowFunc      func(context.Context, string, string) error
	isFollowingFunc   func(context.Context, string, string) (bool, error)
	listFollowersFunc func(context.Context, string) ([]string, error)
	listFollowingFunc func(context.Context, string) ([]string, error)
}

func (s *stubFollowsStore) Follow(ctx context.Context, follower, followee string) (bool, error) {
	if s.followFunc != nil {
		return s.followFunc(ctx, follower, followee)
	}
	s.t.Fatalf("Follow called unexpectedly")
	return false, errors.New("unexpected call")
}

func (s *stubFollowsStore) Unfollow(ctx context.Context, follower, followee string) error {
	if s.unfollowFunc != nil {
		return s.unfollowFunc(ctx, follower, followee)
	}
	s.t.Fatalf("Unfollow called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubFollowsStore) IsFollowing(ctx context.Context, follower, followee string) (bool, error) {
	if s.isFollowingFunc != nil {
		return s.isFollowingFunc(ctx, follower, followee)
	}
	s.t.Fatalf("IsFollowing called unexpectedly")
	return false, errors.New("unexpected call")
}

func (s *stubFollowsStore) ListFollowers(ctx context.Context, username string) ([]string, error) {
	if s.listFollowersFunc != nil {
		return s.listFollowersFunc(ctx, username)
	}
	s.t.Fatalf("ListFollowers called unexpectedly")
	return nil, errors.New("unexpected call")
}

func (s *stubFollowsStore) ListFollowing(ctx context.Context, username string) ([]string, error) {
	if s.listFollowingFunc != nil {
		return s.listFollowingFunc(ctx, username)
	}
	s.t.Fatalf("ListFollowing called unexpectedly")
	return nil, errors.New("unexpected call")
}

type countFunc func(context.Context, string) (int, error)

type stubTripCounts struct{ f countFunc }

func (s stubTripCounts) CountTripsForUser(ctx context.Context, username string) (int, error) {
	return s.f(ctx, username)
}

type stubPhotoCounts struct{ f countFunc }

func (s stubPhotoCounts) CountPhotosByUser(ctx context.Context, username string) (int, error) {
	return s.f(ctx, username)
}

func TestUsersServiceSearchTooShort(t *testing.T) {
	svc := &UsersService{Users: &stubProfileUsersStore{t: t}}

	_, err := svc.Search(context.Background(), " a ", 20, "alice")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUsersServiceProfileBadges(t *testing.T) {
	for _, tc := range []struct {
		name    string
		trips   int
		photos  int
		reviews int
		want    []string
	}{
		{"newcomer", 0, 0, 0, nil},
		{"first trip", 1, 0, 0, []string{"First Trip"}},
		{"explorer with camera", 5, 2, 0, []string{"First Trip", "Explorer", "Photographer"}},
		{"well reviewed", 2, 0, 3, []string{"First Trip", "Top Reviewer"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			reviews := make([]domain.Review, tc.reviews)

			svc := &UsersService{
				Users: &stubProfileUsersStore{t: t, getUserByUsernameFunc: func(_ context.Context, username string) (domain.User, error) {
					return domain.User{ID: "user-1", Username: username}, nil
				}},
				Posts: &stubPostsStore{t: t, listPostsByUserFunc: func(_ context.Context, _, _ string) ([]domain.Post, error) {
					return nil, nil
				}},
				Reviews: &stubReviewsStore{t: t, listReviewsForFunc: func(_ context.Context, _ string) ([]domain.Review, error) {
					return reviews, nil
				}},
				Follows: &stubFollowsStore{
					t:                 t,
					listFollowersFunc: func(_ context.Context, _ string) ([]string, error) { return nil, nil },
					listFollowingFunc: func(_ context.Context, _ string) ([]string, error) { return nil, nil },
				},
				TripCounts:  stubTripCounts{func(_ context.Context, _ string) (int, error) { return tc.trips, nil }},
				PhotoCounts: stubPhotoCounts{func(_ context.Context, _ string) (int, error) { return tc.photos, nil }},
			}

			p, err := svc.Profile(context.Background(), "", "bob")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(p.Badges) != len(tc.want) {
				t.Fatalf("expected badges %v, got %v", tc.want, p.Badges)
			}
			for i := range tc.want {
				if p.Badges[i] != tc.want[i] {
					t.Fatalf("expected badges %v, got %v", tc.want, p.Badges)
				}
			}
		})
	}
}

func TestUsersServiceProfileViewerFollows(t *testing.T) {
	svc := &UsersService{
		Users: &stubProfileUsersStore{t: t, getUserByUsernameFunc: func(_ context.Context, username string) (domain.User, error) {
			return domain.User{ID: "user-1", Username: username}, nil
		}},
		Posts: &stubPostsStore{t: t, listPostsByUserFunc: func(_ context.Context, viewer, _ string) ([]domain.Post, error) {
			if viewer != "alice" {
				t.Fatalf("unexpected viewer: %s", viewer)
			}
			return nil, nil
		}},
		Reviews: &stubReviewsStore{t: t, listReviewsForFunc: func(_ context.Context, _ string) ([]domain.Review, error) {
			return nil, nil
		}},
		Follows: &stubFollowsStore{
			t:                 t,
			listFollowersFunc: func(_ context.Context, _ string) ([]string, error) { return []string{"alice"}, nil },
			listFollowingFunc: func(_ context.Context, _ string) ([]string, error) { return nil, nil },
			isFollowingFunc: func(_ context.Context, follower, followee string) (bool, error) {
				if follower != "alice" || followee != "bob" {
					t.Fatalf("unexpected follow check: %s %s", follower, followee)
				}
				return true, nil
			},
		},
		TripCounts:  stubTripCounts{func(_ context.Context, _ string) (int, error) { return 0, nil }},
		PhotoCounts: stubPhotoCounts{func(_ context.Context, _ string) (int, error) { return 0, nil }},
	}

	p, err := svc.Profile(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.ViewerFollows {
		t.Fatalf("expected viewer follows flag")
	}
}

func TestUsersServiceReviewRequiresSharedTrip(t *testing.T) {
	svc := &UsersService{
		Users: &stubProfileUsersStore{t: t, getUserByUsernameFunc: func(_ context.Context, username string) (domain.User, error) {
			return domain.User{Username: username}, nil
		}},
		Trips: &stubTripsStore{t: t, getTripFunc: func(_ context.Context, id string) (domain.Trip, error) {
			return domain.Trip{ID: id, Creator: "alice", Participants: []string{"alice"}}, nil
		}},
		Reviews: &stubReviewsStore{t: t},
	}

	_, err := svc.Review(context.Background(), "alice", domain.Review{
		Reviewee: "bob",
		TripID:   "trip-1",
		Rating:   5,
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["trip_id"]; !ok {
		t.Fatalf("expected trip_id error, got %v", verr.Fields)
	}
}

func TestUsersServiceReview(t *testing.T) {
	svc := &UsersService{
		Users: &stubProfileUsersStore{t: t, getUserByUsernameFunc: func(_ context.Context, username string) (domain.User, error) {
			return domain.User{Username: username}, nil
		}},
		Trips: &stubTripsStore{t: t, getTripFunc: func(_ context.Context, id string) (domain.Trip, error) {
			return domain.Trip{ID: id, Creator: "alice", Participants: []string{"alice", "bob"}}, nil
		}},
		Reviews: &stubReviewsStore{t: t, createReviewFunc: func(_ context.Context, r domain.Review) (domain.Review, error) {
			if r.Reviewer != "alice" || r.Reviewee != "bob" || r.Rating != 4 {
				t.Fatalf("unexpected review: %+v", r)
			}
			r.ID = "rev-1"
			return r, nil
		}},
	}

	r, err := svc.Review(context.Background(), "alice", domain.Review{
		Reviewee: "bob",
		TripID:   "trip-1",
		Rating:   4,
		Comment:  " great travel partner ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID != "rev-1" || r.Comment != "great travel partner" {
		t.Fatalf("unexpected review: %+v", r)
	}
}

func TestUsersServiceReportSelf(t *testing.T) {
	svc := &UsersService{
		Users:   &stubProfileUsersStore{t: t},
		Reports: &stubReportsStore{t: t},
	}

	_, err := svc.Report(context.Background(), "alice", domain.Report{Reported: "alice", Reason: "spam"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
