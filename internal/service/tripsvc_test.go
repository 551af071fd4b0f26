package service

import (
	"context"
	"errors"
	"testing"

	"PartnerWebserver/internal/domain"
)

type stubTripPhotosStore struct {
	t *testing.T

	addPhotoFunc   func(context.Context, string, string, string) (domain.TripPhoto, error)
	listPhotosFunc func(context.Context, string) ([]domain.TripPhoto, error)
}

func (s *stubTripPhotosStore) AddPhoto(ctx context.Context, tripID, username, filename string) (domain.TripPhoto, error) {
	if s.addPhotoFunc != nil {
		return s.addPhotoFunc(ctx, tripID, username, filename)
	}
	s.t.Fatalf("AddPhoto called unexpectedly")
	return domain.TripPhoto{}, errors.New("unexpected call")
}

func (s *stubTripPhotosStore) ListPhotos(ctx context.Context, tripID string) ([]domain.TripPhoto, error) {
	if s.listPhotosFunc != nil {
		return s.listPhotosFunc(ctx, tripID)
	}
	s.t.Fatalf("ListPhotos called unexpectedly")
	return nil, errors.New("unexpected call")
}

func TestTripServiceCreate(t *testing.T) {
	trips := &stubTripsStore{
		t: t,
		createTripFunc: func(_ context.Context, trip domain.Trip) (domain.Trip, error) {
			if trip.Creator != "alice" || trip.Destination != "Lisbon" {
				t.Fatalf("unexpected trip: %+v", trip)
			}
			if len(trip.Participants) != 1 || trip.Participants[0] != "alice" {
				t.Fatalf("creator must start as sole participant: %v", trip.Participants)
			}
			trip.ID = "trip-1"
			return trip, nil
		},
	}

	svc := &TripService{Trips: trips, Photos: &stubTripPhotosStore{t: t}}

	trip, err := svc.Create(context.Background(), "alice", TripInput{
		Destination: " Lisbon ",
		StartDate:   "2025-07-01",
		EndDate:     "2025-07-10",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.ID != "trip-1" {
		t.Fatalf("unexpected trip: %+v", trip)
	}
}

func TestTripServiceCreateValidation(t *testing.T) {
	svc := &TripService{Trips: &stubTripsStore{t: t}, Photos: &stubTripPhotosStore{t: t}}

	for _, tc := range []struct {
		name  string
		in    TripInput
		field string
	}{
		{"missing destination", TripInput{StartDate: "2025-07-01", EndDate: "2025-07-10"}, "destination"},
		{"bad start date", TripInput{Destination: "Lisbon", StartDate: "July 1", EndDate: "2025-07-10"}, "start_date"},
		{"end before start", TripInput{Destination: "Lisbon", StartDate: "2025-07-10", EndDate: "2025-07-01"}, "end_date"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "alice", tc.in)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Fatalf("expected %s error, got %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestTripServiceUpdateOnlyCreator(t *testing.T) {
	trips := &stubTripsStore{
		t: t,
		getTripFunc: func(_ context.Context, id string) (domain.Trip, error) {
			return domain.Trip{ID: id, Creator: "alice", Destination: "Lisbon"}, nil
		},
	}

	svc := &TripService{Trips: trips, Photos: &stubTripPhotosStore{t: t}}

	_, err := svc.Update(context.Background(), "mallory", "trip-1", TripInput{
		Destination: "Porto",
		StartDate:   "2025-07-01",
		EndDate:     "2025-07-10",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestTripServiceDeleteOnlyCreator(t *testing.T) {
	trips := &stubTripsStore{
		t: t,
		getTripFunc: func(_ context.Context, id string) (domain.Trip, error) {
			return domain.Trip{ID: id, Creator: "alice"}, nil
		},
	}

	svc := &TripService{Trips: trips, Photos: &stubTripPhotosStore{t: t}}

	if err := svc.Delete(context.Background(), "mallory", "trip-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestTripServiceJoinNotifiesCreator(t *testing.T) {
	trip := domain.Trip{ID: "trip-1", Creator: "alice", Destination: "Lisbon", Participants: []string{"alice"}}

	trips := &stubTripsStore{
		t: t,
		getTripFunc: func(_ context.Context, _ string) (domain.Trip, error) {
			return trip, nil
		},
		addParticipantFunc: func(_ context.Context, tripID, username string) (bool, error) {
			if tripID != "trip-1" || username != "bob" {
				t.Fatalf("unexpected participant add: %s %s", tripID, username)
			}
			return true, nil
		},
	}
	notifier := &recordingNotifier{}

	svc := &TripService{Trips: trips, Photos: &stubTripPhotosStore{t: t}, Notifier: notifier}

	if _, err := svc.Join(context.Background(), "bob", "trip-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.target != "alice" || n.actor != "bob" || n.typ != domain.NotificationTripJoin {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestTripServiceJoinAgainStaysQuiet(t *testing.T) {
	trips := &stubTripsStore{
		t: t,
		getTripFunc: func(_ context.Context, id string) (domain.Trip, error) {
			return domain.Trip{ID: id, Creator: "alice", Participants: []string{"alice", "bob"}}, nil
		},
		addParticipantFunc: func(_ context.Context, _, _ string) (bool, error) {
			return false, nil
		},
	}
	notifier := &recordingNotifier{}

	svc := &TripService{Trips: trips, Photos: &stubTripPhotosStore{t: t}, Notifier: notifier}

	if _, err := svc.Join(context.Background(), "bob", "trip-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("rejoin must not notify: %+v", notifier.sent)
	}
}

func TestTripServiceAddPhotoParticipantsOnly(t *testing.T) {
	trips := &stubTripsStore{
		t: t,
		getTripFunc: func(_ context.Context, id string) (domain.Trip, error) {
			return domain.Trip{ID: id, Creator: "alice", Participants: []string{"alice"}}, nil
		},
	}

	svc := &TripService{Trips: trips, Photos: &stubTripPhotosStore{t: t}}

	_, err := svc.AddPhoto(context.Background(), "mallory", "trip-1", "photo.jpg")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
