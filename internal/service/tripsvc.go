package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"PartnerWebserver/internal/domain"
)

type TripsStore interface {
	CreateTrip(ctx context.Context, t domain.Trip) (domain.Trip, error)
	GetTrip(ctx context.Context, id string) (domain.Trip, error)
	UpdateTrip(ctx context.Context, t domain.Trip) (domain.Trip, error)
	DeleteTrip(ctx context.Context, id string) error
	AddParticipant(ctx context.Context, tripID, username string) (bool, error)
	ListTrips(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error)
	ListTripsForUser(ctx context.Context, username string) ([]domain.Trip, error)
}

type TripPhotosStore interface {
	AddPhoto(ctx context.Context, tripID, username, filename string) (domain.TripPhoto, error)
	ListPhotos(ctx context.Context, tripID string) ([]domain.TripPhoto, error)
}

type TripService struct {
	Trips    TripsStore
	Photos   TripPhotosStore
	Notifier Notifier
	Logger   *slog.Logger
}

type TripInput struct {
	Destination string
	StartDate   string
	EndDate     string
	Description string
	Preferences string
}

func (s *TripService) Create(ctx context.Context, creator string, in TripInput) (domain.Trip, error) {
	if err := validateTripInput(&in); err != nil {
		return domain.Trip{}, err
	}

	return s.Trips.CreateTrip(ctx, domain.Trip{
		Creator:      creator,
		Destination:  in.Destination,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Description:  in.Description,
		Preferences:  in.Preferences,
		Participants: []string{creator},
	})
}

func (s *TripService) Get(ctx context.Context, id string) (domain.Trip, error) {
	return s.Trips.GetTrip(ctx, id)
}

func (s *TripService) List(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error) {
	return s.Trips.ListTrips(ctx, f)
}

func (s *TripService) ListForUser(ctx context.Context, username string) ([]domain.Trip, error) {
	return s.Trips.ListTripsForUser(ctx, username)
}

func (s *TripService) Update(ctx context.Context, actor, tripID string, in TripInput) (domain.Trip, error) {
	trip, err := s.Trips.GetTrip(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.Creator != actor {
		return domain.Trip{}, domain.ErrForbidden
	}
	if err := validateTripInput(&in); err != nil {
		return domain.Trip{}, err
	}

	trip.Destination = in.Destination
	trip.StartDate = in.StartDate
	trip.EndDate = in.EndDate
	trip.Description = in.Description
	trip.Preferences = in.Preferences
	return s.Trips.UpdateTrip(ctx, trip)
}

func (s *TripService) Delete(ctx context.Context, actor, tripID string) error {
	trip, err := s.Trips.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.Creator != actor {
		return domain.ErrForbidden
	}
	return s.Trips.DeleteTrip(ctx, tripID)
}

// Join adds actor to the trip's participants. Joining a trip you are
// already on is a no-op. The creator is told about every new partner.
func (s *TripService) Join(ctx context.Context, actor, tripID string) (domain.Trip, error) {
	trip, err := s.Trips.GetTrip(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}

	added, err := s.Trips.AddParticipant(ctx, tripID, actor)
	if err != nil {
		return domain.Trip{}, err
	}
	if added && s.Notifier != nil {
		msg := fmt.Sprintf("%s joined your trip to %s.", actor, trip.Destination)
		if err := s.Notifier.Notify(ctx, trip.Creator, actor, domain.NotificationTripJoin, msg, domain.TripJoinPayload{
			TripID:      trip.ID,
			Joiner:      actor,
			Destination: trip.Destination,
		}); err != nil {
			s.logger().Error("trip join notification failed", "err", err, "trip_id", trip.ID)
		}
	}

	return s.Trips.GetTrip(ctx, tripID)
}

// AddPhoto stores an already-saved upload in the trip's gallery. Only
// participants may post to it.
func (s *TripService) AddPhoto(ctx context.Context, actor, tripID, filename string) (domain.TripPhoto, error) {
	trip, err := s.Trips.GetTrip(ctx, tripID)
	if err != nil {
		return domain.TripPhoto{}, err
	}
	if !trip.HasParticipant(actor) {
		return domain.TripPhoto{}, domain.ErrForbidden
	}
	return s.Photos.AddPhoto(ctx, tripID, actor, filename)
}

func (s *TripService) ListPhotos(ctx context.Context, tripID string) ([]domain.TripPhoto, error) {
	if _, err := s.Trips.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	return s.Photos.ListPhotos(ctx, tripID)
}

func (s *TripService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func validateTripInput(in *TripInput) error {
	in.Destination = strings.TrimSpace(in.Destination)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = strings.TrimSpace(in.EndDate)
	in.Description = strings.TrimSpace(in.Description)
	in.Preferences = strings.TrimSpace(in.Preferences)

	fields := map[string]string{}
	if in.Destination == "" {
		fields["destination"] = "required"
	} else if len(in.Destination) > 120 {
		fields["destination"] = "must be 120 characters or less"
	}
	if !validDate(in.StartDate) {
		fields["start_date"] = "must be YYYY-MM-DD"
	}
	if !validDate(in.EndDate) {
		fields["end_date"] = "must be YYYY-MM-DD"
	}
	if len(fields) == 0 && in.EndDate < in.StartDate {
		fields["end_date"] = "must not be before start_date"
	}
	if len(in.Description) > 2000 {
		fields["description"] = "must be 2000 characters or less"
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields)
	}
	return nil
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
