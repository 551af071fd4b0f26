package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"PartnerWebserver/internal/domain"
	"PartnerWebserver/internal/service"
)

type stubTripsStore struct {
	t *testing.T

	createTripFunc       func(context.Context, domain.Trip) (domain.Trip, error)
	getTripFunc          func(context.Context, string) (domain.Trip, error)
	updateTripFunc       func(context.Context, domain.Trip) (domain.Trip, error)
	deleteTripFunc       func(context.Context, string) error
	addParticipantFunc   func(context.Context, string, string) (bool, error)
	listTripsFunc        func(context.Context, domain.TripFilter) ([]domain.Trip, error)
	listTripsForUserFunc func(context.Context, string) ([]domain.Trip, error)
}

func (s *stubTripsStore) CreateTrip(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	if s.createTripFunc != nil {
		return s.createTripFunc(ctx, t)
	}
	s.t.Fatalf("CreateTrip called unexpectedly")
	return domain.Trip{}, context.Canceled
}

func (s *stubTripsStore) GetTrip(ctx context.Context, id string) (domain.Trip, error) {
	if s.getTripFunc != nil {
		return s.getTripFunc(ctx, id)
	}
	s.t.Fatalf("GetTrip called unexpectedly")
	return domain.Trip{}, context.Canceled
}

func (s *stubTripsStore) UpdateTrip(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	if s.updateTripFunc != nil {
		return s.updateTripFunc(ctx, t)
	}
	s.t.Fatalf("UpdateTrip called unexpectedly")
	return domain.Trip{}, context.Canceled
}

func (s *stubTripsStore) DeleteTrip(ctx context.Context, id string) error {
	if s.deleteTripFunc != nil {
		return s.deleteTripFunc(ctx, id)
	}
	s.t.Fatalf("DeleteTrip called unexpectedly")
	return context.Canceled
}

func (s *stubTripsStore) AddParticipant(ctx context.Context, tripID, username string) (bool, error) {
	if s.addParticipantFunc != nil {
		return s.addParticipantFunc(ctx, tripID, username)
	}
	s.t.Fatalf("AddParticipant called unexpectedly")
	return false, context.Canceled
}

func (s *stubTripsStore) ListTrips(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error) {
	if s.listTripsFunc != nil {
		return s.listTripsFunc(ctx, f)
	}
	s.t.Fatalf("ListTrips called unexpectedly")
	return nil, context.Canceled
}

func (s *stubTripsStore) ListTripsForUser(ctx context.Context, username string) ([]domain.Trip, error) {
	if s.listTripsForUserFunc != nil {
		return s.listTripsForUserFunc(ctx, username)
	}
	s.t.Fatalf("ListTripsForUser called unexpectedly")
	return nil, context.Canceled
}

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
	return domain.TripPhoto{}, context.Canceled
}

func (s *stubTripPhotosStore) ListPhotos(ctx context.Context, tripID string) ([]domain.TripPhoto, error) {
	if s.listPhotosFunc != nil {
		return s.listPhotosFunc(ctx, tripID)
	}
	s.t.Fatalf("ListPhotos called unexpectedly")
	return nil, context.Canceled
}

func authedRequest(method, target, body, username string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := context.WithValue(req.Context(), authUserKey, domain.User{ID: "user-" + username, Username: username})
	return req.WithContext(ctx)
}

func TestTripCreate(t *testing.T) {
	store := &stubTripsStore{
		t: t,
		createTripFunc: func(_ context.Context, trip domain.Trip) (domain.Trip, error) {
			trip.ID = "trip-1"
			trip.CreatedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
			return trip, nil
		},
	}

	api := &api{tripSvc: &service.TripService{Trips: store, Photos: &stubTripPhotosStore{t: t}}}

	req := authedRequest(http.MethodPost, "/v1/trips",
		`{"destination":"Lisbon","start_date":"2025-07-01","end_date":"2025-07-10"}`, "alice")
	rr := httptest.NewRecorder()
	api.handleTripCreate(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d %s", rr.Code, rr.Body.String())
	}

	var trip domain.Trip
	if err := json.Unmarshal(rr.Body.Bytes(), &trip); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if trip.ID != "trip-1" || trip.Creator != "alice" {
		t.Fatalf("unexpected trip: %+v", trip)
	}
	if len(trip.Participants) != 1 || trip.Participants[0] != "alice" {
		t.Fatalf("unexpected participants: %v", trip.Participants)
	}
}

func TestTripCreateValidationFields(t *testing.T) {
	api := &api{tripSvc: &service.TripService{Trips: &stubTripsStore{t: t}, Photos: &stubTripPhotosStore{t: t}}}

	req := authedRequest(http.MethodPost, "/v1/trips",
		`{"destination":"","start_date":"soon","end_date":"2025-07-10"}`, "alice")
	rr := httptest.NewRecorder()
	api.handleTripCreate(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d %s", rr.Code, rr.Body.String())
	}

	var env struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if env.Error.Code != "validation_error" {
		t.Fatalf("unexpected code: %s", env.Error.Code)
	}
	if _, ok := env.Error.Fields["destination"]; !ok {
		t.Fatalf("expected destination field error, got %v", env.Error.Fields)
	}
	if _, ok := env.Error.Fields["start_date"]; !ok {
		t.Fatalf("expected start_date field error, got %v", env.Error.Fields)
	}
}

func TestTripUpdateForbiddenForNonCreator(t *testing.T) {
	store := &stubTripsStore{
		t: t,
		getTripFunc: func(_ context.Context, id string) (domain.Trip, error) {
			return domain.Trip{ID: id, Creator: "alice", Destination: "Lisbon"}, nil
		},
	}

	api := &api{tripSvc: &service.TripService{Trips: store, Photos: &stubTripPhotosStore{t: t}}}

	req := authedRequest(http.MethodPatch, "/v1/trips/trip-1",
		`{"destination":"Porto","start_date":"2025-07-01","end_date":"2025-07-10"}`, "mallory")
	req.SetPathValue("id", "trip-1")
	rr := httptest.NewRecorder()
	api.handleTripUpdate(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d %s", rr.Code, rr.Body.String())
	}
}

type stubInvitationsStore struct {
	t *testing.T

	createInvitationFunc   func(context.Context, string, string, string) (domain.Invitation, error)
	getInvitationFunc      func(context.Context, string) (domain.Invitation, error)
	latestForTripleFunc    func(context.Context, string, string, string) (domain.Invitation, error)
	resolveFunc            func(context.Context, string, domain.InvitationStatus, time.Time) error
	listPendingForInvitee  func(context.Context, string) ([]domain.Invitation, error)
	latestByInviterForTrip func(context.Context, string, string) ([]domain.Invitation, error)
}

func (s *stubInvitationsStore) CreateInvitation(ctx context.Context, tripID, inviter, invitee string) (domain.Invitation, error) {
	if s.createInvitationFunc != nil {
		return s.createInvitationFunc(ctx, tripID, inviter, invitee)
	}
	s.t.Fatalf("CreateInvitation called unexpectedly")
	return domain.Invitation{}, context.Canceled
}

func (s *stubInvitationsStore) GetInvitation(ctx context.Context, id string) (domain.Invitation, error) {
	if s.getInvitationFunc != nil {
		return s.getInvitationFunc(ctx, id)
	}
	s.t.Fatalf("GetInvitation called unexpectedly")
	return domain.Invitation{}, context.Canceled
}

func (s *stubInvitationsStore) LatestForTriple(ctx context.Context, tripID, inviter, invitee string) (domain.Invitation, error) {
	if s.latestForTripleFunc != nil {
		return s.latestForTripleFunc(ctx, tripID, inviter, invitee)
	}
	s.t.Fatalf("LatestForTriple called unexpectedly")
	return domain.Invitation{}, context.Canceled
}

func (s *stubInvitationsStore) Resolve(ctx context.Context, id string, status domain.InvitationStatus, when time.Time) error {
	if s.resolveFunc != nil {
		return s.resolveFunc(ctx, id, status, when)
	}
	s.t.Fatalf("Resolve called unexpectedly")
	return context.Canceled
}

func (s *stubInvitationsStore) ListPendingForInvitee(ctx context.Context, invitee string) ([]domain.Invitation, error) {
	if s.listPendingForInvitee != nil {
		return s.listPendingForInvitee(ctx, invitee)
	}
	s.t.Fatalf("ListPendingForInvitee called unexpectedly")
	return nil, context.Canceled
}

func (s *stubInvitationsStore) LatestByInviterForTrip(ctx context.Context, tripID, inviter string) ([]domain.Invitation, error) {
	if s.latestByInviterForTrip != nil {
		return s.latestByInviterForTrip(ctx, tripID, inviter)
	}
	s.t.Fatalf("LatestByInviterForTrip called unexpectedly")
	return nil, context.Canceled
}

func TestInvitationRespondConflictWhenResolved(t *testing.T) {
	invitations := &stubInvitationsStore{
		t: t,
		getInvitationFunc: func(_ context.Context, id string) (domain.Invitation, error) {
			return domain.Invitation{ID: id, TripID: "trip-1", Inviter: "alice", Invitee: "bob", Status: domain.InvitationAccepted}, nil
		},
	}

	api := &api{inviteSvc: &service.InviteService{
		Invitations: invitations,
		Trips:       &stubTripsStore{t: t},
	}}

	req := authedRequest(http.MethodPost, "/v1/invitations/inv-1/respond", `{"accept":true}`, "bob")
	req.SetPathValue("id", "inv-1")
	rr := httptest.NewRecorder()
	api.handleInvitationRespond(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("unexpected status: %d %s", rr.Code, rr.Body.String())
	}
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if env.Error.Code != "invitation_resolved" {
		t.Fatalf("unexpected code: %s", env.Error.Code)
	}
}
