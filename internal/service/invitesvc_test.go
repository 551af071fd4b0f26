package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"PartnerWebserver/internal/domain"
)

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
	return domain.Invitation{}, errors.New("unexpected call")
}

func (s *stubInvitationsStore) GetInvitation(ctx context.Context, id string) (domain.Invitation, error) {
	if s.getInvitationFunc != nil {
		return s.getInvitationFunc(ctx, id)
	}
	s.t.Fatalf("GetInvitation called unexpectedly")
	return domain.Invitation{}, errors.New("unexpected call")
}

func (s *stubInvitationsStore) LatestForTriple(ctx context.Context, tripID, inviter, invitee string) (domain.Invitation, error) {
	if s.latestForTripleFunc != nil {
		return s.latestForTripleFunc(ctx, tripID, inviter, invitee)
	}
	s.t.Fatalf("LatestForTriple called unexpectedly")
	return domain.Invitation{}, errors.New("unexpected call")
}

func (s *stubInvitationsStore) Resolve(ctx context.Context, id string, status domain.InvitationStatus, when time.Time) error {
	if s.resolveFunc != nil {
		return s.resolveFunc(ctx, id, status, when)
	}
	s.t.Fatalf("Resolve called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubInvitationsStore) ListPendingForInvitee(ctx context.Context, invitee string) ([]domain.Invitation, error) {
	if s.listPendingForInvitee != nil {
		return s.listPendingForInvitee(ctx, invitee)
	}
	s.t.Fatalf("ListPendingForInvitee called unexpectedly")
	return nil, errors.New("unexpected call")
}

func (s *stubInvitationsStore) LatestByInviterForTrip(ctx context.Context, tripID, inviter string) ([]domain.Invitation, error) {
	if s.latestByInviterForTrip != nil {
		return s.latestByInviterForTrip(ctx, tripID, inviter)
	}
	s.t.Fatalf("LatestByInviterForTrip called unexpectedly")
	return nil, errors.New("unexpected call")
}

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
	return domain.Trip{}, errors.New("unexpected call")
}

func (s *stubTripsStore) GetTrip(ctx context.Context, id string) (domain.Trip, error) {
	if s.getTripFunc != nil {
		return s.getTripFunc(ctx, id)
	}
	s.t.Fatalf("GetTrip called unexpectedly")
	return domain.Trip{}, errors.New("unexpected call")
}

func (s *stubTripsStore) UpdateTrip(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	if s.updateTripFunc != nil {
		return s.updateTripFunc(ctx, t)
	}
	s.t.Fatalf("UpdateTrip called unexpectedly")
	return domain.Trip{}, errors.New("unexpected call")
}

func (s *stubTripsStore) DeleteTrip(ctx context.Context, id string) error {
	if s.deleteTripFunc != nil {
		return s.deleteTripFunc(ctx, id)
	}
	s.t.Fatalf("DeleteTrip called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubTripsStore) AddParticipant(ctx context.Context, tripID, username string) (bool, error) {
	if s.addParticipantFunc != nil {
		return s.addParticipantFunc(ctx, tripID, username)
	}
	s.t.Fatalf("AddParticipant called unexpectedly")
	return false, errors.New("unexpected call")
}

func (s *stubTripsStore) ListTrips(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error) {
	if s.listTripsFunc != nil {
		return s.listTripsFunc(ctx, f)
	}
	s.t.Fatalf("ListTrips called unexpectedly")
	return nil, errors.New("unexpected call")
}

func (s *stubTripsStore) ListTripsForUser(ctx context.Context, username string) ([]domain.Trip, error) {
	if s.listTripsForUserFunc != nil {
		return s.listTripsForUserFunc(ctx, username)
	}
	s.t.Fatalf("ListTripsForUser called unexpectedly")
	return nil, errors.New("unexpected call")
}

type stubInviteUsersStore struct {
	t *testing.T

	getUserByUsernameFunc func(context.Context, string) (domain.User, error)
	searchUsersFunc       func(context.Context, string, int, string) ([]domain.UserSummary, error)
}

func (s *stubInviteUsersStore) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	if s.getUserByUsernameFunc != nil {
		return s.getUserByUsernameFunc(ctx, username)
	}
	s.t.Fatalf("GetUserByUsername called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubInviteUsersStore) SearchUsers(ctx context.Context, q string, limit int, excludeUsername string) ([]domain.UserSummary, error) {
	if s.searchUsersFunc != nil {
		return s.searchUsersFunc(ctx, q, limit, excludeUsername)
	}
	s.t.Fatalf("SearchUsers called unexpectedly")
	return nil, errors.New("unexpected call")
}

type recordedNotification struct {
	target  string
	actor   string
	typ     domain.NotificationType
	message string
	payload domain.NotificationPayload
}

type recordingNotifier struct {
	sent []recordedNotification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, target, actor string, typ domain.NotificationType, message string, payload domain.NotificationPayload) error {
	n.sent = append(n.sent, recordedNotification{target, actor, typ, message, payload})
	return n.err
}

func TestInviteServiceInvite(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trip := domain.Trip{
		ID:           "trip-1",
		Creator:      "alice",
		Destination:  "Lisbon",
		StartDate:    "2025-07-01",
		EndDate:      "2025-07-10",
		Participants: []string{"alice"},
	}

	invitations := &stubInvitationsStore{
		t: t,
		latestForTripleFunc: func(_ context.Context, tripID, inviter, invitee string) (domain.Invitation, error) {
			return domain.Invitation{}, domain.ErrNotFound
		},
		createInvitationFunc: func(_ context.Context, tripID, inviter, invitee string) (domain.Invitation, error) {
			if tripID != "trip-1" || inviter != "alice" || invitee != "bob" {
				t.Fatalf("unexpected create args: %s %s %s", tripID, inviter, invitee)
			}
			return domain.Invitation{ID: "inv-1", TripID: tripID, Inviter: inviter, Invitee: invitee, Status: domain.InvitationPending, CreatedAt: now}, nil
		},
	}
	notifier := &recordingNotifier{}

	svc := &InviteService{
		Invitations: invitations,
		Trips: &stubTripsStore{t: t, getTripFunc: func(_ context.Context, id string) (domain.Trip, error) {
			return trip, nil
		}},
		Users: &stubInviteUsersStore{t: t, getUserByUsernameFunc: func(_ context.Context, username string) (domain.User, error) {
			return domain.User{ID: "user-2", Username: username}, nil
		}},
		Notifier: notifier,
		Now:      func() time.Time { return now },
	}

	inv, err := svc.Invite(context.Background(), "trip-1", "alice", "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.ID != "inv-1" || inv.Status != domain.InvitationPending {
		t.Fatalf("unexpected invitation: %+v", inv)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.target != "bob" || n.actor != "alice" || n.typ != domain.NotificationTripInvite {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestInviteServiceInviteCooldown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trip := domain.Trip{ID: "trip-1", Creator: "alice", Destination: "Lisbon", Participants: []string{"alice"}}

	for _, tc := range []struct {
		name    string
		age     time.Duration
		wantErr bool
	}{
		{"one hour old is refused", time.Hour, true},
		{"rejected an hour ago still counts", time.Hour, true},
		{"day old may be resent", 25 * time.Hour, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			invitations := &stubInvitationsStore{
				t: t,
				latestForTripleFunc: func(_ context.Context, _, _, _ string) (domain.Invitation, error) {
					return domain.Invitation{ID: "inv-old", Status: domain.InvitationRejected, CreatedAt: now.Add(-tc.age)}, nil
				},
			}
			if !tc.wantErr {
				invitations.createInvitationFunc = func(_ context.Context, tripID, inviter, invitee string) (domain.Invitation, error) {
					return domain.Invitation{ID: "inv-new", TripID: tripID, Inviter: inviter, Invitee: invitee, Status: domain.InvitationPending, CreatedAt: now}, nil
				}
			}

			svc := &InviteService{
				Invitations: invitations,
				Trips: &stubTripsStore{t: t, getTripFunc: func(_ context.Context, _ string) (domain.Trip, error) {
					return trip, nil
				}},
				Users: &stubInviteUsersStore{t: t, getUserByUsernameFunc: func(_ context.Context, username string) (domain.User, error) {
					return domain.User{Username: username}, nil
				}},
				Now: func() time.Time { return now },
			}

			_, err := svc.Invite(context.Background(), "trip-1", "alice", "bob")
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInviteCooldown) {
					t.Fatalf("expected cooldown error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestInviteServiceInviteOnlyCreator(t *testing.T) {
	svc := &InviteService{
		Invitations: &stubInvitationsStore{t: t},
		Trips: &stubTripsStore{t: t, getTripFunc: func(_ context.Context, _ string) (domain.Trip, error) {
			return domain.Trip{ID: "trip-1", Creator: "alice"}, nil
		}},
		Users: &stubInviteUsersStore{t: t},
	}

	_, err := svc.Invite(context.Background(), "trip-1", "mallory", "bob")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestInviteServiceInviteExistingParticipant(t *testing.T) {
	svc := &InviteService{
		Invitations: &stubInvitationsStore{t: t},
		Trips: &stubTripsStore{t: t, getTripFunc: func(_ context.Context, _ string) (domain.Trip, error) {
			return domain.Trip{ID: "trip-1", Creator: "alice", Participants: []string{"alice", "bob"}}, nil
		}},
		Users: &stubInviteUsersStore{t: t, getUserByUsernameFunc: func(_ context.Context, username string) (domain.User, error) {
			return domain.User{Username: username}, nil
		}},
	}

	_, err := svc.Invite(context.Background(), "trip-1", "alice", "bob")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInviteServiceRespondAccept(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	resolved := false
	joined := false
	invitations := &stubInvitationsStore{
		t: t,
		getInvitationFunc: func(_ context.Context, id string) (domain.Invitation, error) {
			return domain.Invitation{ID: id, TripID: "trip-1", Inviter: "alice", Invitee: "bob", Status: domain.InvitationPending}, nil
		},
		resolveFunc: func(_ context.Context, id string, status domain.InvitationStatus, when time.Time) error {
			if id != "inv-1" || status != domain.InvitationAccepted {
				t.Fatalf("unexpected resolve: %s %s", id, status)
			}
			if !when.Equal(now) {
				t.Fatalf("unexpected resolve time: %s", when)
			}
			resolved = true
			return nil
		},
	}
	notifier := &recordingNotifier{}

	svc := &InviteService{
		Invitations: invitations,
		Trips: &stubTripsStore{t: t, addParticipantFunc: func(_ context.Context, tripID, username string) (bool, error) {
			if tripID != "trip-1" || username != "bob" {
				t.Fatalf("unexpected participant add: %s %s", tripID, username)
			}
			joined = true
			return true, nil
		}},
		Users:    &stubInviteUsersStore{t: t},
		Notifier: notifier,
		Now:      func() time.Time { return now },
	}

	inv, err := svc.Respond(context.Background(), "inv-1", "bob", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resolved || !joined {
		t.Fatalf("expected resolve and participant add: resolved=%v joined=%v", resolved, joined)
	}
	if inv.Status != domain.InvitationAccepted || inv.RespondedAt == nil {
		t.Fatalf("unexpected invitation: %+v", inv)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].target != "alice" {
		t.Fatalf("expected inviter notification, got %+v", notifier.sent)
	}
}

func TestInviteServiceRespondRejectSkipsJoin(t *testing.T) {
	invitations := &stubInvitationsStore{
		t: t,
		getInvitationFunc: func(_ context.Context, id string) (domain.Invitation, error) {
			return domain.Invitation{ID: id, TripID: "trip-1", Inviter: "alice", Invitee: "bob", Status: domain.InvitationPending}, nil
		},
		resolveFunc: func(_ context.Context, _ string, status domain.InvitationStatus, _ time.Time) error {
			if status != domain.InvitationRejected {
				t.Fatalf("unexpected status: %s", status)
			}
			return nil
		},
	}

	// No addParticipantFunc: any AddParticipant call fails the test.
	svc := &InviteService{
		Invitations: invitations,
		Trips:       &stubTripsStore{t: t},
		Users:       &stubInviteUsersStore{t: t},
	}

	inv, err := svc.Respond(context.Background(), "inv-1", "bob", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Status != domain.InvitationRejected {
		t.Fatalf("unexpected invitation: %+v", inv)
	}
}

func TestInviteServiceRespondAlreadyResolved(t *testing.T) {
	invitations := &stubInvitationsStore{
		t: t,
		getInvitationFunc: func(_ context.Context, id string) (domain.Invitation, error) {
			return domain.Invitation{ID: id, TripID: "trip-1", Inviter: "alice", Invitee: "bob", Status: domain.InvitationAccepted}, nil
		},
	}

	svc := &InviteService{
		Invitations: invitations,
		Trips:       &stubTripsStore{t: t},
		Users:       &stubInviteUsersStore{t: t},
	}

	_, err := svc.Respond(context.Background(), "inv-1", "bob", true)
	if !errors.Is(err, domain.ErrInvitationResolved) {
		t.Fatalf("expected resolved error, got %v", err)
	}
}

func TestInviteServiceRespondOnlyInvitee(t *testing.T) {
	invitations := &stubInvitationsStore{
		t: t,
		getInvitationFunc: func(_ context.Context, id string) (domain.Invitation, error) {
			return domain.Invitation{ID: id, TripID: "trip-1", Inviter: "alice", Invitee: "bob", Status: domain.InvitationPending}, nil
		},
	}

	svc := &InviteService{
		Invitations: invitations,
		Trips:       &stubTripsStore{t: t},
		Users:       &stubInviteUsersStore{t: t},
	}

	_, err := svc.Respond(context.Background(), "inv-1", "mallory", true)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestInviteServiceCandidates(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trip := domain.Trip{ID: "trip-1", Creator: "alice", Participants: []string{"alice", "carol"}}

	svc := &InviteService{
		Invitations: &stubInvitationsStore{
			t: t,
			latestByInviterForTrip: func(_ context.Context, tripID, inviter string) ([]domain.Invitation, error) {
				return []domain.Invitation{
					{ID: "inv-1", Invitee: "bob", Status: domain.InvitationPending, CreatedAt: now.Add(-time.Hour)},
					{ID: "inv-2", Invitee: "dave", Status: domain.InvitationRejected, CreatedAt: now.Add(-30 * time.Hour)},
				}, nil
			},
		},
		Trips: &stubTripsStore{t: t, getTripFunc: func(_ context.Context, _ string) (domain.Trip, error) {
			return trip, nil
		}},
		Users: &stubInviteUsersStore{t: t, searchUsersFunc: func(_ context.Context, q string, limit int, exclude string) ([]domain.UserSummary, error) {
			if exclude != "alice" {
				t.Fatalf("unexpected exclude: %s", exclude)
			}
			return []domain.UserSummary{
				{Username: "bob"},
				{Username: "carol"},
				{Username: "dave"},
			}, nil
		}},
		Now: func() time.Time { return now },
	}

	out, err := svc.Candidates(context.Background(), "trip-1", "alice", "b", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// carol is already on the trip and must not appear.
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(out), out)
	}
	if out[0].User.Username != "bob" || out[0].PendingInviteID != "inv-1" {
		t.Fatalf("unexpected first candidate: %+v", out[0])
	}
	if out[0].CooldownSeconds != int((domain.InviteCooldown-time.Hour)/time.Second) {
		t.Fatalf("unexpected cooldown: %d", out[0].CooldownSeconds)
	}
	if out[1].User.Username != "dave" || out[1].PendingInviteID != "" || out[1].CooldownSeconds != 0 {
		t.Fatalf("unexpected second candidate: %+v", out[1])
	}
}
