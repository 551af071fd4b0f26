package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"PartnerWebserver/internal/domain"
)

type InvitationsStore interface {
	CreateInvitation(ctx context.Context, tripID, inviter, invitee string) (domain.Invitation, error)
	GetInvitation(ctx context.Context, id string) (domain.Invitation, error)
	LatestForTriple(ctx context.Context, tripID, inviter, invitee string) (domain.Invitation, error)
	Resolve(ctx context.Context, id string, status domain.InvitationStatus, when time.Time) error
	ListPendingForInvitee(ctx context.Context, invitee string) ([]domain.Invitation, error)
	LatestByInviterForTrip(ctx context.Context, tripID, inviter string) ([]domain.Invitation, error)
}

type InviteUsersStore interface {
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	SearchUsers(ctx context.Context, q string, limit int, excludeUsername string) ([]domain.UserSummary, error)
}

type InviteService struct {
	Invitations InvitationsStore
	Trips       TripsStore
	Users       InviteUsersStore
	Notifier    Notifier
	Logger      *slog.Logger
	Now         func() time.Time
}

// Invite sends invitee a pending invitation to the trip. Only the trip
// creator may invite; a fresh invitation for the same (trip, inviter,
// invitee) is refused inside the cooldown window no matter how the
// previous one ended.
func (s *InviteService) Invite(ctx context.Context, tripID, inviter, invitee string) (domain.Invitation, error) {
	if s.Now == nil {
		s.Now = time.Now
	}

	trip, err := s.Trips.GetTrip(ctx, tripID)
	if err != nil {
		return domain.Invitation{}, err
	}
	if trip.Creator != inviter {
		return domain.Invitation{}, domain.ErrForbidden
	}
	if invitee == inviter {
		return domain.Invitation{}, domain.NewValidationError(map[string]string{"invitee": "cannot invite yourself"})
	}
	if _, err := s.Users.GetUserByUsername(ctx, invitee); err != nil {
		return domain.Invitation{}, err
	}
	if trip.HasParticipant(invitee) {
		return domain.Invitation{}, domain.NewValidationError(map[string]string{"invitee": "already a participant"})
	}

	prev, err := s.Invitations.LatestForTriple(ctx, tripID, inviter, invitee)
	switch {
	case err == nil:
		if s.Now().Sub(prev.CreatedAt) < domain.InviteCooldown {
			return domain.Invitation{}, domain.ErrInviteCooldown
		}
	case errors.Is(err, domain.ErrNotFound):
	default:
		return domain.Invitation{}, err
	}

	inv, err := s.Invitations.CreateInvitation(ctx, tripID, inviter, invitee)
	if err != nil {
		return domain.Invitation{}, err
	}

	if s.Notifier != nil {
		msg := fmt.Sprintf("%s invited you to a trip to %s.", inviter, trip.Destination)
		if err := s.Notifier.Notify(ctx, invitee, inviter, domain.NotificationTripInvite, msg, domain.TripInvitePayload{
			InvitationID: inv.ID,
			TripID:       trip.ID,
			Inviter:      inviter,
			Destination:  trip.Destination,
			StartDate:    trip.StartDate,
			EndDate:      trip.EndDate,
		}); err != nil {
			s.logger().Error("invite notification failed", "err", err, "invitation_id", inv.ID)
		}
	}

	return inv, nil
}

// Respond resolves a pending invitation. Only the invitee may respond,
// and only once: anything already accepted or rejected is refused.
func (s *InviteService) Respond(ctx context.Context, invitationID, responder string, accept bool) (domain.Invitation, error) {
	if s.Now == nil {
		s.Now = time.Now
	}

	inv, err := s.Invitations.GetInvitation(ctx, invitationID)
	if err != nil {
		return domain.Invitation{}, err
	}
	if inv.Invitee != responder {
		return domain.Invitation{}, domain.ErrForbidden
	}
	if inv.Status != domain.InvitationPending {
		return domain.Invitation{}, domain.ErrInvitationResolved
	}

	status := domain.InvitationRejected
	if accept {
		status = domain.InvitationAccepted
	}
	when := s.Now()

	// The store refuses the update unless the row is still pending, so
	// two racing responses cannot both resolve it.
	if err := s.Invitations.Resolve(ctx, invitationID, status, when); err != nil {
		return domain.Invitation{}, err
	}

	if accept {
		if _, err := s.Trips.AddParticipant(ctx, inv.TripID, responder); err != nil {
			return domain.Invitation{}, err
		}
	}

	if s.Notifier != nil {
		verb := "declined"
		if accept {
			verb = "accepted"
		}
		msg := fmt.Sprintf("%s %s your trip invitation.", responder, verb)
		if err := s.Notifier.Notify(ctx, inv.Inviter, responder, domain.NotificationTripInviteResponse, msg, domain.TripInviteResponsePayload{
			InvitationID: inv.ID,
			TripID:       inv.TripID,
			Invitee:      responder,
			Status:       status,
		}); err != nil {
			s.logger().Error("invite response notification failed", "err", err, "invitation_id", inv.ID)
		}
	}

	inv.Status = status
	inv.RespondedAt = &when
	return inv, nil
}

func (s *InviteService) ListPending(ctx context.Context, invitee string) ([]domain.Invitation, error) {
	return s.Invitations.ListPendingForInvitee(ctx, invitee)
}

// Candidates lists users the creator could invite to the trip, filtered
// by q, annotated with any pending invitation or remaining cooldown.
func (s *InviteService) Candidates(ctx context.Context, tripID, inviter, q string, limit int) ([]domain.InviteCandidate, error) {
	if s.Now == nil {
		s.Now = time.Now
	}

	trip, err := s.Trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Creator != inviter {
		return nil, domain.ErrForbidden
	}

	users, err := s.Users.SearchUsers(ctx, q, limit, inviter)
	if err != nil {
		return nil, err
	}

	latest, err := s.Invitations.LatestByInviterForTrip(ctx, tripID, inviter)
	if err != nil {
		return nil, err
	}
	byInvitee := make(map[string]domain.Invitation, len(latest))
	for _, inv := range latest {
		byInvitee[inv.Invitee] = inv
	}

	now := s.Now()
	out := make([]domain.InviteCandidate, 0, len(users))
	for _, u := range users {
		if trip.HasParticipant(u.Username) {
			continue
		}
		c := domain.InviteCandidate{User: u}
		if inv, ok := byInvitee[u.Username]; ok {
			if inv.Status == domain.InvitationPending {
				c.PendingInviteID = inv.ID
			}
			if remaining := domain.InviteCooldown - now.Sub(inv.CreatedAt); remaining > 0 {
				c.CooldownSeconds = int(remaining / time.Second)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *InviteService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
