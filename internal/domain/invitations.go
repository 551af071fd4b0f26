package domain

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

// InviteCooldown is the minimum interval between two invitations for the
// same (trip, inviter, invitee) triple, regardless of the earlier
// invitation's outcome.
const InviteCooldown = 24 * time.Hour

type Invitation struct {
	ID          string           `json:"id"`
	TripID      string           `json:"trip_id"`
	Inviter     string           `json:"inviter"`
	Invitee     string           `json:"invitee"`
	Status      InvitationStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}
