package domain

import "time"

type Trip struct {
	ID           string    `json:"id"`
	Creator      string    `json:"creator"`
	Destination  string    `json:"destination"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	Description  string    `json:"description,omitempty"`
	Preferences  string    `json:"preferences,omitempty"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasParticipant reports whether username already travels on the trip.
func (t Trip) HasParticipant(username string) bool {
	for _, p := range t.Participants {
		if p == username {
			return true
		}
	}
	return false
}

// TripFilter narrows a trip listing. Zero values match everything.
// Dates are YYYY-MM-DD strings compared lexically, which orders correctly.
type TripFilter struct {
	Destination string
	StartAfter  string
	EndBefore   string
	Preferences string
}

type TripPhoto struct {
	ID        string    `json:"id"`
	TripID    string    `json:"trip_id"`
	Username  string    `json:"username"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

// InviteCandidate is a user who may still be invited to a trip, with the
// remaining cooldown if the inviter asked them recently.
type InviteCandidate struct {
	User            UserSummary `json:"user"`
	CooldownSeconds int         `json:"cooldown_seconds,omitempty"`
	PendingInviteID string      `json:"pending_invite_id,omitempty"`
}

type Review struct {
	ID        string    `json:"id"`
	Reviewer  string    `json:"reviewer"`
	Reviewee  string    `json:"reviewee"`
	TripID    string    `json:"trip_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Report struct {
	ID        string    `json:"id"`
	Reporter  string    `json:"reporter"`
	Reported  string    `json:"reported"`
	Reason    string    `json:"reason"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
