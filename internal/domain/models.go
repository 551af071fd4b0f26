package domain

import "time"

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

type User struct {
	ID              string
	Email           string
	Username        string
	Bio             string
	Interests       string
	AvatarPath      string
	AvatarUpdatedAt *time.Time
	LastSeenAt      *time.Time
	Status          UserStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type UserWithPassword struct {
	User
	PasswordHash string
}

// UserSummary is the public slice of a user embedded in other payloads.
type UserSummary struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	AvatarPath      string     `json:"avatar_path,omitempty"`
	AvatarUpdatedAt *time.Time `json:"avatar_updated_at,omitempty"`
	LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`
}

// OnlineWindow is how recently a user must have been seen to count as online.
const OnlineWindow = 120 * time.Second

// Online reports whether the user was seen within OnlineWindow of now.
func (u UserSummary) Online(now time.Time) bool {
	return u.LastSeenAt != nil && now.Sub(*u.LastSeenAt) < OnlineWindow
}

type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}
