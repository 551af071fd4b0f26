package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationTripJoin           NotificationType = "trip_join"
	NotificationTripInvite         NotificationType = "trip_invite"
	NotificationTripInviteResponse NotificationType = "trip_invite_response"
	NotificationLike               NotificationType = "like"
	NotificationComment            NotificationType = "comment"
	NotificationFollow             NotificationType = "follow"
)

// NotificationPayload is the typed data attached to a notification. Each
// notification type carries exactly one payload variant; there is no
// free-form field bag.
type NotificationPayload interface {
	NotificationType() NotificationType
}

type TripJoinPayload struct {
	TripID      string `json:"trip_id"`
	Joiner      string `json:"joiner"`
	Destination string `json:"destination"`
}

func (TripJoinPayload) NotificationType() NotificationType { return NotificationTripJoin }

type TripInvitePayload struct {
	InvitationID string `json:"invitation_id"`
	TripID       string `json:"trip_id"`
	Inviter      string `json:"inviter"`
	Destination  string `json:"destination"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
}

func (TripInvitePayload) NotificationType() NotificationType { return NotificationTripInvite }

type TripInviteResponsePayload struct {
	InvitationID string           `json:"invitation_id"`
	TripID       string           `json:"trip_id"`
	Invitee      string           `json:"invitee"`
	Status       InvitationStatus `json:"status"`
}

func (TripInviteResponsePayload) NotificationType() NotificationType {
	return NotificationTripInviteResponse
}

type LikePayload struct {
	PostID string `json:"post_id"`
	Liker  string `json:"liker"`
}

func (LikePayload) NotificationType() NotificationType { return NotificationLike }

type CommentPayload struct {
	PostID    string `json:"post_id"`
	Commenter string `json:"commenter"`
}

func (CommentPayload) NotificationType() NotificationType { return NotificationComment }

type FollowPayload struct {
	Follower string `json:"follower"`
}

func (FollowPayload) NotificationType() NotificationType { return NotificationFollow }

type Notification struct {
	ID        string              `json:"id"`
	Username  string              `json:"username"`
	Type      NotificationType    `json:"type"`
	Message   string              `json:"message"`
	Read      bool                `json:"read"`
	CreatedAt time.Time           `json:"created_at"`
	Payload   NotificationPayload `json:"data,omitempty"`
}

// DecodeNotificationPayload picks the payload variant for typ and decodes
// raw into it. Raw comes from the store's jsonb column.
func DecodeNotificationPayload(typ NotificationType, raw []byte) (NotificationPayload, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var p NotificationPayload
	switch typ {
	case NotificationTripJoin:
		p = &TripJoinPayload{}
	case NotificationTripInvite:
		p = &TripInvitePayload{}
	case NotificationTripInviteResponse:
		p = &TripInviteResponsePayload{}
	case NotificationLike:
		p = &LikePayload{}
	case NotificationComment:
		p = &CommentPayload{}
	case NotificationFollow:
		p = &FollowPayload{}
	default:
		return nil, fmt.Errorf("unknown notification type %q", typ)
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", typ, err)
	}
	return p, nil
}

type NotificationToken struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
