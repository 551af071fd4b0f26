package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"PartnerWebserver/internal/domain"
	"PartnerWebserver/internal/realtime"
)

type MessagesStore interface {
	AppendMessage(ctx context.Context, sender, receiver, content, attachment string) (domain.Message, error)
	ListBetween(ctx context.Context, a, b string) ([]domain.Message, error)
	ListForUser(ctx context.Context, username string) ([]domain.Message, error)
	MarkThreadRead(ctx context.Context, receiver, sender string) error
}

type MessageUsersStore interface {
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetSummaries(ctx context.Context, usernames []string) (map[string]domain.UserSummary, error)
	SearchUsers(ctx context.Context, q string, limit int, excludeUsername string) ([]domain.UserSummary, error)
}

type MessageService struct {
	Messages MessagesStore
	Users    MessageUsersStore
	Typing   realtime.TypingStore
	Now      func() time.Time
}

// Send appends one durable message. Live delivery happens separately on
// the WebSocket path; this record is what conversation views read.
func (s *MessageService) Send(ctx context.Context, sender, receiver, content, attachment string) (domain.Message, error) {
	content = strings.TrimSpace(content)
	attachment = strings.TrimSpace(attachment)

	if receiver == sender {
		return domain.Message{}, domain.NewValidationError(map[string]string{"receiver": "cannot message yourself"})
	}
	if content == "" && attachment == "" {
		return domain.Message{}, domain.NewValidationError(map[string]string{"content": "required"})
	}
	if _, err := s.Users.GetUserByUsername(ctx, receiver); err != nil {
		return domain.Message{}, err
	}

	return s.Messages.AppendMessage(ctx, sender, receiver, content, attachment)
}

// Thread returns the full two-way history between viewer and other,
// oldest first, and marks everything other wrote to viewer as read.
func (s *MessageService) Thread(ctx context.Context, viewer, other string) ([]domain.Message, error) {
	if _, err := s.Users.GetUserByUsername(ctx, other); err != nil {
		return nil, err
	}
	msgs, err := s.Messages.ListBetween(ctx, viewer, other)
	if err != nil {
		return nil, err
	}
	if err := s.Messages.MarkThreadRead(ctx, viewer, other); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Conversations derives the viewer's inbox: one entry per counterpart,
// carrying the latest message, an unread flag (set when that latest
// message is addressed to the viewer and still unread), and whether the
// counterpart was seen online recently. Unread conversations sort first,
// then by last-message time, newest first.
func (s *MessageService) Conversations(ctx context.Context, viewer string) ([]domain.Conversation, error) {
	if s.Now == nil {
		s.Now = time.Now
	}

	msgs, err := s.Messages.ListForUser(ctx, viewer)
	if err != nil {
		return nil, err
	}

	// Messages arrive oldest first, so the running value per counterpart
	// ends up being the latest one.
	type lastState struct {
		msg domain.Message
	}
	last := make(map[string]lastState)
	var order []string
	for _, m := range msgs {
		other := m.Sender
		if other == viewer {
			other = m.Receiver
		}
		if _, seen := last[other]; !seen {
			order = append(order, other)
		}
		last[other] = lastState{msg: m}
	}

	summaries, err := s.Users.GetSummaries(ctx, order)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	out := make([]domain.Conversation, 0, len(order))
	for _, other := range order {
		m := last[other].msg
		counterpart, ok := summaries[other]
		if !ok {
			counterpart = domain.UserSummary{Username: other}
		}
		out = append(out, domain.Conversation{
			Counterpart:   counterpart,
			LastMessage:   m.Content,
			LastMessageAt: m.CreatedAt,
			Unread:        m.Receiver == viewer && !m.Read,
			Online:        counterpart.Online(now),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Unread != out[j].Unread {
			return out[i].Unread
		}
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out, nil
}

// NewPartners lists users matching q the viewer has never exchanged a
// message with, for starting a fresh conversation.
func (s *MessageService) NewPartners(ctx context.Context, viewer, q string, limit int) ([]domain.UserSummary, error) {
	q = strings.TrimSpace(q)
	if len(q) < 2 {
		return nil, domain.NewValidationError(map[string]string{"q": "must be at least 2 characters"})
	}

	users, err := s.Users.SearchUsers(ctx, q, limit, viewer)
	if err != nil {
		return nil, err
	}

	msgs, err := s.Messages.ListForUser(ctx, viewer)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(msgs))
	for _, m := range msgs {
		known[m.Sender] = true
		known[m.Receiver] = true
	}

	out := make([]domain.UserSummary, 0, len(users))
	for _, u := range users {
		if known[u.Username] {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// MarkTyping records that sender is typing to recipient right now.
func (s *MessageService) MarkTyping(ctx context.Context, sender, recipient string) error {
	if s.Typing == nil {
		return nil
	}
	return s.Typing.MarkTyping(ctx, sender, recipient)
}

// IsTyping reports whether other typed to viewer within the last few
// seconds.
func (s *MessageService) IsTyping(ctx context.Context, viewer, other string) (bool, error) {
	if s.Typing == nil {
		return false, nil
	}
	return s.Typing.IsTyping(ctx, other, viewer)
}
