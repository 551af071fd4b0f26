package service

import (
	"context"
	"strings"
	"time"

	"PartnerWebserver/internal/domain"
)

type ProfileStore interface {
	UpdateProfile(ctx context.Context, username, bio, interests string) (domain.User, error)
	SetAvatar(ctx context.Context, username, avatarPath string, when time.Time) error
}

type ProfileService struct {
	Store ProfileStore
}

func (s *ProfileService) UpdateProfile(ctx context.Context, username, bio, interests string) (domain.User, error) {
	bio = strings.TrimSpace(bio)
	interests = strings.TrimSpace(interests)

	fields := map[string]string{}
	if len(bio) > 1000 {
		fields["bio"] = "must be 1000 characters or less"
	}
	if len(interests) > 500 {
		fields["interests"] = "must be 500 characters or less"
	}
	if len(fields) > 0 {
		return domain.User{}, domain.NewValidationError(fields)
	}

	return s.Store.UpdateProfile(ctx, username, bio, interests)
}

func (s *ProfileService) UpdateAvatar(ctx context.Context, username, avatarPath string, when time.Time) error {
	if strings.TrimSpace(avatarPath) == "" {
		return domain.NewValidationError(map[string]string{"avatar": "file is required"})
	}
	return s.Store.SetAvatar(ctx, username, avatarPath, when)
}
