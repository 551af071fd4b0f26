package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"PartnerWebserver/internal/domain"
)

const defaultAvatarURL = "/static/default-avatar.png"

type userResponse struct {
	ID              string     `json:"id"`
	Email           string     `json:"email,omitempty"`
	Username        string     `json:"username"`
	Bio             string     `json:"bio,omitempty"`
	Interests       string     `json:"interests,omitempty"`
	AvatarPath      string     `json:"avatar_path,omitempty"`
	AvatarURL       string     `json:"avatar_url"`
	AvatarUpdatedAt *time.Time `json:"avatar_updated_at,omitempty"`
	LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func writeUser(w http.ResponseWriter, status int, u domain.User) {
	WriteJSON(w, status, userResponse{
		ID:              u.ID,
		Email:           u.Email,
		Username:        u.Username,
		Bio:             u.Bio,
		Interests:       u.Interests,
		AvatarPath:      u.AvatarPath,
		AvatarURL:       avatarURL(u.AvatarPath),
		AvatarUpdatedAt: u.AvatarUpdatedAt,
		LastSeenAt:      u.LastSeenAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	})
}

func avatarURL(avatarPath string) string {
	if avatarPath == "" {
		return defaultAvatarURL
	}
	return "/uploads/avatars/" + avatarPath
}

func (a *api) handleUsersMe(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	writeUser(w, http.StatusOK, u)
}

func (a *api) handleUsersSearch(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := a.usersSvc.Search(r.Context(), q, limit, u.Username)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"users": results})
}

func (a *api) handleUsersProfile(w http.ResponseWriter, r *http.Request) {
	viewer, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	username := r.PathValue("username")
	profile, err := a.usersSvc.Profile(r.Context(), viewer.Username, username)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

type reviewRequest struct {
	Reviewee string `json:"reviewee"`
	TripID   string `json:"trip_id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

func (a *api) handleReviewCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	review, err := a.usersSvc.Review(r.Context(), u.Username, domain.Review{
		Reviewee: req.Reviewee,
		TripID:   req.TripID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, review)
}

type reportRequest struct {
	Reported string `json:"reported"`
	Reason   string `json:"reason"`
	Details  string `json:"details"`
}

func (a *api) handleReportCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req reportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	report, err := a.usersSvc.Report(r.Context(), u.Username, domain.Report{
		Reported: req.Reported,
		Reason:   req.Reason,
		Details:  req.Details,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, report)
}
