package httpapi

import (
	"net/http"
	"strconv"

	"PartnerWebserver/internal/domain"
	"PartnerWebserver/internal/service"
)

type tripRequest struct {
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
	Preferences string `json:"preferences"`
}

func (t tripRequest) input() service.TripInput {
	return service.TripInput{
		Destination: t.Destination,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Description: t.Description,
		Preferences: t.Preferences,
	}
}

func (a *api) handleTripCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req tripRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	trip, err := a.tripSvc.Create(r.Context(), u.Username, req.input())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, trip)
}

func (a *api) handleTripList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	trips, err := a.tripSvc.List(r.Context(), domain.TripFilter{
		Destination: q.Get("destination"),
		StartAfter:  q.Get("start_after"),
		EndBefore:   q.Get("end_before"),
		Preferences: q.Get("preferences"),
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"trips": trips})
}

func (a *api) handleTripGet(w http.ResponseWriter, r *http.Request) {
	trip, err := a.tripSvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, trip)
}

func (a *api) handleTripUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req tripRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	trip, err := a.tripSvc.Update(r.Context(), u.Username, r.PathValue("id"), req.input())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, trip)
}

func (a *api) handleTripDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	if err := a.tripSvc.Delete(r.Context(), u.Username, r.PathValue("id")); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleTripJoin(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	trip, err := a.tripSvc.Join(r.Context(), u.Username, r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, trip)
}

func (a *api) handleTripMine(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	trips, err := a.tripSvc.ListForUser(r.Context(), u.Username)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"trips": trips})
}

func (a *api) handleTripPhotoUpload(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	filename, err := a.saveUpload(w, r, "photo", a.tripPhotoDir)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	photo, err := a.tripSvc.AddPhoto(r.Context(), u.Username, r.PathValue("id"), filename)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, photo)
}

func (a *api) handleTripPhotoList(w http.ResponseWriter, r *http.Request) {
	photos, err := a.tripSvc.ListPhotos(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"photos": photos})
}

type inviteRequest struct {
	Invitee string `json:"invitee"`
}

func (a *api) handleTripInvite(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req inviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	inv, err := a.inviteSvc.Invite(r.Context(), r.PathValue("id"), u.Username, req.Invitee)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, inv)
}

func (a *api) handleTripInviteCandidates(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	candidates, err := a.inviteSvc.Candidates(r.Context(), r.PathValue("id"), u.Username, q, limit)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

func (a *api) handleInvitationRespond(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req respondRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	inv, err := a.inviteSvc.Respond(r.Context(), r.PathValue("id"), u.Username, req.Accept)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, inv)
}

func (a *api) handleInvitationsPending(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	invs, err := a.inviteSvc.ListPending(r.Context(), u.Username)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"invitations": invs})
}
