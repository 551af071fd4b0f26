package httpapi

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"PartnerWebserver/internal/domain"

	"github.com/google/uuid"
)

type updateProfileRequest struct {
	Bio       *string `json:"bio"`
	Interests *string `json:"interests"`
}

func (a *api) handleUsersMeUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	bio := u.Bio
	if req.Bio != nil {
		bio = *req.Bio
	}
	interests := u.Interests
	if req.Interests != nil {
		interests = *req.Interests
	}

	updated, err := a.profileSvc.UpdateProfile(r.Context(), u.Username, bio, interests)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeUser(w, http.StatusOK, updated)
}

// allowedImageExt mirrors the upload policy for every image surface:
// avatars, trip galleries, and feed posts.
var allowedImageExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

func (a *api) handleUsersMeAvatar(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	filename, err := a.saveUpload(w, r, "avatar", a.avatarDir)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.profileSvc.UpdateAvatar(r.Context(), u.Username, filename, time.Now()); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"avatar_path": filename,
		"avatar_url":  avatarURL(filename),
	})
}

const maxUploadSize = 8 << 20

// saveUpload reads the named multipart file, verifies its extension, and
// writes it under dir with a generated name. Returns the stored filename.
func (a *api) saveUpload(w http.ResponseWriter, r *http.Request, field, dir string) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return "", domain.NewValidationError(map[string]string{field: "file is too large"})
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return "", domain.NewValidationError(map[string]string{field: "file is required"})
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExt[ext] {
		return "", domain.ErrUnsupportedFileType
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		a.logger.Error("create upload dir failed", "err", err, "dir", dir)
		return "", err
	}

	filename := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		a.logger.Error("create upload file failed", "err", err)
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		a.logger.Error("write upload file failed", "err", err)
		return "", err
	}
	return filename, nil
}
