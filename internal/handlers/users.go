package handlers

import (
	"log"
	"net/http"

	"github.com/paukdv/web-14/internal/middleware"
	"github.com/paukdv/web-14/internal/repository"
	"github.com/paukdv/web-14/internal/services"
)

const maxAvatarSize = 10 << 20 // 10MB

type UsersHandler struct {
	users    repository.Users
	cache    services.UserCache
	uploader services.AvatarUploader // nil when Cloudinary is not configured
}

func NewUsersHandler(users repository.Users, cache services.UserCache, uploader services.AvatarUploader) *UsersHandler {
	return &UsersHandler{users: users, cache: cache, uploader: uploader}
}

// UpdateAvatar uploads the multipart "file" field to the image host and
// persists the returned URL on the authenticated user.
func (h *UsersHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.MustUserFromContext(r.Context())
	if err != nil {
		respondDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if h.uploader == nil {
		respondDetail(w, http.StatusInternalServerError, "Avatar uploads are not available")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "Failed to parse form")
		return
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "No file provided")
		return
	}
	file.Close()

	url, err := h.uploader.UploadAvatar(r.Context(), fileHeader, user.Email)
	if err != nil {
		log.Printf("avatar upload failed for %s: %v", user.Email, err)
		respondDetail(w, http.StatusInternalServerError, "Failed to upload avatar")
		return
	}

	updated, err := h.users.UpdateAvatar(r.Context(), user.Email, url)
	if err != nil || updated == nil {
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if err := h.cache.Delete(r.Context(), user.Email); err != nil {
		log.Printf("failed to drop cached user %s: %v", user.Email, err)
	}

	respondJSON(w, http.StatusOK, updated)
}
