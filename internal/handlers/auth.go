package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/paukdv/web-14/internal/auth"
	"github.com/paukdv/web-14/internal/middleware"
	"github.com/paukdv/web-14/internal/repository"
	"github.com/paukdv/web-14/internal/services"
	"github.com/paukdv/web-14/pkg/utils"
)

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPairResponse is returned by login and refresh.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type AuthHandler struct {
	users   repository.Users
	tokens  *auth.TokenService
	cache   services.UserCache
	mail    services.EmailSender // nil when SMTP is not configured
	baseURL string
}

func NewAuthHandler(users repository.Users, tokens *auth.TokenService, cache services.UserCache, mail services.EmailSender, baseURL string) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, cache: cache, mail: mail, baseURL: baseURL}
}

// Signup registers an unconfirmed user and fires the confirmation mail.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondDetail(w, http.StatusUnprocessableEntity, "Username, email and password are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		respondDetail(w, http.StatusUnprocessableEntity, "Invalid email address")
		return
	}
	if len(req.Password) < 6 {
		respondDetail(w, http.StatusUnprocessableEntity, "Password must be at least 6 characters long")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user, err := h.users.Create(r.Context(), req.Username, req.Email, hashed)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			respondDetail(w, http.StatusConflict, "Account already exists")
			return
		}
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.sendConfirmation(user.Email, user.Username)

	respondJSON(w, http.StatusCreated, map[string]any{
		"user":   user,
		"detail": "User successfully created. Check your email for confirmation.",
	})
}

// sendConfirmation delivers the confirmation link in the background. No
// retries; a failed send is logged and never surfaced to the caller.
func (h *AuthHandler) sendConfirmation(email, username string) {
	if h.mail == nil {
		log.Printf("mail not configured, skipping confirmation for %s", email)
		return
	}
	token, err := h.tokens.CreateEmailToken(email)
	if err != nil {
		log.Printf("failed to create email token for %s: %v", email, err)
		return
	}
	confirmURL := fmt.Sprintf("%s/auth/confirm/%s", h.baseURL, token)
	go func() {
		if err := h.mail.SendConfirmation(email, username, confirmURL); err != nil {
			log.Printf("failed to send confirmation email to %s: %v", email, err)
		}
	}()
}

// Login checks credentials and issues a token pair, rotating the stored
// refresh token so earlier sessions lose refresh capability.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondDetail(w, http.StatusUnprocessableEntity, "Email and password are required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if user == nil {
		respondDetail(w, http.StatusUnauthorized, "Invalid email")
		return
	}
	if !user.Confirmed {
		respondDetail(w, http.StatusUnauthorized, "Email not confirmed")
		return
	}
	valid, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil || !valid {
		respondDetail(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	h.issuePair(w, r, user.Email)
}

// Refresh exchanges a valid, currently-stored refresh token for a new
// pair. A verified token that does not match the stored value is treated
// as revoked: the stored value is cleared and the request rejected.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		respondDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	email, err := h.tokens.Decode(token, auth.ScopeRefresh)
	if err != nil {
		respondDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if user == nil {
		respondDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	if user.RefreshToken == nil || *user.RefreshToken != token {
		if err := h.users.UpdateRefreshToken(r.Context(), email, nil); err != nil {
			log.Printf("failed to clear refresh token for %s: %v", email, err)
		}
		respondDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	h.issuePair(w, r, email)
}

func (h *AuthHandler) issuePair(w http.ResponseWriter, r *http.Request, email string) {
	accessToken, _, err := h.tokens.CreateAccessToken(email)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Failed to create token")
		return
	}
	refreshToken, _, err := h.tokens.CreateRefreshToken(email)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Failed to create token")
		return
	}
	if err := h.users.UpdateRefreshToken(r.Context(), email, &refreshToken); err != nil {
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}

	respondJSON(w, http.StatusOK, TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	})
}

// ConfirmEmail redeems an email-confirmation token. Idempotent: a second
// redemption for an already-confirmed account succeeds with a different
// message and no side effect.
func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	email, err := h.tokens.Decode(token, auth.ScopeEmail)
	if err != nil {
		respondDetail(w, http.StatusUnauthorized, "Invalid token for email verification")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if user == nil {
		respondDetail(w, http.StatusBadRequest, "Verification error")
		return
	}
	if user.Confirmed {
		respondJSON(w, http.StatusOK, map[string]string{"message": "Your email is already confirmed"})
		return
	}

	if err := h.users.ConfirmEmail(r.Context(), email); err != nil {
		respondDetail(w, http.StatusInternalServerError, "Database error")
		return
	}
	if err := h.cache.Delete(r.Context(), email); err != nil {
		log.Printf("failed to drop cached user %s: %v", email, err)
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Email confirmed"})
}
