package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/paukdv/web-14/internal/auth"
	"github.com/paukdv/web-14/internal/models"
	"github.com/paukdv/web-14/internal/repository"
	"github.com/paukdv/web-14/internal/services"
)

type contextKey string

const userContextKey contextKey = "current_user"

// Guard authenticates bearer access tokens and enforces per-route role
// sets. The resolved user is attached to the request context.
type Guard struct {
	tokens *auth.TokenService
	users  repository.Users
	cache  services.UserCache
}

func NewGuard(tokens *auth.TokenService, users repository.Users, cache services.UserCache) *Guard {
	return &Guard{tokens: tokens, users: users, cache: cache}
}

// Require builds middleware allowing only the listed roles. Membership is
// plain set containment: a route that should admit admins must list
// RoleAdmin explicitly.
func (g *Guard) Require(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			email, err := g.tokens.Decode(token, auth.ScopeAccess)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}

			user, err := g.resolveUser(r.Context(), email)
			if err != nil {
				writeDetail(w, http.StatusInternalServerError, "Database error")
				return
			}
			if user == nil || !user.Confirmed {
				writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}

			if !allowed[user.Role] {
				writeDetail(w, http.StatusForbidden, "Operation forbidden")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveUser is the read-through lookup: cache first, store on miss.
// Cache failures are tolerated; the store stays authoritative.
func (g *Guard) resolveUser(ctx context.Context, email string) (*models.User, error) {
	cached, err := g.cache.Get(ctx, email)
	if err != nil {
		log.Printf("user cache lookup failed for %s: %v", email, err)
	} else if cached != nil {
		return cached, nil
	}

	user, err := g.users.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return user, err
	}

	if err := g.cache.Set(ctx, user); err != nil {
		log.Printf("user cache store failed for %s: %v", email, err)
	}
	return user, nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
// Shared by the gate and the auth handlers so the parsing rules cannot
// drift between them.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// UserFromContext returns the identity attached by Require.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

var errNoUser = errors.New("no authenticated user in context")

// MustUserFromContext is for handlers mounted behind Require.
func MustUserFromContext(ctx context.Context) (*models.User, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return nil, errNoUser
	}
	return user, nil
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
