// Package auth issues and verifies the three JWT kinds used by the API:
// short-lived access tokens, rotated refresh tokens and single-purpose
// email-confirmation tokens. All state lives in the token itself; refresh
// tokens are additionally cross-checked against the value stored on the
// user row by the handler layer.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Scope discriminates what a token may be used for. Decode rejects a
// token presented for a scope other than the one it was issued with, so
// an email-confirmation token can never act as an access token and a
// refresh token can never be used directly to authenticate a request.
type Scope string

const (
	ScopeAccess  Scope = "access_token"
	ScopeRefresh Scope = "refresh_token"
	ScopeEmail   Scope = "email_token"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrWrongTokenType = errors.New("wrong token type")
)

type Claims struct {
	Scope Scope `json:"scope"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies JWTs with an HS256 server secret.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
}

func NewTokenService(secret string, accessTTL, refreshTTL, emailTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		emailTTL:   emailTTL,
	}
}

// CreateAccessToken issues a short-lived bearer token for email.
func (s *TokenService) CreateAccessToken(email string) (string, time.Time, error) {
	return s.create(email, ScopeAccess, s.accessTTL)
}

// CreateRefreshToken issues the longer-lived token exchanged for a new
// pair. The caller persists it on the user row; only the stored value is
// accepted at refresh time.
func (s *TokenService) CreateRefreshToken(email string) (string, time.Time, error) {
	return s.create(email, ScopeRefresh, s.refreshTTL)
}

// CreateEmailToken issues a single-purpose confirmation token.
func (s *TokenService) CreateEmailToken(email string) (string, error) {
	token, _, err := s.create(email, ScopeEmail, s.emailTTL)
	return token, err
}

func (s *TokenService) create(email string, scope Scope, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			// unique ID so two tokens issued within the same second
			// still differ, keeping refresh rotation observable
			ID:        uuid.NewString(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Decode verifies signature, expiry and scope, returning the subject email.
func (s *TokenService) Decode(tokenString string, expected Scope) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Scope != expected {
		return "", ErrWrongTokenType
	}
	return claims.Subject, nil
}
