package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paukdv/web-14/internal/auth"
	"github.com/paukdv/web-14/internal/models"
	"github.com/paukdv/web-14/internal/repository"
)

// fakeUsers is an in-memory stand-in for the users repository.
type fakeUsers struct {
	byEmail map[string]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*models.User{}}
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) Create(ctx context.Context, username, email, hashedPassword string) (*models.User, error) {
	if _, ok := f.byEmail[email]; ok {
		return nil, repository.ErrDuplicateEmail
	}
	u := &models.User{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		Role:      models.RoleUser,
	}
	f.byEmail[email] = u
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) UpdateRefreshToken(ctx context.Context, email string, token *string) error {
	if u, ok := f.byEmail[email]; ok {
		u.RefreshToken = token
	}
	return nil
}

func (f *fakeUsers) ConfirmEmail(ctx context.Context, email string) error {
	if u, ok := f.byEmail[email]; ok {
		u.Confirmed = true
	}
	return nil
}

func (f *fakeUsers) UpdateAvatar(ctx context.Context, email, url string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	u.Avatar = &url
	copied := *u
	return &copied, nil
}

// memCache is an in-memory UserCache.
type memCache struct {
	users map[string]models.User
}

func newMemCache() *memCache {
	return &memCache{users: map[string]models.User{}}
}

func (c *memCache) Get(ctx context.Context, email string) (*models.User, error) {
	if u, ok := c.users[email]; ok {
		return &u, nil
	}
	return nil, nil
}

func (c *memCache) Set(ctx context.Context, user *models.User) error {
	c.users[user.Email] = *user
	return nil
}

func (c *memCache) Delete(ctx context.Context, email string) error {
	delete(c.users, email)
	return nil
}

type sentMail struct {
	to, username, confirmURL string
}

// chanMailer records sends on a channel; delivery happens in a goroutine.
type chanMailer struct {
	sent chan sentMail
}

func newChanMailer() *chanMailer {
	return &chanMailer{sent: make(chan sentMail, 1)}
}

func (m *chanMailer) SendConfirmation(to, username, confirmURL string) error {
	m.sent <- sentMail{to: to, username: username, confirmURL: confirmURL}
	return nil
}

type authFixture struct {
	router *chi.Mux
	users  *fakeUsers
	tokens *auth.TokenService
	mailer *chanMailer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newFakeUsers()
	tokens := auth.NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour, 24*time.Hour)
	mailer := newChanMailer()
	h := NewAuthHandler(users, tokens, newMemCache(), mailer, "http://localhost:8080")

	r := chi.NewRouter()
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
	r.Get("/auth/confirm/{token}", h.ConfirmEmail)
	return &authFixture{router: r, users: users, tokens: tokens, mailer: mailer}
}

var signupBody = SignupRequest{Username: "Pavlo", Email: "pavlo_test@gmail.com", Password: "1234567"}

func (f *authFixture) signupAndConfirm(t *testing.T) {
	t.Helper()
	rec := do(t, f.router, http.MethodPost, "/auth/signup", signupBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NoError(t, f.users.ConfirmEmail(context.Background(), signupBody.Email))
}

func (f *authFixture) login(t *testing.T) TokenPairResponse {
	t.Helper()
	rec := do(t, f.router, http.MethodPost, "/auth/login",
		LoginRequest{Email: signupBody.Email, Password: signupBody.Password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[TokenPairResponse](t, rec)
}

func TestSignupCreatesUnconfirmedUser(t *testing.T) {
	f := newAuthFixture(t)

	rec := do(t, f.router, http.MethodPost, "/auth/signup", signupBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	stored := f.users.byEmail[signupBody.Email]
	require.NotNil(t, stored)
	assert.False(t, stored.Confirmed)
	assert.Equal(t, models.RoleUser, stored.Role)
	assert.NotEqual(t, signupBody.Password, stored.Password)

	select {
	case mail := <-f.mailer.sent:
		assert.Equal(t, signupBody.Email, mail.to)
		assert.True(t, strings.HasPrefix(mail.confirmURL, "http://localhost:8080/auth/confirm/"))
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation email was not sent")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	rec := do(t, f.router, http.MethodPost, "/auth/signup", signupBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, f.router, http.MethodPost, "/auth/signup", signupBody)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Account already exists", decodeBody[map[string]string](t, rec)["detail"])
}

func TestSignupValidation(t *testing.T) {
	f := newAuthFixture(t)

	short := signupBody
	short.Password = "123"
	rec := do(t, f.router, http.MethodPost, "/auth/signup", short)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	noEmail := signupBody
	noEmail.Email = ""
	rec = do(t, f.router, http.MethodPost, "/auth/signup", noEmail)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLoginRequiresConfirmation(t *testing.T) {
	f := newAuthFixture(t)
	rec := do(t, f.router, http.MethodPost, "/auth/signup", signupBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, f.router, http.MethodPost, "/auth/login",
		LoginRequest{Email: signupBody.Email, Password: signupBody.Password})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Email not confirmed", decodeBody[map[string]string](t, rec)["detail"])
}

func TestLoginFailures(t *testing.T) {
	f := newAuthFixture(t)
	f.signupAndConfirm(t)

	rec := do(t, f.router, http.MethodPost, "/auth/login",
		LoginRequest{Email: "nobody@gmail.com", Password: signupBody.Password})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email", decodeBody[map[string]string](t, rec)["detail"])

	rec = do(t, f.router, http.MethodPost, "/auth/login",
		LoginRequest{Email: signupBody.Email, Password: "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid password", decodeBody[map[string]string](t, rec)["detail"])
}

func TestLoginIssuesTokenPairAndStoresRefresh(t *testing.T) {
	f := newAuthFixture(t)
	f.signupAndConfirm(t)

	pair := f.login(t)
	assert.Equal(t, "bearer", pair.TokenType)

	email, err := f.tokens.Decode(pair.AccessToken, auth.ScopeAccess)
	require.NoError(t, err)
	assert.Equal(t, signupBody.Email, email)

	stored := f.users.byEmail[signupBody.Email]
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, pair.RefreshToken, *stored.RefreshToken)
}

func refreshWith(t *testing.T, f *authFixture, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestRefreshRotatesAndRevokesPreviousToken(t *testing.T) {
	f := newAuthFixture(t)
	f.signupAndConfirm(t)
	pair := f.login(t)

	rec := refreshWith(t, f, pair.RefreshToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rotated := decodeBody[TokenPairResponse](t, rec)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// the previous refresh token is no longer accepted
	rec = refreshWith(t, f, pair.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid refresh token", decodeBody[map[string]string](t, rec)["detail"])
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	f.signupAndConfirm(t)
	pair := f.login(t)

	rec := refreshWith(t, f, pair.AccessToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Could not validate credentials", decodeBody[map[string]string](t, rec)["detail"])
}

func TestConfirmEmailIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	rec := do(t, f.router, http.MethodPost, "/auth/signup", signupBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	token, err := f.tokens.CreateEmailToken(signupBody.Email)
	require.NoError(t, err)

	rec = do(t, f.router, http.MethodGet, "/auth/confirm/"+token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Email confirmed", decodeBody[map[string]string](t, rec)["message"])
	assert.True(t, f.users.byEmail[signupBody.Email].Confirmed)

	rec = do(t, f.router, http.MethodGet, "/auth/confirm/"+token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Your email is already confirmed", decodeBody[map[string]string](t, rec)["message"])
}

func TestConfirmEmailRejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	f.signupAndConfirm(t)
	pair := f.login(t)

	rec := do(t, f.router, http.MethodGet, "/auth/confirm/"+pair.AccessToken, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token for email verification", decodeBody[map[string]string](t, rec)["detail"])
}
