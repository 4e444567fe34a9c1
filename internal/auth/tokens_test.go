package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *TokenService {
	return NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour, 24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := newTestService()

	token, expiresAt, err := s.CreateAccessToken("pavlo_test@gmail.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	email, err := s.Decode(token, ScopeAccess)
	require.NoError(t, err)
	assert.Equal(t, "pavlo_test@gmail.com", email)
}

func TestRefreshAndEmailTokenRoundTrip(t *testing.T) {
	s := newTestService()

	refresh, _, err := s.CreateRefreshToken("a@b.c")
	require.NoError(t, err)
	email, err := s.Decode(refresh, ScopeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", email)

	confirm, err := s.CreateEmailToken("a@b.c")
	require.NoError(t, err)
	email, err = s.Decode(confirm, ScopeEmail)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", email)
}

func TestDecodeWrongScope(t *testing.T) {
	s := newTestService()

	cases := []struct {
		name     string
		issue    func() string
		tryScope Scope
	}{
		{
			name: "refresh token used as access token",
			issue: func() string {
				token, _, err := s.CreateRefreshToken("a@b.c")
				require.NoError(t, err)
				return token
			},
			tryScope: ScopeAccess,
		},
		{
			name: "email token used as access token",
			issue: func() string {
				token, err := s.CreateEmailToken("a@b.c")
				require.NoError(t, err)
				return token
			},
			tryScope: ScopeAccess,
		},
		{
			name: "access token used as refresh token",
			issue: func() string {
				token, _, err := s.CreateAccessToken("a@b.c")
				require.NoError(t, err)
				return token
			},
			tryScope: ScopeRefresh,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Decode(tc.issue(), tc.tryScope)
			assert.ErrorIs(t, err, ErrWrongTokenType)
		})
	}
}

func TestDecodeExpired(t *testing.T) {
	s := NewTokenService("test-secret", -time.Minute, -time.Minute, -time.Minute)

	token, _, err := s.CreateAccessToken("a@b.c")
	require.NoError(t, err)

	_, err = s.Decode(token, ScopeAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDecodeWrongSecret(t *testing.T) {
	s := newTestService()
	other := NewTokenService("other-secret", 15*time.Minute, time.Hour, time.Hour)

	token, _, err := s.CreateAccessToken("a@b.c")
	require.NoError(t, err)

	_, err = other.Decode(token, ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeMalformed(t *testing.T) {
	s := newTestService()

	_, err := s.Decode("not.a.jwt", ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
