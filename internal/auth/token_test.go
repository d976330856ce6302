package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"our-diary/internal/user"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("test-secret")
	u := &user.User{
		ID:       42,
		Username: "ki",
		Email:    "ki@example.com",
		Nickname: "Ki",
		Provider: user.ProviderLocal,
	}

	tok, err := issuer.Sign(u)
	require.NoError(t, err)

	claims, err := issuer.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, "ki", claims.Username)
	require.Equal(t, "ki@example.com", claims.Email)
	require.Equal(t, "Ki", claims.Nickname)
	require.Equal(t, user.ProviderLocal, claims.Provider)

	expiry := claims.ExpiresAt.Time
	want := time.Now().Add(TokenLifetime)
	require.WithinDuration(t, want, expiry, time.Minute)
}

func TestTokenParse_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenIssuer("right-secret").Sign(&user.User{ID: 1})
	require.NoError(t, err)

	_, err = NewTokenIssuer("wrong-secret").Parse(tok)
	require.Error(t, err)
}

func TestTokenParse_Expired(t *testing.T) {
	t.Parallel()

	claims := &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("s").Parse(tok)
	require.Error(t, err)
}

func TestTokenParse_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewTokenIssuer("s").Parse("not.a.jwt")
	require.Error(t, err)
}
