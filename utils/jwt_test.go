package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, true)

	token, err := issuer.Generate(42)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(SessionTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenIssuerRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, true)

	foreign, err := NewTokenIssuer("another-secret", true).Generate(1)
	require.NoError(t, err)
	_, err = issuer.Parse(foreign)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = issuer.Parse(signed)
	assert.Error(t, err)
}

func TestSessionCookieAttributes(t *testing.T) {
	for _, development := range []bool{true, false} {
		issuer := NewTokenIssuer(testSecret, development)
		app := fiber.New()
		app.Get("/login", func(c *fiber.Ctx) error { return issuer.SetSessionCookie(c, 7) })

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/login", nil))
		require.NoError(t, err)

		cookies := resp.Cookies()
		require.Len(t, cookies, 1)
		cookie := cookies[0]
		assert.Equal(t, SessionCookieName, cookie.Name)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, !development, cookie.Secure)
		assert.Equal(t, int(SessionTTL.Seconds()), cookie.MaxAge)

		claims, err := issuer.Parse(cookie.Value)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
	}
}
