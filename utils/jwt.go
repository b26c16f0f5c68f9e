package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookieName = "jwtCookie"
	SessionTTL        = 7 * 24 * time.Hour
)

type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer struct {
	secret      []byte
	ttl         time.Duration
	development bool
}

func NewTokenIssuer(secret string, development bool) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: SessionTTL, development: development}
}

func (ti *TokenIssuer) Generate(userID uint) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

func (ti *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return ti.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// SetSessionCookie issues a token for userID and stores it in the session cookie.
func (ti *TokenIssuer) SetSessionCookie(c *fiber.Ctx, userID uint) error {
	token, err := ti.Generate(userID)
	if err != nil {
		return err
	}
	sameSite := fiber.CookieSameSiteNoneMode
	if ti.development {
		sameSite = fiber.CookieSameSiteStrictMode
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(ti.ttl),
		MaxAge:   int(ti.ttl.Seconds()),
		HTTPOnly: true,
		SameSite: sameSite,
		Secure:   !ti.development,
	})
	return nil
}

// ClearSessionCookie expires the session cookie.
func (ti *TokenIssuer) ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
	})
}
