package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"minevent/config"
	"minevent/models"
)

// SessionCookieName is the httpOnly cookie carrying the signed session.
const SessionCookieName = "session"

// SessionTTL is how long a session stays valid.
const SessionTTL = 24 * time.Hour

// SessionClaims is the signed session payload: account identity plus the
// event tags the account has joined, so pages can gate without a lookup.
type SessionClaims struct {
	AccountID uint     `json:"account_id"`
	Email     string   `json:"email"`
	Events    []string `json:"events"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a 24-hour session token for the account.
func GenerateSessionToken(account *models.Account) (string, error) {
	claims := &SessionClaims{
		AccountID: account.ID,
		Email:     account.Email,
		Events:    account.EventTags(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.SessionSecret))
}

// ParseSessionToken validates the signature and expiry and returns the claims.
func ParseSessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.SessionSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// SessionCookie wraps the token in the session cookie.
func SessionCookie(token string) *fiber.Cookie {
	cookie := new(fiber.Cookie)
	cookie.Name = SessionCookieName
	cookie.Value = token
	cookie.Expires = time.Now().Add(SessionTTL)
	cookie.HTTPOnly = true
	cookie.Secure = config.AppConfig.Environment == "production"
	cookie.SameSite = "Lax"
	cookie.Path = "/"
	return cookie
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie() *fiber.Cookie {
	cookie := new(fiber.Cookie)
	cookie.Name = SessionCookieName
	cookie.Value = ""
	cookie.Expires = time.Now().Add(-time.Hour)
	cookie.HTTPOnly = true
	cookie.Path = "/"
	return cookie
}
