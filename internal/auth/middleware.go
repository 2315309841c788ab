package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

func CreateCookie(name, value, path string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Require authenticates the caller from the access cookie, transparently
// rotating through the refresh cookie when the access token has expired.
// Unauthenticated requests are rejected with 401.
func (t *TokenService) Require(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ok, err := t.resolveCaller(c)
		if err != nil {
			return err
		}
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		return next(c)
	}
}

// Optional behaves like Require but lets anonymous callers through with no
// identity set on the context.
func (t *TokenService) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, _ = t.resolveCaller(c)
		return next(c)
	}
}

func (t *TokenService) resolveCaller(c echo.Context) (bool, error) {
	asCookie, err := c.Cookie(AccessCookie)
	if err == nil && asCookie.Value != "" {
		token, err := jwt.Parse(asCookie.Value, func(j *jwt.Token) (interface{}, error) {
			if _, ok := j.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return t.JWTSecret, nil
		})
		if err == nil && token.Valid {
			setCallerContext(c, token.Claims.(jwt.MapClaims))
			return true, nil
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			return false, echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
	}

	rfCookie, err := c.Cookie(RefreshCookie)
	if err != nil || rfCookie.Value == "" {
		return false, nil
	}
	newAccess, newRefresh, err := t.Rotate(rfCookie.Value)
	if err != nil {
		return false, nil
	}

	c.SetCookie(CreateCookie(AccessCookie, newAccess, "/", time.Now().Add(AccessTTL)))
	c.SetCookie(CreateCookie(RefreshCookie, newRefresh, "/", time.Now().Add(RefreshTTL)))

	token, _ := jwt.Parse(newAccess, func(j *jwt.Token) (interface{}, error) { return t.JWTSecret, nil })
	setCallerContext(c, token.Claims.(jwt.MapClaims))
	return true, nil
}

func setCallerContext(c echo.Context, claims jwt.MapClaims) {
	c.Set("userID", uint(claims["sub"].(float64)))
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
}

// CallerID reports the authenticated user, if any.
func CallerID(c echo.Context) (uint, bool) {
	id, ok := c.Get("userID").(uint)
	return id, ok
}

func CallerRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}
