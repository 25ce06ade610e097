// Package middleware carries the gateway's caller identification: bearer
// tokens are verified here and the wallet/role claims they carry become the
// explicit caller credential the ledger operations take. Token issuance is
// not part of this service.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// RoleAuthority marks callers allowed on privileged routes.
const RoleAuthority = "authority"

// Auth verifies HS256 bearer tokens and stores the wallet and role claims on
// the request context.
func Auth(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			wallet, role, err := parseToken(c.Request().Header.Get("Authorization"), key)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			c.Set("wallet", wallet)
			c.Set("role", role)
			return next(c)
		}
	}
}

// RequireRoles ensures the requester's role is one of the allowed roles.
// Usage: route(..., RequireRoles(RoleAuthority))
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if role == "" {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "role missing"})
			}
			for _, r := range roles {
				if role == r {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
	}
}

func parseToken(header string, key []byte) (wallet, role string, err error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", "", errors.New("missing bearer token")
	}
	token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
	if err != nil {
		return "", "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token claims")
	}
	wallet, _ = claims["wallet"].(string)
	if wallet == "" {
		return "", "", errors.New("token missing wallet claim")
	}
	role, _ = claims["role"].(string)
	return wallet, role, nil
}
