package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TokenCookie is the cookie login sets and Protect falls back to when no
// Authorization header is present.
const TokenCookie = "token"

var (
	jwtMu       sync.RWMutex
	jwtSecretV  []byte
	jwtLifetime = 24 * time.Hour
)

// MustInitJWTSecret installs the signing secret and token lifetime. It panics
// on an empty secret so a misconfigured service never starts.
func MustInitJWTSecret(secret string, lifetime time.Duration) {
	if secret == "" {
		panic("JWT_SECRET is not set")
	}
	jwtMu.Lock()
	defer jwtMu.Unlock()
	jwtSecretV = []byte(secret)
	if lifetime > 0 {
		jwtLifetime = lifetime
	}
}

func jwtSecret() ([]byte, error) {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	if len(jwtSecretV) == 0 {
		return nil, errors.New("jwt secret not initialised")
	}
	return jwtSecretV, nil
}

type Claims struct {
	UserID string   `json:"id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for the user.
func GenerateToken(userID, email string, roles []string) (string, error) {
	secret, err := jwtSecret()
	if err != nil {
		return "", err
	}
	jwtMu.RLock()
	lifetime := jwtLifetime
	jwtMu.RUnlock()

	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// TokenLifetime is how long issued tokens (and the login cookie) live.
func TokenLifetime() time.Duration {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	return jwtLifetime
}

// ParseToken verifies a signed token and returns its claims.
func ParseToken(tokenString string) (*Claims, error) {
	secret, err := jwtSecret()
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func tokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "none" {
		return cookie
	}
	return ""
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set("userId", claims.UserID)
	c.Set("email", claims.Email)
	c.Set("roles", claims.Roles)
}

// Protect requires a valid token in the Authorization header or the token
// cookie.
func Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			AbortWithError(c, http.StatusUnauthorized, "not authorized to access this route")
			return
		}

		claims, err := ParseToken(tokenString)
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the user context when a valid token is present and
// otherwise lets the request through untouched.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := tokenFromRequest(c); tokenString != "" {
			if claims, err := ParseToken(tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// Authorize must run after Protect. It lets the request through only when
// the caller holds at least one of roles.
func Authorize(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !HasAnyRole(c, roles...) {
			AbortWithError(c, http.StatusForbidden, "user is not authorized to access this route")
			return
		}
		c.Next()
	}
}

// ErrUnknownUser is returned by a RoleLookup when the token's user no longer
// exists.
var ErrUnknownUser = errors.New("unknown user")

// RoleLookup returns the roles a user holds right now.
type RoleLookup func(ctx context.Context, userID string) ([]string, error)

// RefreshRoles must run after Protect and before Authorize. It replaces the
// roles carried in the token with the stored ones, so a detached role stops
// working before the token expires.
func RefreshRoles(lookup RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			AbortWithError(c, http.StatusUnauthorized, "not authorized to access this route")
			return
		}
		roles, err := lookup(c.Request.Context(), userID)
		if errors.Is(err, ErrUnknownUser) {
			AbortWithError(c, http.StatusUnauthorized, "not authorized to access this route")
			return
		}
		if err != nil {
			AbortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
		c.Set("roles", roles)
		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}

func GetEmail(c *gin.Context) string {
	return c.GetString("email")
}

func GetRoles(c *gin.Context) []string {
	return c.GetStringSlice("roles")
}

func HasAnyRole(c *gin.Context, roles ...string) bool {
	for _, have := range GetRoles(c) {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
