// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// UserIDKey is the context key for user ID.
	UserIDKey ContextKey = "user_id"

	// AnonymousUserID owns every session when authentication is disabled.
	AnonymousUserID = "anonymous"

	tokenIssuer = "explorejh"
)

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	Guest bool `json:"guest"`
}

// IssueGuestToken signs a token for a freshly generated guest identity. No
// credentials are checked.
func IssueGuestToken(jwtSecret string, ttl time.Duration) (token, userID string, expiresAt time.Time, err error) {
	userID = "guest-" + uuid.Must(uuid.NewV7()).String()
	now := time.Now()
	expiresAt = now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Guest: true,
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, userID, expiresAt, nil
}

// ParseToken validates a signed token and returns its claims.
func ParseToken(jwtSecret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Auth creates JWT authentication middleware. When enabled is false every
// request is attributed to AnonymousUserID.
//
// Browsers cannot set headers on EventSource or WebSocket requests, so the token
// is also accepted from the access_token query parameter.
func Auth(jwtSecret string, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				ctx := context.WithValue(r.Context(), UserIDKey, AnonymousUserID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			tokenString, err := bearerToken(r)
			if err != nil {
				http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusUnauthorized)
				return
			}

			claims, err := ParseToken(jwtSecret, tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if token := r.URL.Query().Get("access_token"); token != "" {
			return token, nil
		}
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

// GetUserID gets user ID from context.
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}
