package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/V4T54L/dealer-portal/internal/domain"
)

// Claims are the identity claims issued by the identity provider.
type Claims struct {
	Username string            `json:"username"`
	Role     domain.UserRole   `json:"role"`
	Status   domain.UserStatus `json:"status"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for username. It is used by tooling
// and tests; production tokens come from the identity provider.
func GenerateToken(username string, role domain.UserRole, status domain.UserStatus, secretKey string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		Role:     role,
		Status:   status,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

// ValidateToken parses and verifies an HS256 token.
func ValidateToken(tokenString, secretKey string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.Username == "" {
		return nil, errors.New("token has no username claim")
	}
	return claims, nil
}

// ActorResolver maps a verified username to the portal user acting on the
// request.
type ActorResolver func(username string) (domain.User, error)

type actorKey struct{}

// WithActor stores the acting user in ctx.
func WithActor(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, actorKey{}, u)
}

// ActorFromContext returns the acting user set by Auth.
func ActorFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(actorKey{}).(domain.User)
	return u, ok
}

// Auth is a middleware factory that returns a new authentication middleware.
// It verifies the bearer token, denies inactive accounts and resolves the
// acting user.
func Auth(secret string, resolve ActorResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				logger.Warn("bearer token missing from request", "remote_addr", r.RemoteAddr)
				http.Error(w, "Unauthorized: bearer token required", http.StatusUnauthorized)
				return
			}

			claims, err := ValidateToken(tokenString, secret)
			if err != nil {
				logger.Warn("invalid token provided", "remote_addr", r.RemoteAddr, "error", err)
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}
			if claims.Status == domain.UserInactive {
				logger.Warn("inactive user denied", "username", claims.Username)
				http.Error(w, "Forbidden: account is inactive", http.StatusForbidden)
				return
			}

			actor, err := resolve(claims.Username)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrPermission):
					logger.Warn("inactive user denied", "username", claims.Username)
					http.Error(w, "Forbidden: account is inactive", http.StatusForbidden)
				case errors.Is(err, domain.ErrNotFound):
					logger.Warn("unknown user in token", "username", claims.Username)
					http.Error(w, "Unauthorized: unknown user", http.StatusUnauthorized)
				default:
					logger.Error("failed to resolve user", "username", claims.Username, "error", err)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}
