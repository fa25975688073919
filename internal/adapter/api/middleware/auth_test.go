package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/V4T54L/dealer-portal/internal/domain"
)

const testSecret = "test-secret"

func testResolver(users ...domain.User) ActorResolver {
	return func(username string) (domain.User, error) {
		for _, u := range users {
			if u.Username != username {
				continue
			}
			if u.Status == domain.UserInactive {
				return domain.User{}, fmt.Errorf("user %q is inactive: %w", username, domain.ErrPermission)
			}
			return u, nil
		}
		return domain.User{}, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}
}

func mustToken(t *testing.T, username string, status domain.UserStatus, secret string, expiry time.Duration) string {
	t.Helper()
	tok, err := GenerateToken(username, domain.RoleRep, status, secret, expiry)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	return tok
}

func TestAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolve := testResolver(
		domain.User{Username: "alice", Role: domain.RoleRep, Status: domain.UserActive},
		domain.User{Username: "bob", Role: domain.RoleRep, Status: domain.UserInactive},
	)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{
			name:           "Missing token",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong scheme",
			header:         "Basic abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Bad signature",
			header:         "Bearer " + mustToken(t, "alice", domain.UserActive, "other-secret", time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired token",
			header:         "Bearer " + mustToken(t, "alice", domain.UserActive, testSecret, -time.Minute),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Inactive claim",
			header:         "Bearer " + mustToken(t, "alice", domain.UserInactive, testSecret, time.Hour),
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Inactive in directory",
			header:         "Bearer " + mustToken(t, "bob", domain.UserActive, testSecret, time.Hour),
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Unknown user",
			header:         "Bearer " + mustToken(t, "mallory", domain.UserActive, testSecret, time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Valid token",
			header:         "Bearer " + mustToken(t, "alice", domain.UserActive, testSecret, time.Hour),
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				u, ok := ActorFromContext(r.Context())
				if !ok {
					t.Fatal("actor missing from context")
				}
				seen = u.Username
			})

			req := httptest.NewRequest(http.MethodGet, "/api/dealers", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			Auth(testSecret, resolve, logger)(next).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if tt.expectedStatus == http.StatusOK && seen != "alice" {
				t.Errorf("expected actor alice, got %q", seen)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rl := NewRateLimiter(0.001, 2, logger, nil)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/dealers", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d within burst returned %d", i+1, code)
		}
	}
	if code := send("10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Errorf("request over burst returned %d, want 429", code)
	}
	if code := send("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("other client should have its own bucket, got %d", code)
	}
}
