package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubSessions struct {
	valid   map[string]string
	minted  int
	mintErr error
}

func (s *stubSessions) Parse(token string) (string, error) {
	if id, ok := s.valid[token]; ok {
		return id, nil
	}
	return "", errors.New("token is expired")
}

func (s *stubSessions) NewSession() (string, string, error) {
	if s.mintErr != nil {
		return "", "", s.mintErr
	}
	s.minted++
	return "fresh-session", "fresh-token", nil
}

func TestCartSessionKeepsValidToken(t *testing.T) {
	sessions := &stubSessions{valid: map[string]string{"good-token": "session-1"}}
	var seen string
	handler := CartSession(sessions, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CartSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(CartTokenHeader, "good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "session-1" {
		t.Fatalf("expected session-1, got %q", seen)
	}
	if rec.Header().Get(CartTokenHeader) != "good-token" {
		t.Fatalf("expected token echoed back")
	}
	if sessions.minted != 0 {
		t.Fatalf("valid token must not start a new session")
	}
}

func TestCartSessionStartsFreshOnMissingOrInvalidToken(t *testing.T) {
	for _, token := range []string{"", "forged"} {
		sessions := &stubSessions{valid: map[string]string{}}
		var seen string
		handler := CartSession(sessions, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = CartSessionFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		if token != "" {
			req.Header.Set(CartTokenHeader, token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if seen != "fresh-session" {
			t.Fatalf("token %q: expected fresh session, got %q", token, seen)
		}
		if rec.Header().Get(CartTokenHeader) != "fresh-token" {
			t.Fatalf("token %q: expected new token header", token)
		}
	}
}

func TestCartSessionMintFailureIs500(t *testing.T) {
	sessions := &stubSessions{mintErr: errors.New("signing failed")}
	called := false
	handler := CartSession(sessions, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if called {
		t.Fatalf("handler must not run without a session")
	}
}
