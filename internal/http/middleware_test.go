package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kurodev-web-tools/attendance-management-system/internal/application"
)

func TestRequireSession(t *testing.T) {
	t.Parallel()

	t.Run("rejects requests without a token", func(t *testing.T) {
		t.Parallel()

		handler := RequireSession(validatorStub{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called without credentials")
		}))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/attendance/today", nil))

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("rejects invalid sessions", func(t *testing.T) {
		t.Parallel()

		handler := RequireSession(validatorStub{err: application.ErrUnauthorized}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called for invalid sessions")
		}))

		req := httptest.NewRequest(http.MethodGet, "/attendance/today", nil)
		req.Header.Set("Authorization", "Bearer stale")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("maps validator failures to 500", func(t *testing.T) {
		t.Parallel()

		handler := RequireSession(validatorStub{err: errors.New("db down")}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not be called on validator failure")
		}))

		req := httptest.NewRequest(http.MethodGet, "/attendance/today", nil)
		req.Header.Set("Authorization", "Bearer tok")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", recorder.Code)
		}
	})

	t.Run("attaches the principal from a header token", func(t *testing.T) {
		t.Parallel()

		expected := application.Principal{UserID: "user-1", IsAdmin: true}
		var captured application.Principal
		handler := RequireSession(validatorStub{principal: expected}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured, _ = PrincipalFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/attendance/today", nil)
		req.Header.Set("Authorization", "Bearer tok")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if captured != expected {
			t.Fatalf("expected principal %+v, got %+v", expected, captured)
		}
	})

	t.Run("accepts the cookie token", func(t *testing.T) {
		t.Parallel()

		handler := RequireSession(validatorStub{principal: application.Principal{UserID: "user-1"}}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/attendance/today", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "tok"})
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	handler := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) == nil {
			t.Fatal("expected a request scoped logger in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/attendance/today", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}
