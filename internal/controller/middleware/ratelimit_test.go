package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func requestForOwner(ownerID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/stores", nil)
	ctx := context.WithValue(req.Context(), ownerIDKey{}, ownerID)
	return req.WithContext(ctx)
}

func TestRateLimit_AllowsWithinBudget(t *testing.T) {
	handler := RateLimit(10, 5)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, requestForOwner("owner-1"))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i, rr.Code)
		}
	}
}

func TestRateLimit_RejectsOverBurst(t *testing.T) {
	handler := RateLimit(0.001, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, requestForOwner("owner-1"))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestForOwner("owner-1"))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestRateLimit_OwnersAreIndependent(t *testing.T) {
	handler := RateLimit(0.001, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// owner-1 exhausts their bucket
	handler.ServeHTTP(httptest.NewRecorder(), requestForOwner("owner-1"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestForOwner("owner-1"))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("owner-1 second request: got %d, want 429", rr.Code)
	}

	// owner-2 still has a full bucket
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, requestForOwner("owner-2"))
	if rr.Code != http.StatusOK {
		t.Errorf("owner-2 first request: got %d, want 200", rr.Code)
	}
}

func TestRateLimit_ZeroLimitDisabled(t *testing.T) {
	handler := RateLimit(0, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 20; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, requestForOwner("owner-1"))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i, rr.Code)
		}
	}
}
