package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuth_MissingOwnerHeader(t *testing.T) {
	handler := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/stores", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}
}

func TestAuth_OwnerInjectedIntoContext(t *testing.T) {
	var gotOwner string
	handler := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwner = OwnerIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/stores", nil)
	req.Header.Set("X-User-ID", "owner-42")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}
	if gotOwner != "owner-42" {
		t.Errorf("owner in context = %q, want owner-42", gotOwner)
	}
}

func TestOwnerIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/stores", nil)
	if got := OwnerIDFromContext(req.Context()); got != "" {
		t.Errorf("OwnerIDFromContext on bare context = %q, want empty", got)
	}
}
