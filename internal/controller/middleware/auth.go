// Package middleware contains HTTP middleware for the controller.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"storeplane/pkg/api"
)

// ownerIDKey is the context key for the owner ID.
type ownerIDKey struct{}

// Auth extracts the owner identity from the request. Every store
// operation is scoped by owner. Authentication itself happens upstream;
// this layer trusts the X-User-ID header the gateway injects.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Header.Get("X-User-ID")
		if ownerID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(api.ErrorResponse{
				Error: "missing owner identity",
				Code:  "401",
			})
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey{}, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OwnerIDFromContext extracts the owner ID from the context.
func OwnerIDFromContext(ctx context.Context) string {
	if v := ctx.Value(ownerIDKey{}); v != nil {
		return v.(string)
	}
	return ""
}
