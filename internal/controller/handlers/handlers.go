// Package handlers contains HTTP handlers for the controller API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"storeplane/internal/provision"
	"storeplane/internal/store"
	"storeplane/pkg/api"
)

// Lifecycle is the store lifecycle surface the handlers drive.
// Satisfied by *provision.Provisioner; tests substitute a mock.
type Lifecycle interface {
	Create(ctx context.Context, ownerID, name string, storeType store.StoreType) (*store.Store, error)
	List(ctx context.Context, ownerID string) ([]*store.Store, error)
	Get(ctx context.Context, id uuid.UUID) (*store.Store, error)
	Status(ctx context.Context, id uuid.UUID) (*provision.StatusResult, error)
	Logs(ctx context.Context, id uuid.UUID, unit string, tailLines int64) (*provision.LogsResult, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	Retry(ctx context.Context, ownerID string, id uuid.UUID) (*store.Store, error)
	Metrics(ctx context.Context) (*provision.MetricsReport, error)
}

// AuditTrail exposes the audit log for read endpoints.
type AuditTrail interface {
	Trail(ctx context.Context, entityID uuid.UUID, limit int) ([]*store.AuditEvent, error)
	Recent(ctx context.Context, limit int) ([]*store.AuditEvent, error)
}

// Pinger reports database connectivity for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	lifecycle Lifecycle
	audit     AuditTrail
	db        Pinger
}

// New creates a new Handlers instance.
func New(lifecycle Lifecycle, auditTrail AuditTrail, db Pinger) *Handlers {
	return &Handlers{lifecycle: lifecycle, audit: auditTrail, db: db}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

// handleError maps lifecycle errors to HTTP statuses.
func (h *Handlers) handleError(w http.ResponseWriter, err error) {
	var (
		validationErr *provision.ValidationError
		quotaErr      *provision.QuotaExceededError
		authErr       *provision.AuthorizationError
		notFoundErr   *provision.NotFoundError
		conflictErr   *provision.ConflictError
		clusterErr    *provision.ClusterError
	)

	switch {
	case errors.As(err, &validationErr):
		h.httpError(w, validationErr.Reason, http.StatusBadRequest)
	case errors.As(err, &quotaErr):
		h.respondJson(w, http.StatusTooManyRequests, api.ErrorResponse{
			Error:   "store quota exceeded",
			Code:    strconv.Itoa(http.StatusTooManyRequests),
			Details: quotaErr.Error(),
			Current: quotaErr.Current,
			Max:     quotaErr.Max,
		})
	case errors.As(err, &authErr):
		h.httpError(w, authErr.Error(), http.StatusForbidden)
	case errors.As(err, &notFoundErr):
		h.httpError(w, "store not found", http.StatusNotFound)
	case errors.As(err, &conflictErr):
		h.httpError(w, conflictErr.Error(), http.StatusConflict)
	case errors.As(err, &clusterErr):
		h.httpError(w, "cluster operation failed", http.StatusBadGateway)
	default:
		h.httpError(w, "internal error", http.StatusInternalServerError)
	}
}

// toStoreResponse maps a record to its API shape. Secrets never leave
// the database layer.
func toStoreResponse(s *store.Store) api.StoreResponse {
	return api.StoreResponse{
		ID:           s.ID.String(),
		Name:         s.Name,
		Type:         string(s.Type),
		Status:       string(s.Status),
		URL:          s.URL,
		OwnerID:      s.OwnerID,
		ErrorMessage: s.ErrorMessage,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
