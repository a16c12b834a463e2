package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"storeplane/internal/controller/middleware"
	"storeplane/internal/store"
	"storeplane/pkg/api"
)

// CreateStore handles POST /stores.
// The record is persisted synchronously; provisioning continues in the
// background, so the response is 202 with status PROVISIONING.
func (h *Handlers) CreateStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	storeType := store.StoreType(req.Type)
	if req.Type == "" {
		storeType = store.StoreTypeWooCommerce
	}

	ownerID := middleware.OwnerIDFromContext(ctx)
	s, err := h.lifecycle.Create(ctx, ownerID, req.Name, storeType)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJson(w, http.StatusAccepted, toStoreResponse(s))
}

// ListStores handles GET /stores. Results are scoped to the caller.
func (h *Handlers) ListStores(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stores, err := h.lifecycle.List(ctx, middleware.OwnerIDFromContext(ctx))
	if err != nil {
		h.handleError(w, err)
		return
	}

	resp := api.ListStoresResponse{Stores: make([]api.StoreResponse, 0, len(stores))}
	for _, s := range stores {
		resp.Stores = append(resp.Stores, toStoreResponse(s))
	}
	h.respondJson(w, http.StatusOK, resp)
}

// GetStore handles GET /stores/{id}.
func (h *Handlers) GetStore(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid store id", http.StatusBadRequest)
		return
	}

	s, err := h.lifecycle.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, toStoreResponse(s))
}

// GetStoreStatus handles GET /stores/{id}/status.
// It returns the record's status reconciled against a live cluster
// evaluation, repairing the record when the two disagree.
func (h *Handlers) GetStoreStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid store id", http.StatusBadRequest)
		return
	}

	result, err := h.lifecycle.Status(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	units := make([]api.ClusterUnit, 0, len(result.Units))
	for _, u := range result.Units {
		units = append(units, api.ClusterUnit{Name: u.Name, Phase: u.Phase, Ready: u.Ready, Restarts: u.Restarts})
	}

	h.respondJson(w, http.StatusOK, api.StoreStatusResponse{
		ID:     result.Store.ID.String(),
		Status: string(result.Store.Status),
		ClusterStatus: api.ClusterStatus{
			Status:  string(result.Cluster.State),
			Message: result.Cluster.Message,
			Units:   units,
		},
	})
}

// GetStoreLogs handles GET /stores/{id}/logs.
// Optional query params: pod (restrict to one unit), tail (line count).
func (h *Handlers) GetStoreLogs(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid store id", http.StatusBadRequest)
		return
	}

	tail := int64(200)
	if raw := r.URL.Query().Get("tail"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			h.httpError(w, "Invalid tail value", http.StatusBadRequest)
			return
		}
		tail = parsed
	}

	result, err := h.lifecycle.Logs(r.Context(), id, r.URL.Query().Get("pod"), tail)
	if err != nil {
		h.handleError(w, err)
		return
	}

	pods := make([]api.ClusterUnit, 0, len(result.Units))
	for _, u := range result.Units {
		pods = append(pods, api.ClusterUnit{Name: u.Name, Phase: u.Phase, Ready: u.Ready, Restarts: u.Restarts})
	}
	h.respondJson(w, http.StatusOK, api.StoreLogsResponse{Pods: pods, Logs: result.Logs})
}

// GetStoreAudit handles GET /stores/{id}/audit.
func (h *Handlers) GetStoreAudit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid store id", http.StatusBadRequest)
		return
	}

	// The record must exist; an empty trail for a live store is valid.
	if _, err := h.lifecycle.Get(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	events, err := h.audit.Trail(r.Context(), id, 0)
	if err != nil {
		h.httpError(w, "Failed to load audit trail", http.StatusInternalServerError)
		return
	}

	resp := api.AuditTrailResponse{Events: make([]api.AuditEventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, api.AuditEventResponse{
			ID:        e.ID.String(),
			Action:    e.Action,
			Entity:    e.Entity,
			EntityID:  e.EntityID.String(),
			OwnerID:   e.OwnerID,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}
	h.respondJson(w, http.StatusOK, resp)
}

// GetRecentAudit handles GET /audit. It returns the newest events across
// every store, for operators watching the whole fleet.
func (h *Handlers) GetRecentAudit(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.httpError(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	events, err := h.audit.Recent(r.Context(), limit)
	if err != nil {
		h.httpError(w, "Failed to load audit trail", http.StatusInternalServerError)
		return
	}

	resp := api.AuditTrailResponse{Events: make([]api.AuditEventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, api.AuditEventResponse{
			ID:        e.ID.String(),
			Action:    e.Action,
			Entity:    e.Entity,
			EntityID:  e.EntityID.String(),
			OwnerID:   e.OwnerID,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}
	h.respondJson(w, http.StatusOK, resp)
}

// DeleteStore handles DELETE /stores/{id}.
func (h *Handlers) DeleteStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid store id", http.StatusBadRequest)
		return
	}

	if err := h.lifecycle.Delete(ctx, middleware.OwnerIDFromContext(ctx), id); err != nil {
		h.handleError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, api.DeleteStoreResponse{Message: "Store deleted successfully"})
}

// RetryStore handles POST /stores/{id}/retry.
func (h *Handlers) RetryStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid store id", http.StatusBadRequest)
		return
	}

	s, err := h.lifecycle.Retry(ctx, middleware.OwnerIDFromContext(ctx), id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.respondJson(w, http.StatusAccepted, api.RetryStoreResponse{
		ID:     s.ID.String(),
		Status: string(s.Status),
	})
}

// GetStoreMetrics handles GET /metrics/stores.
func (h *Handlers) GetStoreMetrics(w http.ResponseWriter, r *http.Request) {
	report, err := h.lifecycle.Metrics(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	byStatus := make(map[string]int64, len(report.StoresByStatus))
	for status, n := range report.StoresByStatus {
		byStatus[string(status)] = n
	}
	byType := make(map[string]int64, len(report.StoresByType))
	for typ, n := range report.StoresByType {
		byType[string(typ)] = n
	}

	h.respondJson(w, http.StatusOK, api.StoreMetricsResponse{
		TotalStores:           report.TotalStores,
		StoresByStatus:        byStatus,
		StoresByType:          byType,
		AvgProvisioningTimeMs: report.AvgProvisioningTimeMS,
		FailureRate:           report.FailureRate,
	})
}
