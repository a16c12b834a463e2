// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and Controller.
package api

import "time"

// CreateStoreRequest is the request body for provisioning a new store.
type CreateStoreRequest struct {
	Name string `json:"name"`
	// Type must be WOOCOMMERCE or MEDUSA. Defaults to WOOCOMMERCE.
	Type string `json:"type,omitempty"`
}

// StoreResponse represents a store record in API responses.
type StoreResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	URL          string    `json:"url,omitempty"`
	OwnerID      string    `json:"owner_id,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListStoresResponse is the response body for listing stores.
type ListStoresResponse struct {
	Stores []StoreResponse `json:"stores"`
}

// ClusterUnit describes one workload unit observed in the store's namespace.
type ClusterUnit struct {
	Name     string `json:"name"`
	Phase    string `json:"phase"`
	Ready    bool   `json:"ready"`
	Restarts int32  `json:"restarts"`
}

// ClusterStatus is the live classification of a store's namespace.
type ClusterStatus struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Units   []ClusterUnit `json:"units,omitempty"`
}

// StoreStatusResponse is the response body for status queries.
// Status is the reconciled view; ClusterStatus is the raw cluster snapshot.
type StoreStatusResponse struct {
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	ClusterStatus ClusterStatus `json:"cluster_status"`
}

// StoreLogsResponse is the response body for fetching workload logs.
type StoreLogsResponse struct {
	Pods []ClusterUnit     `json:"pods,omitempty"`
	Logs map[string]string `json:"logs"`
}

// AuditEventResponse represents a single audit event.
type AuditEventResponse struct {
	ID        string            `json:"id"`
	Action    string            `json:"action"`
	Entity    string            `json:"entity"`
	EntityID  string            `json:"entity_id"`
	OwnerID   string            `json:"owner_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// AuditTrailResponse is the response body for a store's audit trail.
type AuditTrailResponse struct {
	Events []AuditEventResponse `json:"events"`
}

// DeleteStoreResponse acknowledges a delete.
type DeleteStoreResponse struct {
	Message string `json:"message"`
}

// RetryStoreResponse acknowledges a retry.
type RetryStoreResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// StoreMetricsResponse is the aggregate metrics view over all stores.
type StoreMetricsResponse struct {
	TotalStores           int64            `json:"total_stores"`
	StoresByStatus        map[string]int64 `json:"stores_by_status"`
	StoresByType          map[string]int64 `json:"stores_by_type"`
	AvgProvisioningTimeMs int64            `json:"avg_provisioning_time_ms"`
	FailureRate           string           `json:"failure_rate"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Current int    `json:"current,omitempty"`
	Max     int    `json:"max,omitempty"`
}
