// Package store contains the database layer for storeplane.
package store

import (
	"time"

	"github.com/google/uuid"
)

// StoreType selects which installable package a store runs.
type StoreType string

const (
	StoreTypeWooCommerce StoreType = "WOOCOMMERCE"
	StoreTypeMedusa      StoreType = "MEDUSA"
)

// Valid reports whether t is a supported store type.
func (t StoreType) Valid() bool {
	return t == StoreTypeWooCommerce || t == StoreTypeMedusa
}

// StoreStatus represents the lifecycle state of a store.
// Legal transitions: PROVISIONING -> READY, PROVISIONING -> FAILED,
// FAILED -> PROVISIONING (retry).
type StoreStatus string

const (
	StoreStatusProvisioning StoreStatus = "PROVISIONING"
	StoreStatusReady        StoreStatus = "READY"
	StoreStatusFailed       StoreStatus = "FAILED"
)

// Store represents a provisioned (or provisioning) store instance.
// One Kubernetes namespace exists per Store, named store-<ID>.
type Store struct {
	ID      uuid.UUID
	Name    string
	Type    StoreType
	Status  StoreStatus
	URL     string
	OwnerID string

	// Generated secrets. Written once at creation, never regenerated.
	DBName         string
	DBUser         string
	DBPassword     string
	DBRootPassword string
	AdminPassword  string
	AdminEmail     string

	// ErrorMessage is set only when Status is FAILED. Truncated before persist.
	ErrorMessage string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuditEvent is an append-only record of a lifecycle transition.
// Events are never mutated or deleted.
type AuditEvent struct {
	ID        uuid.UUID
	Action    string
	Entity    string
	EntityID  uuid.UUID
	OwnerID   string
	Metadata  map[string]string
	CreatedAt time.Time
}

// Audit actions emitted by the lifecycle controller.
const (
	ActionStoreCreateRequested = "STORE_CREATE_REQUESTED"
	ActionStoreProvisioned     = "STORE_PROVISIONED"
	ActionStoreProvisionFailed = "STORE_PROVISION_FAILED"
	ActionStoreDeleted         = "STORE_DELETED"
	ActionStoreRetryRequested  = "STORE_RETRY_REQUESTED"
)
