package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx
// This allows us to pass either a connection pool or an active transaction to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// StoreRepository handles persistence of store records.
type StoreRepository interface {
	// CreateStore inserts a new store record.
	CreateStore(ctx context.Context, s *Store) error

	// GetStoreByID returns a store by its ID. sql.ErrNoRows when absent.
	GetStoreByID(ctx context.Context, id uuid.UUID) (*Store, error)

	// GetStoreByURL returns a store by its external address, for conflict checks.
	GetStoreByURL(ctx context.Context, url string) (*Store, error)

	// ListStores returns stores newest first. Empty ownerID lists all owners.
	ListStores(ctx context.Context, ownerID string) ([]*Store, error)

	// ListStoresByStatus returns every store currently in the given status.
	ListStoresByStatus(ctx context.Context, status StoreStatus) ([]*Store, error)

	// UpdateStoreStatus moves a store to the given status, updating the
	// external URL and error message alongside. Bumps updated_at.
	UpdateStoreStatus(ctx context.Context, id uuid.UUID, status StoreStatus, url, errorMessage string) error

	// DeleteStore removes the record unconditionally.
	DeleteStore(ctx context.Context, id uuid.UUID) error

	// CountActiveStores counts an owner's stores with status != FAILED.
	// Used for quota enforcement.
	CountActiveStores(ctx context.Context, ownerID string) (int, error)

	// CountStoresByStatus aggregates record counts per status.
	CountStoresByStatus(ctx context.Context) (map[StoreStatus]int64, error)

	// CountStoresByType aggregates record counts per type.
	CountStoresByType(ctx context.Context) (map[StoreType]int64, error)

	// RecentProvisioningDurations returns updated_at - created_at for stores
	// created after since whose updated_at moved past created_at.
	RecentProvisioningDurations(ctx context.Context, since time.Time) ([]time.Duration, error)
}

// AuditStore handles the append-only audit trail.
type AuditStore interface {
	// AppendAuditEvent inserts a new event. Events are immutable once written.
	AppendAuditEvent(ctx context.Context, e *AuditEvent) error

	// ListAuditEventsByEntity returns events for one record, newest first.
	ListAuditEventsByEntity(ctx context.Context, entityID uuid.UUID, limit int) ([]*AuditEvent, error)

	// ListRecentAuditEvents returns the newest events across all records.
	ListRecentAuditEvents(ctx context.Context, limit int) ([]*AuditEvent, error)
}
