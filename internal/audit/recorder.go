// Package audit appends immutable lifecycle events for store records.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"storeplane/internal/store"
)

// Recorder writes audit events as a fire-and-forget side effect.
// Append failures are logged and never propagated to the caller, so a
// broken audit trail can never fail a lifecycle operation.
type Recorder struct {
	store store.AuditStore
	log   *slog.Logger
}

// NewRecorder creates a Recorder over the given audit store.
func NewRecorder(s store.AuditStore, log *slog.Logger) *Recorder {
	return &Recorder{store: s, log: log}
}

// Record appends one event for the given entity.
func (r *Recorder) Record(ctx context.Context, action string, entityID uuid.UUID, ownerID string, metadata map[string]string) {
	event := &store.AuditEvent{
		ID:        uuid.New(),
		Action:    action,
		Entity:    "Store",
		EntityID:  entityID,
		OwnerID:   ownerID,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	if err := r.store.AppendAuditEvent(ctx, event); err != nil {
		r.log.Error("failed to append audit event", "action", action, "entity_id", entityID, "error", err)
		return
	}

	r.log.Info("audit event recorded", "action", action, "entity_id", entityID)
}

// Trail returns the newest events for one entity.
func (r *Recorder) Trail(ctx context.Context, entityID uuid.UUID, limit int) ([]*store.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.store.ListAuditEventsByEntity(ctx, entityID, limit)
}

// Recent returns the newest events across all entities.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]*store.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.store.ListRecentAuditEvents(ctx, limit)
}
