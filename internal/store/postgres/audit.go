package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"storeplane/internal/store"
)

// AppendAuditEvent inserts a new audit row. Metadata is stored as JSONB.
func (s *Store) AppendAuditEvent(ctx context.Context, e *store.AuditEvent) error {
	query := `
		INSERT INTO audit_events (id, action, entity, entity_id, owner_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	meta := e.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		e.ID,
		e.Action,
		e.Entity,
		e.EntityID,
		e.OwnerID,
		metaJSON,
		e.CreatedAt,
	)
	return err
}

const auditColumns = "id, action, entity, entity_id, owner_id, metadata, created_at"

func (s *Store) ListAuditEventsByEntity(ctx context.Context, entityID uuid.UUID, limit int) ([]*store.AuditEvent, error) {
	query := "SELECT " + auditColumns + ` FROM audit_events
		WHERE entity_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAuditEvents(rows)
}

func (s *Store) ListRecentAuditEvents(ctx context.Context, limit int) ([]*store.AuditEvent, error) {
	query := "SELECT " + auditColumns + " FROM audit_events ORDER BY created_at DESC LIMIT $1"

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAuditEvents(rows)
}

func collectAuditEvents(rows *sql.Rows) ([]*store.AuditEvent, error) {
	var out []*store.AuditEvent
	for rows.Next() {
		var e store.AuditEvent
		var metaJSON []byte
		if err := rows.Scan(&e.ID, &e.Action, &e.Entity, &e.EntityID, &e.OwnerID, &metaJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &e.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
