package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"storeplane/internal/logger"
	"storeplane/internal/store"
)

type mockAuditStore struct {
	appended  []*store.AuditEvent
	appendErr error
}

func (m *mockAuditStore) AppendAuditEvent(ctx context.Context, e *store.AuditEvent) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, e)
	return nil
}

func (m *mockAuditStore) ListAuditEventsByEntity(ctx context.Context, entityID uuid.UUID, limit int) ([]*store.AuditEvent, error) {
	var out []*store.AuditEvent
	for _, e := range m.appended {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockAuditStore) ListRecentAuditEvents(ctx context.Context, limit int) ([]*store.AuditEvent, error) {
	return m.appended, nil
}

func TestRecord_AppendsEvent(t *testing.T) {
	mock := &mockAuditStore{}
	r := NewRecorder(mock, logger.New())
	entityID := uuid.New()

	r.Record(context.Background(), store.ActionStoreCreateRequested, entityID, "user-1", map[string]string{"name": "my-shop"})

	if len(mock.appended) != 1 {
		t.Fatalf("expected 1 event, got %d", len(mock.appended))
	}

	e := mock.appended[0]
	if e.Action != store.ActionStoreCreateRequested {
		t.Errorf("unexpected action %s", e.Action)
	}
	if e.EntityID != entityID {
		t.Errorf("unexpected entity id %s", e.EntityID)
	}
	if e.Entity != "Store" {
		t.Errorf("unexpected entity %s", e.Entity)
	}
	if e.Metadata["name"] != "my-shop" {
		t.Errorf("unexpected metadata %v", e.Metadata)
	}
}

func TestRecord_SwallowsAppendFailure(t *testing.T) {
	mock := &mockAuditStore{appendErr: errors.New("db down")}
	r := NewRecorder(mock, logger.New())

	// Must not panic or propagate; audit is fire-and-forget.
	r.Record(context.Background(), store.ActionStoreDeleted, uuid.New(), "user-1", nil)
}

func TestTrail_FiltersByEntity(t *testing.T) {
	mock := &mockAuditStore{}
	r := NewRecorder(mock, logger.New())
	a := uuid.New()
	b := uuid.New()

	r.Record(context.Background(), store.ActionStoreCreateRequested, a, "u", nil)
	r.Record(context.Background(), store.ActionStoreProvisioned, a, "u", nil)
	r.Record(context.Background(), store.ActionStoreCreateRequested, b, "u", nil)

	events, err := r.Trail(context.Background(), a, 0)
	if err != nil {
		t.Fatalf("Trail failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events for entity a, got %d", len(events))
	}
}
