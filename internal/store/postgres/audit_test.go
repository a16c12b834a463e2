package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"storeplane/internal/store"
)

func TestAppendAuditEvent_Success(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	e := &store.AuditEvent{
		ID:        uuid.New(),
		Action:    store.ActionStoreCreateRequested,
		Entity:    "Store",
		EntityID:  uuid.New(),
		OwnerID:   "user-1",
		Metadata:  map[string]string{"name": "my-shop"},
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO audit_events`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.AppendAuditEvent(context.Background(), e); err != nil {
		t.Fatalf("AppendAuditEvent failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAppendAuditEvent_NilMetadata(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	e := &store.AuditEvent{
		ID:        uuid.New(),
		Action:    store.ActionStoreDeleted,
		Entity:    "Store",
		EntityID:  uuid.New(),
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO audit_events`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.AppendAuditEvent(context.Background(), e); err != nil {
		t.Fatalf("AppendAuditEvent with nil metadata failed: %v", err)
	}
}

func TestListAuditEventsByEntity(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	entityID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM audit_events`).
		WithArgs(entityID, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "action", "entity", "entity_id", "owner_id", "metadata", "created_at"}).
			AddRow(uuid.New(), "STORE_PROVISIONED", "Store", entityID, "user-1", []byte(`{"duration_ms":"4200"}`), now).
			AddRow(uuid.New(), "STORE_CREATE_REQUESTED", "Store", entityID, "user-1", []byte(`{}`), now.Add(-time.Minute)))

	events, err := s.ListAuditEventsByEntity(context.Background(), entityID, 50)
	if err != nil {
		t.Fatalf("ListAuditEventsByEntity failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Action != store.ActionStoreProvisioned {
		t.Errorf("unexpected action %s", events[0].Action)
	}
	if events[0].Metadata["duration_ms"] != "4200" {
		t.Errorf("metadata not decoded: %v", events[0].Metadata)
	}
}
