package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"storeplane/internal/store"
)

const storeColumns = `id, name, type, status, url, owner_id, db_name, db_user,
	db_password, db_root_password, admin_password, admin_email, error_message,
	created_at, updated_at`

// CreateStore inserts a new store row.
func (s *Store) CreateStore(ctx context.Context, st *store.Store) error {
	query := `
		INSERT INTO stores (id, name, type, status, url, owner_id, db_name, db_user,
			db_password, db_root_password, admin_password, admin_email, error_message,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := s.db.ExecContext(ctx, query,
		st.ID,
		st.Name,
		st.Type,
		st.Status,
		st.URL,
		st.OwnerID,
		st.DBName,
		st.DBUser,
		st.DBPassword,
		st.DBRootPassword,
		st.AdminPassword,
		st.AdminEmail,
		st.ErrorMessage,
		st.CreatedAt,
		st.UpdatedAt,
	)
	return err
}

func scanStore(row interface {
	Scan(dest ...interface{}) error
}) (*store.Store, error) {
	var st store.Store
	err := row.Scan(
		&st.ID,
		&st.Name,
		&st.Type,
		&st.Status,
		&st.URL,
		&st.OwnerID,
		&st.DBName,
		&st.DBUser,
		&st.DBPassword,
		&st.DBRootPassword,
		&st.AdminPassword,
		&st.AdminEmail,
		&st.ErrorMessage,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) GetStoreByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	query := "SELECT " + storeColumns + " FROM stores WHERE id = $1"
	return scanStore(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) GetStoreByURL(ctx context.Context, url string) (*store.Store, error) {
	query := "SELECT " + storeColumns + " FROM stores WHERE url = $1"
	return scanStore(s.db.QueryRowContext(ctx, query, url))
}

// ListStores returns stores newest first. Empty ownerID lists all owners.
func (s *Store) ListStores(ctx context.Context, ownerID string) ([]*store.Store, error) {
	query := "SELECT " + storeColumns + " FROM stores ORDER BY created_at DESC"
	args := []interface{}{}
	if ownerID != "" {
		query = "SELECT " + storeColumns + " FROM stores WHERE owner_id = $1 ORDER BY created_at DESC"
		args = append(args, ownerID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStores(rows)
}

func (s *Store) ListStoresByStatus(ctx context.Context, status store.StoreStatus) ([]*store.Store, error) {
	query := "SELECT " + storeColumns + " FROM stores WHERE status = $1 ORDER BY created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStores(rows)
}

func collectStores(rows *sql.Rows) ([]*store.Store, error) {
	var out []*store.Store
	for rows.Next() {
		st, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// UpdateStoreStatus moves a store to the given status.
// URL and error message are written alongside so READY and FAILED
// transitions land in a single statement.
func (s *Store) UpdateStoreStatus(ctx context.Context, id uuid.UUID, status store.StoreStatus, url, errorMessage string) error {
	query := `
		UPDATE stores
		SET status = $2, url = $3, error_message = $4, updated_at = $5
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query, id, status, url, errorMessage, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteStore(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM stores WHERE id = $1", id)
	return err
}

// CountActiveStores counts an owner's stores with status != FAILED.
func (s *Store) CountActiveStores(ctx context.Context, ownerID string) (int, error) {
	query := "SELECT COUNT(*) FROM stores WHERE owner_id = $1 AND status <> $2"

	var count int
	err := s.db.QueryRowContext(ctx, query, ownerID, store.StoreStatusFailed).Scan(&count)
	return count, err
}

func (s *Store) CountStoresByStatus(ctx context.Context) (map[store.StoreStatus]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM stores GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[store.StoreStatus]int64)
	for rows.Next() {
		var status store.StoreStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		out[status] = count
	}
	return out, rows.Err()
}

func (s *Store) CountStoresByType(ctx context.Context) (map[store.StoreType]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT type, COUNT(*) FROM stores GROUP BY type")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[store.StoreType]int64)
	for rows.Next() {
		var typ store.StoreType
		var count int64
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, err
		}
		out[typ] = count
	}
	return out, rows.Err()
}

// RecentProvisioningDurations returns updated_at - created_at for stores
// created after since. Records whose updated_at never moved are skipped.
func (s *Store) RecentProvisioningDurations(ctx context.Context, since time.Time) ([]time.Duration, error) {
	query := `
		SELECT created_at, updated_at FROM stores
		WHERE created_at >= $1 AND updated_at > created_at
	`

	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Duration
	for rows.Next() {
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&createdAt, &updatedAt); err != nil {
			return nil, err
		}
		out = append(out, updatedAt.Sub(createdAt))
	}
	return out, rows.Err()
}
