package provision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storeplane/internal/cluster"
	"storeplane/internal/store"
)

// Sweeper reconciles records stranded in PROVISIONING by a controller
// crash. It runs once at startup, compares each stranded record against
// the live cluster, and repairs the record to match.
type Sweeper struct {
	repo    store.StoreRepository
	cluster cluster.Client

	// maxAge is how long a record may sit in PROVISIONING before the
	// sweep declares it dead even though the cluster is still working.
	maxAge time.Duration

	// publicIP rebuilds NodePort addresses lost to the crash.
	publicIP string

	log *slog.Logger
}

// NewSweeper creates a Sweeper.
func NewSweeper(repo store.StoreRepository, cl cluster.Client, maxAge time.Duration, publicIP string, log *slog.Logger) *Sweeper {
	return &Sweeper{
		repo:     repo,
		cluster:  cl,
		maxAge:   maxAge,
		publicIP: publicIP,
		log:      log,
	}
}

// Run executes one reconciliation pass. Records are handled in
// isolation: a failure on one is logged and the sweep moves on, so a
// single bad record cannot block recovery of the rest.
func (s *Sweeper) Run(ctx context.Context) error {
	stranded, err := s.repo.ListStoresByStatus(ctx, store.StoreStatusProvisioning)
	if err != nil {
		return fmt.Errorf("failed to list stranded stores: %w", err)
	}

	if len(stranded) == 0 {
		s.log.Info("reconciliation sweep found no stranded stores")
		return nil
	}

	s.log.Info("reconciliation sweep starting", "stranded", len(stranded))

	for _, rec := range stranded {
		if err := s.reconcile(ctx, rec); err != nil {
			s.log.Error("failed to reconcile store", "store_id", rec.ID.String(), "error", err)
		}
	}

	return nil
}

func (s *Sweeper) reconcile(ctx context.Context, rec *store.Store) error {
	namespace := Namespace(rec.ID)
	log := s.log.With("store_id", rec.ID.String(), "namespace", namespace)

	exists, err := s.cluster.NamespaceExists(ctx, namespace)
	if err != nil {
		return &ClusterError{Op: "check namespace", Err: err}
	}
	if !exists {
		log.Warn("namespace missing, marking store failed")
		return s.markFailed(ctx, rec, "system recovery: namespace missing after restart")
	}

	units, err := s.cluster.ListPods(ctx, namespace)
	if err != nil {
		return &ClusterError{Op: "list workload units", Err: err}
	}

	switch ev := Evaluate(units); ev.State {
	case StateReady:
		url := s.recoverURL(ctx, rec, namespace, log)
		log.Info("store is ready in cluster, repairing record", "url", url)
		if err := s.repo.UpdateStoreStatus(ctx, rec.ID, store.StoreStatusReady, url, ""); err != nil {
			return fmt.Errorf("failed to repair store record: %w", err)
		}
		return nil

	case StateFailed:
		log.Warn("store failed in cluster, repairing record", "reason", ev.Message)
		return s.markFailed(ctx, rec, "system recovery: "+ev.Message)

	default:
		age := time.Since(rec.CreatedAt)
		if age > s.maxAge {
			log.Warn("store exceeded provisioning age, marking failed", "age", age.Round(time.Minute))
			return s.markFailed(ctx, rec, "system recovery: provisioning timed out")
		}
		log.Info("store still provisioning, leaving record alone", "age", age.Round(time.Second), "state", ev.Message)
		return nil
	}
}

// recoverURL rebuilds the external address when the crash lost it. A
// Medusa address depends on a NodePort allocated at install time, so it
// is re-resolved from the cluster; if that fails the stored address is
// kept as is.
func (s *Sweeper) recoverURL(ctx context.Context, rec *store.Store, namespace string, log *slog.Logger) string {
	if rec.Type != store.StoreTypeMedusa {
		return rec.URL
	}
	if strings.HasPrefix(rec.URL, "http://") && strings.Contains(rec.URL, s.publicIP+":") {
		return rec.URL
	}

	port, err := s.cluster.ServiceNodePort(ctx, namespace, rec.Name, "medusa")
	if err != nil {
		log.Warn("could not recover service port, keeping stored address", "error", err)
		return rec.URL
	}
	return fmt.Sprintf("http://%s:%d/app/login", s.publicIP, port)
}

func (s *Sweeper) markFailed(ctx context.Context, rec *store.Store, reason string) error {
	if err := s.repo.UpdateStoreStatus(ctx, rec.ID, store.StoreStatusFailed, rec.URL, truncateError(reason)); err != nil {
		return fmt.Errorf("failed to mark store failed: %w", err)
	}
	return nil
}
