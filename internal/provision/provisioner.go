package provision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"storeplane/internal/audit"
	"storeplane/internal/cluster"
	"storeplane/internal/installer"
	"storeplane/internal/logger"
	"storeplane/internal/store"
)

// maxErrorMessageLength bounds the persisted failure reason.
const maxErrorMessageLength = 500

// Config carries the tunables the lifecycle controller needs.
type Config struct {
	// BaseDomain is the domain under which store subdomains are issued.
	BaseDomain string

	// PublicIP is the address used for NodePort-exposed stores.
	PublicIP string

	// MaxStoresPerOwner caps non-failed stores per owner.
	MaxStoresPerOwner int

	// PollInterval and PollMaxAttempts bound the readiness loop.
	// ProvisionTimeout is the wall-clock ceiling; whichever budget is
	// exhausted first fails the pipeline.
	PollInterval     time.Duration
	PollMaxAttempts  int
	ProvisionTimeout time.Duration

	// MaxConcurrent caps simultaneously running provisioning pipelines.
	// Zero or negative falls back to a default.
	MaxConcurrent int
}

const defaultMaxConcurrent = 8

// Provisioner owns the store lifecycle: synchronous record creation,
// the detached provisioning pipeline, deletion, and retry.
type Provisioner struct {
	repo      store.StoreRepository
	cluster   cluster.Client
	installer installer.Installer
	audit     *audit.Recorder
	cfg       Config
	log       *slog.Logger

	durations metric.Float64Histogram
	outcomes  metric.Int64Counter

	// wg tracks detached pipeline goroutines so shutdown can drain them.
	wg sync.WaitGroup

	// sem bounds how many pipelines run at once.
	sem chan struct{}
}

// New creates a Provisioner. Metric instrument registration failures are
// logged and the instrument is skipped; they never block startup.
func New(repo store.StoreRepository, cl cluster.Client, inst installer.Installer, rec *audit.Recorder, cfg Config, log *slog.Logger) *Provisioner {
	p := &Provisioner{
		repo:      repo,
		cluster:   cl,
		installer: inst,
		audit:     rec,
		cfg:       cfg,
		log:       log,
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	p.sem = make(chan struct{}, maxConcurrent)

	meter := otel.Meter("provisioner")

	durations, err := meter.Float64Histogram("store_provision_duration_seconds",
		metric.WithDescription("Wall-clock duration of store provisioning pipelines"))
	if err != nil {
		log.Warn("failed to register provisioning duration histogram", "error", err)
	} else {
		p.durations = durations
	}

	outcomes, err := meter.Int64Counter("store_provision_outcomes_total",
		metric.WithDescription("Provisioning pipeline outcomes by result"))
	if err != nil {
		log.Warn("failed to register provisioning outcome counter", "error", err)
	} else {
		p.outcomes = outcomes
	}

	return p
}

// Namespace returns the cluster namespace that holds one store's workloads.
func Namespace(id uuid.UUID) string {
	return "store-" + id.String()
}

var (
	invalidNameChars = regexp.MustCompile(`[^a-z0-9-]`)
	leadingNonLetter = regexp.MustCompile(`^[^a-z]+`)
	dashRuns         = regexp.MustCompile(`-+`)
)

// sanitizeName normalizes a raw store name into a form usable as a
// subdomain label and release name. The input must be 3..100 characters
// and keep at least 3 valid characters after normalization.
func sanitizeName(raw string) (string, error) {
	if len(strings.TrimSpace(raw)) < 3 {
		return "", &ValidationError{Reason: "store name must be at least 3 characters"}
	}
	if len(raw) > 100 {
		return "", &ValidationError{Reason: "store name must be less than 100 characters"}
	}

	name := strings.ToLower(strings.TrimSpace(raw))
	name = invalidNameChars.ReplaceAllString(name, "-")
	name = leadingNonLetter.ReplaceAllString(name, "")
	name = dashRuns.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if len(name) > 50 {
		name = name[:50]
		name = strings.TrimRight(name, "-")
	}

	if len(name) < 3 {
		return "", &ValidationError{Reason: "store name must contain at least 3 valid characters (letters or numbers)"}
	}
	return name, nil
}

// Create validates the request, persists a PROVISIONING record, and kicks
// off the pipeline in a detached goroutine. It returns as soon as the
// record exists; callers observe progress through Get and Status.
func (p *Provisioner) Create(ctx context.Context, ownerID, rawName string, storeType store.StoreType) (*store.Store, error) {
	if ownerID == "" {
		return nil, &AuthorizationError{Reason: "missing owner identity"}
	}
	if !storeType.Valid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("invalid store type %q, must be %s or %s", storeType, store.StoreTypeWooCommerce, store.StoreTypeMedusa)}
	}

	name, err := sanitizeName(rawName)
	if err != nil {
		return nil, err
	}

	active, err := p.repo.CountActiveStores(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count stores for owner %s: %w", ownerID, err)
	}
	if active >= p.cfg.MaxStoresPerOwner {
		return nil, &QuotaExceededError{Current: active, Max: p.cfg.MaxStoresPerOwner}
	}

	url := fmt.Sprintf("https://%s.%s", name, p.cfg.BaseDomain)
	if _, err := p.repo.GetStoreByURL(ctx, url); err == nil {
		return nil, &ConflictError{URL: url}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check address %s: %w", url, err)
	}

	dbPassword, err := cluster.GeneratePassword(20)
	if err != nil {
		return nil, fmt.Errorf("failed to generate database password: %w", err)
	}
	dbRootPassword, err := cluster.GeneratePassword(20)
	if err != nil {
		return nil, fmt.Errorf("failed to generate database root password: %w", err)
	}
	adminPassword, err := cluster.GeneratePassword(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate admin password: %w", err)
	}

	dbName, adminEmail := "wordpress", "admin"
	if storeType == store.StoreTypeMedusa {
		dbName, adminEmail = "medusa", "admin@medusa.local"
	}

	now := time.Now().UTC()
	s := &store.Store{
		ID:             uuid.New(),
		Name:           name,
		Type:           storeType,
		Status:         store.StoreStatusProvisioning,
		URL:            url,
		OwnerID:        ownerID,
		DBName:         dbName,
		DBUser:         dbName,
		DBPassword:     dbPassword,
		DBRootPassword: dbRootPassword,
		AdminPassword:  adminPassword,
		AdminEmail:     adminEmail,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := p.repo.CreateStore(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create store record: %w", err)
	}

	p.audit.Record(ctx, store.ActionStoreCreateRequested, s.ID, ownerID, map[string]string{
		"name": name,
		"type": string(storeType),
		"url":  url,
	})

	p.wg.Add(1)
	go p.runProvision(s)

	return s, nil
}

// runProvision drives one store through the pipeline. It runs detached
// from the request that started it: failures are persisted, never
// returned, and a panic in the pipeline marks the store FAILED instead
// of taking the process down.
func (p *Provisioner) runProvision(s *store.Store) {
	defer p.wg.Done()

	p.sem <- struct{}{}
	defer func() { <-p.sem }()

	ctx := context.Background()
	log := logger.WithStore(p.log, s.ID.String()).With("store_type", string(s.Type))
	start := time.Now()

	tracer := otel.Tracer("provisioner")
	ctx, span := tracer.Start(ctx, "provision_store",
		trace.WithAttributes(
			attribute.String("store.id", s.ID.String()),
			attribute.String("store.name", s.Name),
			attribute.String("store.type", string(s.Type)),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			log.Error("provisioning pipeline panicked", "panic", r)
			p.finishFailed(ctx, s, fmt.Sprintf("internal error: %v", r), start)
		}
	}()

	url, err := p.pipeline(ctx, s, log, start)
	if err != nil {
		span.RecordError(err)
		log.Error("provisioning failed", "error", err, "duration", time.Since(start))
		p.finishFailed(ctx, s, err.Error(), start)
		return
	}

	if err := p.repo.UpdateStoreStatus(ctx, s.ID, store.StoreStatusReady, url, ""); err != nil {
		// The workload is up but the record could not be moved. The
		// startup sweep repairs this on the next restart.
		log.Error("store is ready but status update failed", "error", err)
		return
	}

	duration := time.Since(start)
	log.Info("store provisioned", "url", url, "duration", duration)

	p.audit.Record(ctx, store.ActionStoreProvisioned, s.ID, s.OwnerID, map[string]string{
		"namespace":   Namespace(s.ID),
		"url":         url,
		"duration_ms": fmt.Sprintf("%d", duration.Milliseconds()),
	})
	p.recordOutcome(ctx, "success", duration)
}

// pipeline provisions cluster resources for s and returns the store's
// external address once everything is ready.
func (p *Provisioner) pipeline(ctx context.Context, s *store.Store, log *slog.Logger, start time.Time) (string, error) {
	namespace := Namespace(s.ID)
	domain := fmt.Sprintf("%s.%s", s.Name, p.cfg.BaseDomain)

	if err := p.cluster.EnsureNamespace(ctx, namespace); err != nil {
		return "", &ClusterError{Op: "create namespace", Err: err}
	}

	chart := strings.ToLower(string(s.Type))
	if err := p.installer.Install(ctx, s.Name, namespace, chart, p.chartValues(s, domain)); err != nil {
		return "", &ClusterError{Op: "install release", Err: err}
	}

	if err := p.waitForReady(ctx, namespace, log, start); err != nil {
		return "", err
	}

	switch s.Type {
	case store.StoreTypeMedusa:
		port, err := p.cluster.ServiceNodePort(ctx, namespace, s.Name, "medusa")
		if err != nil {
			return "", &ClusterError{Op: "resolve service port", Err: err}
		}
		return fmt.Sprintf("http://%s:%d/app/login", p.cfg.PublicIP, port), nil
	default:
		url := fmt.Sprintf("https://%s", domain)
		p.rewriteSiteURL(ctx, s, namespace, url, log)
		return url, nil
	}
}

// waitForReady polls the namespace until the evaluator reports READY.
// The loop is bounded by both the attempt budget and the wall-clock
// timeout measured from pipeline start.
func (p *Provisioner) waitForReady(ctx context.Context, namespace string, log *slog.Logger, start time.Time) error {
	deadline := start.Add(p.cfg.ProvisionTimeout)

	for attempt := 1; attempt <= p.cfg.PollMaxAttempts; attempt++ {
		units, err := p.cluster.ListPods(ctx, namespace)
		if err != nil {
			return &ClusterError{Op: "list workload units", Err: err}
		}

		ev := Evaluate(units)
		log.Info("readiness check", "attempt", attempt, "max_attempts", p.cfg.PollMaxAttempts, "state", ev.State, "message", ev.Message)

		switch ev.State {
		case StateReady:
			return nil
		case StateFailed:
			return fmt.Errorf("store deployment failed: %s", ev.Message)
		}

		if time.Now().After(deadline) {
			return &TimeoutError{After: p.cfg.ProvisionTimeout}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.cfg.PollInterval):
		}
	}

	return &TimeoutError{After: time.Since(start).Round(time.Second)}
}

// rewriteSiteURL points a WordPress install at its public subdomain via a
// one-shot wp-cli job. Best effort: the chart defaults work without it,
// so a failure is logged and provisioning continues.
func (p *Provisioner) rewriteSiteURL(ctx context.Context, s *store.Store, namespace, url string, log *slog.Logger) {
	script := fmt.Sprintf("wp option update siteurl %s --allow-root && wp option update home %s --allow-root", url, url)
	err := p.cluster.RunJob(ctx, namespace, s.Name+"-siteurl", "wordpress:cli", []string{"sh", "-c", script})
	if err != nil {
		log.Warn("failed to update site address, keeping chart defaults", "error", err)
		return
	}
	log.Info("site address updated", "url", url)
}

// chartValues builds the installer values for one store.
func (p *Provisioner) chartValues(s *store.Store, domain string) map[string]string {
	values := map[string]string{
		"ingress.host":   domain,
		"db.name":        s.DBName,
		"db.user":        s.DBUser,
		"db.password":    s.DBPassword,
		"admin.password": s.AdminPassword,
		"admin.email":    s.AdminEmail,
	}
	if s.Type == store.StoreTypeWooCommerce {
		values["db.rootPassword"] = s.DBRootPassword
	}
	return values
}

// finishFailed persists a FAILED status with a bounded error message and
// records the failure outcome.
func (p *Provisioner) finishFailed(ctx context.Context, s *store.Store, reason string, start time.Time) {
	reason = truncateError(reason)
	if err := p.repo.UpdateStoreStatus(ctx, s.ID, store.StoreStatusFailed, s.URL, reason); err != nil {
		p.log.Error("failed to mark store as failed", "store_id", s.ID.String(), "error", err)
	}

	duration := time.Since(start)
	p.audit.Record(ctx, store.ActionStoreProvisionFailed, s.ID, s.OwnerID, map[string]string{
		"error":       reason,
		"duration_ms": fmt.Sprintf("%d", duration.Milliseconds()),
	})
	p.recordOutcome(ctx, "failure", duration)
}

func (p *Provisioner) recordOutcome(ctx context.Context, result string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("result", result))
	if p.outcomes != nil {
		p.outcomes.Add(ctx, 1, attrs)
	}
	if p.durations != nil {
		p.durations.Record(ctx, duration.Seconds(), attrs)
	}
}

func truncateError(msg string) string {
	if len(msg) > maxErrorMessageLength {
		return msg[:maxErrorMessageLength]
	}
	return msg
}

// Get returns one store record.
func (p *Provisioner) Get(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	s, err := p.repo.GetStoreByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load store %s: %w", id, err)
	}
	return s, nil
}

// List returns an owner's stores, newest first. An empty owner lists all.
func (p *Provisioner) List(ctx context.Context, ownerID string) ([]*store.Store, error) {
	return p.repo.ListStores(ctx, ownerID)
}

// StatusResult combines the persisted record with a live cluster view.
type StatusResult struct {
	Store   *store.Store
	Cluster Evaluation
	Units   []cluster.PodStatus
}

// Status returns the record alongside a fresh cluster evaluation. When
// the cluster reports READY but the record still says PROVISIONING (a
// crash between readiness and persistence), the record is repaired in
// place.
func (p *Provisioner) Status(ctx context.Context, id uuid.UUID) (*StatusResult, error) {
	s, err := p.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	namespace := Namespace(id)
	units, err := p.cluster.ListPods(ctx, namespace)
	if err != nil {
		return nil, &ClusterError{Op: "list workload units", Err: err}
	}

	ev := Evaluate(units)

	if ev.State == StateReady && s.Status == store.StoreStatusProvisioning {
		p.log.Info("status mismatch detected, repairing record", "store_id", id.String())
		if err := p.repo.UpdateStoreStatus(ctx, id, store.StoreStatusReady, s.URL, ""); err != nil {
			p.log.Error("failed to repair store status", "store_id", id.String(), "error", err)
		} else {
			s.Status = store.StoreStatusReady
			s.ErrorMessage = ""
		}
	}

	return &StatusResult{Store: s, Cluster: ev, Units: units}, nil
}

// LogsResult holds per-unit log tails for one store.
type LogsResult struct {
	Units []cluster.PodStatus
	Logs  map[string]string
}

// Logs returns log tails for the store's workload units. A non-empty
// unit name restricts the result to that unit.
func (p *Provisioner) Logs(ctx context.Context, id uuid.UUID, unit string, tailLines int64) (*LogsResult, error) {
	if _, err := p.Get(ctx, id); err != nil {
		return nil, err
	}
	if tailLines <= 0 {
		tailLines = 200
	}

	namespace := Namespace(id)

	if unit != "" {
		logs, err := p.cluster.PodLogs(ctx, namespace, unit, tailLines)
		if err != nil {
			return nil, &ClusterError{Op: "fetch unit logs", Err: err}
		}
		return &LogsResult{Logs: map[string]string{unit: logs}}, nil
	}

	units, err := p.cluster.ListPods(ctx, namespace)
	if err != nil {
		return nil, &ClusterError{Op: "list workload units", Err: err}
	}

	result := &LogsResult{Units: units, Logs: make(map[string]string, len(units))}
	for _, u := range units {
		logs, err := p.cluster.PodLogs(ctx, namespace, u.Name, tailLines)
		if err != nil {
			// One unreadable unit should not hide the others.
			result.Logs[u.Name] = fmt.Sprintf("failed to fetch logs: %v", err)
			continue
		}
		result.Logs[u.Name] = logs
	}
	return result, nil
}

// Delete removes a store. Cluster cleanup is best effort; the record is
// removed regardless so an unreachable cluster cannot strand a row
// forever. Orphaned cluster resources are cleaned up by hand.
func (p *Provisioner) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	s, err := p.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.OwnerID != "" && ownerID != "" && s.OwnerID != ownerID {
		return &AuthorizationError{Reason: "store belongs to another owner"}
	}

	namespace := Namespace(id)
	log := p.log.With("store_id", id.String())

	if err := p.installer.Uninstall(ctx, s.Name, namespace); err != nil {
		log.Warn("failed to uninstall release, continuing", "release", s.Name, "error", err)
	}
	if err := p.cluster.DeleteNamespace(ctx, namespace); err != nil {
		log.Warn("failed to delete namespace, continuing", "namespace", namespace, "error", err)
	}

	if err := p.repo.DeleteStore(ctx, id); err != nil {
		return fmt.Errorf("failed to delete store record %s: %w", id, err)
	}

	log.Info("store deleted", "name", s.Name)
	p.audit.Record(ctx, store.ActionStoreDeleted, id, ownerID, map[string]string{
		"name":      s.Name,
		"namespace": namespace,
	})
	return nil
}

// Retry re-runs the pipeline for a FAILED store. Credentials and the
// external address are reused; namespace creation and release install
// are idempotent, so a half-provisioned namespace is converged rather
// than rebuilt.
func (p *Provisioner) Retry(ctx context.Context, ownerID string, id uuid.UUID) (*store.Store, error) {
	s, err := p.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.OwnerID != "" && ownerID != "" && s.OwnerID != ownerID {
		return nil, &AuthorizationError{Reason: "store belongs to another owner"}
	}
	if s.Status != store.StoreStatusFailed {
		return nil, &ValidationError{Reason: fmt.Sprintf("only failed stores can be retried, store is %s", s.Status)}
	}

	if err := p.repo.UpdateStoreStatus(ctx, id, store.StoreStatusProvisioning, s.URL, ""); err != nil {
		return nil, fmt.Errorf("failed to reset store %s for retry: %w", id, err)
	}
	s.Status = store.StoreStatusProvisioning
	s.ErrorMessage = ""

	p.audit.Record(ctx, store.ActionStoreRetryRequested, id, ownerID, map[string]string{
		"name": s.Name,
	})

	p.wg.Add(1)
	go p.runProvision(s)

	return s, nil
}

// MetricsReport aggregates fleet-level counters for the metrics endpoint.
type MetricsReport struct {
	TotalStores           int64
	StoresByStatus        map[store.StoreStatus]int64
	StoresByType          map[store.StoreType]int64
	AvgProvisioningTimeMS int64
	FailureRate           string
}

// Metrics builds a fleet report from the database. The average covers
// stores created in the last 24 hours.
func (p *Provisioner) Metrics(ctx context.Context) (*MetricsReport, error) {
	byStatus, err := p.repo.CountStoresByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count stores by status: %w", err)
	}
	byType, err := p.repo.CountStoresByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count stores by type: %w", err)
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	durations, err := p.repo.RecentProvisioningDurations(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to load provisioning durations: %w", err)
	}
	var avgMS int64
	if len(durations) > 0 {
		var sum time.Duration
		for _, d := range durations {
			sum += d
		}
		avgMS = (sum / time.Duration(len(durations))).Milliseconds()
	}

	failureRate := "0%"
	if total > 0 {
		failureRate = fmt.Sprintf("%.2f%%", float64(byStatus[store.StoreStatusFailed])/float64(total)*100)
	}

	return &MetricsReport{
		TotalStores:           total,
		StoresByStatus:        byStatus,
		StoresByType:          byType,
		AvgProvisioningTimeMS: avgMS,
		FailureRate:           failureRate,
	}, nil
}

// Wait blocks until every detached pipeline goroutine has finished.
// Called during graceful shutdown.
func (p *Provisioner) Wait() {
	p.wg.Wait()
}
