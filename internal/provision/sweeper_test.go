package provision

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"storeplane/internal/cluster"
	"storeplane/internal/store"
)

func newTestSweeper(repo *fakeRepo, cl *fakeCluster) *Sweeper {
	return NewSweeper(repo, cl, 20*time.Minute, "203.0.113.10", testLogger())
}

func strandedStore(repo *fakeRepo, typ store.StoreType, age time.Duration) *store.Store {
	s := &store.Store{
		ID:        uuid.New(),
		Name:      "stranded",
		Type:      typ,
		Status:    store.StoreStatusProvisioning,
		URL:       "https://stranded.stores.example.com",
		OwnerID:   "owner-1",
		CreatedAt: time.Now().UTC().Add(-age),
	}
	repo.CreateStore(context.Background(), s)
	return s
}

func TestSweeper_NoStrandedStores(t *testing.T) {
	repo := newFakeRepo()
	id := uuid.New()
	repo.CreateStore(context.Background(), &store.Store{ID: id, Name: "fine", Status: store.StoreStatusReady})

	sw := newTestSweeper(repo, newFakeCluster())
	if err := sw.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if got := repo.get(id); got.Status != store.StoreStatusReady {
		t.Errorf("untouched store moved to %s", got.Status)
	}
}

func TestSweeper_MissingNamespaceMarksFailed(t *testing.T) {
	repo := newFakeRepo()
	s := strandedStore(repo, store.StoreTypeWooCommerce, time.Minute)

	sw := newTestSweeper(repo, newFakeCluster())
	if err := sw.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	final := repo.get(s.ID)
	if final.Status != store.StoreStatusFailed {
		t.Fatalf("status = %s, want FAILED", final.Status)
	}
	if !strings.Contains(final.ErrorMessage, "namespace missing") {
		t.Errorf("error message = %q", final.ErrorMessage)
	}
}

func TestSweeper_ReadyClusterRepairsRecord(t *testing.T) {
	repo := newFakeRepo()
	s := strandedStore(repo, store.StoreTypeWooCommerce, time.Minute)

	cl := newFakeCluster(readyPods())
	cl.EnsureNamespace(context.Background(), Namespace(s.ID))

	sw := newTestSweeper(repo, cl)
	if err := sw.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	final := repo.get(s.ID)
	if final.Status != store.StoreStatusReady {
		t.Fatalf("status = %s, want READY", final.Status)
	}
	if final.URL != s.URL {
		t.Errorf("URL changed for subdomain store: %q", final.URL)
	}
}

func TestSweeper_ReadyMedusaRecoversNodePort(t *testing.T) {
	repo := newFakeRepo()
	s := strandedStore(repo, store.StoreTypeMedusa, time.Minute)

	cl := newFakeCluster(readyPods())
	cl.nodePort = 31555
	cl.EnsureNamespace(context.Background(), Namespace(s.ID))

	sw := newTestSweeper(repo, cl)
	if err := sw.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	final := repo.get(s.ID)
	if final.Status != store.StoreStatusReady {
		t.Fatalf("status = %s, want READY", final.Status)
	}
	want := "http://203.0.113.10:31555/app/login"
	if final.URL != want {
		t.Errorf("URL = %q, want %q", final.URL, want)
	}
}

func TestSweeper_MedusaPortLookupFailureKeepsStoredAddress(t *testing.T) {
	repo := newFakeRepo()
	s := strandedStore(repo, store.StoreTypeMedusa, time.Minute)

	cl := newFakeCluster(readyPods())
	cl.nodePortErr = cluster.ErrEndpointNotFound
	cl.EnsureNamespace(context.Background(), Namespace(s.ID))

	sw := newTestSweeper(repo, cl)
	if err := sw.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	final := repo.get(s.ID)
	if final.Status != store.StoreStatusReady {
		t.Fatalf("status = %s, want READY", final.Status)
	}
	if final.URL != s.URL {
		t.Errorf("URL = %q, want stored address kept", final.URL)
	}
}

func TestSweeper_FailedClusterMarksFailed(t *testing.T) {
	repo := newFakeRepo()
	s := strandedStore(repo, store.StoreTypeWooCommerce, time.Minute)

	cl := newFakeCluster([]cluster.PodStatus{{Name: "db-0", Phase: "Failed"}})
	cl.EnsureNamespace(context.Background(), Namespace(s.ID))

	sw := newTestSweeper(repo, cl)
	if err := sw.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	final := repo.get(s.ID)
	if final.Status != store.StoreStatusFailed {
		t.Fatalf("status = %s, want FAILED", final.Status)
	}
	if !strings.Contains(final.ErrorMessage, "system recovery") || !strings.Contains(final.ErrorMessage, "db-0") {
		t.Errorf("error message = %q", final.ErrorMessage)
	}
}

func TestSweeper_YoungProvisioningLeftAlone(t *testing.T) {
	repo := newFakeRepo()
	s := strandedStore(repo, store.StoreTypeWooCommerce, 5*time.Minute)

	cl := newFakeCluster(pendingPods())
	cl.EnsureNamespace(context.Background(), Namespace(s.ID))

	sw := newTestSweeper(repo, cl)
	if err := sw.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if final := repo.get(s.ID); final.Status != store.StoreStatusProvisioning {
		t.Errorf("status = %s, want PROVISIONING kept", final.Status)
	}
}

func TestSweeper_OldProvisioningTimedOut(t *testing.T) {
	repo := newFakeRepo()
	s := strandedStore(repo, store.StoreTypeWooCommerce, 30*time.Minute)

	cl := newFakeCluster(pendingPods())
	cl.EnsureNamespace(context.Background(), Namespace(s.ID))

	sw := newTestSweeper(repo, cl)
	if err := sw.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	final := repo.get(s.ID)
	if final.Status != store.StoreStatusFailed {
		t.Fatalf("status = %s, want FAILED", final.Status)
	}
	if !strings.Contains(final.ErrorMessage, "timed out") {
		t.Errorf("error message = %q", final.ErrorMessage)
	}
}

func TestSweeper_OneBadRecordDoesNotBlockOthers(t *testing.T) {
	repo := newFakeRepo()

	// First record's namespace check will report the namespace present
	// but the update will fail via a deleted row underneath.
	broken := strandedStore(repo, store.StoreTypeWooCommerce, time.Minute)
	healthy := strandedStore(repo, store.StoreTypeWooCommerce, time.Minute)

	cl := newFakeCluster([]cluster.PodStatus{{Name: "db-0", Phase: "Failed"}})
	cl.EnsureNamespace(context.Background(), Namespace(healthy.ID))

	sw := newTestSweeper(repo, cl)
	if err := sw.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	// broken had no namespace: marked failed with the missing-namespace
	// reason. healthy had a failed unit: marked failed with the cluster
	// reason. Both were processed.
	if final := repo.get(broken.ID); final.Status != store.StoreStatusFailed {
		t.Errorf("first record status = %s, want FAILED", final.Status)
	}
	if final := repo.get(healthy.ID); final.Status != store.StoreStatusFailed {
		t.Errorf("second record status = %s, want FAILED", final.Status)
	}
}
