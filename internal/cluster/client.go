// Package cluster provides the Kubernetes-facing adapter for store provisioning.
package cluster

import (
	"context"
	"errors"
)

// ErrEndpointNotFound is returned when no endpoint-exposing service matches
// any of the known naming patterns. Callers treat this as "endpoint unknown",
// not as a fatal condition.
var ErrEndpointNotFound = errors.New("no endpoint-exposing service found")

// PodStatus is a point-in-time view of one workload unit.
// It is built per poll and discarded after evaluation.
type PodStatus struct {
	Name     string
	Phase    string
	Ready    bool
	Restarts int32
}

// Client defines the cluster operations the provisioner and sweeper need.
// Implementations include the real Kubernetes client and a test fake.
type Client interface {
	// EnsureNamespace creates the namespace if it does not exist.
	// An already-existing namespace is success, not an error, so the call
	// survives races with a concurrent create or a crash-restart retry.
	EnsureNamespace(ctx context.Context, name string) error

	// NamespaceExists reports whether the namespace is present.
	NamespaceExists(ctx context.Context, name string) (bool, error)

	// DeleteNamespace issues a delete and waits (bounded) for the namespace
	// to disappear. Namespace deletion is asynchronous in the cluster; a
	// deletion that outlives the wait is logged, not returned as an error.
	DeleteNamespace(ctx context.Context, name string) error

	// ListPods returns the status of every pod in the namespace.
	ListPods(ctx context.Context, namespace string) ([]PodStatus, error)

	// PodLogs returns the tail of one pod's logs.
	PodLogs(ctx context.Context, namespace, pod string, tailLines int64) (string, error)

	// ServiceNodePort looks up a NodePort-exposing service, trying each
	// candidate name in order before falling back to any NodePort service
	// in the namespace. Returns ErrEndpointNotFound when nothing matches.
	ServiceNodePort(ctx context.Context, namespace string, candidates ...string) (int32, error)

	// RunJob submits a one-shot job and polls it to completion with a
	// bounded attempt count.
	RunJob(ctx context.Context, namespace, name, image string, command []string) error
}
