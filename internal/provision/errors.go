// Package provision implements the store lifecycle controller, readiness
// evaluator, and startup reconciliation sweep.
package provision

import (
	"fmt"
	"time"
)

// ValidationError reports malformed input. Surfaced synchronously as a
// client error.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// QuotaExceededError reports that an owner is at their store limit.
type QuotaExceededError struct {
	Current int
	Max     int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("store quota exceeded: %d of %d stores in use", e.Current, e.Max)
}

// ConflictError reports a duplicate externally-visible address.
type ConflictError struct {
	URL string
}

func (e *ConflictError) Error() string {
	return "a store with this address already exists: " + e.URL
}

// AuthorizationError reports an ownership mismatch.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "not authorized: " + e.Reason
}

// NotFoundError reports an unknown record id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "store not found: " + e.ID
}

// ClusterError reports an infrastructure failure. Not-found and
// already-exists conditions are swallowed by the adapter where
// idempotency demands it; everything else arrives here.
type ClusterError struct {
	Op  string
	Err error
}

func (e *ClusterError) Error() string {
	return fmt.Sprintf("cluster operation %s failed: %v", e.Op, e.Err)
}

func (e *ClusterError) Unwrap() error {
	return e.Err
}

// TimeoutError reports an exhausted polling budget. Raised only inside
// the background pipeline, where it becomes a FAILED state; it is never
// returned to an API caller.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provisioning timed out after %s", e.After)
}
