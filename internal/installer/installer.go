// Package installer drives the package installer for store workloads.
package installer

import "context"

// Installer deploys a parameterized application bundle into a namespace.
// Implementations include the Helm CLI and a test fake.
type Installer interface {
	// Install installs or upgrades the release. Install is idempotent:
	// re-running it against an existing release upgrades in place, which
	// is what makes a crash-restart retry safe.
	Install(ctx context.Context, release, namespace, chart string, values map[string]string) error

	// Uninstall removes the release. A release that is already gone is
	// treated as success.
	Uninstall(ctx context.Context, release, namespace string) error

	// Status returns the installer's view of the release.
	Status(ctx context.Context, release, namespace string) (string, error)
}
