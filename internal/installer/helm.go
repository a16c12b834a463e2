package installer

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// commandRunner executes a command and returns its combined output.
// Swapped out in tests.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// HelmInstaller implements Installer by shelling out to the helm binary.
type HelmInstaller struct {
	bin      string
	chartDir string
	timeout  time.Duration
	log      *slog.Logger
	run      commandRunner
}

// NewHelm creates a Helm-backed installer. chartDir is the directory
// containing one chart subdirectory per store type.
func NewHelm(bin, chartDir string, timeout time.Duration, log *slog.Logger) *HelmInstaller {
	if bin == "" {
		bin = "helm"
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &HelmInstaller{
		bin:      bin,
		chartDir: chartDir,
		timeout:  timeout,
		log:      log,
		run:      runCommand,
	}
}

// Install runs `helm upgrade --install` so the call is safe to repeat.
func (h *HelmInstaller) Install(ctx context.Context, release, namespace, chart string, values map[string]string) error {
	args := []string{
		"upgrade", "--install", release, filepath.Join(h.chartDir, chart),
		"--namespace", namespace,
		"--wait", "--timeout", h.timeout.String(),
	}

	// Sorted for deterministic command lines.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--set", fmt.Sprintf("%s=%s", k, values[k]))
	}

	h.log.Info("installing release", "release", release, "namespace", namespace, "chart", chart)

	out, err := h.run(ctx, h.bin, args...)
	if err != nil {
		return fmt.Errorf("helm install of %s in %s failed: %w: %s", release, namespace, err, strings.TrimSpace(string(out)))
	}

	h.log.Info("release installed", "release", release, "namespace", namespace)
	return nil
}

// Uninstall removes the release, treating "not found" as success.
func (h *HelmInstaller) Uninstall(ctx context.Context, release, namespace string) error {
	out, err := h.run(ctx, h.bin, "uninstall", release, "--namespace", namespace)
	if err != nil {
		if strings.Contains(strings.ToLower(string(out)), "not found") {
			h.log.Info("release not found, skipping uninstall", "release", release, "namespace", namespace)
			return nil
		}
		return fmt.Errorf("helm uninstall of %s in %s failed: %w: %s", release, namespace, err, strings.TrimSpace(string(out)))
	}

	h.log.Info("release uninstalled", "release", release, "namespace", namespace)
	return nil
}

// Status returns helm's status output for the release.
func (h *HelmInstaller) Status(ctx context.Context, release, namespace string) (string, error) {
	out, err := h.run(ctx, h.bin, "status", release, "--namespace", namespace)
	if err != nil {
		return "", fmt.Errorf("helm status of %s in %s failed: %w: %s", release, namespace, err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}
