// Package config handles configuration loading for the controller.
// Values come from an optional YAML file, overridden by environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values for the application.
type Config struct {
	// Database connection string
	DatabaseURL string

	// HTTP server port for the controller
	HTTPPort int

	// Base domain under which store subdomains are issued
	BaseDomain string

	// Public IP used for NodePort-exposed stores
	PublicIP string

	// Maximum number of non-failed stores per owner
	MaxStoresPerOwner int

	// Readiness poll settings for the provisioning loop
	PollInterval     time.Duration
	PollMaxAttempts  int
	ProvisionTimeout time.Duration

	// Maximum number of provisioning pipelines running at once
	ProvisionConcurrency int

	// How long a record may sit in PROVISIONING before the
	// startup sweep declares it dead
	ReconcileMaxAge time.Duration

	// Helm settings
	HelmBin     string
	ChartDir    string
	HelmTimeout time.Duration

	// Kubeconfig path override. Empty means in-cluster config,
	// falling back to ~/.kube/config.
	Kubeconfig string

	// Per-owner request rate limiting
	RateLimit      float64
	RateLimitBurst int

	// OTLP collector endpoint for tracing
	OTELEndpoint string
}

// Load reads configuration from an optional config file and the environment.
// Environment variables always win over file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("http_port", 8080)
	v.SetDefault("base_domain", "stores.local")
	v.SetDefault("public_ip", "127.0.0.1")
	v.SetDefault("max_stores_per_owner", 10)
	v.SetDefault("poll_interval", "5s")
	v.SetDefault("poll_max_attempts", 60)
	v.SetDefault("provision_timeout", "10m")
	v.SetDefault("provision_concurrency", 8)
	v.SetDefault("reconcile_max_age", "20m")
	v.SetDefault("helm_bin", "helm")
	v.SetDefault("chart_dir", "./helm")
	v.SetDefault("helm_timeout", "5m")
	v.SetDefault("rate_limit", 5.0)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("otel_endpoint", "localhost:4317")

	v.BindEnv("database_url", "DATABASE_URL")
	v.BindEnv("http_port", "PORT")
	v.BindEnv("base_domain", "BASE_DOMAIN")
	v.BindEnv("public_ip", "PUBLIC_IP")
	v.BindEnv("max_stores_per_owner", "MAX_STORES_PER_OWNER")
	v.BindEnv("poll_interval", "POLL_INTERVAL")
	v.BindEnv("poll_max_attempts", "POLL_MAX_ATTEMPTS")
	v.BindEnv("provision_timeout", "PROVISION_TIMEOUT")
	v.BindEnv("provision_concurrency", "PROVISION_CONCURRENCY")
	v.BindEnv("reconcile_max_age", "RECONCILE_MAX_AGE")
	v.BindEnv("helm_bin", "HELM_BIN")
	v.BindEnv("chart_dir", "CHART_DIR")
	v.BindEnv("helm_timeout", "HELM_TIMEOUT")
	v.BindEnv("kubeconfig", "KUBECONFIG")
	v.BindEnv("rate_limit", "RATE_LIMIT")
	v.BindEnv("rate_limit_burst", "RATE_LIMIT_BURST")
	v.BindEnv("otel_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	dbURL := v.GetString("database_url")
	if dbURL == "" {
		return nil, fmt.Errorf("database_url is required (env: DATABASE_URL)")
	}

	cfg := &Config{
		DatabaseURL:          dbURL,
		HTTPPort:             v.GetInt("http_port"),
		BaseDomain:           v.GetString("base_domain"),
		PublicIP:             v.GetString("public_ip"),
		MaxStoresPerOwner:    v.GetInt("max_stores_per_owner"),
		PollInterval:         v.GetDuration("poll_interval"),
		PollMaxAttempts:      v.GetInt("poll_max_attempts"),
		ProvisionTimeout:     v.GetDuration("provision_timeout"),
		ProvisionConcurrency: v.GetInt("provision_concurrency"),
		ReconcileMaxAge:      v.GetDuration("reconcile_max_age"),
		HelmBin:              v.GetString("helm_bin"),
		ChartDir:             v.GetString("chart_dir"),
		HelmTimeout:          v.GetDuration("helm_timeout"),
		Kubeconfig:           v.GetString("kubeconfig"),
		RateLimit:            v.GetFloat64("rate_limit"),
		RateLimitBurst:       v.GetInt("rate_limit_burst"),
		OTELEndpoint:         v.GetString("otel_endpoint"),
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll_interval must be positive")
	}
	if cfg.PollMaxAttempts <= 0 {
		return nil, fmt.Errorf("poll_max_attempts must be positive")
	}
	if cfg.MaxStoresPerOwner <= 0 {
		return nil, fmt.Errorf("max_stores_per_owner must be positive")
	}

	return cfg, nil
}
