package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestStatusCommand_Ready(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stores/store-123/status" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "store-123",
			"status": "READY",
			"cluster_status": map[string]interface{}{
				"status":  "READY",
				"message": "all units ready",
				"units": []map[string]interface{}{
					{"name": "web-0", "phase": "Running", "ready": true},
					{"name": "db-0", "phase": "Running", "ready": true},
				},
			},
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("owner", "test-owner")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"status", "store-123"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "READY") {
		t.Errorf("expected READY in output, got: %s", output)
	}
	if !strings.Contains(output, "web-0") || !strings.Contains(output, "db-0") {
		t.Errorf("expected workload units in output, got: %s", output)
	}
}

func TestStatusCommand_FailedWithRestarts(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "store-456",
			"status": "FAILED",
			"cluster_status": map[string]interface{}{
				"status":  "FAILED",
				"message": "unit db-0 restarted 7 times",
				"units": []map[string]interface{}{
					{"name": "db-0", "phase": "Running", "ready": false, "restarts": 7},
				},
			},
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("owner", "test-owner")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"status", "store-456"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "FAILED") {
		t.Errorf("expected FAILED in output, got: %s", output)
	}
	if !strings.Contains(output, "7 restarts") {
		t.Errorf("expected restart count in output, got: %s", output)
	}
}

func TestStatusCommand_NotFound(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "store not found"})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("owner", "test-owner")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"status", "missing-id"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "404") {
		t.Errorf("expected 404 in output, got: %s", output)
	}
}
