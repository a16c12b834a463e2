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

func TestCreateCommand_Success(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request format
		if r.Method != http.MethodPost {
			t.Errorf("expected POST method, got %s", r.Method)
		}
		if r.URL.Path != "/stores" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-User-ID") != "test-owner" {
			t.Errorf("expected owner header, got: %s", r.Header.Get("X-User-ID"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected application/json, got: %s", r.Header.Get("Content-Type"))
		}

		// Verify request body
		var reqBody map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		if reqBody["name"] != "My Shop" {
			t.Errorf("expected name=My Shop, got %v", reqBody["name"])
		}
		if reqBody["type"] != "MEDUSA" {
			t.Errorf("expected type=MEDUSA, got %v", reqBody["type"])
		}

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"id":     "store-123",
			"name":   "my-shop",
			"type":   "MEDUSA",
			"status": "PROVISIONING",
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("owner", "test-owner")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"create", "--name", "My Shop", "--type", "MEDUSA"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "provisioning started") {
		t.Errorf("expected success message, got: %s", output)
	}
	if !strings.Contains(output, "store-123") {
		t.Errorf("expected store ID in output, got: %s", output)
	}
}

func TestCreateCommand_MissingName(t *testing.T) {
	resetViper()
	viper.Set("url", "http://localhost:1")
	viper.Set("owner", "test-owner")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"create", "--name", ""})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "--name is required") {
		t.Errorf("expected missing-name message, got: %s", stdout.String())
	}
}

func TestCreateCommand_MissingOwner(t *testing.T) {
	resetViper()
	viper.Set("url", "http://localhost:1")
	viper.Set("owner", "")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"create", "--name", "My Shop"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Owner identity not found") {
		t.Errorf("expected missing-owner message, got: %s", stdout.String())
	}
}

func TestCreateCommand_QuotaError(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":   "store quota exceeded",
			"current": 10,
			"max":     10,
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("owner", "test-owner")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"create", "--name", "one-too-many"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "429") || !strings.Contains(output, "quota") {
		t.Errorf("expected quota error output, got: %s", output)
	}
}
