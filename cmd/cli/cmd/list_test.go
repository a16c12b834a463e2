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

func TestListCommand_ShowsStores(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stores" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-User-ID") != "test-owner" {
			t.Errorf("expected owner header, got: %s", r.Header.Get("X-User-ID"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"stores": []map[string]interface{}{
				{"id": "store-1", "name": "my-shop", "type": "WOOCOMMERCE", "status": "READY", "url": "https://my-shop.stores.example.com"},
				{"id": "store-2", "name": "broken-shop", "type": "MEDUSA", "status": "FAILED", "error_message": "provisioning timed out"},
			},
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("owner", "test-owner")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"list"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "my-shop") || !strings.Contains(output, "broken-shop") {
		t.Errorf("expected both stores in output, got: %s", output)
	}
	if !strings.Contains(output, "provisioning timed out") {
		t.Errorf("expected error message in output, got: %s", output)
	}
}

func TestListCommand_Empty(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"stores": []interface{}{}})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("owner", "test-owner")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"list"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "No stores found") {
		t.Errorf("expected empty message, got: %s", stdout.String())
	}
}
