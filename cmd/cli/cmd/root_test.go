package cmd

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

// resetViper clears global viper state between tests.
func resetViper() {
	viper.Reset()
	viper.SetEnvPrefix("STOREPLANE")
	viper.AutomaticEnv()
}

func TestRootCommand_EnvVarBinding(t *testing.T) {
	resetViper()

	t.Setenv("STOREPLANE_OWNER", "env-owner-value")
	t.Setenv("STOREPLANE_URL", "http://custom-url:8080")

	owner := viper.GetString("owner")
	url := viper.GetString("url")

	if owner != "env-owner-value" {
		t.Errorf("expected owner from env var, got: %s", owner)
	}
	if url != "http://custom-url:8080" {
		t.Errorf("expected url from env var, got: %s", url)
	}
}

func TestRootCommand_ExecuteReturnsNoError(t *testing.T) {
	resetViper()

	rootCmd.SetArgs([]string{"--help"})

	err := rootCmd.Execute()
	if err != nil {
		t.Errorf("root command should execute without error: %v", err)
	}
}

func TestRootCommand_HasLifecycleSubcommands(t *testing.T) {
	wanted := map[string]bool{
		"create":            false,
		"list":              false,
		"get [store_id]":    false,
		"status [store_id]": false,
		"logs [store_id]":   false,
		"delete [store_id]": false,
		"retry [store_id]":  false,
		"audit [store_id]":  false,
		"metrics":           false,
	}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := wanted[cmd.Use]; ok {
			wanted[cmd.Use] = true
		}
	}
	for use, found := range wanted {
		if !found {
			t.Errorf("expected %q subcommand to be registered with root command", use)
		}
	}
}

func TestExecute_ReturnsError(t *testing.T) {
	resetViper()

	rootCmd.SetArgs([]string{"unknown-command-xyz"})

	err := Execute()
	if err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestRootCommand_CustomConfigFile(t *testing.T) {
	resetViper()

	tmpFile, err := os.CreateTemp("", "storectl-test-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	tmpFile.WriteString("url: http://custom-from-config:9999\nowner: config-owner\n")
	tmpFile.Close()

	cfgFile = tmpFile.Name()
	initConfig()

	url := viper.GetString("url")
	if url != "http://custom-from-config:9999" {
		t.Errorf("expected url from config file, got: %s", url)
	}

	owner := viper.GetString("owner")
	if owner != "config-owner" {
		t.Errorf("expected owner from config file, got: %s", owner)
	}

	// Reset for other tests
	cfgFile = ""
}
