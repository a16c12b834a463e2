package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "storectl",
	Short: "Storectl is a command line tool for interacting with the storeplane platform",
	Long: `storectl is the command-line interface for the StorePlane store provisioning platform.

StorePlane provisions fully isolated e-commerce stores (WooCommerce or Medusa)
on a Kubernetes cluster. Each store gets its own namespace, database, and
external address; provisioning runs asynchronously and can be watched with
the status command.

Common workflows:

  Provision a store:
    storectl create --name "My Shop" --type WOOCOMMERCE

  Watch it come up:
    storectl status <store-id>

  List your stores:
    storectl list

  Inspect workload logs:
    storectl logs <store-id> --pod web-0 --tail 100

  Retry a failed store:
    storectl retry <store-id>

  Tear one down:
    storectl delete <store-id>

Configuration:
  Set the API endpoint and identity via environment variables or a config file:
    STOREPLANE_URL      API endpoint (default: http://localhost:8080)
    STOREPLANE_OWNER    Owner identity sent as X-User-ID`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".storectl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".storectl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "STOREPLANE_VARNAME"
	viper.SetEnvPrefix("STOREPLANE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.storectl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "StorePlane Controller URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("owner", "o", "", "Owner identity for store operations")
	viper.BindPFlag("owner", rootCmd.PersistentFlags().Lookup("owner"))
}

// requireOwner reads the configured owner identity, printing guidance
// when it is missing. Commands bail out on an empty return.
func requireOwner(cmd *cobra.Command) string {
	owner := viper.GetString("owner")
	if owner == "" {
		cmd.Println("Owner identity not found. Please set it using the --owner flag or the STOREPLANE_OWNER environment variable")
	}
	return owner
}
