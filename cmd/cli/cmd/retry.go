package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var retryCmd = &cobra.Command{
	Use:   "retry [store_id]",
	Short: "Retry a failed store",
	Long: `Re-run provisioning for a store in FAILED state. Credentials and the
external address are reused; the pipeline converges whatever already exists
in the cluster.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		owner := requireOwner(cmd)
		if owner == "" {
			return
		}

		client := NewStoreClient(url, owner)
		result, err := client.RetryStore(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Retry started for %s (status: %s)\n", result.ID, result.Status)
		cmd.Printf("\nWatch progress with: storectl status %s\n", result.ID)
	},
}

func init() {
	rootCmd.AddCommand(retryCmd)
}
