package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [store_id]",
	Short: "Delete a store",
	Long: `Delete a store and its cluster resources. Cluster cleanup is best
effort; the record is removed regardless.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		owner := requireOwner(cmd)
		if owner == "" {
			return
		}

		client := NewStoreClient(url, owner)
		if err := client.DeleteStore(args[0]); err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Store %s deleted\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
