package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storeplane/pkg/api"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a new store",
	Long: `Provision a new e-commerce store. The record is created immediately
and provisioning continues in the background; use 'storectl status' to watch it.

Example:
  storectl create --name "My Shop"
  storectl create --name "headless-shop" --type MEDUSA`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		storeType, _ := flags.GetString("type")

		url := viper.GetString("url")
		owner := requireOwner(cmd)
		if owner == "" {
			return
		}

		if name == "" {
			cmd.Println("Error: --name is required")
			return
		}

		client := NewStoreClient(url, owner)
		result, err := client.CreateStore(api.CreateStoreRequest{
			Name: name,
			Type: storeType,
		})
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Store provisioning started!\nID:     %s\nName:   %s\nType:   %s\nStatus: %s\n",
			result.ID, result.Name, result.Type, result.Status)
		cmd.Printf("\nWatch progress with: storectl status %s\n", result.ID)
	},
}

// printClientError renders API errors with their status code.
func printClientError(cmd *cobra.Command, err error) {
	if apiErr, ok := err.(*APIError); ok {
		cmd.Printf("Error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
		return
	}
	cmd.Printf("Error: %v\n", err)
}

func init() {
	flags := createCmd.Flags()
	flags.StringP("name", "n", "", "Name of the store (required)")
	flags.StringP("type", "t", "WOOCOMMERCE", "Store type: WOOCOMMERCE or MEDUSA")

	rootCmd.AddCommand(createCmd)
}
