package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your stores",
	Long:  `List every store owned by the configured identity, newest first.`,
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		owner := requireOwner(cmd)
		if owner == "" {
			return
		}

		client := NewStoreClient(url, owner)
		stores, err := client.ListStores()
		if err != nil {
			printClientError(cmd, err)
			return
		}

		if len(stores) == 0 {
			cmd.Println("No stores found.")
			return
		}

		for _, s := range stores {
			cmd.Printf("%s %s\n", statusIcon(s.Status), colorBold+s.Name+colorReset)
			cmd.Printf("  %sID:%s     %s\n", colorDim, colorReset, s.ID)
			cmd.Printf("  %sType:%s   %s\n", colorDim, colorReset, s.Type)
			cmd.Printf("  %sStatus:%s %s\n", colorDim, colorReset, colorizeStatus(s.Status))
			if s.URL != "" {
				cmd.Printf("  %sURL:%s    %s\n", colorDim, colorReset, s.URL)
			}
			if s.ErrorMessage != "" {
				cmd.Printf("  %sError:%s  %s%s%s\n", colorDim, colorReset, colorRed, s.ErrorMessage, colorReset)
			}
			cmd.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
