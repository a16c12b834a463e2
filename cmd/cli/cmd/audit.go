package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storeplane/pkg/api"
)

var auditCmd = &cobra.Command{
	Use:   "audit [store_id]",
	Short: "Show the audit trail of a store",
	Long: `List the lifecycle events recorded for one store, newest first.
With no store id, list the newest events across every store.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		owner := requireOwner(cmd)
		if owner == "" {
			return
		}

		client := NewStoreClient(url, owner)

		var events []api.AuditEventResponse
		var err error
		if len(args) == 1 {
			events, err = client.GetAudit(args[0])
		} else {
			limit, _ := cmd.Flags().GetInt("limit")
			events, err = client.GetRecentAudit(limit)
		}
		if err != nil {
			printClientError(cmd, err)
			return
		}

		if len(events) == 0 {
			cmd.Println("No audit events recorded.")
			return
		}

		for _, e := range events {
			cmd.Printf("%s  %s%s%s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), colorBold, e.Action, colorReset)
			if len(args) == 0 {
				cmd.Printf("    %sstore:%s %s\n", colorDim, colorReset, e.EntityID)
			}
			for k, v := range e.Metadata {
				cmd.Printf("    %s%s:%s %s\n", colorDim, k, colorReset, v)
			}
		}
	},
}

func init() {
	auditCmd.Flags().Int("limit", 100, "Maximum number of events when listing across stores")

	rootCmd.AddCommand(auditCmd)
}
