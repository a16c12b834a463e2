package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var logsCmd = &cobra.Command{
	Use:   "logs [store_id]",
	Short: "Fetch workload logs for a store",
	Long: `Fetch log tails from the store's workload units. By default every unit
is included; restrict to one with --pod.

Example:
  storectl logs 3f6f9e1c-... --tail 100
  storectl logs 3f6f9e1c-... --pod web-0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		pod, _ := flags.GetString("pod")
		tail, _ := flags.GetInt("tail")

		url := viper.GetString("url")
		owner := requireOwner(cmd)
		if owner == "" {
			return
		}

		client := NewStoreClient(url, owner)
		result, err := client.GetLogs(args[0], pod, tail)
		if err != nil {
			printClientError(cmd, err)
			return
		}

		if len(result.Logs) == 0 {
			cmd.Println("No logs available.")
			return
		}

		for name, logs := range result.Logs {
			cmd.Printf("%s── %s ──%s\n", colorBold, name, colorReset)
			cmd.Println(logs)
		}
	},
}

func init() {
	flags := logsCmd.Flags()
	flags.String("pod", "", "Restrict to one workload unit")
	flags.Int("tail", 200, "Number of log lines per unit")

	rootCmd.AddCommand(logsCmd)
}
