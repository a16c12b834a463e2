package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show fleet-level store metrics",
	Long:  `Show aggregate counts, average provisioning time, and failure rate across all stores.`,
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		owner := requireOwner(cmd)
		if owner == "" {
			return
		}

		client := NewStoreClient(url, owner)
		m, err := client.GetMetrics()
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("%sStore Fleet Metrics%s\n", colorBold, colorReset)
		cmd.Println("──────────────────────────────")
		cmd.Printf("%sTotal stores:%s        %d\n", colorDim, colorReset, m.TotalStores)
		for status, n := range m.StoresByStatus {
			cmd.Printf("  %s%-18s%s %d\n", colorDim, status+":", colorReset, n)
		}
		cmd.Printf("%sBy type:%s\n", colorDim, colorReset)
		for typ, n := range m.StoresByType {
			cmd.Printf("  %s%-18s%s %d\n", colorDim, typ+":", colorReset, n)
		}
		cmd.Printf("%sAvg provisioning:%s    %dms\n", colorDim, colorReset, m.AvgProvisioningTimeMs)
		cmd.Printf("%sFailure rate:%s        %s\n", colorDim, colorReset, m.FailureRate)
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
