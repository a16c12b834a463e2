package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var getCmd = &cobra.Command{
	Use:   "get [store_id]",
	Short: "Get details of a store",
	Long:  `Retrieve the full record for one store, including its external address and timestamps.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url := viper.GetString("url")
		owner := requireOwner(cmd)
		if owner == "" {
			return
		}

		client := NewStoreClient(url, owner)
		s, err := client.GetStore(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("%s %s%s%s\n", statusIcon(s.Status), colorBold, s.Name, colorReset)
		cmd.Println("──────────────────────────────")
		cmd.Printf("%sID:%s      %s\n", colorDim, colorReset, s.ID)
		cmd.Printf("%sType:%s    %s\n", colorDim, colorReset, s.Type)
		cmd.Printf("%sStatus:%s  %s\n", colorDim, colorReset, colorizeStatus(s.Status))
		if s.URL != "" {
			cmd.Printf("%sURL:%s     %s%s%s\n", colorDim, colorReset, colorCyan, s.URL, colorReset)
		}
		if s.ErrorMessage != "" {
			cmd.Printf("%sError:%s   %s%s%s\n", colorDim, colorReset, colorRed, s.ErrorMessage, colorReset)
		}
		cmd.Printf("%sCreated:%s %s\n", colorDim, colorReset, formatTimeWithRelative(s.CreatedAt))
		cmd.Printf("%sUpdated:%s %s\n", colorDim, colorReset, formatTimeWithRelative(s.UpdatedAt))
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
