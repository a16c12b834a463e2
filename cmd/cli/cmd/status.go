package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storeplane/pkg/api"
)

var statusCmd = &cobra.Command{
	Use:   "status [store_id]",
	Short: "Get status of a store",
	Long: `Retrieve the reconciled status of a store, including the live cluster
view of its workload units (PROVISIONING, READY, FAILED).`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		storeID := args[0]

		url := viper.GetString("url")
		owner := requireOwner(cmd)
		if owner == "" {
			return
		}

		client := NewStoreClient(url, owner)
		status, err := client.GetStatus(storeID)
		if err != nil {
			printClientError(cmd, err)
			return
		}

		printStatus(cmd, status)
	},
}

func printStatus(cmd *cobra.Command, status *api.StoreStatusResponse) {
	icon := statusIcon(status.Status)
	cmd.Printf("%s %sStore Status%s\n", icon, colorBold, colorReset)
	cmd.Println("──────────────────────────────")

	cmd.Printf("%sID:%s      %s\n", colorDim, colorReset, status.ID)
	cmd.Printf("%sStatus:%s  %s\n", colorDim, colorReset, colorizeStatus(status.Status))
	cmd.Printf("%sCluster:%s %s", colorDim, colorReset, status.ClusterStatus.Status)
	if status.ClusterStatus.Message != "" {
		cmd.Printf(" %s(%s)%s", colorDim, status.ClusterStatus.Message, colorReset)
	}
	cmd.Println()

	if len(status.ClusterStatus.Units) > 0 {
		cmd.Printf("\n%sWorkload units:%s\n", colorDim, colorReset)
		for _, u := range status.ClusterStatus.Units {
			ready := colorRed + "not ready" + colorReset
			if u.Ready {
				ready = colorGreen + "ready" + colorReset
			}
			line := fmt.Sprintf("  • %-24s %-10s %s", u.Name, u.Phase, ready)
			if u.Restarts > 0 {
				line += fmt.Sprintf(" %s(%d restarts)%s", colorYellow, u.Restarts, colorReset)
			}
			cmd.Println(line)
		}
	}
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(status string) string {
	switch status {
	case "READY":
		return colorGreen + "✓" + colorReset
	case "FAILED":
		return colorRed + "✗" + colorReset
	case "PROVISIONING":
		return colorYellow + "⏳" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status string) string {
	icon := statusIcon(status)
	switch status {
	case "READY":
		return icon + " " + colorGreen + status + colorReset
	case "FAILED":
		return icon + " " + colorRed + status + colorReset
	case "PROVISIONING":
		return icon + " " + colorYellow + status + colorReset
	default:
		return status
	}
}

func formatTimeWithRelative(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s %s(%s ago)%s", t.Format("Mon, 02 Jan 2006 15:04:05 MST"), colorDim, relativeTime(t), colorReset)
}

func relativeTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
