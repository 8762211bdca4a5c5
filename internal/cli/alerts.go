package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackroad/sensor-dashboard/internal/globals"
)

var alertsAll bool

// alertsCmd represents the alerts report command
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Print the active alerts as JSON",
	Long: `Print the unresolved alerts, newest first, as a JSON array.

Pass --all to include resolved alerts as well.`,
	Run: runAlerts,
}

func runAlerts(cmd *cobra.Command, args []string) {
	globals.Logger.Debug("Exporting alerts", "all", alertsAll)

	output, err := buildEngine().exporter.Alerts(!alertsAll)
	if err != nil {
		globals.Logger.Error("Failed to export alerts", "error", err)
		fatal("Error: Failed to export alerts: %v\n", err)
	}

	fmt.Println(output)
}

func init() {
	rootCmd.AddCommand(alertsCmd)

	alertsCmd.Flags().BoolVar(&alertsAll, "all", false, "Include resolved alerts")
}
