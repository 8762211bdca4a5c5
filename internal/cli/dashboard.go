package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackroad/sensor-dashboard/internal/globals"
)

// dashboardCmd represents the dashboard report command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the aggregated dashboard snapshot",
	Long: `Print a point-in-time JSON snapshot across all sensors and alerts:
sensor/alert counts, each sensor enriched with its latest reading and a
one-hour statistical digest, and the full active-alert list.`,
	Run: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) {
	globals.Logger.Debug("Generating dashboard snapshot")

	payload, err := buildEngine().board.Snapshot()
	if err != nil {
		globals.Logger.Error("Failed to generate dashboard snapshot", "error", err)
		fatal("Error: Failed to generate dashboard snapshot: %v\n", err)
	}

	output, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		globals.Logger.Error("Failed to marshal dashboard snapshot", "error", err)
		fatal("Error: Failed to format dashboard snapshot: %v\n", err)
	}

	fmt.Println(string(output))

	globals.Logger.Debug("Dashboard report completed", "sensors", payload.TotalSensors, "active_alerts", payload.ActiveAlerts)
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
