package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackroad/sensor-dashboard/internal/config"
	"github.com/blackroad/sensor-dashboard/internal/export"
	"github.com/blackroad/sensor-dashboard/internal/globals"
)

var (
	exportHours  int
	exportFormat string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <sensor-id>",
	Short: "Export a sensor's time series",
	Long: `Export a sensor's readings from the trailing look-back window as JSON or
CSV. The look-back defaults to the configured export window.

Examples:
  sensor-dashboard export 6f1c2a9e-... --hours 6
  sensor-dashboard export 6f1c2a9e-... --format csv`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

func runExport(cmd *cobra.Command, args []string) {
	sensorID := args[0]

	hours := exportHours
	if hours <= 0 {
		hours = config.AppConfig.Export.LookbackHours
	}

	globals.Logger.Debug("Exporting time series", "sensor_id", sensorID, "hours", hours, "format", exportFormat)

	output, err := buildEngine().exporter.Timeseries(sensorID, hours, exportFormat)
	if err != nil {
		globals.Logger.Error("Failed to export time series", "sensor_id", sensorID, "error", err)
		fatal("Error: Failed to export time series: %v\n", err)
	}

	fmt.Println(output)
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().IntVar(&exportHours, "hours", 0, "Look-back window in hours (defaults to the configured value)")
	exportCmd.Flags().StringVar(&exportFormat, "format", export.FormatJSON, "Output format: json or csv")
}
