package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/blackroad/sensor-dashboard/internal/globals"
)

var sensorListDevice string

// sensorCmd represents the sensor command
var sensorCmd = &cobra.Command{
	Use:     "sensor",
	Aliases: []string{"s", "sensors"},
	Short:   "Inspect registered sensors",
	Long:    `Commands for listing the sensors known to the telemetry engine.`,
}

// sensorListCmd represents the sensor list command
var sensorListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List registered sensors",
	Long:    `List all registered sensors with their type, unit, bounds, and calibration offset.`,
	Run:     runSensorList,
}

func runSensorList(cmd *cobra.Command, args []string) {
	globals.Logger.Debug("Fetching sensors", "device_id", sensorListDevice)

	sensors, err := buildEngine().sensors.List(sensorListDevice)
	if err != nil {
		globals.Logger.Error("Failed to fetch sensors", "error", err)
		fatal("Error: Failed to fetch sensors: %v\n", err)
	}

	if len(sensors) == 0 {
		fmt.Println("No sensors found.")
		return
	}

	// Create tabwriter for aligned output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tDEVICE\tTYPE\tUNIT\tRANGE\tOFFSET\tNAME\tLOCATION")
	fmt.Fprintln(w, "--\t------\t----\t----\t-----\t------\t----\t--------")

	for _, sensor := range sensors {
		name := ""
		if sensor.Name != nil {
			name = *sensor.Name
		}
		location := ""
		if sensor.Location != nil {
			location = *sensor.Location
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t[%g, %g]\t%g\t%s\t%s\n",
			sensor.ID,
			sensor.DeviceID,
			sensor.Type,
			sensor.Unit,
			sensor.MinValue,
			sensor.MaxValue,
			sensor.CalibrationOffset,
			name,
			location,
		)
	}

	globals.Logger.Debug("Sensor list completed", "count", len(sensors))
}

func init() {
	rootCmd.AddCommand(sensorCmd)
	sensorCmd.AddCommand(sensorListCmd)

	sensorListCmd.Flags().StringVar(&sensorListDevice, "device", "", "Only list sensors belonging to this device id")
}
