package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackroad/sensor-dashboard/internal/alerting"
	"github.com/blackroad/sensor-dashboard/internal/dashboard"
	"github.com/blackroad/sensor-dashboard/internal/database"
	"github.com/blackroad/sensor-dashboard/internal/export"
	"github.com/blackroad/sensor-dashboard/internal/globals"
	"github.com/blackroad/sensor-dashboard/internal/ingest"
	"github.com/blackroad/sensor-dashboard/internal/registry"
	"github.com/blackroad/sensor-dashboard/internal/threshold"
	"github.com/blackroad/sensor-dashboard/internal/version"
)

var (
	verbose    bool
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "sensor-dashboard",
	Short:   "Embedded sensor telemetry engine",
	Version: version.GetVersion(),
	Long: `A single-process telemetry engine for edge deployments.

Sensor readings are calibrated, checked against per-sensor thresholds, and
scanned for statistical anomalies, with everything persisted to an embedded
sqlite database. The subcommands expose read-only reports over that data.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return globals.Initialize(verbose, configPath)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config.yaml (defaults to the user config dir)")
}

// engine bundles the read surfaces the report commands consume.
type engine struct {
	sensors  *registry.Registry
	board    *dashboard.Aggregator
	exporter *export.Exporter
}

// buildEngine wires the components over the already-initialized database.
func buildEngine() *engine {
	db := database.DB
	sensors := registry.New(db)
	alerts := alerting.New(db, sensors)
	checker := threshold.New(db, sensors, alerts)
	readings := ingest.New(db, sensors, checker)

	return &engine{
		sensors:  sensors,
		board:    dashboard.New(sensors, readings, alerts),
		exporter: export.New(readings, alerts),
	}
}

// fatal reports an error on stderr and exits non-zero, matching the report
// surface contract.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
