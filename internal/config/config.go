package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	DB_NAME = "sensor_dashboard.sqlite"
)

type Config struct {
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Anomaly struct {
		WindowMinutes int     `mapstructure:"window_minutes"`
		ZThreshold    float64 `mapstructure:"z_threshold"`
	} `mapstructure:"anomaly"`
	Export struct {
		LookbackHours int `mapstructure:"lookback_hours"`
	} `mapstructure:"export"`
}

var AppConfig Config

// Load reads config.yaml from the given path (or the default config dir when
// empty), applies defaults for anything missing, and honours environment
// overrides prefixed with SENSOR_DASHBOARD_.
func Load(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath(ConfigDir())
	}
	viper.SetEnvPrefix("SENSOR_DASHBOARD")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// An explicitly named file must exist; a missing default file
		// just means defaults apply.
		if path != "" {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("database.path", filepath.Join(DataDir(), DB_NAME))
	viper.SetDefault("anomaly.window_minutes", 60)
	viper.SetDefault("anomaly.z_threshold", 2.5)
	viper.SetDefault("export.lookback_hours", 24)
}

// DBPath returns the database file location. The SENSOR_DASHBOARD_DB_PATH
// environment variable wins over the config file.
func DBPath() string {
	if dbPath := os.Getenv("SENSOR_DASHBOARD_DB_PATH"); dbPath != "" {
		return dbPath
	}

	if AppConfig.Database.Path != "" {
		return AppConfig.Database.Path
	}

	return filepath.Join(DataDir(), DB_NAME)
}
