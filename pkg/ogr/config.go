package ogr

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config expresses the knobs of a Library.
type Config struct {
	// Driver names the native backend: "memory" (default) or "ogr". The ogr
	// driver requires a binary built with cgo and the gdal tag.
	Driver string `mapstructure:"driver" yaml:"driver"`

	// StableIdentity makes repeated lookups of the same collection member
	// return the same wrapper while it is reachable. Off by default.
	StableIdentity bool `mapstructure:"stable_identity" yaml:"stable_identity"`

	// LogLevel is used by LoadConfig callers that build their own logger.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// MetricsNamespace prefixes the Prometheus metrics of a collector built
	// from this config.
	MetricsNamespace string `mapstructure:"metrics_namespace" yaml:"metrics_namespace"`
}

// EnvPrefix is the environment variable prefix read by LoadConfig, as in
// OGRGO_DRIVER=ogr.
const EnvPrefix = "OGRGO"

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Driver:           "memory",
		LogLevel:         "info",
		MetricsNamespace: "ogrgo",
	}
}

// LoadConfig reads a yaml config file, then OGRGO_* environment variables,
// over DefaultConfig. A .env file in the working directory is loaded into the
// environment first if present. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("driver", def.Driver)
	v.SetDefault("stable_identity", def.StableIdentity)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("metrics_namespace", def.MetricsNamespace)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}
