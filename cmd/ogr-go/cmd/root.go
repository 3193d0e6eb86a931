package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/geobridge/ogr-go/pkg/ogr"
	"github.com/geobridge/ogr-go/pkg/ogr/logging"
	"github.com/geobridge/ogr-go/pkg/ogr/metrics"
)

var (
	cfgFile        string
	driverName     string
	logLevel       string
	outputFormat   string
	stableIdentity bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ogr-go",
	Short: "Inspect and convert geometries through the ogr-go wrappers",
	Long: `ogr-go parses, converts and inspects geometries using either the
in-process memory driver or GDAL's OGR library, and reports native handle
lifecycle statistics.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&driverName, "driver", "", "native driver: memory or ogr (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")
	rootCmd.PersistentFlags().BoolVar(&stableIdentity, "stable-identity", false, "return the same wrapper for repeated member lookups")
}

// loadConfig reads the config file and environment, then applies flags that
// were set explicitly.
func loadConfig(cmd *cobra.Command) (ogr.Config, error) {
	cfg, err := ogr.LoadConfig(cfgFile)
	if err != nil {
		return ogr.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Driver = driverName
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("stable-identity") {
		cfg.StableIdentity = stableIdentity
	}
	return cfg, nil
}

// session is an opened library plus the collaborators the commands report on.
type session struct {
	lib       *ogr.Library
	collector *metrics.Collector
	logger    logging.Logger
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewProduction(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	collector := metrics.NewCollector(cfg.MetricsNamespace)
	lib, err := ogr.Open(cfg, ogr.WithLogger(logger), ogr.WithObserver(collector))
	if err != nil {
		return nil, err
	}
	return &session{lib: lib, collector: collector, logger: logger}, nil
}

func (s *session) Close() {
	if err := s.lib.Close(); err != nil {
		s.logger.Warn(context.Background(), "close library", "error", err)
	}
}

// printStructured writes v as json or yaml. It returns false for table output.
func printStructured(w io.Writer, v any) (bool, error) {
	switch outputFormat {
	case "json":
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, errors.Wrap(err, "marshal json")
		}
		_, err = fmt.Fprintln(w, string(out))
		return true, err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, errors.Wrap(err, "marshal yaml")
		}
		return true, enc.Close()
	case "table", "":
		return false, nil
	default:
		return true, errors.Newf("unknown output format %q", outputFormat)
	}
}

// readInput returns the first argument, or stdin when there is none or it is "-".
func readInput(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return args[0], nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.Wrap(err, "read stdin")
	}
	return string(b), nil
}
