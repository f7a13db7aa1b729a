// Package cli contains the epitrend commands
package cli

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sartorproj/epitrend/internal/config"
	"github.com/sartorproj/epitrend/internal/logging"
)

// configKey is the flag annotation naming the config key a flag overrides.
const configKey = "epitrend_config_key"

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
	version = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "epitrend",
	Short: "Daily epidemic counts: threshold, delta, smoothing and trend",
	Long: `epitrend reads the JHU CSSE cumulative time-series tables, keeps each
region from the first day its count reaches a threshold, and derives the
day-over-day change, Gaussian-smoothed curves and a peak/decline summary.

Example usage:
  epitrend summary                       # Default regions of confirmed_global
  epitrend summary Italy Spain -f json   # JSON report
  epitrend plot -d deaths_us Illinois    # Charts for one US state
  epitrend regions -s ./cases.csv        # Regions in a local file`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .epitrend.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.StringP("dataset", "d", "", "dataset name (confirmed_global, deaths_global, confirmed_us, deaths_us)")
	flags.StringP("source", "s", "", "CSV URL or file path (default is the dataset URL)")
	flags.Int64("min-count", 0, "first day kept is the first with at least this many")
	flags.Float64("sigma", 0, "Gaussian width for the cumulative curve (default per dataset)")
	flags.Float64("delta-sigma", 0, "Gaussian width for the daily change (default per dataset)")
	flags.String("region-key", "", "column to aggregate rows on (default per dataset)")
	flags.Int("concurrency", 0, "regions processed in parallel")
	flags.String("log-format", "", "log format: auto, console or json")

	bindFlag(flags, "dataset", "dataset")
	bindFlag(flags, "source", "source")
	bindFlag(flags, "min-count", "transform.min_count")
	bindFlag(flags, "sigma", "transform.cumulative_sigma")
	bindFlag(flags, "delta-sigma", "transform.delta_sigma")
	bindFlag(flags, "region-key", "transform.region_key")
	bindFlag(flags, "concurrency", "concurrency")
	bindFlag(flags, "log-format", "logging.format")
}

// bindFlag marks flag name as an override for config key.
func bindFlag(flags *pflag.FlagSet, name, key string) {
	_ = flags.SetAnnotation(name, configKey, []string{key})
}

// initConfig loads the configuration, letting flags set on cmd override it,
// and sets up the logger.
func initConfig(cmd *cobra.Command) error {
	v := config.New()

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys, ok := f.Annotations[configKey]
		if !ok || len(keys) == 0 || bindErr != nil {
			return
		}
		if err := v.BindPFlag(keys[0], f); err != nil {
			bindErr = goerr.Wrap(err, "failed to bind flag", goerr.V("flag", f.Name))
		}
	})
	if bindErr != nil {
		return bindErr
	}

	var err error
	cfg, err = config.Load(v, cfgFile)
	if err != nil {
		return goerr.Wrap(err, "loading config")
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if verbose {
		level = slog.LevelDebug
	}
	logger = logging.NewLogger(level, cmd.ErrOrStderr(), logging.ParseFormat(cfg.Logging.Format))

	logger.Debug("configuration loaded",
		"dataset", cfg.Dataset,
		"source", cfg.Source,
		"min_count", cfg.Transform.MinCount,
		"regions", cfg.Regions,
	)
	return nil
}

// useColors reports whether terminal output may be colored.
func useColors() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return cfg.Output.Colors
}
