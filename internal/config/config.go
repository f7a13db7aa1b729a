// Package config provides Viper-based configuration management for epitrend
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/viper"
)

// Config represents the complete epitrend configuration
type Config struct {
	Dataset     string          `mapstructure:"dataset"`
	Source      string          `mapstructure:"source"`
	Regions     []string        `mapstructure:"regions"`
	Concurrency int             `mapstructure:"concurrency"`
	Transform   TransformConfig `mapstructure:"transform"`
	Output      OutputConfig    `mapstructure:"output"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	HTTP        HTTPConfig      `mapstructure:"http"`
}

// TransformConfig holds the series transform parameters.
// Zero sigmas and an empty region key fall back to the dataset defaults.
type TransformConfig struct {
	MinCount        int64   `mapstructure:"min_count"`
	CumulativeSigma float64 `mapstructure:"cumulative_sigma"`
	DeltaSigma      float64 `mapstructure:"delta_sigma"`
	RegionKey       string  `mapstructure:"region_key"`
}

// OutputConfig contains output settings
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Image  string `mapstructure:"image"`
	Report string `mapstructure:"report"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	CSV    bool   `mapstructure:"csv"`
	Colors bool   `mapstructure:"colors"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HTTPConfig contains dataset download settings
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// New returns a Viper instance with defaults and environment lookup set up.
// Callers may bind command-line flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("EPITREND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// Load reads the config file, if any, into v and unmarshals the result.
// Without cfgFile, .epitrend.yaml is searched for in the working directory
// and $HOME/.config/epitrend; a missing file is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".epitrend")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/epitrend")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, goerr.Wrap(err, "failed to read config", goerr.V("file", cfgFile))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal config")
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults configures default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset", "confirmed_global")
	v.SetDefault("source", "")
	v.SetDefault("regions", []string{})
	v.SetDefault("concurrency", 4)

	v.SetDefault("transform.min_count", 1)
	v.SetDefault("transform.cumulative_sigma", 0)
	v.SetDefault("transform.delta_sigma", 0)
	v.SetDefault("transform.region_key", "")

	v.SetDefault("output.dir", "charts")
	v.SetDefault("output.image", "png")
	v.SetDefault("output.report", "table")
	v.SetDefault("output.width", 1024)
	v.SetDefault("output.height", 400)
	v.SetDefault("output.csv", false)
	v.SetDefault("output.colors", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "auto")

	v.SetDefault("http.timeout", 60*time.Second)
}

// validate checks configuration values
func validate(cfg *Config) error {
	if cfg.Dataset == "" {
		return goerr.New("dataset must be set")
	}
	if cfg.Transform.MinCount < 1 {
		return goerr.New("transform.min_count must be at least 1", goerr.V("min_count", cfg.Transform.MinCount))
	}
	if cfg.Transform.CumulativeSigma < 0 || cfg.Transform.DeltaSigma < 0 {
		return goerr.New("sigmas must not be negative",
			goerr.V("cumulative_sigma", cfg.Transform.CumulativeSigma),
			goerr.V("delta_sigma", cfg.Transform.DeltaSigma))
	}
	if cfg.Output.Width <= 0 || cfg.Output.Height <= 0 {
		return goerr.New("output size must be positive",
			goerr.V("width", cfg.Output.Width),
			goerr.V("height", cfg.Output.Height))
	}
	if cfg.HTTP.Timeout <= 0 {
		return goerr.New("http.timeout must be positive", goerr.V("timeout", cfg.HTTP.Timeout))
	}
	return nil
}
