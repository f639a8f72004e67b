package config

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	API       APIConfig       `yaml:"api" mapstructure:"api"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// APIConfig holds LinkdAPI credentials and transport settings.
type APIConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// DiscoveryConfig configures retry and fan-out behavior of discovery runs.
type DiscoveryConfig struct {
	MaxRetries     int `yaml:"max_retries" mapstructure:"max_retries"`
	RetryDelaySecs int `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs"`
	MaxConcurrent  int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	DefaultDepth   int `yaml:"default_depth" mapstructure:"default_depth"`
}

// RetryDelay returns the base retry delay as a duration.
func (c DiscoveryConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySecs) * time.Second
}

// ExportConfig configures result export.
type ExportConfig struct {
	OutputDir       string `yaml:"output_dir" mapstructure:"output_dir"`
	TreeMaxChildren int    `yaml:"tree_max_children" mapstructure:"tree_max_children"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("api.base_url", "https://api.linkdapi.com/v1")
	v.SetDefault("api.rate_limit", 5.0)
	v.SetDefault("discovery.max_retries", 3)
	v.SetDefault("discovery.retry_delay_secs", 2)
	v.SetDefault("discovery.max_concurrent", 10)
	v.SetDefault("discovery.default_depth", 2)
	v.SetDefault("export.output_dir", "./leads")
	v.SetDefault("export.tree_max_children", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that required settings for a discovery run are present.
func (c *Config) Validate() error {
	if c.API.Key == "" {
		return eris.New("config: api.key is required (set LEADS_API_KEY or api.key in config.yaml)")
	}
	return nil
}

// WriteDefault writes a starter config file with default values to path.
// Fails if the file already exists.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return eris.Errorf("config: %s already exists", path)
	}

	cfg := Config{
		API: APIConfig{
			BaseURL:   "https://api.linkdapi.com/v1",
			RateLimit: 5.0,
		},
		Discovery: DiscoveryConfig{
			MaxRetries:     3,
			RetryDelaySecs: 2,
			MaxConcurrent:  10,
			DefaultDepth:   2,
		},
		Export: ExportConfig{
			OutputDir:       "./leads",
			TreeMaxChildren: 10,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}

	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal defaults")
	}

	header := "# leads-cli configuration. Values may be overridden with LEADS_* env vars,\n# e.g. LEADS_API_KEY for api.key.\n"
	if err := os.WriteFile(path, append([]byte(header), out...), 0o644); err != nil {
		return eris.Wrap(err, "config: write file")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
