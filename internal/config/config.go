package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Catalog  CatalogConfig  `yaml:"catalog" mapstructure:"catalog"`
	Browser  BrowserConfig  `yaml:"browser" mapstructure:"browser"`
	Navigate NavigateConfig `yaml:"navigate" mapstructure:"navigate"`
	Run      RunConfig      `yaml:"run" mapstructure:"run"`
	Input    InputConfig    `yaml:"input" mapstructure:"input"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// CatalogConfig identifies the target catalog application and account.
type CatalogConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Username  string `yaml:"username" mapstructure:"username"`
	Password  string `yaml:"password" mapstructure:"password"`
	StoreCode string `yaml:"store_code" mapstructure:"store_code"`
	// Locators optionally points at a YAML file overriding the built-in
	// element locators when the application layout shifts.
	Locators string `yaml:"locators" mapstructure:"locators"`
}

// BrowserConfig controls the Chrome session.
type BrowserConfig struct {
	Bin              string `yaml:"bin" mapstructure:"bin"`
	Headless         bool   `yaml:"headless" mapstructure:"headless"`
	LoginTimeoutSecs int    `yaml:"login_timeout_secs" mapstructure:"login_timeout_secs"`
	NavTimeoutSecs   int    `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
	FrameTimeoutSecs int    `yaml:"frame_timeout_secs" mapstructure:"frame_timeout_secs"`
}

// LoginTimeout returns the bounded wait for login and store-selection elements.
func (c BrowserConfig) LoginTimeout() time.Duration {
	return secsOr(c.LoginTimeoutSecs, 20*time.Second)
}

// NavTimeout returns the bounded wait for page navigations.
func (c BrowserConfig) NavTimeout() time.Duration {
	return secsOr(c.NavTimeoutSecs, 30*time.Second)
}

// FrameTimeout returns the bounded wait for embedded frames to appear.
func (c BrowserConfig) FrameTimeout() time.Duration {
	return secsOr(c.FrameTimeoutSecs, 5*time.Second)
}

// NavigateConfig tunes the per-identifier state machine.
type NavigateConfig struct {
	SettleMs               int `yaml:"settle_ms" mapstructure:"settle_ms"`
	FirstSettleMs          int `yaml:"first_settle_ms" mapstructure:"first_settle_ms"`
	SearchTimeoutSecs      int `yaml:"search_timeout_secs" mapstructure:"search_timeout_secs"`
	ProbeTimeoutSecs       int `yaml:"probe_timeout_secs" mapstructure:"probe_timeout_secs"`
	StatusTimeoutSecs      int `yaml:"status_timeout_secs" mapstructure:"status_timeout_secs"`
	DiscoveryAttempts      int `yaml:"discovery_attempts" mapstructure:"discovery_attempts"`
	FirstDiscoveryAttempts int `yaml:"first_discovery_attempts" mapstructure:"first_discovery_attempts"`
	DiscoveryBackoffMs     int `yaml:"discovery_backoff_ms" mapstructure:"discovery_backoff_ms"`
}

// RunConfig bounds the run driver.
type RunConfig struct {
	MaxRestarts       int     `yaml:"max_restarts" mapstructure:"max_restarts"`
	Sessions          int     `yaml:"sessions" mapstructure:"sessions"`
	SearchesPerMinute float64 `yaml:"searches_per_minute" mapstructure:"searches_per_minute"`
	StatusAddr        string  `yaml:"status_addr" mapstructure:"status_addr"`
}

// InputConfig locates the identifier list.
type InputConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Sheet  string `yaml:"sheet" mapstructure:"sheet"`
	Column string `yaml:"column" mapstructure:"column"`
}

// OutputConfig locates the result workbook.
type OutputConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Sheet string `yaml:"sheet" mapstructure:"sheet"`
}

// StoreConfig configures the run log backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

func secsOr(secs int, def time.Duration) time.Duration {
	if secs <= 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CATALOG_AUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Empty-string defaults register the key so AutomaticEnv
	// can populate it during Unmarshal.
	v.SetDefault("catalog.base_url", "https://acenet.aceservices.com/")
	v.SetDefault("catalog.username", "")
	v.SetDefault("catalog.password", "")
	v.SetDefault("catalog.store_code", "")
	v.SetDefault("catalog.locators", "")
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.login_timeout_secs", 20)
	v.SetDefault("browser.nav_timeout_secs", 30)
	v.SetDefault("browser.frame_timeout_secs", 5)
	v.SetDefault("navigate.settle_ms", 1000)
	v.SetDefault("navigate.first_settle_ms", 10000)
	v.SetDefault("navigate.search_timeout_secs", 10)
	v.SetDefault("navigate.probe_timeout_secs", 5)
	v.SetDefault("navigate.status_timeout_secs", 10)
	v.SetDefault("navigate.discovery_attempts", 2)
	v.SetDefault("navigate.first_discovery_attempts", 3)
	v.SetDefault("navigate.discovery_backoff_ms", 3000)
	v.SetDefault("run.max_restarts", 50)
	v.SetDefault("run.sessions", 1)
	v.SetDefault("run.searches_per_minute", 0) // 0 = unpaced
	v.SetDefault("run.status_addr", "")
	v.SetDefault("input.path", "")
	v.SetDefault("input.sheet", "Big Beautiful Order")
	v.SetDefault("input.column", "PARTNUMBER")
	v.SetDefault("output.path", "")
	v.SetDefault("output.sheet", "No Discovery Check")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "catalog-audit.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
