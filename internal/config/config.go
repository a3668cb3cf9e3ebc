package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Keys shared by the TOML file, HWDASH_* environment variables and flags.
const (
	KeyAPIEndpoint     = "api_endpoint"
	KeyHistoryEndpoint = "history_endpoint"
	KeyRefreshInterval = "refresh_interval"
	KeyRequestTimeout  = "request_timeout"
	KeyTheme           = "theme"
	KeyMetricsAddr     = "metrics_addr"
	KeyLogFile         = "log_file"
	KeyConfig          = "config"
)

// Duration decodes TOML strings such as "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type Config struct {
	APIEndpoint     string   `toml:"api_endpoint"`
	HistoryEndpoint string   `toml:"history_endpoint"`
	RefreshInterval Duration `toml:"refresh_interval"`
	RequestTimeout  Duration `toml:"request_timeout"`
	Theme           string   `toml:"theme"`
	MetricsAddr     string   `toml:"metrics_addr"`
	LogFile         string   `toml:"log_file"`

	// Path is the file the settings were read from, empty when none was found.
	Path string `toml:"-"`
}

func Defaults() Config {
	return Config{
		APIEndpoint:     "http://localhost:8002/dashboard",
		HistoryEndpoint: "http://localhost:8002/history",
		RefreshInterval: Duration{5 * time.Second},
		RequestTimeout:  Duration{5 * time.Second},
		Theme:           "Ocean",
		LogFile:         "hwdash.log",
	}
}

// Load starts from the defaults, applies the first config file found and then
// any value v has from the environment or command line. A nil v skips the
// overrides.
func Load(v *viper.Viper) (Config, error) {
	cfg := Defaults()

	explicit := ""
	if v != nil {
		explicit = v.GetString(KeyConfig)
	}
	paths, required := configPaths(explicit)
	if err := loadFromFile(&cfg, paths, required); err != nil {
		return cfg, err
	}

	if v != nil {
		applyOverrides(&cfg, v)
	}
	return cfg, cfg.Validate()
}

// loadFromFile decodes the first readable path into cfg. When required is set
// the first path must exist.
func loadFromFile(cfg *Config, paths []string, required bool) error {
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if i == 0 && required {
				return fmt.Errorf("reading config %s: %w", path, err)
			}
			continue
		}
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
		cfg.Path = path
		return nil
	}
	return nil
}

// configPaths lists candidate files in lookup order. The bool reports whether
// the first entry was named explicitly by flag or HWDASH_CONFIG.
func configPaths(explicit string) ([]string, bool) {
	var paths []string
	if explicit = strings.TrimSpace(explicit); explicit == "" {
		explicit = strings.TrimSpace(os.Getenv("HWDASH_CONFIG"))
	}
	if explicit != "" {
		paths = append(paths, explicit)
	}
	if cfgDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(cfgDir, "hwdash", "config.toml"))
	}
	paths = append(paths, "hwdash.toml")
	return paths, explicit != ""
}

func applyOverrides(cfg *Config, v *viper.Viper) {
	for key, dst := range map[string]*string{
		KeyAPIEndpoint:     &cfg.APIEndpoint,
		KeyHistoryEndpoint: &cfg.HistoryEndpoint,
		KeyTheme:           &cfg.Theme,
		KeyMetricsAddr:     &cfg.MetricsAddr,
		KeyLogFile:         &cfg.LogFile,
	} {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	if v.IsSet(KeyRefreshInterval) {
		cfg.RefreshInterval.Duration = v.GetDuration(KeyRefreshInterval)
	}
	if v.IsSet(KeyRequestTimeout) {
		cfg.RequestTimeout.Duration = v.GetDuration(KeyRequestTimeout)
	}
}

func (c Config) Validate() error {
	var errs []error
	for key, raw := range map[string]string{
		KeyAPIEndpoint:     c.APIEndpoint,
		KeyHistoryEndpoint: c.HistoryEndpoint,
	} {
		if err := validateURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if c.RefreshInterval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyRefreshInterval, c.RefreshInterval.Duration))
	}
	if c.RequestTimeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyRequestTimeout, c.RequestTimeout.Duration))
	}
	return errors.Join(errs...)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q is not an http(s) URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}
