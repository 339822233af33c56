package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jcdickinson/lovvelger/internal/law"
)

type LovdataConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	UserAgent  string        `mapstructure:"user_agent"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Retries    uint          `mapstructure:"retries"`
	MaxResults int           `mapstructure:"max_results"`
}

type DaemonConfig struct {
	ExpirationSeconds int `mapstructure:"expiration_seconds"`
}

type SearchConfig struct {
	MinQueryLength int           `mapstructure:"min_query_length"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

type Config struct {
	Lovdata LovdataConfig `mapstructure:"lovdata"`
	Daemon  DaemonConfig  `mapstructure:"daemon"`
	Search  SearchConfig  `mapstructure:"search"`
	Filter  law.LawFilter `mapstructure:"filter"`
	// Preload lists law bases fetched when the daemon starts.
	Preload []string `mapstructure:"preload"`
}

// cacheBase returns the base cache directory for lovvelger.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/lovvelger as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "lovvelger")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "lovvelger")
	}
	return filepath.Join(os.TempDir(), "lovvelger")
}

// DBPath returns the path to the DuckDB database file.
func DBPath() string {
	return filepath.Join(cacheBase(), "db.db")
}

// CASDir returns the path to the raw HTML snapshot store.
func CASDir() string {
	return filepath.Join(cacheBase(), "cas")
}

// DocumentCacheDir returns the path to the scraped document cache.
func DocumentCacheDir() string {
	return filepath.Join(cacheBase(), "documents")
}

// LogPath returns the path to the daemon's log file.
func LogPath() string {
	return filepath.Join(cacheBase(), "daemon.log")
}

// SocketPath returns the path to the daemon's unix socket.
func SocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "lovvelger", "daemon.sock")
	}
	return filepath.Join(fmt.Sprintf("/run/user/%d", os.Getuid()), "lovvelger", "daemon.sock")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("lovdata.base_url", "https://lovdata.no")
	v.SetDefault("lovdata.user_agent", "Mozilla/5.0 (compatible; lovvelger/1.0)")
	v.SetDefault("lovdata.timeout", "30s")
	v.SetDefault("lovdata.retries", 3)
	v.SetDefault("lovdata.max_results", 5)
	v.SetDefault("daemon.expiration_seconds", 600)
	v.SetDefault("search.min_query_length", 3)
	v.SetDefault("search.cache_ttl", "1h")
}

func InitializeViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "lovvelger"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "lovvelger"))
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("LOVVELGER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// decode maps raw settings onto Config. Comma-separated strings become
// slices and duration strings become time.Duration, so env overrides like
// LOVVELGER_PRELOAD=LOV-1,LOV-2 work.
func decode(settings map[string]any) (*Config, error) {
	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}
	return decode(viper.AllSettings())
}

// Watch reloads the config whenever the config file changes and hands the
// result to onChange. It does nothing when no config file was found.
func Watch(onChange func(*Config)) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(viper.AllSettings())
		if err != nil {
			slog.Warn("config reload failed", "file", e.Name, "error", err)
			return
		}
		slog.Info("config reloaded", "file", e.Name, "op", e.Op.String())
		onChange(cfg)
	})
	viper.WatchConfig()
}
