package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// serveConfig はサーバー起動の設定を表す. フラグ, 環境変数 (PYROXY_*),
// 設定ファイル (pyroxy.yaml) の順で解決される.
type serveConfig struct {
	Host                string        `mapstructure:"host"`
	Port                int           `mapstructure:"port"`
	MetricsPort         int           `mapstructure:"metrics_port"`
	ConfigDir           string        `mapstructure:"config_dir"`
	LogDir              string        `mapstructure:"log_dir"`
	LogLevel            string        `mapstructure:"log_level"`
	LogFormat           string        `mapstructure:"log_format"`
	CacheMaxEntries     int           `mapstructure:"cache_max_entries"`
	MetricsSaveInterval time.Duration `mapstructure:"metrics_save_interval"`
}

func loadConfig(flags *pflag.FlagSet) (*serveConfig, error) {
	v := viper.New()

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 1458)
	v.SetDefault("metrics_port", 1459)
	v.SetDefault("config_dir", "./configs")
	v.SetDefault("log_dir", "./logs")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("cache_max_entries", 1000)
	v.SetDefault("metrics_save_interval", time.Minute)

	v.SetConfigName("pyroxy")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("PYROXY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// フラグ名は dash 区切り, 設定キーは underscore 区切り
	bindings := map[string]string{
		"host":                  "host",
		"port":                  "port",
		"metrics_port":          "metrics-port",
		"config_dir":            "config-dir",
		"log_dir":               "log-dir",
		"log_level":             "log-level",
		"log_format":            "log-format",
		"cache_max_entries":     "cache-max-entries",
		"metrics_save_interval": "metrics-save-interval",
	}
	for key, name := range bindings {
		if flag := flags.Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, err
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// 設定ファイルなしはデフォルトで動作
	}

	var cfg serveConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

func prepareDirectories(cfg *serveConfig) error {
	for _, dir := range []string{cfg.ConfigDir, cfg.LogDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}
	return nil
}
