package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "FILECMP"
	FileName  = "config"
	FileType  = "yaml"
)

type Config struct {
	AutoJunk           bool   `mapstructure:"autojunk"`
	Lowercase          bool   `mapstructure:"lowercase"`
	CollapseWhitespace bool   `mapstructure:"collapse_whitespace"`
	CacheEnabled       bool   `mapstructure:"cache_enabled"`
	CachePath          string `mapstructure:"cache_path"`
	Workers            int    `mapstructure:"workers"`
	LogLevel           string `mapstructure:"log_level"`
	LogFormat          string `mapstructure:"log_format"`
	MaxFileBytes       int64  `mapstructure:"max_file_bytes"`
}

// Dir is where the config file lives inside a workspace root.
func Dir(root string) string {
	return filepath.Join(root, "configs")
}

func setDefaults(v *viper.Viper, root string) {
	v.SetDefault("autojunk", true)
	v.SetDefault("lowercase", true)
	v.SetDefault("collapse_whitespace", false)
	v.SetDefault("cache_enabled", true)
	v.SetDefault("cache_path", filepath.Join(root, "cache", "extract.db"))
	v.SetDefault("workers", 2)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("max_file_bytes", int64(64<<20))
}

// Load reads <root>/configs/config.yaml, overlays FILECMP_* environment
// variables and falls back to defaults for anything unset. A missing config
// file is not an error.
func Load(root string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(FileName)
	v.SetConfigType(FileType)
	v.AddConfigPath(Dir(root))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v, root)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &cfg, nil
}

// WriteDefaults creates the default config file unless one already exists.
func WriteDefaults(root string) (string, error) {
	path := filepath.Join(Dir(root), FileName+"."+FileType)
	v := viper.New()
	setDefaults(v, root)
	if err := v.SafeWriteConfigAs(path); err != nil {
		var exists viper.ConfigFileAlreadyExistsError
		if errors.As(err, &exists) {
			return path, nil
		}
		return "", fmt.Errorf("write default config: %w", err)
	}
	return path, nil
}

// LoadEnv loads .env style files into the process environment. Missing files
// are skipped; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}
