package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	SettingsFileName = "config.yaml"
	SettingsEnvVar   = "CMDSTACK_CONFIG"
	envPrefix        = "CMDSTACK"

	DefaultLogLevel    = "warn"
	DefaultParallelism = 4
	DefaultColorMode   = "auto"
)

// Settings holds user preferences read from the config file and environment.
type Settings struct {
	DataDir  string `mapstructure:"data_dir" validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	Parallel int    `mapstructure:"parallel" validate:"gte=1,lte=256"`
	Color    string `mapstructure:"color" validate:"required,oneof=auto always never"`
}

// Validate checks the struct tags.
func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// SettingsPath returns the config file location, honoring CMDSTACK_CONFIG.
func SettingsPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv(SettingsEnvVar)); explicit != "" {
		return explicit, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(configDir, AppDirName, SettingsFileName), nil
}

// LoadSettings reads defaults, then the YAML file at path when it exists,
// then CMDSTACK_* environment variables. An empty path skips the file.
func LoadSettings(path string) (Settings, error) {
	defaultDataDir, err := DefaultDataDir()
	if err != nil {
		return Settings{}, err
	}

	v := viper.New()
	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("parallel", DefaultParallelism)
	v.SetDefault("color", DefaultColorMode)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return Settings{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("stat config %s: %w", path, statErr)
		}
	}

	settings := Settings{}
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	settings.LogLevel = strings.ToLower(strings.TrimSpace(settings.LogLevel))
	settings.Color = strings.ToLower(strings.TrimSpace(settings.Color))
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}
