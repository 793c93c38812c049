package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. UYADMIN_API_URL.
const EnvPrefix = "UYADMIN"

// Config holds the effective CLI settings.
type Config struct {
	APIURL             string        `mapstructure:"api_url" yaml:"api_url" validate:"required,url,startswith=http"`
	CredentialsFile    string        `mapstructure:"credentials_file" yaml:"credentials_file" validate:"required"`
	EncryptCredentials bool          `mapstructure:"encrypt_credentials" yaml:"encrypt_credentials"`
	Timeout            time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	RefreshTimeout     time.Duration `mapstructure:"refresh_timeout" yaml:"refresh_timeout" validate:"gt=0"`
	RateLimit          float64       `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
	RateBurst          int           `mapstructure:"rate_burst" yaml:"rate_burst" validate:"gte=0"`
	LogLevel           string        `mapstructure:"log_level" yaml:"log_level" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat          string        `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
	UserAgent          string        `mapstructure:"user_agent" yaml:"user_agent"`

	// Path of the file the values were read from, empty when none existed.
	Source string `mapstructure:"-" yaml:"-"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"api_url":             "http://127.0.0.1:8000",
		"credentials_file":    "~/.config/uyadmin/credentials",
		"encrypt_credentials": true,
		"timeout":             "30s",
		"refresh_timeout":     "15s",
		"rate_limit":          0.0,
		"rate_burst":          10,
		"log_level":           "warn",
		"log_format":          "text",
		"user_agent":          "uyadmin-cli",
	}
}

// Keys lists the recognised settings in display order.
func Keys() []string {
	return []string{
		"api_url", "credentials_file", "encrypt_credentials", "timeout", "refresh_timeout",
		"rate_limit", "rate_burst", "log_level", "log_format", "user_agent",
	}
}

// IsKey reports whether key is a recognised setting.
func IsKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// DefaultPath returns ~/.config/uyadmin/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "uyadmin", "config.yaml"), nil
}

// Loader resolves settings with precedence flags > env > file > defaults.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.AllowEmptyEnv(false)
	return &Loader{v: v}
}

// BindFlag lets a command-line flag override key when it is set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("flag for %q is not defined", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads path (or the default path when empty). A missing file is not an
// error; the other sources still apply.
func (l *Loader) Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	source := ""
	if _, err := os.Stat(path); err == nil {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		source = path
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	var cfg Config
	err := l.v.Unmarshal(
		&cfg,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				expandHomeDir(),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and formats.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config value for %s: %v fails %q", fe.Field(), fe.Value(), fe.Tag())
	}
	return err
}

// expandHomeDir turns a leading "~/" into the user's home directory.
func expandHomeDir() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.String {
			return data, nil
		}
		s, ok := data.(string)
		if !ok || !strings.HasPrefix(s, "~/") {
			return data, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", s, err)
		}
		return filepath.Join(home, s[2:]), nil
	}
}
