package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Storage edits the YAML config file.
type Storage struct {
	path string
}

// NewStorage creates storage at the default path.
func NewStorage() (*Storage, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", err)
	}
	return &Storage{path: path}, nil
}

// NewStorageWithPath creates storage with a specific path
func NewStorageWithPath(path string) *Storage {
	return &Storage{path: path}
}

func (s *Storage) Path() string {
	return s.path
}

// Set writes key=value into the file, keeping the other keys.
func (s *Storage) Set(key, value string) error {
	if !IsKey(key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value

	// Reject values that would make the next Load fail.
	probe := filepath.Join(filepath.Dir(s.path), ".probe-"+filepath.Base(s.path))
	if err := writeYAML(probe, values); err != nil {
		return err
	}
	defer os.Remove(probe)
	if _, err := NewLoader().Load(probe); err != nil {
		return err
	}

	return writeYAML(s.path, values)
}

// Unset removes key from the file so the default applies again.
func (s *Storage) Unset(key string) error {
	values, err := s.read()
	if err != nil {
		return err
	}
	delete(values, key)
	return writeYAML(s.path, values)
}

func (s *Storage) read() (map[string]any, error) {
	values := map[string]any{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}

func writeYAML(path string, values map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MarshalYAML renders durations in their readable form.
func (c Config) MarshalYAML() (interface{}, error) {
	type view struct {
		APIURL             string  `yaml:"api_url"`
		CredentialsFile    string  `yaml:"credentials_file"`
		EncryptCredentials bool    `yaml:"encrypt_credentials"`
		Timeout            string  `yaml:"timeout"`
		RefreshTimeout     string  `yaml:"refresh_timeout"`
		RateLimit          float64 `yaml:"rate_limit"`
		RateBurst          int     `yaml:"rate_burst"`
		LogLevel           string  `yaml:"log_level"`
		LogFormat          string  `yaml:"log_format"`
		UserAgent          string  `yaml:"user_agent"`
	}
	return view{
		APIURL:             c.APIURL,
		CredentialsFile:    c.CredentialsFile,
		EncryptCredentials: c.EncryptCredentials,
		Timeout:            c.Timeout.String(),
		RefreshTimeout:     c.RefreshTimeout.String(),
		RateLimit:          c.RateLimit,
		RateBurst:          c.RateBurst,
		LogLevel:           c.LogLevel,
		LogFormat:          c.LogFormat,
		UserAgent:          c.UserAgent,
	}, nil
}
