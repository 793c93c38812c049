package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	want := Config{
		APIURL:             "http://127.0.0.1:8000",
		CredentialsFile:    filepath.Join(home, ".config", "uyadmin", "credentials"),
		EncryptCredentials: true,
		Timeout:            30 * time.Second,
		RefreshTimeout:     15 * time.Second,
		RateLimit:          0,
		RateBurst:          10,
		LogLevel:           "warn",
		LogFormat:          "text",
		UserAgent:          "uyadmin-cli",
	}
	if diff := cmp.Diff(want, *cfg, cmpopts.IgnoreFields(Config{}, "Source")); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, cfg.Source)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, "api_url: http://file.example:8000\ntimeout: 5s\nlog_level: info\nrate_limit: 2.5\n")
	t.Setenv("UYADMIN_LOG_LEVEL", "debug")
	t.Setenv("UYADMIN_API_URL", "http://env.example:8000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("api-url", "", "")
	require.NoError(t, flags.Parse([]string{"--api-url", "https://flag.example"}))

	loader := NewLoader()
	require.NoError(t, loader.BindFlag("api_url", flags.Lookup("api-url")))
	cfg, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example", cfg.APIURL, "flag beats env and file")
	assert.Equal(t, "debug", cfg.LogLevel, "env beats file")
	assert.Equal(t, 5*time.Second, cfg.Timeout, "file beats default")
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_UnsetFlagDoesNotOverride(t *testing.T) {
	path := writeConfig(t, "api_url: http://file.example:8000\n")
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("api-url", "", "")
	require.NoError(t, flags.Parse(nil))

	loader := NewLoader()
	require.NoError(t, loader.BindFlag("api_url", flags.Lookup("api-url")))
	cfg, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://file.example:8000", cfg.APIURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"relative url":   "api_url: localhost:8000\n",
		"zero timeout":   "timeout: 0s\n",
		"bad duration":   "timeout: soon\n",
		"negative rate":  "rate_limit: -1\n",
		"unknown format": "log_format: xml\n",
		"unknown level":  "log_level: loud\n",
		"malformed yaml": "api_url: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewLoader().Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestBindFlag_Undefined(t *testing.T) {
	assert.Error(t, NewLoader().BindFlag("api_url", nil))
}

func TestStorage_SetAndUnset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	storage := NewStorageWithPath(path)

	require.NoError(t, storage.Set("api_url", "https://api.example.uz"))
	require.NoError(t, storage.Set("timeout", "10s"))

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.uz", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)

	require.NoError(t, storage.Unset("timeout"))
	cfg, err = NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "https://api.example.uz", cfg.APIURL)
}

func TestStorage_SetRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	storage := NewStorageWithPath(path)

	assert.Error(t, storage.Set("colour", "blue"))
	assert.Error(t, storage.Set("timeout", "never"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "rejected values are not written")
}

func TestConfig_MarshalYAML(t *testing.T) {
	cfg := Config{APIURL: "http://127.0.0.1:8000", Timeout: 30 * time.Second, RefreshTimeout: 15 * time.Second, LogFormat: "text"}

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	assert.Contains(t, string(out), "timeout: 30s")
	assert.Contains(t, string(out), "refresh_timeout: 15s")
	assert.Contains(t, string(out), "api_url: http://127.0.0.1:8000")
}
