package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uyadmin.io/cli/internal/core/domain"
	"uyadmin.io/cli/internal/core/ports"
)

func TestCredentialStores(t *testing.T) {
	stores := map[string]func(t *testing.T) ports.CredentialStore{
		"memory": func(t *testing.T) ports.CredentialStore {
			return NewMemoryCredentialStore()
		},
		"file": func(t *testing.T) ports.CredentialStore {
			store, err := NewFileCredentialStore(filepath.Join(t.TempDir(), "credentials"), false)
			require.NoError(t, err)
			return store
		},
		"encrypted file": func(t *testing.T) ports.CredentialStore {
			store, err := NewFileCredentialStore(filepath.Join(t.TempDir(), "credentials"), true)
			require.NoError(t, err)
			return store
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Run("empty store returns empty values", func(t *testing.T) {
				store := newStore(t)
				creds, err := LoadCredentials(store)
				require.NoError(t, err)
				assert.True(t, creds.IsEmpty())
			})

			t.Run("save and load pair", func(t *testing.T) {
				store := newStore(t)
				want := domain.Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}
				require.NoError(t, SaveCredentials(store, want))

				got, err := LoadCredentials(store)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			})

			t.Run("set access keeps refresh", func(t *testing.T) {
				store := newStore(t)
				require.NoError(t, SaveCredentials(store, domain.Credentials{AccessToken: "a1", RefreshToken: "r1"}))
				require.NoError(t, store.Set(domain.KeyAccessToken, "a2"))

				got, err := LoadCredentials(store)
				require.NoError(t, err)
				assert.Equal(t, domain.Credentials{AccessToken: "a2", RefreshToken: "r1"}, got)
			})

			t.Run("empty value removes key", func(t *testing.T) {
				store := newStore(t)
				require.NoError(t, store.Set(domain.KeyRefreshToken, "r1"))
				require.NoError(t, store.Set(domain.KeyRefreshToken, ""))

				value, err := store.Get(domain.KeyRefreshToken)
				require.NoError(t, err)
				assert.Empty(t, value)
			})

			t.Run("clear removes both tokens", func(t *testing.T) {
				store := newStore(t)
				require.NoError(t, SaveCredentials(store, domain.Credentials{AccessToken: "a1", RefreshToken: "r1"}))
				require.NoError(t, store.Clear())
				require.NoError(t, store.Clear(), "clearing twice is a no-op")

				creds, err := LoadCredentials(store)
				require.NoError(t, err)
				assert.True(t, creds.IsEmpty())
			})
		})
	}
}

func TestFileCredentialStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials")

	first, err := NewFileCredentialStore(path, true)
	require.NoError(t, err)
	require.NoError(t, SaveCredentials(first, domain.Credentials{AccessToken: "secret-access", RefreshToken: "secret-refresh"}))

	second, err := NewFileCredentialStore(path, true)
	require.NoError(t, err)
	creds, err := LoadCredentials(second)
	require.NoError(t, err)
	assert.Equal(t, "secret-access", creds.AccessToken)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-access")
}

func TestFileCredentialStore_PlainFileIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials")
	store, err := NewFileCredentialStore(path, false)
	require.NoError(t, err)
	require.NoError(t, store.Set(domain.KeyAccessToken, "abc"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"abc"}`, string(raw))
}

func TestFileCredentialStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	store, err := NewFileCredentialStore(path, false)
	require.NoError(t, err)

	_, err = store.Get(domain.KeyAccessToken)
	assert.Error(t, err)

	require.NoError(t, store.Set(domain.KeyAccessToken, "fresh"), "set replaces an unreadable file")
	value, err := store.Get(domain.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "fresh", value)
}

func TestFileCredentialStore_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewFileCredentialStore("~/.config/uyadmin/credentials", false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(store.Path(), home))
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", domain.MaskToken(""))
	assert.Equal(t, "****", domain.MaskToken("short"))
	assert.Equal(t, "eyJhbG...wxyz", domain.MaskToken("eyJhbGciOiJIUzI1NiJ9.payload.sigwxyz"))
}
