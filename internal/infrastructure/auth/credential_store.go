package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"uyadmin.io/cli/internal/core/domain"
	"uyadmin.io/cli/internal/core/ports"
)

// FileCredentialStore persists the token pair in a single file, optionally
// encrypted with a machine-specific key.
type FileCredentialStore struct {
	path       string
	encryptKey []byte
	mu         sync.RWMutex
}

// NewFileCredentialStore creates a file-backed store at path. A leading "~/"
// is expanded to the home directory.
func NewFileCredentialStore(path string, encrypt bool) (*FileCredentialStore, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory: %w", err)
	}

	store := &FileCredentialStore{path: path}
	if encrypt {
		store.encryptKey = generateEncryptionKey()
	}
	return store, nil
}

// Path returns the backing file.
func (s *FileCredentialStore) Path() string {
	return s.path
}

// Get returns the value stored under key, or "" when absent.
func (s *FileCredentialStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

// Set stores value under key. An empty value removes the key.
func (s *FileCredentialStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		// An unreadable file (e.g. key changed with the hostname) is replaced.
		values = map[string]string{}
	}

	if value == "" {
		delete(values, key)
	} else {
		values[key] = value
	}
	return s.save(values)
}

// Clear removes every stored credential.
func (s *FileCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}

func (s *FileCredentialStore) load() (map[string]string, error) {
	values := map[string]string{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	if s.encryptKey != nil {
		data, err = s.decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
		}
	}

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return values, nil
}

func (s *FileCredentialStore) save(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if s.encryptKey != nil {
		data, err = s.encrypt(data)
		if err != nil {
			return fmt.Errorf("failed to encrypt credentials: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

func (s *FileCredentialStore) encrypt(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.encryptKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nonce, nonce, data, nil)
	return []byte(base64.StdEncoding.EncodeToString(ciphertext)), nil
}

func (s *FileCredentialStore) decrypt(data []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(s.encryptKey)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// generateEncryptionKey derives a 32-byte key from hostname and user.
func generateEncryptionKey() []byte {
	hostname, _ := os.Hostname()
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME") // Windows
	}

	hash := sha256.Sum256([]byte(fmt.Sprintf("uyadmin:%s:%s", hostname, user)))
	return hash[:]
}

// MemoryCredentialStore keeps credentials in process memory.
type MemoryCredentialStore struct {
	values map[string]string
	mu     sync.RWMutex
}

// NewMemoryCredentialStore creates an empty in-memory store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{values: make(map[string]string)}
}

func (s *MemoryCredentialStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

func (s *MemoryCredentialStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == "" {
		delete(s.values, key)
		return nil
	}
	s.values[key] = value
	return nil
}

func (s *MemoryCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]string)
	return nil
}

// LoadCredentials reads both tokens from store.
func LoadCredentials(store ports.CredentialStore) (domain.Credentials, error) {
	access, err := store.Get(domain.KeyAccessToken)
	if err != nil {
		return domain.Credentials{}, err
	}
	refresh, err := store.Get(domain.KeyRefreshToken)
	if err != nil {
		return domain.Credentials{}, err
	}
	return domain.Credentials{AccessToken: access, RefreshToken: refresh}, nil
}

// SaveCredentials writes both tokens to store.
func SaveCredentials(store ports.CredentialStore, creds domain.Credentials) error {
	if err := store.Set(domain.KeyAccessToken, creds.AccessToken); err != nil {
		return err
	}
	return store.Set(domain.KeyRefreshToken, creds.RefreshToken)
}

var (
	_ ports.CredentialStore = (*FileCredentialStore)(nil)
	_ ports.CredentialStore = (*MemoryCredentialStore)(nil)
)
