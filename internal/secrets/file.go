package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/scrypt"

	"github.com/semmy-space/codex/internal/config"
)

// File layout: salt | nonce | AES-256-GCM sealed JSON object
const (
	saltSize = 16
	keySize  = 32

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var errTruncated = errors.New("file is truncated")

// FileStore keeps secrets in one encrypted file. The key is derived from a
// password with scrypt; writes take the same lock and atomic replace as the
// config file.
type FileStore struct {
	path     string
	password []byte

	// derived keys by salt
	keys map[string][]byte
}

// DefaultFilePath returns the encrypted secrets file under the data directory
func DefaultFilePath() string {
	return filepath.Join(config.DataDir(), "credentials.enc")
}

// NewFileStore returns a store for the file at path. An empty password falls
// back to the user and host names, which only hides the file from casual reads.
func NewFileStore(path, password string) (*FileStore, error) {
	if password == "" {
		password = machinePassword()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve secrets path: %w", err)
	}

	return &FileStore{
		path:     abs,
		password: []byte(password),
		keys:     make(map[string][]byte),
	}, nil
}

func machinePassword() string {
	hostname, _ := os.Hostname()
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}
	return username + "@" + hostname
}

// Get reads one secret. Readers don't lock; writes replace the file atomically.
func (s *FileStore) Get(key string) (string, error) {
	secrets, _, err := s.load()
	if err != nil {
		return "", err
	}

	value, ok := secrets[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *FileStore) Set(key, value string) error {
	return s.update(func(secrets map[string]string) error {
		secrets[key] = value
		return nil
	})
}

func (s *FileStore) Delete(key string) error {
	return s.update(func(secrets map[string]string) error {
		if _, ok := secrets[key]; !ok {
			return ErrNotFound
		}
		delete(secrets, key)
		return nil
	})
}

// Backend implements Store
func (s *FileStore) Backend() string {
	return "encrypted file"
}

// update runs fn on the decrypted secrets under the file lock and writes the
// result back. Nothing is written when fn fails.
func (s *FileStore) update(fn func(secrets map[string]string) error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}

	lock, err := config.Lock(s.path + ".lock")
	if err != nil {
		return err
	}
	defer lock.Unlock()

	secrets, salt, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(secrets); err != nil {
		return err
	}

	data, err := s.seal(secrets, salt)
	if err != nil {
		return err
	}
	return config.WriteFileAtomic(s.path, data)
}

// load returns the secrets and the salt they were sealed with. A missing or
// empty file is an empty set with no salt yet.
func (s *FileStore) load() (map[string]string, []byte, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) || (err == nil && len(data) == 0) {
		return make(map[string]string), nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read secrets file: %w", err)
	}

	secrets, salt, err := s.open(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decrypt %s: %w", s.path, err)
	}
	return secrets, salt, nil
}

func (s *FileStore) open(data []byte) (map[string]string, []byte, error) {
	if len(data) < saltSize {
		return nil, nil, errTruncated
	}
	salt, rest := data[:saltSize], data[saltSize:]

	gcm, err := s.cipher(salt)
	if err != nil {
		return nil, nil, err
	}
	if len(rest) < gcm.NonceSize() {
		return nil, nil, errTruncated
	}

	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, []byte(ServiceName))
	if err != nil {
		return nil, nil, fmt.Errorf("wrong password or corrupt file: %w", err)
	}

	secrets := make(map[string]string)
	if err := json.Unmarshal(plaintext, &secrets); err != nil {
		return nil, nil, fmt.Errorf("malformed contents: %w", err)
	}
	return secrets, salt, nil
}

// seal encrypts secrets, keeping salt when the file already has one
func (s *FileStore) seal(secrets map[string]string, salt []byte) ([]byte, error) {
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	gcm, err := s.cipher(salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := json.Marshal(secrets)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize secrets: %w", err)
	}

	out := make([]byte, 0, saltSize+gcm.NonceSize()+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, []byte(ServiceName)), nil
}

func (s *FileStore) cipher(salt []byte) (cipher.AEAD, error) {
	key, ok := s.keys[string(salt)]
	if !ok {
		var err error
		key, err = scrypt.Key(s.password, salt, scryptN, scryptR, scryptP, keySize)
		if err != nil {
			return nil, fmt.Errorf("failed to derive key: %w", err)
		}
		s.keys[string(salt)] = key
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
