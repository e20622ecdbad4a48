package secrets

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"

	"github.com/semmy-space/codex/internal/config"
)

// KeyringStore keeps secrets in the OS keyring
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore opens the platform keyring. password unlocks the
// keyring's own file backend when no native one exists; empty prompts.
func NewKeyringStore(password string) (*KeyringStore, error) {
	ring, err := keyring.Open(ringConfig(password))
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return newRingStore(ring), nil
}

func ringConfig(password string) keyring.Config {
	prompt := keyring.TerminalPrompt
	if password != "" {
		prompt = keyring.FixedStringPrompt(password)
	}

	return keyring.Config{
		ServiceName:              ServiceName,
		KeychainTrustApplication: true, // macOS: don't prompt every access
		FileDir:                  filepath.Join(config.DataDir(), "keyring"),
		FilePasswordFunc:         prompt,
	}
}

func newRingStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

func (s *KeyringStore) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keyring get %s: %w", key, err)
	}
	return string(item.Data), nil
}

func (s *KeyringStore) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       ServiceName + " " + key,
		Description: "codex credential",
	})
	if err != nil {
		return fmt.Errorf("keyring set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Backends disagree on removing a missing item, so a
// missing key is detected up front and reported as ErrNotFound.
func (s *KeyringStore) Delete(key string) error {
	if _, err := s.Get(key); err != nil {
		return err
	}
	if err := s.ring.Remove(key); err != nil {
		return fmt.Errorf("keyring remove %s: %w", key, err)
	}
	return nil
}

// Backend implements Store
func (s *KeyringStore) Backend() string {
	return "keyring"
}
