package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	lockTimeout    = 10 * time.Second
	lockRetryDelay = 100 * time.Millisecond
	renameRetries  = 3
)

// KeyringStore is the APIKeyStore value used when the secret lives in the OS keyring
const KeyringStore = "keyring"

var (
	errLockTimeout = errors.New("timed out waiting for lock")
	errNotObject   = errors.New("top-level value is not an object")
)

// Record holds the persisted credentials
type Record struct {
	APIKey      string    `json:"apiKey,omitempty"`
	APIKeyStore string    `json:"apiKeyStore,omitempty"`
	Profile     string    `json:"profile,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// UsesKeyring reports whether the API key is kept outside the config file
func (r Record) UsesKeyring() bool {
	return r.APIKeyStore == KeyringStore
}

// Store reads and writes a single Record at a fixed path.
// The path is resolved once by NewStore and never changes afterwards.
type Store struct {
	path     string
	lockPath string
}

// NewStore resolves the config path and returns a store bound to it.
// An empty explicitPath selects the default location.
func NewStore(explicitPath string) (*Store, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		return nil, err
	}

	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}, nil
}

// Path returns the resolved config file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the record, returns an empty record if the file doesn't exist
func (s *Store) Load() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, nil
		}
		return Record{}, &IOError{Op: "read", Path: s.path, Err: err}
	}

	// JSON5 so hand-edited files with comments still load
	var raw any
	if err := json5.Unmarshal(data, &raw); err != nil {
		return Record{}, &ParseError{Path: s.path, Err: err}
	}
	if _, ok := raw.(map[string]any); !ok {
		return Record{}, &ParseError{Path: s.path, Err: errNotObject}
	}

	var rec Record
	if err := json5.Unmarshal(data, &rec); err != nil {
		return Record{}, &ParseError{Path: s.path, Err: err}
	}

	return rec, nil
}

// Save stamps UpdatedAt and replaces the config file with rec
func (s *Store) Save(rec Record) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	lock, err := s.lock()
	if err != nil {
		return err
	}
	defer lock.Unlock()

	_, err = s.write(rec)
	return err
}

// Update loads the current record, applies fn and saves the result while
// holding the write lock. The saved record is returned.
func (s *Store) Update(fn func(rec *Record) error) (Record, error) {
	if err := s.ensureDir(); err != nil {
		return Record{}, err
	}

	lock, err := s.lock()
	if err != nil {
		return Record{}, err
	}
	defer lock.Unlock()

	rec, err := s.Load()
	if err != nil {
		return Record{}, err
	}

	if err := fn(&rec); err != nil {
		return Record{}, err
	}

	return s.write(rec)
}

// Delete removes the config file. A missing file is not an error.
func (s *Store) Delete() error {
	// Nothing to do, and taking the lock would create the directory
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}

	lock, err := s.lock()
	if err != nil {
		return err
	}
	defer lock.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return &IOError{Op: "remove", Path: s.path, Err: err}
	}

	return nil
}

func (s *Store) ensureDir() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &IOError{Op: "create directory", Path: dir, Err: err}
	}
	return nil
}

// lock acquires the exclusive write lock, waiting up to lockTimeout
func (s *Store) lock() (*flock.Flock, error) {
	return Lock(s.lockPath)
}

// write stamps rec and swaps it in atomically. Caller must hold the lock.
func (s *Store) write(rec Record) (Record, error) {
	rec.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return Record{}, fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := WriteFileAtomic(s.path, data); err != nil {
		return Record{}, err
	}
	return rec, nil
}
