package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/flock"
)

// Lock takes the exclusive lock at lockPath, waiting up to 10s.
// Release it with Unlock on the returned handle.
func Lock(lockPath string) (*flock.Flock, error) {
	lock := flock.New(lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, &IOError{Op: "lock", Path: lockPath, Err: err}
	}
	if !locked {
		return nil, &IOError{Op: "lock", Path: lockPath, Err: errLockTimeout}
	}

	return lock, nil
}

// WriteFileAtomic replaces path with data. The data goes to a synced 0600
// temp file in the same directory which is then renamed over path, so
// readers see either the old or the new content.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "create temp file", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return &IOError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return &IOError{Op: "sync", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &IOError{Op: "close", Path: tmpPath, Err: err}
	}

	// Rename can fail transiently on Windows while another process has the target open
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	rename := func() error {
		return os.Rename(tmpPath, path)
	}
	if err := backoff.Retry(rename, backoff.WithMaxRetries(policy, renameRetries)); err != nil {
		_ = os.Remove(tmpPath)
		return &IOError{Op: "rename", Path: path, Err: err}
	}

	return nil
}
