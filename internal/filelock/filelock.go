// Package filelock provides advisory file locking so several lumina
// processes (CLI, TUI, server) can write the same task directory.
package filelock

import (
	"context"
	"errors"
	"os"
	"time"
)

const (
	lockFileMode  = 0o600
	retryInterval = 5 * time.Millisecond
)

// errLocked is returned by tryLockFile when another handle holds the lock.
var errLocked = errors.New("file is locked")

// Lock acquires an exclusive advisory lock on the file at path, creating it
// if needed, and blocks until the lock is available.
func Lock(path string) (unlock func() error, err error) {
	return LockContext(context.Background(), path)
}

// LockContext is like Lock but gives up when ctx is done.
// The returned function releases the lock.
func LockContext(ctx context.Context, path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file path from trusted source
	if err != nil {
		return nil, err
	}

	for {
		err := tryLockFile(f)
		if err == nil {
			break
		}
		if !errors.Is(err, errLocked) {
			_ = f.Close()
			return nil, err
		}
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	return func() error {
		unlockErr := unlockFile(f)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}
