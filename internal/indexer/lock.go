package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// IndexLock serializes indexing runs across processes with an advisory file
// lock. Two codescout processes indexing the same tree would otherwise
// interleave document replaces and waste embedding calls on each other's
// work.
type IndexLock struct {
	path  string
	flock *flock.Flock
}

// NewIndexLock creates a lock scoped to rootPath. The lock file lives in the
// OS temp directory, keyed by a digest of the root path, so the indexed tree
// itself stays clean.
func NewIndexLock(rootPath string) *IndexLock {
	sum := sha256.Sum256([]byte(rootPath))
	name := fmt.Sprintf("codescout-index-%s.lock", hex.EncodeToString(sum[:8]))
	lockPath := filepath.Join(os.TempDir(), name)
	return &IndexLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Lock blocks until the exclusive lock is acquired.
func (l *IndexLock) Lock() error {
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.path, err)
	}
	return nil
}

// TryLock attempts to acquire the lock without blocking.
func (l *IndexLock) TryLock() (bool, error) {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock %s: %w", l.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (l *IndexLock) Unlock() error {
	return l.flock.Unlock()
}

// Path returns the lock file location.
func (l *IndexLock) Path() string {
	return l.path
}
