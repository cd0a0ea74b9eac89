package sink

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrOutputLocked is returned when another run holds the output directory
var ErrOutputLocked = errors.New("output directory is in use by another run")

// OutputLock is an exclusive advisory lock on one output directory
type OutputLock struct {
	lock *flock.Flock
}

// lockPath keeps the lock file out of the output directory itself
func lockPath(outDir string) (string, error) {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), "framematch-"+hex.EncodeToString(sum[:8])+".lock"), nil
}

// LockOutputDir takes the lock for outDir without blocking
func LockOutputDir(outDir string) (*OutputLock, error) {
	path, err := lockPath(outDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output lock: %w", err)
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, outDir)
	}
	return &OutputLock{lock: lock}, nil
}

// Release drops the lock
func (l *OutputLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
