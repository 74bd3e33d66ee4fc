package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLockConfig() LockConfig {
	cfg := DefaultLockConfig()
	cfg.Timeout = 500 * time.Millisecond
	cfg.RetryDelay = 10 * time.Millisecond
	return cfg
}

func TestFileLockBasicLockUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.json")
	lock := newFileLock(path)

	require.NoError(t, lock.lock(context.Background(), testLockConfig()))

	_, err := os.Stat(lock.lockPath)
	assert.NoError(t, err, "lock file should exist while held")

	require.NoError(t, lock.unlock())
	_, err = os.Stat(lock.lockPath)
	assert.True(t, os.IsNotExist(err), "lock file should be removed on unlock")

	// Unlocking twice is harmless
	assert.NoError(t, lock.unlock())
}

func TestFileLockTimesOutWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.json")

	holder := newFileLock(path)
	require.NoError(t, holder.lock(context.Background(), testLockConfig()))
	defer holder.unlock()

	waiter := newFileLock(path)
	cfg := testLockConfig()
	cfg.Timeout = 50 * time.Millisecond

	err := waiter.lock(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout acquiring lock")
}

func TestFileLockBreaksStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.json")
	lockPath := path + ".lock"

	// A pid that cannot be running
	require.NoError(t, os.WriteFile(lockPath, []byte(fmt.Sprintf("pid:%d\n", 1<<30)), 0600))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(lockPath, old, old))

	lock := newFileLock(path)
	require.NoError(t, lock.lock(context.Background(), testLockConfig()))
	assert.NoError(t, lock.unlock())
}

func TestWithLockSerializes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter")
	cfg := testLockConfig()
	cfg.Timeout = 5 * time.Second

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := withLock(context.Background(), path, cfg, func() error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				time.Sleep(5 * time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestAtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.json")

	require.NoError(t, atomicWrite(path, []byte(`{"a":"1"}`), 0600))
	require.NoError(t, atomicWrite(path, []byte(`{"a":"2"}`), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"2"}`, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files should remain")
}
