package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// errLockHeld is returned by tryLock while another process owns the lock
var errLockHeld = errors.New("lock already held")

// LockConfig holds configuration for file locking behavior
type LockConfig struct {
	Timeout    time.Duration
	RetryDelay time.Duration
	// StaleAfter is the age after which a lock whose owner is gone is broken
	StaleAfter time.Duration
}

// DefaultLockConfig returns the lock settings used by FileStore
func DefaultLockConfig() LockConfig {
	return LockConfig{
		Timeout:    5 * time.Second,
		RetryDelay: 50 * time.Millisecond,
		StaleAfter: time.Minute,
	}
}

// fileLock is an exclusive sidecar lock (<path>.lock) guarding a store file
// against concurrent liftchat processes.
type fileLock struct {
	path     string
	lockPath string
	file     *os.File
}

func newFileLock(path string) *fileLock {
	return &fileLock{
		path:     path,
		lockPath: path + ".lock",
	}
}

// lock retries until the lock is acquired, the timeout passes or ctx ends
func (fl *fileLock) lock(ctx context.Context, cfg LockConfig) error {
	if fl.file != nil {
		return errors.New("store file is already locked")
	}
	if err := os.MkdirAll(filepath.Dir(fl.lockPath), 0700); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(cfg.RetryDelay)
	defer ticker.Stop()

	for {
		err := fl.tryLock(cfg)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errLockHeld) {
			return err
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout acquiring lock on %s: %w", fl.path, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (fl *fileLock) tryLock(cfg LockConfig) error {
	file, err := os.OpenFile(fl.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create lock file: %w", err)
		}
		if fl.isStale(cfg.StaleAfter) {
			os.Remove(fl.lockPath)
			return fl.tryLock(LockConfig{StaleAfter: 0})
		}
		return errLockHeld
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		file.Close()
		os.Remove(fl.lockPath)
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return errLockHeld
		}
		return fmt.Errorf("failed to acquire system lock: %w", err)
	}

	if _, err := fmt.Fprintf(file, "pid:%d\ntime:%s\n", os.Getpid(), time.Now().Format(time.RFC3339)); err != nil {
		fl.release(file)
		return fmt.Errorf("failed to write lock info: %w", err)
	}

	fl.file = file
	return nil
}

// isStale reports whether the lock file is old and its owner has exited.
// A zero staleAfter disables stale detection.
func (fl *fileLock) isStale(staleAfter time.Duration) bool {
	if staleAfter <= 0 {
		return false
	}
	info, err := os.Stat(fl.lockPath)
	if err != nil {
		return true
	}
	if time.Since(info.ModTime()) < staleAfter {
		return false
	}

	data, err := os.ReadFile(fl.lockPath)
	if err != nil {
		return true
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "pid:%d", &pid); err != nil {
		return true
	}
	return !processRunning(pid)
}

func processRunning(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 only checks for existence
	return p.Signal(syscall.Signal(0)) == nil
}

func (fl *fileLock) unlock() error {
	if fl.file == nil {
		return nil
	}
	err := fl.release(fl.file)
	fl.file = nil
	return err
}

func (fl *fileLock) release(file *os.File) error {
	var errs []error
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_UN); err != nil {
		errs = append(errs, fmt.Errorf("failed to release system lock: %w", err))
	}
	if err := file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close lock file: %w", err))
	}
	if err := os.Remove(fl.lockPath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove lock file: %w", err))
	}
	return errors.Join(errs...)
}

// withLock runs fn while holding the lock for path
func withLock(ctx context.Context, path string, cfg LockConfig, fn func() error) (err error) {
	lock := newFileLock(path)
	if err := lock.lock(ctx, cfg); err != nil {
		return err
	}
	defer func() {
		if unlockErr := lock.unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}()
	return fn()
}

// atomicWrite replaces path with data through a temp file and rename.
// Callers hold the lock.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
