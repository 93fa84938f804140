package app

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// instanceLock is a deployment-level guard: an flock(2) on a well-known
// file keeps a second copy of the bot from running against the same
// registry. Released automatically by the kernel if the process dies.
type instanceLock struct{ f *os.File }

func acquireInstanceLock(path string) (*instanceLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("another instance is already running (lock %s): %w", path, err)
	}
	return &instanceLock{f: f}, nil
}

func (l *instanceLock) Release() {
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	_ = l.f.Close()
}
