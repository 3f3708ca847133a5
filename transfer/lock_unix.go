//go:build !windows

package transfer

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// exclusive reports whether an exclusive advisory lock on path can be taken right now.
func exclusive(path string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if errors.Is(err, unix.EWOULDBLOCK) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
