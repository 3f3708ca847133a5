//go:build windows

package transfer

import (
	"errors"

	"golang.org/x/sys/windows"
)

// exclusive reports whether path can be opened with no sharing, i.e. nobody else holds it open.
func exclusive(path string) (bool, error) {
	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false, err
	}

	h, err := windows.CreateFile(name, windows.GENERIC_READ, 0, nil, windows.OPEN_EXISTING, windows.FILE_ATTRIBUTE_NORMAL, 0)
	switch {
	case errors.Is(err, windows.ERROR_SHARING_VIOLATION),
		errors.Is(err, windows.ERROR_LOCK_VIOLATION),
		errors.Is(err, windows.ERROR_FILE_NOT_FOUND):
		return false, nil
	case err != nil:
		return false, err
	}

	return true, windows.CloseHandle(h)
}
