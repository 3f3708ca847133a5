// Package inventory answers whether an episode is already present on disk.
//
// Nothing is cached: the tree is walked again on every question, once per episode.
package inventory

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/epget-cli/epget/apperrors"
	"github.com/epget-cli/epget/constant"
	"github.com/epget-cli/epget/episode"
	"github.com/epget-cli/epget/filesystem"
	"github.com/epget-cli/epget/log"
	"github.com/samber/lo"
)

var errFound = errors.New("found")

// Inventory scans a directory tree for episode files.
type Inventory struct {
	root string
}

// New returns an Inventory rooted at root.
func New(root string) *Inventory {
	return &Inventory{root: root}
}

// Root returns the scanned directory.
func (i *Inventory) Root() string {
	return i.root
}

// Pattern returns the file name pattern of an episode number: the number,
// optionally zero padded, between two of space, underscore or hyphen.
func Pattern(number string) *regexp.Regexp {
	return regexp.MustCompile(`[ _-]0*` + regexp.QuoteMeta(episode.NormalizeNumber(number)) + `[ _-]`)
}

// IsTemporary reports whether name carries one of the in-progress markers,
// ours or one a browser leaves behind.
func IsTemporary(name string) bool {
	name = strings.ToLower(name)
	return lo.ContainsBy(constant.PartialSuffixes, func(suffix string) bool {
		return strings.HasSuffix(name, suffix)
	})
}

// IsSatisfied reports whether any completed file under the root matches the episode number.
func (i *Inventory) IsSatisfied(number string) (bool, error) {
	pattern := Pattern(number)

	err := filesystem.API().Walk(i.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || IsTemporary(info.Name()) {
			return nil
		}

		if pattern.MatchString(info.Name()) {
			log.Debugf("episode %s satisfied by %s", number, path)
			return errFound
		}
		return nil
	})

	switch {
	case errors.Is(err, errFound):
		return true, nil
	case err != nil:
		return false, apperrors.NewFilesystemError("scan", i.root, err)
	default:
		return false, nil
	}
}

// Stale lists the temporary files left directly inside dir by interrupted transfers.
func Stale(dir string) ([]string, error) {
	entries, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return nil, apperrors.NewFilesystemError("read", dir, err)
	}

	var stale []string
	for _, entry := range entries {
		if !entry.IsDir() && IsTemporary(entry.Name()) {
			stale = append(stale, filepath.Join(dir, entry.Name()))
		}
	}
	return stale, nil
}

// Clean removes the files reported by Stale and returns how many were removed.
func Clean(dir string) (int, error) {
	stale, err := Stale(dir)
	if err != nil {
		return 0, err
	}

	for i, path := range stale {
		if err := filesystem.API().Remove(path); err != nil {
			return i, apperrors.NewFilesystemError("remove", path, err)
		}
		log.Infof("removed stale temporary file %s", path)
	}
	return len(stale), nil
}
