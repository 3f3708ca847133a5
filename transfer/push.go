package transfer

import (
	"context"
	"path/filepath"
	"time"

	"github.com/epget-cli/epget/apperrors"
	"github.com/epget-cli/epget/constant"
	"github.com/epget-cli/epget/episode"
	"github.com/epget-cli/epget/filesystem"
	"github.com/epget-cli/epget/log"
	"github.com/epget-cli/epget/progress"
	"github.com/fsnotify/fsnotify"
)

// Push waits for a file written by the browser until the writer lets go of it.
//
// There is no deadline: a large file on a slow link takes as long as it takes.
type Push struct {
	// Interval is the delay between two checks when no filesystem event arrives.
	Interval time.Duration
}

func (p *Push) Execute(ctx context.Context, d episode.Descriptor, _ string, sink progress.Sink) error {
	dir := filepath.Dir(d.Path)

	var events <-chan fsnotify.Event
	var errs <-chan error

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warnf("watch %s: %s, polling only", dir, err)
	} else {
		defer watcher.Close()
		if err := watcher.Add(dir); err != nil {
			log.Warnf("watch %s: %s, polling only", dir, err)
		} else {
			events, errs = watcher.Events, watcher.Errors
		}
	}

	ticker := time.NewTicker(p.interval())
	defer ticker.Stop()

	for {
		done, err := Released(d.Path)
		if err != nil {
			return apperrors.NewFilesystemError("lock", d.Path, err)
		}

		if done {
			info, err := filesystem.API().Stat(d.Path)
			if err != nil {
				return apperrors.NewFilesystemError("stat", d.Path, err)
			}
			sink.Finish(progress.NewState(info.Size(), info.Size()))
			log.With(log.Fields{"file": d.Path, "bytes": info.Size()}).Info("download committed")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			log.Tracef("push wait woken by %s", ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warnf("watch %s: %s", dir, err)
		case <-ticker.C:
		}
	}
}

// Released reports whether path exists, has no partial-download sibling and can be opened exclusively.
func Released(path string) (bool, error) {
	if _, err := filesystem.API().Stat(path); err != nil {
		return false, nil
	}

	for _, suffix := range constant.PartialSuffixes {
		if _, err := filesystem.API().Stat(path + suffix); err == nil {
			return false, nil
		}
	}

	if !filesystem.IsOs() {
		return true, nil
	}
	return exclusive(path)
}

func (p *Push) interval() time.Duration {
	if p.Interval <= 0 {
		return time.Second
	}
	return p.Interval
}
