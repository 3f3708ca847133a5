package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/epget-cli/epget/browser"
	"github.com/epget-cli/epget/catalog"
	"github.com/epget-cli/epget/download"
	"github.com/epget-cli/epget/episode"
	"github.com/epget-cli/epget/icon"
	"github.com/epget-cli/epget/inventory"
	"github.com/epget-cli/epget/key"
	"github.com/epget-cli/epget/log"
	"github.com/epget-cli/epget/progress"
	"github.com/epget-cli/epget/resolver"
	"github.com/epget-cli/epget/style"
	"github.com/epget-cli/epget/transfer"
	"github.com/epget-cli/epget/util"
	"github.com/spf13/viper"
)

type runOptions struct {
	Browser     string
	SeasonURL   string
	CheckDir    string
	DownloadDir string
}

func runDownload(ctx context.Context, opts runOptions) error {
	// the browser needs an absolute download path
	downloadDir, err := filepath.Abs(opts.DownloadDir)
	if err != nil {
		return err
	}

	if viper.GetBool(key.DownloadCleanStale) {
		removed, err := inventory.Clean(downloadDir)
		if err != nil {
			return err
		}
		if removed > 0 {
			fmt.Printf("%s Removed %s\n", icon.Get(icon.Skip), util.Quantify(removed, "leftover file", "leftover files"))
		}
	}

	log.With(log.Fields{
		"browser":  opts.Browser,
		"season":   opts.SeasonURL,
		"check":    opts.CheckDir,
		"download": downloadDir,
	}).Info("starting season download")

	session, err := browser.Launch(ctx, browser.Options{
		Bin:         opts.Browser,
		Headless:    viper.GetBool(key.BrowserHeadless),
		Trace:       viper.GetBool(key.BrowserTrace),
		DownloadDir: downloadDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warnf("close browser: %s", err)
		}
	}()

	orchestrator := download.New(download.Options{
		Session:   session,
		Catalog:   catalog.FromConfig(),
		Inventory: inventory.New(opts.CheckDir),
		Resolver:  resolver.FromConfig(downloadDir),
		Transfer:  transfer.FromConfig(),
		SeasonURL: opts.SeasonURL,
		TargetDir: downloadDir,
		Out:       os.Stdout,
		NewSink:   newSink,
	})

	err = orchestrator.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Println()
		fmt.Println(style.Faint(fmt.Sprintf("Interrupted after %s.", util.Quantify(orchestrator.Cursor(), "episode", "episodes"))))
		return nil
	}
	return err
}

func newSink(h episode.Handle) progress.Sink {
	opts := []progress.LineOption{
		progress.WithInteractive(util.IsTerminal()),
		progress.WithRefresh(viper.GetDuration(key.ProgressRefresh)),
	}

	if width, _, err := util.TerminalSize(); err == nil {
		opts = append(opts, progress.WithWidth(width))
	}

	if viper.GetBool(key.ProgressBar) {
		opts = append(opts, progress.WithBar(24))
	}

	return progress.Tee(
		progress.NewLine(os.Stdout, fmt.Sprintf("%s: Downloading... ", h), opts...),
		progress.NewLog(log.Fields{"episode": h.Number}, 5*time.Second),
	)
}
